package logging

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// Setup configures the standard logrus logger from the level and format settings
func Setup(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
}

// GormLogger bridges GORM's logger onto logrus.
// SQL statements are only traced at debug level.
func GormLogger() logger.Interface {
	mode := logger.Warn
	if log.IsLevelEnabled(log.DebugLevel) {
		mode = logger.Info
	}

	return logger.New(log.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  mode,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Writer exposes the logrus output for access logs written by other middleware
func Writer() io.Writer {
	return log.StandardLogger().WriterLevel(log.InfoLevel)
}
