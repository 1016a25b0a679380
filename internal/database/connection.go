// connection.go
//
// Record service for sports federation schools, trainers, athletes, competitions and entries
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sportfed.
// sportfed is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sportfed is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sportfed.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"fmt"

	"github.com/localnerve/sportfed/internal/config"
	"github.com/localnerve/sportfed/internal/logging"
	"github.com/localnerve/sportfed/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// Dialector builds the GORM dialector for the configured DB_TYPE.
// DB_DSN, when present, is passed to the driver verbatim.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.DBDSN

	switch cfg.DBType {
	case "mysql", "mariadb":
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBHost,
				portOr(cfg.DBPort, "3306"),
				cfg.DBDatabase,
			)
		}
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBHost,
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBDatabase,
				portOr(cfg.DBPort, "5432"),
			)
		}
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		if dsn == "" {
			dsn = cfg.DBDatabase
		}
		return sqlite.Open(dsn), nil

	case "sqlserver", "mssql":
		if dsn == "" {
			dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBHost,
				portOr(cfg.DBPort, "1433"),
				cfg.DBDatabase,
			)
		}
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	return Open(dialector, cfg.DBConnectionLimit)
}

// Open opens the dialector and applies the connection pool limits
func Open(dialector gorm.Dialector, connectionLimit int) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.GormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if connectionLimit > 0 {
		sqlDB.SetMaxOpenConns(connectionLimit)
		sqlDB.SetMaxIdleConns(max(connectionLimit/2, 1))
	}

	log.Printf("Connected to %s database", db.Dialector.Name())

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func portOr(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}
