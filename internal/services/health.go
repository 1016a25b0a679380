package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/sportfed/internal/config"
	"github.com/localnerve/sportfed/internal/utils"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer,omitempty"`
	Cache        string            `json:"cache,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(format string, args ...interface{}) {
	r.Status = "unhealthy"
	msg := fmt.Sprintf(format, args...)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Printf("Health check failed - %s", msg)
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, cache RoleCache) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail("Database connection error: %v", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.fail("Database ping failed: %v", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = db.Dialector.Name()
	}

	// Check Authorizer connectivity when sessions are validated there
	if cfg.AuthProvider == "authorizer" {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.Details["authorizer_error"] = err.Error()
			result.fail("Authorizer ping failed: %v", err)
		} else {
			result.Authorizer = "ok"
		}
	}

	// Check the role cache
	if cache != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
		defer cancel()
		if err := cache.Ping(pingCtx); err != nil {
			result.Cache = "unreachable"
			result.Details["cache_error"] = err.Error()
			result.fail("Role cache ping failed: %v", err)
		} else {
			result.Cache = "ok"
		}
	}

	return result
}
