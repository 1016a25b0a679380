package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/config"
	"github.com/localnerve/sportfed/internal/database"
	"github.com/localnerve/sportfed/internal/logging"
	"github.com/localnerve/sportfed/internal/server"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	_ "github.com/localnerve/sportfed/docs/api" // Swagger docs
)

// @title Sportfed API
// @version 1.0.0
// @description Sports federation records service: schools, trainers, sportsmen, competitions and entries
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/sportfed
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3001
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cache := roleCache(cfg)

	var identity services.IdentityProvider
	if cfg.IdentityDomain != "" {
		identity = &services.Auth0Provider{
			Domain:      cfg.IdentityDomain,
			AdminRoleID: cfg.IdentityAdminRole,
			ServerToken: cfg.IdentityMgmtToken,
		}
	} else {
		log.Warn("IDENTITY_DOMAIN not set, identity provider calls will return empty results")
	}

	authn, err := authenticator(cfg)
	if err != nil {
		log.Fatalf("Failed to create authenticator: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(server.Deps{
		Config:        cfg,
		DB:            db,
		Authenticator: authn,
		Resolver: &services.RoleResolver{
			DB:       db,
			Cache:    cache,
			Identity: identity,
			TTL:      cfg.RoleCacheTTL,
		},
		Identity: identity,
		Cache:    cache,
		Registry: registry,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = srv.Shutdown()
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := srv.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	if closer, ok := cache.(*services.RedisRoleCache); ok {
		_ = closer.Close()
	}
	log.Println("Server stopped")
}

// roleCache uses redis when it is configured and reachable, memory otherwise
func roleCache(cfg *config.Config) services.RoleCache {
	if cfg.RedisAddr == "" {
		return services.NewMemoryRoleCache()
	}

	cache := services.NewRedisRoleCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		log.WithError(err).Warnf("Redis at %s unreachable, using the in-memory role cache", cfg.RedisAddr)
		_ = cache.Close()
		return services.NewMemoryRoleCache()
	}

	log.Printf("Role cache on redis %s", cfg.RedisAddr)
	return cache
}

func authenticator(cfg *config.Config) (auth.Authenticator, error) {
	if cfg.AuthProvider == "authorizer" {
		log.Printf("Authorizer will be initialized on first authenticated request")
		return &auth.AuthorizerAuthenticator{URL: cfg.AuthzURL, ClientID: cfg.AuthzClientID}, nil
	}
	return auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience)
}
