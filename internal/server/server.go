// server.go
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

package server

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/config"
	"github.com/localnerve/sportfed/internal/handlers"
	"github.com/localnerve/sportfed/internal/logging"
	"github.com/localnerve/sportfed/internal/middleware"
	"github.com/localnerve/sportfed/internal/realtime"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/types"
	"github.com/localnerve/sportfed/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps are the collaborators the server is built from
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Authenticator auth.Authenticator
	Resolver      *services.RoleResolver
	Identity      services.IdentityProvider
	Cache         services.RoleCache
	Registry      *prometheus.Registry
}

// Server is the HTTP app together with the realtime hub it feeds
type Server struct {
	App *fiber.App
	Hub *realtime.Hub
}

// New builds the app and starts the realtime hub
func New(d Deps) *Server {
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	origins := d.Config.AllowedOrigins()

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: logging.Writer()}))
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/socket"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + handlers.IdentityTokenHeader,
		AllowCredentials: !containsWildcard(origins),
	}))

	// Prometheus metrics
	prom := fiberprometheus.NewWithRegistry(d.Registry, "sportfed", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Config: d.Config, DB: d.DB, Cache: d.Cache}
	app.Get("/health", health.Check)

	hub := realtime.NewHub(d.Registry)
	go hub.Run()

	registerRoutes(app, d, hub)

	if !d.Config.IsDevelopment() && d.Config.StaticDir != "" {
		app.Static("/", d.Config.StaticDir)
		index := filepath.Join(d.Config.StaticDir, "index.html")
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, "")
	})

	return &Server{App: app, Hub: hub}
}

// registerRoutes mounts the authenticated API and the realtime endpoint.
// Authentication is attached per route so the static front end stays public.
func registerRoutes(app *fiber.App, d Deps, hub *realtime.Hub) {
	authed := middleware.Authenticate(d.Authenticator, d.Resolver)
	admin := middleware.AuthAdmin()

	schools := &handlers.SchoolHandler{DB: d.DB}
	trainers := &handlers.TrainerHandler{DB: d.DB}
	sportsmen := &handlers.SportsmanHandler{DB: d.DB}
	competitions := &handlers.CompetitionHandler{DB: d.DB}
	entries := &handlers.EntryHandler{DB: d.DB}
	users := &handlers.UserHandler{DB: d.DB}
	identity := &handlers.IdentityHandler{Provider: d.Identity}

	app.Get("/schools", authed, schools.List)
	app.Get("/school", authed, schools.GetByOwner)
	app.Post("/schools/save", authed, schools.Save)
	app.Post("/schools/edit", authed, schools.Edit)

	app.Get("/trainers", authed, trainers.List)
	app.Get("/trainers/:id", authed, trainers.Get)
	app.Post("/saveTrainer", authed, trainers.Save)
	app.Post("/editTrainer", authed, trainers.Edit)

	app.Get("/sportsmen", authed, sportsmen.List)
	app.Get("/sportsmen/:id", authed, sportsmen.Get)
	app.Post("/saveSportsman", authed, sportsmen.Save)
	app.Post("/editSportsman", authed, sportsmen.Edit)

	app.Get("/competitions", authed, competitions.List)
	app.Get("/competitions/:id", authed, competitions.Get)
	app.Post("/competitions/save", authed, admin, competitions.Save)
	app.Post("/competitions/edit", authed, admin, competitions.Edit)

	app.Get("/entries", authed, entries.List)
	app.Get("/entries/:id", authed, entries.Get)
	app.Post("/entries/save", authed, entries.Save)
	app.Post("/entries/edit", authed, entries.Edit)

	app.Get("/users", authed, admin, users.List)
	app.Post("/checkUserRole", authed, users.CheckUserRole)
	app.Get("/session", authed, users.Session)

	app.Get("/identity/users", authed, admin, identity.ListUsers)
	app.Delete("/identity/users/:id", authed, admin, identity.DeleteUser)
	app.Get("/identity/admins", authed, admin, identity.ListAdmins)

	dispatcher := realtime.NewDispatcher(d.DB, d.Identity)
	app.Get("/socket", middleware.Upgrade(d.Config.AllowedOrigins()), authed, realtime.Handler(hub, dispatcher))
}

// Listen serves on the address until Shutdown
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown closes the realtime connections, then stops the app
func (s *Server) Shutdown() error {
	s.Hub.Shutdown()
	return s.App.Shutdown()
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
