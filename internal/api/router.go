package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/shield/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/shield/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/shield/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/shield/internal/authz"
	"github.com/saturnino-fabrica-de-software/shield/internal/directory"
	"github.com/saturnino-fabrica-de-software/shield/internal/enroll"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/recognition"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
	"github.com/saturnino-fabrica-de-software/shield/internal/ws"
)

type Dependencies struct {
	UserRepo    *repository.UserRepository
	AuthLogRepo *repository.AuthorizationLogRepository
	JWTService  *directory.JWTService
	Directory   *directory.Service
	Tracker     *enroll.Tracker
	Validator   *intake.Validator
	Scorer      *recognition.Scorer
	Engine      *authz.Engine
	Audit       authz.Logger
	DB          *pgxpool.Pool
}

type Router struct {
	app       *fiber.App
	logger    *slog.Logger
	deps      *Dependencies
	wsHub     *ws.Hub
	cancelHub context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Shield API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var pinger handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		v1.Use(middleware.Auth(r.deps.JWTService))

		// WebSocket hub for model-level broadcasts
		r.wsHub = ws.NewHub()
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.wsHub.Run(hubCtx)

		// Realtime enrollment and verification channel
		sessionDeps := ws.SessionDeps{
			Tracker:  r.deps.Tracker,
			Verifier: r.deps.Validator,
			Scorer:   r.deps.Scorer,
			Engine:   r.deps.Engine,
			Hub:      r.wsHub,
			Audit:    r.deps.Audit,
			Logger:   r.logger,
		}
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub, sessionDeps))

		// Directory routes (admin only)
		usersHandler := handler.NewUsersHandler(r.deps.Directory, r.deps.UserRepo, r.logger)
		usersGroup := v1.Group("/users", middleware.AdminOnly())
		usersGroup.Post("/", usersHandler.Create)
		usersGroup.Get("/", usersHandler.List)
		usersGroup.Get("/:id", usersHandler.Get)
		usersGroup.Delete("/:id", usersHandler.Delete)

		// Decision log (admin only)
		logsHandler := handler.NewAuthorizationLogsHandler(r.deps.AuthLogRepo, r.logger)
		adminGroup := v1.Group("/admin", middleware.AdminOnly())
		adminGroup.Get("/authorization-logs", logsHandler.List)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.Shutdown()
}

// ShutdownWithContext drains in-flight requests until ctx expires.
func (r *Router) ShutdownWithContext(ctx context.Context) error {
	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.ShutdownWithContext(ctx)
}
