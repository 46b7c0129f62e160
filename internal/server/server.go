// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/seed"
	"inkwell/internal/session"
	"inkwell/internal/service"
	"inkwell/internal/upload"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// sessionCookie is the cookie carrying the opaque session token.
const sessionCookie = "inkwell_session"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Manager
	userRepo       repository.UserRepository
	contentRepo    repository.ContentRepository
	gate           *upload.Gate
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, cache.GetClient())
}

// NewServerWithDeps creates a Server using an already-initialized Redis
// client (which may be nil). Use this in tests or when a bootstrap layer
// establishes external connections.
func NewServerWithDeps(cfg *config.Config, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewMemoryUserRepository(seed.Users())
	contentRepo := repository.NewMemoryContentRepository()

	gate, err := upload.NewGate(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	prom := middleware.InitMetrics("inkwell-api")

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: prom,
		sessions:       session.NewManager(cfg.SessionTTL()),
		userRepo:       userRepo,
		contentRepo:    contentRepo,
		gate:           gate,
		authService:    service.NewAuthService(userRepo),
		postService:    service.NewPostService(contentRepo),
		commentService: service.NewCommentService(contentRepo),
	}

	return server, nil
}

// ContentRepo exposes the content repository for bootstrap seeding.
func (s *Server) ContentRepo() repository.ContentRepository {
	return s.contentRepo
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing before the context middleware so traceID lands in locals first
	app.Use(middleware.TracingMiddleware())

	// Context middleware to propagate request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	api.Post("/login", middleware.RateLimit(
		s.redis, 5, time.Minute, "login"), s.Login)
	api.Post("/logout", s.Logout)
	api.Get("/user", s.CurrentUser)

	// Public post routes
	api.Get("/posts", s.GetPosts)
	// Define the /:id/comments route BEFORE the generic /:id route
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/:id", s.GetPost)

	// Comment creation is open to anonymous callers
	api.Post("/posts/:id/comments", s.CreateComment)

	// Protected routes
	api.Post("/posts", s.SessionRequired(), s.CreatePost)
	api.Delete("/posts/:id", s.SessionRequired(), s.DeletePost)
	api.Post("/upload", s.SessionRequired(), s.Upload)

	// Static assets: uploaded files and the SPA shell
	app.Static(upload.URLPrefix, s.gate.Dir())
	if s.config.PublicDir != "" {
		app.Static("/", s.config.PublicDir)
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The content stores are
// in-process, so readiness only degrades when Redis (the rate-limit store)
// is down; the limiter then fails open and the service keeps serving.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "inkwell",
		"version": "1.0.0",
		"status":  "healthy",
		"checks": fiber.Map{
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// SessionRequired returns middleware that resolves the session cookie and
// rejects the request with 401 when it is missing, unknown, or expired. The
// resolved identity snapshot lands in locals for downstream handlers.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := s.resolveSession(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		c.Locals("identity", identity)
		c.Locals("username", identity.Username)
		ctx := context.WithValue(c.UserContext(), middleware.UsernameKey, identity.Username)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// resolveSession looks up the session cookie without enforcing it.
func (s *Server) resolveSession(c *fiber.Ctx) (*models.SessionIdentity, bool) {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return nil, false
	}
	return s.sessions.Resolve(token)
}

// identityFromLocals returns the identity stored by SessionRequired.
func identityFromLocals(c *fiber.Ctx) *models.SessionIdentity {
	if identity, ok := c.Locals("identity").(*models.SessionIdentity); ok {
		return identity
	}
	return nil
}

// Start starts the server, serving TLS when a certificate is configured.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Inkwell Blog API",
		BodyLimit: bodyLimitBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	addr := ":" + s.config.Port
	if s.config.TLSEnabled() {
		log.Printf("Server starting with TLS on port %s...", s.config.Port)
		return app.ListenTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
