package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/quickblog-app/apiserver/config"
	"github.com/quickblog-app/apiserver/internal/db"
	"github.com/quickblog-app/apiserver/internal/events"
	"github.com/quickblog-app/apiserver/internal/genai"
	"github.com/quickblog-app/apiserver/internal/handlers"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/internal/storage"
	"github.com/quickblog-app/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with its full dependency graph: database, object
// storage for cover images, optional event broker and content generator.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	assetStorage, err := newStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := assetStorage.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var generator handlers.ContentGenerator
	if strings.TrimSpace(cfg.GenAI.APIKey) != "" {
		client, err := genai.NewClient(cfg.GenAI)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		generator = client
	}

	blogRepo := store.NewBlogRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	blogService := services.NewBlogService(blogRepo, assetStorage)
	commentService := services.NewCommentService(commentRepo, blogRepo, publisher)
	userService := services.NewUserService(userRepo)
	dashboardService := services.NewDashboardService(blogRepo, commentRepo)

	requireAuth := handlers.RequireAuth(jwtSecret)
	optionalAuth := handlers.OptionalAuth(jwtSecret)

	// Any valid token authorizes the management routes, matching the
	// reference deployment. Swap in handlers.AdminOnly to tighten.
	policy := handlers.AnyActor

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/", handlers.Root)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/admin", func(r chi.Router) {
		handlers.AdminRouter(r, cfg.Admin, jwtSecret, blogService, commentService, dashboardService, requireAuth, policy)
	})
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/api/blog", func(r chi.Router) {
		handlers.BlogRouter(r, blogService, commentService, generator, requireAuth, optionalAuth, policy)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "", "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Backend)) {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}
