// Package server exposes the dashboard API, its pages and the query assistant over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialdash/internal/askai"
	"socialdash/internal/models"
	"socialdash/internal/store"
)

// Store is the persistence the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	ListPosts(ctx context.Context, f store.PostFilter) ([]models.PostSummary, error)
	GetPostDetail(ctx context.Context, postID int64) (*models.PostDetail, error)
	SearchSuggestions(ctx context.Context, query string) ([]models.TopicRef, []models.PostRef, error)
	ExportPosts(ctx context.Context) ([]models.ExportedPost, error)
	SavePost(ctx context.Context, p models.Post, tags []string) error
	ListTopics(ctx context.Context) ([]models.TopicRef, error)
	ListTopicSummaries(ctx context.Context, q store.TopicQuery) ([]models.TopicSummary, error)
	GetTopicDetail(ctx context.Context, topicID int64) (*models.TopicDetail, error)
}

// Asker answers natural-language questions.
type Asker interface {
	Answer(ctx context.Context, question string) (*askai.Response, error)
}

// Pinger checks a dependency, e.g. the read-only pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds everything the router needs.
type Config struct {
	Addr           string
	Store          Store
	Asker          Asker
	ReadOnly       Pinger
	Logger         *zap.Logger
	AllowedOrigins []string

	// AskRateLimit is requests per minute per client IP; 0 disables limiting.
	AskRateLimit   int
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with middleware, pages and API routes.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	responseLogger = logger.Named("http")
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Web handlers (HTML responses)
	webHandler := NewWebHandler(cfg.Store, logger)
	r.Get("/", webHandler.HomePage)
	r.Get("/posts", webHandler.PostsPage)
	r.Get("/topics", webHandler.TopicsPage)
	r.Get("/ask-ai", webHandler.AskPage)
	r.Get("/post/{id}", webHandler.PostDetail)
	r.Get("/topic/{id}", webHandler.TopicDetail)

	// API handlers (JSON responses)
	apiHandler := &APIHandler{Store: cfg.Store, Asker: cfg.Asker, ReadOnly: cfg.ReadOnly, Logger: logger.Named("api")}
	r.Get("/download", apiHandler.Download)
	r.Get("/healthz", apiHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/search-suggestions", apiHandler.SearchSuggestions)
		r.Get("/topics-list", apiHandler.TopicsList)
		r.Get("/topics", apiHandler.Topics)
		r.Get("/topics/{id}", apiHandler.GetTopic)
		r.Get("/posts", apiHandler.Posts)
		r.Get("/posts/{id}", apiHandler.GetPost)
		r.Post("/save-post", apiHandler.SavePost)
		r.Group(func(r chi.Router) {
			if cfg.AskRateLimit > 0 {
				r.Use(httprate.Limit(cfg.AskRateLimit, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						respondError(w, http.StatusTooManyRequests, "Too many questions, please slow down.")
					}),
				))
			}
			r.Post("/ask-ai-query", apiHandler.AskAIQuery)
		})
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.Logger.Info("Starting server", zap.String("addr", "http://"+cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		cfg.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
