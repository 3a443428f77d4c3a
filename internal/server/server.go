// Package server is the composition root: it builds every dependency,
// wires the routes and owns start-up and graceful shutdown.
//
// Dependency chain:
//
//	sqlite.DB → catalog.Store → CatalogService ─┐
//	          → SnippetService ─────────────────┼→ handlers → chi router
//	          → search.Index → SearchService ───┘
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services. Nothing below this package knows how
// the others are constructed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/code-resources/internal/auth"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/config"
	"github.com/sakif/code-resources/internal/executor"
	"github.com/sakif/code-resources/internal/handler"
	"github.com/sakif/code-resources/internal/middleware"
	"github.com/sakif/code-resources/internal/ratelimit"
	sqliteRepo "github.com/sakif/code-resources/internal/repository/sqlite"
	"github.com/sakif/code-resources/internal/scheduler"
	"github.com/sakif/code-resources/internal/search"
	"github.com/sakif/code-resources/internal/service"
	"github.com/sakif/code-resources/internal/validation"
)

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger

	db         *sqliteRepo.DB
	store      *catalog.Store
	index      *search.Index
	search     *service.SearchService
	scheduler  *scheduler.Scheduler
	limiter    *ratelimit.KeyedRateLimiter // forms and sign-in
	runLimiter *ratelimit.KeyedRateLimiter // playground runs

	catalogSvc *service.CatalogService
	snippetSvc *service.SnippetService
	tokens     *auth.TokenService // nil when auth is disabled
	exec       executor.Executor  // nil when the playground is disabled
}

// New creates a Server. exec may be nil, in which case the playground
// endpoints answer 503.
func New(cfg config.Config, logger *slog.Logger, exec executor.Executor) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	index, err := search.NewIndex(logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	s := &Server{
		router:     chi.NewRouter(),
		config:     cfg,
		logger:     logger,
		db:         db,
		index:      index,
		scheduler:  scheduler.New(logger),
		limiter:    ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst),
		runLimiter: ratelimit.New(cfg.ExecuteRateLimitRPS, cfg.ExecuteRateLimitBurst),
		exec:       exec,
	}

	s.store = catalog.NewStore(db, cfg.SearchDebounce, logger)
	s.catalogSvc = service.NewCatalogService(s.store, db, logger)
	s.snippetSvc = service.NewSnippetService(db, logger)
	s.search = service.NewSearchService(index, s.store, db, cfg.SearchDebounce, logger)

	// Keep the index in step with its two sources.
	s.store.OnRefresh(func(*catalog.Snapshot) { s.search.Invalidate() })
	s.snippetSvc.OnChange(s.search.Invalidate)

	if cfg.AuthEnabled() {
		s.tokens, err = auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenTTL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	} else {
		logger.Warn("jwt_secret not set, sign-in and snippet editing are disabled")
	}

	if err := s.setupRoutes(); err != nil {
		s.close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	if err := s.setupJobs(); err != nil {
		s.close()
		return nil, fmt.Errorf("scheduling jobs: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// Middleware runs in the order it is added:
//  1. RequestID: a unique ID per request, picked up by the logger
//  2. RealIP: client IP from proxy headers, used for rate limiting and view dedup
//  3. Logger
//  4. Recoverer: a panic becomes a 500 instead of a crash
//  5. CORS for the single-page front-end
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	validate := validation.New()
	reject := handler.ErrorWriter(s.logger)
	throttle := middleware.RateLimit(s.limiter, reject)
	throttleRuns := middleware.RateLimit(s.runLimiter, reject)

	healthHandler := handler.NewHealthHandler(s.store, s.index, s.logger)
	catalogHandler := handler.NewCatalogHandler(s.catalogSvc, s.logger)
	searchHandler := handler.NewSearchHandler(s.search, s.logger)
	snippetHandler := handler.NewSnippetHandler(s.snippetSvc, s.logger)
	executeHandler := handler.NewExecuteHandler(s.exec, s.snippetSvc, s.logger)
	formHandler := handler.NewFormHandler(
		service.NewNewsletterService(s.db, validate, s.logger),
		service.NewContactService(s.db, validate, s.logger),
		s.logger,
	)

	pageHandler, err := handler.NewPageHandler(s.catalogSvc, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	// === Pages ===
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Get("/", pageHandler.HandleHome)
	for _, name := range []string{"about", "pricing", "contact", "legal", "advertise"} {
		s.router.Get("/"+name, pageHandler.HandleStatic(name))
	}

	// === Auth ===
	var authHandler *handler.AuthHandler
	if s.tokens != nil {
		authSvc := service.NewAuthService(s.db, s.tokens, auth.NewPasswordService(), validate, s.logger)

		var github *auth.GitHubProvider
		if s.config.GitHubEnabled() {
			github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
		} else {
			s.logger.Info("GitHub OAuth not configured, GitHub login disabled")
		}

		authHandler = handler.NewAuthHandler(authSvc, github, s.tokens.TTL(), s.config.CookieSecure, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.With(throttle).Post("/signup", authHandler.HandleSignUp)
			r.With(throttle).Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			if github != nil {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
		})
	}

	// === API ===
	s.router.Route("/api", func(r chi.Router) {
		if s.tokens != nil {
			r.Use(auth.OptionalAuth(s.tokens))
		}

		r.Get("/categories", catalogHandler.HandleListCategories)
		r.Get("/categories/{slug}", catalogHandler.HandleGetCategory)

		r.Get("/resources", catalogHandler.HandleListResources)
		r.Get("/resources/{id}", catalogHandler.HandleGetResource)
		r.Post("/resources/{id}/view", catalogHandler.HandleRecordView)
		r.Post("/resources/{id}/click", catalogHandler.HandleRecordClick)

		r.Get("/search", searchHandler.HandleSearch)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
		r.With(throttleRuns).Post("/snippets/{id}/run", executeHandler.HandleRunSnippet)
		r.With(throttleRuns).Post("/execute", executeHandler.HandleExecute)

		r.With(throttle).Post("/newsletter", formHandler.HandleSubscribe)
		r.Delete("/newsletter/{token}", formHandler.HandleUnsubscribe)
		r.With(throttle).Post("/contact", formHandler.HandleContact)

		if s.tokens != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(s.tokens))
				r.Post("/snippets", snippetHandler.HandleCreate)
				r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
				r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
				r.Get("/me", authHandler.HandleMe)
			})
		}
	})

	return nil
}

func (s *Server) setupJobs() error {
	if _, err := s.scheduler.Add("catalog-refresh", s.config.RefreshSchedule, scheduler.RefreshJob(s.store)); err != nil {
		return err
	}
	prune := scheduler.PruneJob(s.db, s.config.AnalyticsRetention, time.Now, s.logger)
	if _, err := s.scheduler.Add("analytics-prune", s.config.PruneSchedule, prune); err != nil {
		return err
	}
	return nil
}

// Warm loads the catalog and builds the search index. A failure leaves the
// server serving an empty catalog until the next scheduled refresh.
func (s *Server) Warm(ctx context.Context) error {
	if err := s.store.Refresh(ctx); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if err := s.search.Rebuild(ctx); err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	return nil
}

// Start serves HTTP until SIGINT or SIGTERM, then shuts down gracefully:
//  1. stop accepting connections and wait for in-flight requests (30s)
//  2. stop the scheduler
//  3. release the index, the debouncers and the database
func (s *Server) Start() error {
	defer s.close()

	warmCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := s.Warm(warmCtx); err != nil {
		s.logger.Error("initial warm-up failed", slog.String("error", err.Error()))
	}
	cancel()

	s.scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // playground runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.tokens != nil),
			slog.Bool("playground", s.exec != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// close releases everything New acquired. It does not touch the executor,
// which the caller owns.
func (s *Server) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.scheduler.Stop(ctx)

	// The store's refresh hook feeds the search debouncer, so the store goes first.
	if s.store != nil {
		s.store.Close()
	}
	if s.search != nil {
		s.search.Close()
	}
	s.limiter.Stop()
	s.runLimiter.Stop()
	if err := s.index.Close(); err != nil {
		s.logger.Warn("closing search index", slog.String("error", err.Error()))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
