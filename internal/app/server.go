package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/insightcart/internal/api/handlers"
	middleware "github.com/markdave123-py/insightcart/internal/api/middlewares"
	"github.com/markdave123-py/insightcart/internal/config"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/services"
)

type RouterDeps struct {
	Config   *config.Config
	Registry *services.Registry
	Tokens   *middleware.SessionTokens
	Metrics  *metrics.Recorder
	Log      *logger.Logger
}

// NewRouter builds and wires all routes.
func NewRouter(d RouterDeps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Registry, d.Tokens, d.Log)
	analysisHandler := handlers.NewAnalysisHandler(d.Registry, d.Config.PublicBaseURL, d.Log)
	marketHandler := handlers.NewMarketHandler(d.Registry)
	productHandler := handlers.NewSavedProductHandler(analysisHandler)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	// audits can take as long as the model timeout
	r.Use(chimw.Timeout(d.Config.AnalysisTimeout + 30*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", d.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.SessionMiddleware(d.Tokens, d.Registry))

		api.Post("/login", authHandler.Login)
		api.Post("/logout", authHandler.Logout)
		api.Get("/session", authHandler.Session)
		api.Post("/view", authHandler.Navigate)

		api.Post("/analyses", analysisHandler.Submit)
		api.Get("/analyses", analysisHandler.History)

		api.Route("/reports/{id}", func(rep chi.Router) {
			rep.Get("/", analysisHandler.Get)
			rep.Post("/listing", analysisHandler.SetListing)
			rep.Post("/ratings", analysisHandler.Rate)
			rep.Post("/suggestions", analysisHandler.Suggest)
			rep.Post("/export", analysisHandler.Export)
		})

		api.Get("/feed", marketHandler.Feed)
		api.Get("/trending", marketHandler.Trending)
		api.Post("/compare/selection/{id}", marketHandler.ToggleCompare)
		api.Get("/compare", marketHandler.Compare)

		api.Get("/saved-products", productHandler.List)
		api.Post("/saved-products", productHandler.Create)
		api.Delete("/saved-products/{id}", productHandler.Delete)
		api.Post("/saved-products/{id}/analyze", productHandler.Analyze)
	})

	return r
}

// Server wraps the HTTP server instance.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func NewServer(cfg *config.Config, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
