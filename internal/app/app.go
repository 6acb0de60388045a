package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	middleware "github.com/markdave123-py/insightcart/internal/api/middlewares"
	"github.com/markdave123-py/insightcart/internal/config"
	"github.com/markdave123-py/insightcart/internal/core"
	"github.com/markdave123-py/insightcart/internal/core/analysis"
	db "github.com/markdave123-py/insightcart/internal/core/database"
	"github.com/markdave123-py/insightcart/internal/core/ingestion_engine"
	"github.com/markdave123-py/insightcart/internal/core/llm"
	objectclient "github.com/markdave123-py/insightcart/internal/core/object-client"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/services"
)

type App struct {
	Store     core.Store
	LLM       *llm.GeminiLLM
	Workspace *services.Workspace
	Registry  *services.Registry
	Metrics   *metrics.Recorder
	Server    *Server
	log       *logger.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	m := metrics.NewRecorder()

	store, err := db.Open(appCtx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	repo := db.NewRepository(store, m)

	analyzer, gemini, err := NewAnalyzer(appCtx, cfg, log, m)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ws := services.NewWorkspace(repo, analyzer,
		services.WithWorkspaceLogger(log.With("service", "Workspace")),
		services.WithWorkspaceMetrics(m),
	)
	if err := ws.Load(appCtx); err != nil {
		_ = gemini.Close()
		_ = store.Close()
		return nil, err
	}

	var objects core.ObjectClient
	if cfg.ExportEnabled() {
		s3, err := objectclient.NewS3Client(appCtx, cfg, log)
		if err != nil {
			_ = gemini.Close()
			_ = store.Close()
			return nil, fmt.Errorf("object client: %w", err)
		}
		objects = s3
	} else {
		log.Info("report export disabled; S3 settings missing")
	}

	sessionTTL := 24 * time.Hour
	registry := services.NewRegistry(ws, repo, services.NewExporter(objects, cfg.BucketName, log), log,
		services.WithSessionIdle(sessionTTL),
	)
	router := NewRouter(RouterDeps{
		Config:   cfg,
		Registry: registry,
		Tokens:   middleware.NewSessionTokens(cfg.JWTSecret, sessionTTL),
		Metrics:  m,
		Log:      log,
	})

	return &App{
		Store:     store,
		LLM:       gemini,
		Workspace: ws,
		Registry:  registry,
		Metrics:   m,
		Server:    NewServer(cfg, router, log),
		log:       log,
	}, nil
}

// NewAnalyzer wires the Gemini client, the optional link scanner and metrics
// into an analysis client.
func NewAnalyzer(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Recorder) (*analysis.Client, *llm.GeminiLLM, error) {
	gemini, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't initialize the llm: %w", err)
	}

	opts := []analysis.Option{
		analysis.WithLogger(log.With("service", "AnalysisClient")),
		analysis.WithMetrics(m),
		analysis.WithTimeout(cfg.AnalysisTimeout),
	}
	if cfg.LinkScan {
		useReadability := false
		scanner := ingestion_engine.NewLinkScanner(
			&http.Client{Timeout: 20 * time.Second},
			ingestion_engine.NewDocconvExtractor(useReadability, 400),
			ingestion_engine.DefaultScanConfig(),
			log,
		)
		opts = append(opts, analysis.WithLinkScanner(scanner))
	}

	log.Info("analysis client ready", "model", gemini.ModelName(), "link_scan", cfg.LinkScan)
	return analysis.NewClient(gemini, opts...), gemini, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.Warn("store close failed", "error", err)
		}
	}
}
