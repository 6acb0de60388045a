package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/insightcart/internal/config"
	"github.com/markdave123-py/insightcart/internal/core"
	db "github.com/markdave123-py/insightcart/internal/core/database"
	"github.com/markdave123-py/insightcart/internal/logger"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/services"
)

var (
	verbose      bool
	storeBackend string
	timeout      time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "auditctl",
	Short: "Run InsightCart product audits from the terminal",
	Long: `auditctl runs product audits against the configured Gemini model and
inspects the shared report history.

Configuration is read from the same environment as the API server
(GEMINI_API_KEY, STORE_BACKEND, SQLITE_PATH, DATABASE_URL, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Persistence backend (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Operation timeout")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(trendingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env loads configuration with the command-line overrides applied.
func env() (*config.Config, *logger.Logger, error) {
	cfg := config.LoadConfig()
	if storeBackend != "" {
		cfg.StoreBackend = storeBackend
	}
	if !verbose {
		return cfg, logger.Nop(), nil
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// openWorkspace opens the store and loads the shared history into a
// workspace. The returned store must be closed by the caller.
func openWorkspace(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Recorder, analyzer services.Analyzer) (*services.Workspace, core.Store, error) {
	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	ws := services.NewWorkspace(db.NewRepository(store, m), analyzer,
		services.WithWorkspaceLogger(log),
		services.WithWorkspaceMetrics(m),
	)
	if err := ws.Load(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return ws, store, nil
}
