package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fullcarts/shrinktrack/internal/logger"
	"github.com/fullcarts/shrinktrack/internal/registry"
	"github.com/fullcarts/shrinktrack/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "shrinktrack",
	Short: "Community shrinkflation report tracker",
	Long: `shrinktrack ingests posts from shrinkflation communities, extracts
size/price/brand signals, stages them by confidence tier, and promotes
high-confidence reports to canonical product and event records.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}

func newLogger() (*zap.SugaredLogger, error) {
	return logger.New(os.Getenv("SHRINKTRACK_LOG_MODE"))
}

// openStore picks Postgres when DATABASE_URL is set, otherwise falls back to
// a local DuckDB file so a run still produces usable output with no remote
// database available.
func openStore(ctx context.Context, log *zap.SugaredLogger) (store.Store, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return store.NewPostgres(ctx, dsn, log)
	}

	path := os.Getenv("SHRINKTRACK_DB_PATH")
	if path == "" {
		path = "shrinktrack.duckdb"
	}
	fmt.Printf("DATABASE_URL not set, using local DuckDB store: %s\n", path)
	return store.NewDuckDB(path, log)
}

func knownURLsPath() string {
	if p := os.Getenv("SHRINKTRACK_KNOWN_URLS"); p != "" {
		return p
	}
	return "known_urls.txt"
}

// loadRegistry seeds the dedup registry from the store's known-URL table
// merged with the flat-file copy kept for no-database runs.
func loadRegistry(ctx context.Context, st store.Store, log *zap.SugaredLogger) *registry.Registry {
	reg, err := registry.LoadFile(knownURLsPath())
	if err != nil {
		log.Warnw("failed to load known URLs file", "error", err)
		reg = registry.New()
	}

	urls, err := st.KnownURLs(ctx)
	if err != nil {
		log.Warnw("failed to load known URLs from store", "error", err)
	}
	reg.Add(urls...)

	return reg
}

func saveRegistry(ctx context.Context, st store.Store, reg *registry.Registry, log *zap.SugaredLogger) {
	if err := st.AddKnownURLs(ctx, reg.All()); err != nil {
		log.Warnw("failed to persist known URLs to store", "error", err)
	}
	if err := reg.SaveFile(knownURLsPath()); err != nil {
		log.Warnw("failed to save known URLs file", "error", err)
	}
}
