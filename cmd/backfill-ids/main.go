// Command backfill-ids resolves local venues onto the external mapping
// platform: it searches by name, scores the candidates against the stored
// name and address, and persists the winning identifier.
//
// "No candidate found" counts as a failure — an unresolved venue blocks
// every other enrichment. A non-zero exit means the run could not be set
// up at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/plateful/placepipe/backfill"
	"github.com/plateful/placepipe/browse"
	"github.com/plateful/placepipe/dbopen"
	"github.com/plateful/placepipe/naver"
	"github.com/plateful/placepipe/store"
)

func main() {
	all := flag.Bool("all", false, "force re-resolution of every venue, overwriting stored identifiers")
	dryRun := flag.Bool("dry-run", false, "compute and log results without persisting anything")
	configPath := flag.String("config", "", "YAML config file (optional)")
	dbPath := flag.String("db", "", "venue database path (overrides PLACEPIPE_DB)")
	flag.Parse()

	godotenv.Load()
	logger := setupLogger()

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	cfg.DryRun = *dryRun
	if *all {
		cfg.Mode = backfill.ModeForceAll
	}

	ctx := context.Background()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithSchema(store.Schema), dbopen.WithMkdirAll())
	if err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mgr := browse.NewManager(browse.ManagerConfig{RemoteURL: cfg.BrowserRemoteURL, Logger: logger})
	if err := mgr.Start(ctx); err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer mgr.Close()

	client := naver.NewClient(naver.ClientConfig{UserAgent: cfg.UserAgent})
	runner := backfill.NewRunner(store.New(db), mgr, client, *cfg, logger)

	counts, err := runner.RunIdentifiers(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("identifiers backfill: %s\n", counts)
}

func setupLogger() *slog.Logger {
	var lvl slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(configPath, dbFlag string) (*backfill.Config, error) {
	cfg := &backfill.Config{}
	if configPath != "" {
		loaded, err := backfill.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dbFlag != "" {
		cfg.DBPath = dbFlag
	} else if env := os.Getenv("PLACEPIPE_DB"); env != "" {
		cfg.DBPath = env
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("no database configured: set --db, PLACEPIPE_DB, or db_path in the config file")
	}

	if remote := os.Getenv("PLACEPIPE_BROWSER_URL"); remote != "" {
		cfg.BrowserRemoteURL = remote
	}
	return cfg, nil
}
