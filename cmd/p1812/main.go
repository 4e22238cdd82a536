package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"p1812go/internal/job"
	"p1812go/pkg/config"
	"p1812go/pkg/db"
	"p1812go/pkg/logging"
	"p1812go/pkg/metrics"
	"p1812go/pkg/store"
	"p1812go/pkg/version"
)

const defaultConfigPath = "configs/p1812.yaml"

var (
	configFlag = flag.String("config", "", "Job config file (default $P1812_CONFIG or "+defaultConfigPath+")")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// A missing .env is fine.
	_ = godotenv.Load()

	path := configPath(*configFlag)

	if *initConfig {
		if err := config.GenerateDefault(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", path)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("P1812_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

func run(ctx context.Context, configPath string, out io.Writer) error {
	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("p1812 started", "version", version.Version, "config", configPath)

	var st store.RunStore
	if appCfg.Store.Enabled {
		dbConn, s, err := initDB(appCfg)
		if err != nil {
			return err
		}
		defer s.Close()
		st = s

		if keep := appCfg.Store.RetentionPeriod(); keep > 0 {
			if n, err := dbConn.PruneRuns(keep); err != nil {
				slog.Error("Run history pruning failed", "error", err)
			} else if n > 0 {
				slog.Info("Pruned run history", "deleted", n)
			}
		}
	}

	var collector *metrics.Collector
	if appCfg.Metrics.Textfile != "" {
		if collector, err = metrics.NewCollector(nil); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return job.New(appCfg, st, collector, slog.Default(), out).Run(ctx)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}
