package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blockedge-co/gash-miniapp/config"
	"github.com/blockedge-co/gash-miniapp/observability/logging"
	telemetry "github.com/blockedge-co/gash-miniapp/observability/otel"
	"github.com/blockedge-co/gash-miniapp/rates"
	"github.com/blockedge-co/gash-miniapp/server"
	"github.com/blockedge-co/gash-miniapp/storage"
	"github.com/blockedge-co/gash-miniapp/swap"
	"github.com/blockedge-co/gash-miniapp/users"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to gashd configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("GASH_ENV"))
	logger := logging.Setup("gashd", env)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.FromEnv("gashd", env))
	if err != nil {
		log.Fatalf("gashd: init telemetry: %v", err)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	cfg := config.Default()
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("gashd: load config: %v", err)
		}
	}

	store, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("gashd: open storage: %v", err)
	}
	defer store.Close()

	provider := rates.NewProvider(
		cfg.Rate.Base,
		cfg.Rate.Variation,
		cfg.Rate.Floor,
		cfg.Rate.TTL.Duration,
		rates.WithRecorder(store),
	)

	directory := users.NewDirectory()
	directory.SeedDemo()

	ledger := swap.NewLedger()
	ledger.SeedDemo(time.Now().UTC())

	limiter := swap.NewLimiter(cfg.Swap.MaxSwaps, cfg.Swap.Window.Duration)

	engine, err := swap.NewEngine(swap.Policy{
		MinAmount:         cfg.Swap.MinAmount,
		FirstSwapBonusPct: cfg.Swap.FirstSwapBonusPct,
		MaxSwaps:          cfg.Swap.MaxSwaps,
		Window:            cfg.Swap.Window.Duration,
	}, limiter, provider, directory, ledger, store)
	if err != nil {
		log.Fatalf("gashd: build engine: %v", err)
	}

	srv, err := server.New(server.Config{
		ListenAddress:  cfg.ListenAddress,
		RequestCeiling: cfg.Requests.Ceiling,
		RequestWindow:  cfg.Requests.Window.Duration,
	}, engine, provider, ledger, directory, logger)
	if err != nil {
		log.Fatalf("gashd: build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("gashd: %v", err)
	}
	logger.Info("gashd stopped")
}
