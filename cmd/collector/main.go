package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PricePulse/internal/aggregator"
	"PricePulse/internal/bucket"
	"PricePulse/internal/collector"
	"PricePulse/internal/config"
	"PricePulse/internal/poller"
	"PricePulse/internal/scheduler"
	"PricePulse/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PricePulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher and collector
	fetcher := collector.NewBinanceFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	log.Printf("[INFO] data source: %s, symbols: %v", fetcher.Name(), cfg.Symbols)
	col := collector.NewCollector(fetcher, cfg.Symbols)

	// Init raw store
	var raw store.RawStore
	if cfg.Database.SQLitePath != "" {
		sr, err := store.NewSQLiteRawStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite raw store failed, using noop: %v", err)
			raw = store.NewNoopRawStore()
		} else {
			raw = sr
			defer sr.Close()
		}
	} else {
		raw = store.NewNoopRawStore()
	}

	// Init rollup store
	var rollups store.RollupStore
	if cfg.PostgresConfigured() {
		pr, err := store.NewPostgresRollupStore(store.PostgresOption{
			Host:     cfg.Database.Postgres.Host,
			Port:     cfg.Database.Postgres.Port,
			User:     cfg.Database.Postgres.User,
			Password: cfg.Database.Postgres.Password,
			Database: cfg.Database.Postgres.DBName,
			SSLMode:  cfg.Database.Postgres.SSLMode,
		})
		if err != nil {
			log.Printf("[WARN] init postgres rollup store failed, using noop: %v", err)
			rollups = store.NewNoopRollupStore()
		} else {
			rollups = pr
			defer pr.Close()
		}
	} else {
		log.Println("[WARN] postgres not configured, rollups will not be persisted")
		rollups = store.NewNoopRollupStore()
	}

	// Init engine and bucket clock
	eng := aggregator.NewEngine(cfg.Symbols)
	bucketSize, err := cfg.BucketSize()
	if err != nil {
		log.Fatalf("[FATAL] bucket size: %v", err)
	}
	clk, err := bucket.NewClock(bucketSize)
	if err != nil {
		log.Fatalf("[FATAL] bucket clock: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler for the daily raw-data purge
	sched := scheduler.NewScheduler(raw)
	if err := sched.RegisterAll(cfg.Schedule.PurgeCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start the poll loop
	pol := poller.New(col, eng, clk, raw, rollups, cfg.PollInterval())
	errCh := make(chan error, 1)
	go func() {
		errCh <- pol.Run(ctx)
	}()

	log.Println("[INFO] PricePulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or poller failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Fatalf("[FATAL] poller: %v", err)
		}
	}

	log.Println("[INFO] PricePulse stopped")
}
