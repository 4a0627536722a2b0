package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/seantiz/switchyard/internal/api"
	"github.com/seantiz/switchyard/internal/backend"
	"github.com/seantiz/switchyard/internal/config"
	"github.com/seantiz/switchyard/internal/engine"
	"github.com/seantiz/switchyard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	out, closeLog := cfg.LogOutput(os.Stdout)
	defer closeLog()
	logger := config.NewLogger(out, cfg.LogLevel, cfg.LogFormat)

	logger.Info("switchyard: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"dispatch_interval", cfg.DispatchInterval,
		"backoff_interval", cfg.BackoffInterval,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	eng := engine.NewEngine(backend.NewRegistry(), logger,
		engine.WithDispatchInterval(cfg.DispatchInterval),
		engine.WithBackoffInterval(cfg.BackoffInterval),
		engine.WithLogRetention(cfg.LogRetention),
		engine.WithLogSink(db),
	)
	defer eng.Close()

	if p := cfg.Pool; p != nil {
		if _, err := eng.Configure(p.NumWorkers, p.NumClients, p.RequestsPerClient); err != nil {
			log.Fatalf("failed to apply pool configuration: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("dispatch loop stopped", "error", err)
		}
	})

	srv := api.NewServer(cfg.ListenAddr, eng, db, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}
	wg.Wait()
	logger.Info("switchyard: stopped")
}
