// testserver starts a switchyard API server with fast dispatch timings and an
// in-memory journal for end-to-end testing.
// Usage: go run ./cmd/testserver
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seantiz/switchyard/internal/api"
	"github.com/seantiz/switchyard/internal/backend"
	"github.com/seantiz/switchyard/internal/engine"
	"github.com/seantiz/switchyard/internal/store"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("SWITCHYARD_LISTEN_ADDR"); v != "" {
		addr = v
	}

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng := engine.NewEngine(backend.NewRegistry(), logger,
		engine.WithDispatchInterval(50*time.Millisecond),
		engine.WithBackoffInterval(20*time.Millisecond),
		engine.WithLogSink(db),
	)
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go eng.Run(ctx)

	srv := api.NewServer(addr, eng, db, logger)
	logger.Info("testserver: starting with fast dispatch", "addr", addr)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
