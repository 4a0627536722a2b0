package store

import (
	"context"

	"github.com/seantiz/switchyard/internal/model"
)

// Store persists the engine's diagnostic trail. It is a best-effort journal;
// the engine never reads it back.
type Store interface {
	AppendLog(ctx context.Context, e model.LogEntry) error
	ListLogEntries(ctx context.Context, limit, offset int) ([]model.LogEntry, int, error)
	Close() error
}
