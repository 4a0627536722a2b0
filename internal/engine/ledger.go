package engine

import (
	"fmt"
	"time"

	"github.com/seantiz/switchyard/internal/model"
)

// ledger is the append-only record of every admitted request. Entries are
// never removed; only the status of a pending entry moves to processed.
// pending maps a key to the position of its single pending entry. Guarded by
// the engine's admission lock.
type ledger struct {
	entries []model.Request
	pending map[model.RequestKey]int
}

func newLedger() *ledger {
	return &ledger{pending: make(map[model.RequestKey]int)}
}

func (l *ledger) append(r model.Request) {
	l.pending[r.Key()] = len(l.entries)
	l.entries = append(l.entries, r)
}

// markProcessed flips the pending entry for key and returns it.
func (l *ledger) markProcessed(key model.RequestKey, workerID int, at time.Time) (model.Request, error) {
	pos, ok := l.pending[key]
	if !ok {
		return model.Request{}, fmt.Errorf("no pending ledger entry for %s", key)
	}
	e := &l.entries[pos]
	if !model.ValidTransition(e.Status, model.StatusProcessed) {
		return model.Request{}, fmt.Errorf("ledger entry for %s: %s -> %s not allowed", key, e.Status, model.StatusProcessed)
	}
	e.Status = model.StatusProcessed
	e.WorkerID = &workerID
	e.ProcessedAt = &at
	delete(l.pending, key)
	return *e, nil
}

// list returns the entries in admission order. WorkerID and ProcessedAt are
// set once and never written again, so sharing those pointers is safe.
func (l *ledger) list() []model.Request {
	out := make([]model.Request, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ledger) counts() (pending, processed int) {
	pending = len(l.pending)
	return pending, len(l.entries) - pending
}

func (l *ledger) reset() {
	l.entries = nil
	l.pending = make(map[model.RequestKey]int)
}
