package engine

import (
	"sync"
	"time"

	"github.com/seantiz/switchyard/internal/model"
)

// logTrail is the in-memory diagnostic trail served by ListLogs. With
// retention 0 it grows without bound; otherwise only the newest retention
// entries are kept.
type logTrail struct {
	mu        sync.Mutex
	entries   []model.LogEntry
	nextSeq   int
	retention int
}

func (t *logTrail) append(msg string, at time.Time) model.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := model.LogEntry{
		ID:        model.NewID(),
		Seq:       t.nextSeq,
		Message:   msg,
		CreatedAt: at,
	}
	t.nextSeq++
	t.entries = append(t.entries, e)
	if t.retention > 0 && len(t.entries) > t.retention {
		t.entries = append([]model.LogEntry(nil), t.entries[len(t.entries)-t.retention:]...)
	}
	return e
}

func (t *logTrail) list() []model.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.LogEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *logTrail) messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Message
	}
	return out
}
