package engine

import (
	"fmt"

	"github.com/seantiz/switchyard/internal/model"
)

// quotaTracker holds the remaining submission allowance per client. Client
// ids are dense, 0..n-1. Guarded by the engine's admission lock.
type quotaTracker struct {
	remaining []int
}

func newQuotaTracker(numClients, perClient int) quotaTracker {
	t := quotaTracker{remaining: make([]int, numClients)}
	for i := range t.remaining {
		t.remaining[i] = perClient
	}
	return t
}

// check reports whether the client exists and still has allowance left.
func (t *quotaTracker) check(clientID int) error {
	if clientID < 0 || clientID >= len(t.remaining) {
		return fmt.Errorf("%w: %d", ErrInvalidClient, clientID)
	}
	if t.remaining[clientID] <= 0 {
		return fmt.Errorf("%w: client %d", ErrQuotaExceeded, clientID)
	}
	return nil
}

// take consumes one unit of allowance. Callers must check first.
func (t *quotaTracker) take(clientID int) int {
	t.remaining[clientID]--
	return t.remaining[clientID]
}

func (t *quotaTracker) list() []model.Client {
	out := make([]model.Client, len(t.remaining))
	for i, r := range t.remaining {
		out[i] = model.Client{ID: i, RemainingQuota: r}
	}
	return out
}
