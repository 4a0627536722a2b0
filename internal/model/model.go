package model

import (
	"fmt"
	"time"
)

// Request status constants.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
)

// validTransitions maps each status to the set of statuses it may transition to.
// Processed is terminal.
var validTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusProcessed: true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// RequestKey is the natural key of a request.
type RequestKey struct {
	ClientID  int
	RequestID int
}

func (k RequestKey) String() string {
	return fmt.Sprintf("client %d request %d", k.ClientID, k.RequestID)
}

// Configuration is the pool shape applied by Configure.
type Configuration struct {
	NumWorkers        int `json:"num_workers" yaml:"workers"`
	NumClients        int `json:"num_clients" yaml:"clients"`
	RequestsPerClient int `json:"requests_per_client" yaml:"requests_per_client"`
}

// Worker is a snapshot of one unit of processing capacity.
type Worker struct {
	ID           int  `json:"id"`
	HandledCount int  `json:"handled_count"`
	Active       bool `json:"active"`
}

// Client is a snapshot of a submitter and its remaining allowance.
type Client struct {
	ID             int `json:"id"`
	RemainingQuota int `json:"remaining_quota"`
}

// Request is a snapshot of one ledger entry.
type Request struct {
	ClientID    int        `json:"client_id"`
	RequestID   int        `json:"request_id"`
	Priority    int        `json:"priority"`
	Status      string     `json:"status"`
	WorkerID    *int       `json:"worker_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Key returns the request's natural key.
func (r Request) Key() RequestKey {
	return RequestKey{ClientID: r.ClientID, RequestID: r.RequestID}
}

// LogEntry is a single diagnostic line emitted by the engine.
type LogEntry struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
