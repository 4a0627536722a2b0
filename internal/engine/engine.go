package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/seantiz/switchyard/internal/backend"
	"github.com/seantiz/switchyard/internal/model"
)

// Default dispatch timings.
const (
	DefaultDispatchInterval = 5 * time.Second
	DefaultBackoffInterval  = 2 * time.Second
)

// Pool size limits accepted by Configure.
const (
	MaxWorkers = 10_000
	MaxClients = 100_000
)

// LogSink receives every diagnostic entry after it is recorded in memory.
// Sink failures are logged and otherwise ignored.
type LogSink interface {
	AppendLog(ctx context.Context, e model.LogEntry) error
}

// Receipt is returned for an accepted submission.
type Receipt struct {
	Message        string `json:"message"`
	RemainingQuota int    `json:"remaining_quota"`
}

// Stats holds aggregate engine counters.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Processed     int `json:"processed"`
	QueueDepth    int `json:"queue_depth"`
	Workers       int `json:"workers"`
	ActiveWorkers int `json:"active_workers"`
}

// Engine is the dispatch engine. All state lives on the instance; there are
// no package-level registries.
//
// mu is the admission lock. It guards the quota tracker, the queue with its
// key index, and the ledger, and is held for the whole of Submit, Configure
// and each dispatch cycle. The worker registry has its own lock and is always
// acquired after mu.
type Engine struct {
	mu      sync.Mutex
	config  model.Configuration
	quotas  quotaTracker
	queue   *admissionQueue
	ledger  *ledger
	workers *backend.Registry

	trail  *logTrail
	broker *LogBroker
	sink   LogSink
	logger *slog.Logger

	interval time.Duration
	backoff  time.Duration
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDispatchInterval sets the idle wait between dispatch cycles.
func WithDispatchInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithBackoffInterval sets the extra wait after a cycle found no active worker.
func WithBackoffInterval(d time.Duration) Option {
	return func(e *Engine) { e.backoff = d }
}

// WithLogRetention caps the in-memory diagnostic trail at n entries.
// Zero keeps everything.
func WithLogRetention(n int) Option {
	return func(e *Engine) { e.trail.retention = n }
}

// WithLogSink forwards every diagnostic entry to s.
func WithLogSink(s LogSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClock overrides the time source used for ledger and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over the given worker registry. The engine
// starts unconfigured: no workers, no clients.
func NewEngine(reg *backend.Registry, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		queue:    newAdmissionQueue(),
		ledger:   newLedger(),
		workers:  reg,
		trail:    &logTrail{},
		broker:   NewLogBroker(),
		logger:   logger.With("component", "engine"),
		interval: DefaultDispatchInterval,
		backoff:  DefaultBackoffInterval,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Broker returns the engine's log broker for live subscriptions.
func (e *Engine) Broker() *LogBroker {
	return e.broker
}

// Close ends all live log subscriptions.
func (e *Engine) Close() {
	e.broker.Close()
}

// Configure discards all queue, ledger, worker and quota state and applies a
// new pool shape: workers 0..numWorkers-1 active with zero load, clients
// 0..numClients-1 each with requestsPerClient allowance.
func (e *Engine) Configure(numWorkers, numClients, requestsPerClient int) (model.Configuration, error) {
	if numWorkers < 0 || numClients < 0 || requestsPerClient < 0 ||
		numWorkers > MaxWorkers || numClients > MaxClients {
		return model.Configuration{}, fmt.Errorf("%w: workers=%d (max %d) clients=%d (max %d) requests_per_client=%d",
			ErrInvalidConfiguration, numWorkers, MaxWorkers, numClients, MaxClients, requestsPerClient)
	}
	cfg := model.Configuration{
		NumWorkers:        numWorkers,
		NumClients:        numClients,
		RequestsPerClient: requestsPerClient,
	}

	// Allocate outside the admission lock; only the swap happens under it.
	workers := backend.NewPool(numWorkers)
	quotas := newQuotaTracker(numClients, requestsPerClient)

	entry := e.applyConfiguration(cfg, workers, quotas)

	queueDepth.Set(0)
	e.publish(entry, "workers", numWorkers, "clients", numClients, "requests_per_client", requestsPerClient)
	return cfg, nil
}

func (e *Engine) applyConfiguration(cfg model.Configuration, workers []model.Worker, quotas quotaTracker) model.LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.workers.Replace(workers)
	e.quotas = quotas
	e.queue.reset()
	e.ledger.reset()
	e.config = cfg
	return e.record(fmt.Sprintf("System configured with %d workers and %d clients.", cfg.NumWorkers, cfg.NumClients))
}

// Configuration returns the currently applied pool shape.
func (e *Engine) Configuration() model.Configuration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Submit admits a request. Checks run in order: client exists, quota left,
// priority positive, key not already pending. On success the quota
// decrement, queue push and ledger append happen under one lock hold.
func (e *Engine) Submit(clientID, requestID, priority int) (Receipt, error) {
	key := model.RequestKey{ClientID: clientID, RequestID: requestID}

	remaining, depth, entry, err := e.admit(key, priority)
	if err != nil {
		submissionsTotal.WithLabelValues(Reason(err)).Inc()
		e.logger.Debug("submission rejected", "client_id", clientID, "request_id", requestID, "error", err)
		return Receipt{}, err
	}

	submissionsTotal.WithLabelValues(resultAccepted).Inc()
	queueDepth.Set(float64(depth))
	e.publish(entry, "client_id", clientID, "request_id", requestID, "priority", priority)

	return Receipt{
		Message:        fmt.Sprintf("Request %d added successfully!", requestID),
		RemainingQuota: remaining,
	}, nil
}

func (e *Engine) admit(key model.RequestKey, priority int) (remaining, depth int, entry model.LogEntry, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.quotas.check(key.ClientID); err != nil {
		return 0, 0, model.LogEntry{}, err
	}
	if priority <= 0 {
		return 0, 0, model.LogEntry{}, fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}
	if e.queue.contains(key) {
		return 0, 0, model.LogEntry{}, fmt.Errorf("%w: %s", ErrDuplicateRequest, key)
	}

	remaining = e.quotas.take(key.ClientID)
	e.queue.push(key, priority)
	e.ledger.append(model.Request{
		ClientID:  key.ClientID,
		RequestID: key.RequestID,
		Priority:  priority,
		Status:    model.StatusPending,
		CreatedAt: e.now(),
	})
	entry = e.record(fmt.Sprintf("Request %d from client %d added to queue with priority %d", key.RequestID, key.ClientID, priority))
	return remaining, e.queue.len(), entry, nil
}

// SetWorkerActive marks a worker up or down. The change is seen by the next
// assignment decision.
func (e *Engine) SetWorkerActive(workerID int, active bool) (model.Worker, error) {
	w, err := e.workers.SetActive(workerID, active)
	if err != nil {
		return model.Worker{}, fmt.Errorf("set worker %d active=%t: %w", workerID, active, err)
	}
	if active {
		e.emit(fmt.Sprintf("Worker %d is BACK ONLINE.", workerID), "worker_id", workerID, "active", true)
	} else {
		e.emit(fmt.Sprintf("Worker %d is DOWN.", workerID), "worker_id", workerID, "active", false)
	}
	return w, nil
}

// ListWorkers returns a snapshot of every worker ordered by id.
func (e *Engine) ListWorkers() []model.Worker {
	return e.workers.List()
}

// Worker returns a snapshot of one worker.
func (e *Engine) Worker(workerID int) (model.Worker, error) {
	w, err := e.workers.Get(workerID)
	if err != nil {
		return model.Worker{}, fmt.Errorf("get worker %d: %w", workerID, err)
	}
	return w, nil
}

// ListClients returns every client with its remaining allowance.
func (e *Engine) ListClients() []model.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quotas.list()
}

// ListRequests returns the ledger in admission order.
func (e *Engine) ListRequests() []model.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.list()
}

// ListLogs returns the diagnostic messages in append order.
func (e *Engine) ListLogs() []string {
	return e.trail.messages()
}

// LogEntries returns the diagnostic trail with ids and timestamps.
func (e *Engine) LogEntries() []model.LogEntry {
	return e.trail.list()
}

// Stats returns aggregate counters for the current configuration.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	pending, processed := e.ledger.counts()
	depth := e.queue.len()
	e.mu.Unlock()

	return Stats{
		Total:         pending + processed,
		Pending:       pending,
		Processed:     processed,
		QueueDepth:    depth,
		Workers:       e.workers.Len(),
		ActiveWorkers: e.workers.ActiveCount(),
	}
}

// emit records a diagnostic line and publishes it. Never call it with e.mu
// held; operations that change queue or ledger state use record and publish
// instead.
func (e *Engine) emit(msg string, attrs ...any) {
	e.publish(e.record(msg), attrs...)
}

// record appends msg to the trail and the live broker. State-changing
// operations call it with e.mu held so the trail follows the order in which
// those changes happened. Both steps are in-memory and never block.
func (e *Engine) record(msg string) model.LogEntry {
	entry := e.trail.append(msg, e.now())
	e.broker.Publish(entry)
	return entry
}

// publish writes a recorded entry to the structured log and the sink. Never
// call it with e.mu held. Sink writes may interleave across goroutines; the
// entry's ULID and seq keep the recorded order.
func (e *Engine) publish(entry model.LogEntry, attrs ...any) {
	e.logger.Info(entry.Message, attrs...)
	if e.sink != nil {
		if err := e.sink.AppendLog(context.Background(), entry); err != nil {
			e.logger.Error("failed to persist log entry", "seq", entry.Seq, "error", err)
		}
	}
}
