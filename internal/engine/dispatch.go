package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/seantiz/switchyard/internal/model"
)

// Outcome describes what a single dispatch cycle did.
type Outcome int

const (
	// OutcomeIdle means the queue was empty.
	OutcomeIdle Outcome = iota
	// OutcomeAssigned means a request was assigned to a worker.
	OutcomeAssigned
	// OutcomeRequeued means no worker was active and the request went back
	// into the queue unchanged.
	OutcomeRequeued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeAssigned:
		return outcomeAssigned
	case OutcomeRequeued:
		return outcomeRequeued
	default:
		return "unknown"
	}
}

// Dispatch reports the request handled by a cycle. WorkerID is -1 unless
// the outcome is OutcomeAssigned.
type Dispatch struct {
	Key      model.RequestKey
	Priority int
	WorkerID int
}

// Run drives the dispatch loop until ctx is cancelled: wait the dispatch
// interval, run one cycle, and wait the backoff interval as well when the
// cycle found no active worker.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("dispatch loop started", "interval", e.interval, "backoff", e.backoff)
	for {
		if err := sleep(ctx, e.interval); err != nil {
			e.logger.Info("dispatch loop stopping", "reason", err)
			return err
		}
		if _, outcome := e.DispatchOnce(); outcome == OutcomeRequeued {
			if err := sleep(ctx, e.backoff); err != nil {
				e.logger.Info("dispatch loop stopping", "reason", err)
				return err
			}
		}
	}
}

// DispatchOnce runs one assigning step without waiting. It pops the
// lowest-priority-value request and hands it to the least-loaded active
// worker, or puts it back when no worker is active.
func (e *Engine) DispatchOnce() (Dispatch, Outcome) {
	c := e.dispatchCycle()
	k := c.dispatch.Key

	switch c.outcome {
	case OutcomeIdle:
		return c.dispatch, c.outcome
	case OutcomeRequeued:
		dispatchesTotal.WithLabelValues(outcomeRequeued).Inc()
		e.publish(c.entry, "client_id", k.ClientID, "request_id", k.RequestID, "priority", c.dispatch.Priority)
		return c.dispatch, c.outcome
	}

	dispatchesTotal.WithLabelValues(outcomeAssigned).Inc()
	workerAssignmentsTotal.WithLabelValues(strconv.Itoa(c.worker.ID)).Inc()
	queueDepth.Set(float64(c.depth))
	if c.err != nil {
		e.logger.Error("ledger update failed", "client_id", k.ClientID, "request_id", k.RequestID, "error", c.err)
	} else {
		queueWait.Observe(c.wait.Seconds())
	}
	e.publish(c.entry, "client_id", k.ClientID, "request_id", k.RequestID, "worker_id", c.worker.ID, "handled_count", c.worker.HandledCount)
	return c.dispatch, c.outcome
}

// cycleResult carries what one locked dispatch step decided.
type cycleResult struct {
	dispatch Dispatch
	outcome  Outcome
	worker   model.Worker
	depth    int
	wait     time.Duration
	entry    model.LogEntry
	err      error
}

func (e *Engine) dispatchCycle() cycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	it, ok := e.queue.pop()
	if !ok {
		return cycleResult{dispatch: Dispatch{WorkerID: -1}, outcome: OutcomeIdle}
	}
	c := cycleResult{dispatch: Dispatch{Key: it.key, Priority: it.priority, WorkerID: -1}}

	w, ok := e.workers.Assign()
	if !ok {
		e.queue.requeue(it)
		c.outcome = OutcomeRequeued
		c.entry = e.record(fmt.Sprintf("No active workers available. Request %d from client %d delayed.", it.key.RequestID, it.key.ClientID))
		return c
	}

	now := e.now()
	r, err := e.ledger.markProcessed(it.key, w.ID, now)
	if err == nil {
		c.wait = now.Sub(r.CreatedAt)
	}
	c.err = err
	c.outcome = OutcomeAssigned
	c.worker = w
	c.dispatch.WorkerID = w.ID
	c.depth = e.queue.len()
	c.entry = e.record(fmt.Sprintf("Request %d from client %d assigned to worker %d", it.key.RequestID, it.key.ClientID, w.ID))
	return c
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
