package backend

import (
	"errors"
	"sync"

	"github.com/seantiz/switchyard/internal/model"
)

// ErrWorkerNotFound is returned for a worker id outside the configured pool.
var ErrWorkerNotFound = errors.New("worker not found")

// Registry holds the configured workers. Worker ids are dense, 0..n-1, and
// stay stable until the next Reset. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	workers []model.Worker
}

// NewRegistry creates an empty worker registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewPool builds n active workers with ids 0..n-1 and zero load.
func NewPool(n int) []model.Worker {
	workers := make([]model.Worker, n)
	for i := range workers {
		workers[i] = model.Worker{ID: i, Active: true}
	}
	return workers
}

// Reset replaces the pool with n active workers, each with zero load.
func (r *Registry) Reset(n int) {
	r.Replace(NewPool(n))
}

// Replace swaps in a prebuilt pool. The registry takes ownership of workers.
func (r *Registry) Replace(workers []model.Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers = workers
}

// SetActive flips the active flag of the given worker and returns its
// updated snapshot.
func (r *Registry) SetActive(id int, active bool) (model.Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 0 || id >= len(r.workers) {
		return model.Worker{}, ErrWorkerNotFound
	}
	r.workers[id].Active = active
	return r.workers[id], nil
}

// Assign picks the least-loaded active worker, increments its handled count
// and returns the updated snapshot. Selection and increment happen under one
// lock, so a worker deactivated concurrently is never picked afterwards.
// ok is false when no worker is active.
func (r *Registry) Assign() (w model.Worker, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := LeastHandled(r.workers)
	if !ok {
		return model.Worker{}, false
	}
	r.workers[idx].HandledCount++
	return r.workers[idx], true
}

// Get returns a snapshot of a single worker.
func (r *Registry) Get(id int) (model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= len(r.workers) {
		return model.Worker{}, ErrWorkerNotFound
	}
	return r.workers[id], nil
}

// List returns a snapshot of all workers ordered by id.
func (r *Registry) List() []model.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Worker, len(r.workers))
	copy(out, r.workers)
	return out
}

// Len reports the pool size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// ActiveCount reports how many workers are currently active.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, w := range r.workers {
		if w.Active {
			n++
		}
	}
	return n
}
