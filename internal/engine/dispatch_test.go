package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seantiz/switchyard/internal/engine"
	"github.com/seantiz/switchyard/internal/model"
)

func TestDispatchOnceIdle(t *testing.T) {
	eng := newTestEngine(t)
	configure(t, eng, 1, 1, 1)

	d, outcome := eng.DispatchOnce()
	assert.Equal(t, engine.OutcomeIdle, outcome)
	assert.Equal(t, -1, d.WorkerID)
	assert.Equal(t, "idle", outcome.String())
}

func TestDispatchPriorityOrdering(t *testing.T) {
	eng := newTestEngine(t)
	configure(t, eng, 1, 1, 5)

	_, err := eng.Submit(0, 1, 5)
	require.NoError(t, err)
	_, err = eng.Submit(0, 2, 1)
	require.NoError(t, err)

	d, outcome := eng.DispatchOnce()
	require.Equal(t, engine.OutcomeAssigned, outcome)
	assert.Equal(t, model.RequestKey{ClientID: 0, RequestID: 2}, d.Key)
	assert.Equal(t, 1, d.Priority)

	d, _ = eng.DispatchOnce()
	assert.Equal(t, 1, d.Key.RequestID)
}

func TestDispatchFIFOWithinPriority(t *testing.T) {
	eng := newTestEngine(t)
	configure(t, eng, 1, 3, 5)

	order := []model.RequestKey{{ClientID: 2, RequestID: 9}, {ClientID: 0, RequestID: 4}, {ClientID: 1, RequestID: 1}}
	for _, k := range order {
		_, err := eng.Submit(k.ClientID, k.RequestID, 3)
		require.NoError(t, err)
	}
	for _, want := range order {
		d, outcome := eng.DispatchOnce()
		require.Equal(t, engine.OutcomeAssigned, outcome)
		assert.Equal(t, want, d.Key)
	}
}

func TestDispatchAssignmentFairness(t *testing.T) {
	eng := newTestEngine(t)
	configure(t, eng, 3, 1, 10)
	for i := range 6 {
		_, err := eng.Submit(0, i, 1)
		require.NoError(t, err)
	}

	// Round one spreads across 0,1,2 by id.
	for _, want := range []int{0, 1, 2} {
		d, _ := eng.DispatchOnce()
		assert.Equal(t, want, d.WorkerID)
	}
	// Load worker 0 up to 3 while the others are down.
	_, err := eng.SetWorkerActive(1, false)
	require.NoError(t, err)
	_, err = eng.SetWorkerActive(2, false)
	require.NoError(t, err)
	for range 2 {
		d, _ := eng.DispatchOnce()
		assert.Equal(t, 0, d.WorkerID)
	}
	_, err = eng.SetWorkerActive(1, true)
	require.NoError(t, err)
	_, err = eng.SetWorkerActive(2, true)
	require.NoError(t, err)

	// Counts are {3,1,1}: the minimum tie goes to worker 1.
	d, _ := eng.DispatchOnce()
	assert.Equal(t, 1, d.WorkerID)

	counts := []int{}
	for _, w := range eng.ListWorkers() {
		counts = append(counts, w.HandledCount)
	}
	assert.Equal(t, []int{3, 2, 1}, counts)
}

func TestDispatchNoLossWithoutCapacity(t *testing.T) {
	eng := newTestEngine(t)
	configure(t, eng, 2, 1, 5)

	_, err := eng.Submit(0, 1, 3)
	require.NoError(t, err)
	_, err = eng.SetWorkerActive(0, false)
	require.NoError(t, err)
	_, err = eng.SetWorkerActive(1, false)
	require.NoError(t, err)

	for range 3 {
		d, outcome := eng.DispatchOnce()
		require.Equal(t, engine.OutcomeRequeued, outcome)
		assert.Equal(t, 3, d.Priority)
		assert.Equal(t, -1, d.WorkerID)
	}
	r := findRequest(t, eng, 0, 1)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Nil(t, r.WorkerID)
	assert.Equal(t, 1, eng.Stats().QueueDepth)

	// The requeued key still blocks duplicates.
	_, err = eng.Submit(0, 1, 3)
	assert.ErrorIs(t, err, engine.ErrDuplicateRequest)

	// A later, lower-urgency request must not overtake it: priority survives requeue.
	_, err = eng.Submit(0, 2, 4)
	require.NoError(t, err)

	_, err = eng.SetWorkerActive(1, true)
	require.NoError(t, err)
	d, outcome := eng.DispatchOnce()
	require.Equal(t, engine.OutcomeAssigned, outcome)
	assert.Equal(t, model.RequestKey{ClientID: 0, RequestID: 1}, d.Key)
	assert.Equal(t, 1, d.WorkerID)

	reqs := eng.ListRequests()
	require.Len(t, reqs, 2, "requeue must never duplicate ledger entries")
	assert.Equal(t, model.StatusProcessed, reqs[0].Status)
	assert.Equal(t, 3, reqs[0].Priority)
}

func TestEndToEndScenario(t *testing.T) {
	eng := newTestEngine(t)
	cfg, err := eng.Configure(2, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, model.Configuration{NumWorkers: 2, NumClients: 1, RequestsPerClient: 3}, cfg)

	_, err = eng.Submit(0, 1, 5)
	require.NoError(t, err)
	_, err = eng.Submit(0, 1, 5)
	require.ErrorIs(t, err, engine.ErrDuplicateRequest)
	_, err = eng.Submit(0, 2, 1)
	require.NoError(t, err)

	eng.DispatchOnce()
	r2 := findRequest(t, eng, 0, 2)
	assert.Equal(t, model.StatusProcessed, r2.Status)
	require.NotNil(t, r2.WorkerID)
	assert.Equal(t, 0, *r2.WorkerID)
	assert.Equal(t, model.StatusPending, findRequest(t, eng, 0, 1).Status)

	_, err = eng.SetWorkerActive(0, false)
	require.NoError(t, err)
	_, err = eng.SetWorkerActive(1, false)
	require.NoError(t, err)
	_, outcome := eng.DispatchOnce()
	assert.Equal(t, engine.OutcomeRequeued, outcome)
	r1 := findRequest(t, eng, 0, 1)
	assert.Equal(t, model.StatusPending, r1.Status)
	assert.Nil(t, r1.WorkerID)

	_, err = eng.SetWorkerActive(0, true)
	require.NoError(t, err)
	d, outcome := eng.DispatchOnce()
	require.Equal(t, engine.OutcomeAssigned, outcome)
	assert.Equal(t, 0, d.WorkerID)
	assert.Equal(t, model.StatusProcessed, findRequest(t, eng, 0, 1).Status)
	assert.Equal(t, 2, eng.ListWorkers()[0].HandledCount)

	assert.Contains(t, eng.ListLogs(), "No active workers available. Request 1 from client 0 delayed.")
}

func TestLedgerMonotonicUnderLoad(t *testing.T) {
	eng := newTestEngine(t, engine.WithDispatchInterval(time.Millisecond), engine.WithBackoffInterval(time.Millisecond))
	configure(t, eng, 3, 4, 25)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	var wg sync.WaitGroup
	for c := range 4 {
		wg.Go(func() {
			for r := range 25 {
				_, err := eng.Submit(c, r, 1+(r%5))
				assert.NoError(t, err)
			}
		})
	}
	// Flap workers while the loop runs.
	wg.Go(func() {
		for i := range 50 {
			_, _ = eng.SetWorkerActive(i%3, i%2 == 0)
			time.Sleep(time.Millisecond)
		}
		for id := range 3 {
			_, _ = eng.SetWorkerActive(id, true)
		}
	})

	seen := map[model.RequestKey]string{}
	var seenMu sync.Mutex
	wg.Go(func() {
		for range 100 {
			for _, r := range eng.ListRequests() {
				seenMu.Lock()
				prev, ok := seen[r.Key()]
				if ok && prev == model.StatusProcessed {
					assert.Equal(t, model.StatusProcessed, r.Status, "status went backwards for %s", r.Key())
				}
				seen[r.Key()] = r.Status
				seenMu.Unlock()
			}
			time.Sleep(time.Millisecond)
		}
	})
	wg.Wait()

	require.Eventually(t, func() bool {
		return eng.Stats().Processed == 100
	}, 10*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-runErr:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	reqs := eng.ListRequests()
	assert.Len(t, reqs, 100)
	total := 0
	for _, w := range eng.ListWorkers() {
		total += w.HandledCount
	}
	assert.Equal(t, 100, total, "each request is assigned exactly once")
	assert.Equal(t, 0, eng.Stats().QueueDepth)
}

func TestRunStopsDuringBackoff(t *testing.T) {
	eng := newTestEngine(t, engine.WithDispatchInterval(time.Millisecond), engine.WithBackoffInterval(time.Hour))
	configure(t, eng, 1, 1, 1)
	_, err := eng.SetWorkerActive(0, false)
	require.NoError(t, err)
	_, err = eng.Submit(0, 1, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, l := range eng.ListLogs() {
			if l == "No active workers available. Request 1 from client 0 delayed." {
				return true
			}
		}
		return false
	}, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop while backing off")
	}
	assert.Equal(t, model.StatusPending, findRequest(t, eng, 0, 1).Status)
}
