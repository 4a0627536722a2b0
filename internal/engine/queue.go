package engine

import (
	"container/heap"

	"github.com/seantiz/switchyard/internal/model"
)

// queueItem is one pending request waiting for a worker. seq records
// admission order and breaks priority ties.
type queueItem struct {
	key      model.RequestKey
	priority int
	seq      uint64
}

type itemHeap []queueItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(queueItem)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// admissionQueue orders pending requests by ascending priority and keeps an
// index of queued keys for duplicate detection. It is not safe for
// concurrent use; the engine guards it with its admission lock.
type admissionQueue struct {
	items   itemHeap
	index   map[model.RequestKey]struct{}
	nextSeq uint64
}

func newAdmissionQueue() *admissionQueue {
	return &admissionQueue{index: make(map[model.RequestKey]struct{})}
}

func (q *admissionQueue) push(key model.RequestKey, priority int) queueItem {
	it := queueItem{key: key, priority: priority, seq: q.nextSeq}
	q.nextSeq++
	q.requeue(it)
	return it
}

// requeue puts a previously popped item back unchanged, keeping both its
// priority and its place among equal priorities.
func (q *admissionQueue) requeue(it queueItem) {
	heap.Push(&q.items, it)
	q.index[it.key] = struct{}{}
}

func (q *admissionQueue) pop() (queueItem, bool) {
	if len(q.items) == 0 {
		return queueItem{}, false
	}
	it := heap.Pop(&q.items).(queueItem)
	delete(q.index, it.key)
	return it, true
}

func (q *admissionQueue) contains(key model.RequestKey) bool {
	_, ok := q.index[key]
	return ok
}

func (q *admissionQueue) len() int { return len(q.items) }

func (q *admissionQueue) reset() {
	q.items = nil
	q.index = make(map[model.RequestKey]struct{})
	q.nextSeq = 0
}
