package backend

import "github.com/seantiz/switchyard/internal/model"

// LeastHandled returns the index of the active worker with the smallest
// handled count. Ties go to the lowest worker id. ok is false when no worker
// is active.
func LeastHandled(ws []model.Worker) (idx int, ok bool) {
	idx = -1
	for i, w := range ws {
		if !w.Active {
			continue
		}
		if idx == -1 {
			idx = i
			continue
		}
		best := ws[idx]
		if w.HandledCount < best.HandledCount || (w.HandledCount == best.HandledCount && w.ID < best.ID) {
			idx = i
		}
	}
	return idx, idx != -1
}
