package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seantiz/switchyard/internal/model"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// logsResponse is the JSON response for GET /v1/logs.
type logsResponse struct {
	Logs []string `json:"logs"`
}

// logHistoryResponse is the JSON response for GET /v1/logs/history.
type logHistoryResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// handleListLogs returns the in-memory trail. ?tail=N keeps only the last N.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs := s.engine.ListLogs()
	if tail := parseIntQuery(r, "tail", 0); tail > 0 && tail < len(logs) {
		logs = logs[len(logs)-tail:]
	}
	s.writeJSON(w, http.StatusOK, logsResponse{Logs: logs})
}

func (s *Server) handleGetLogHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultHistoryLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.store.ListLogEntries(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list log entries", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list log history")
		return
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}

	s.writeJSON(w, http.StatusOK, logHistoryResponse{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// handleStreamLogs streams new diagnostic entries as server-sent events until
// the client disconnects or the engine shuts down.
func (s *Server) handleStreamLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("set write deadline for SSE", "error", err)
	}

	ch, unsub := s.engine.Broker().Subscribe()
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case entry, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			if err := writeSSEEntry(w, entry); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// writeSSEEntry writes a log entry as an SSE event with its sequence number
// as the event id. Multi-line messages are split so that each segment gets
// its own "data:" prefix.
func writeSSEEntry(w http.ResponseWriter, e model.LogEntry) error {
	if _, err := fmt.Fprintf(w, "id: %d\n", e.Seq); err != nil {
		return err
	}
	for seg := range strings.SplitSeq(e.Message, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", seg); err != nil {
			return err
		}
	}
	// Blank line terminates the event.
	_, err := fmt.Fprint(w, "\n")
	return err
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
