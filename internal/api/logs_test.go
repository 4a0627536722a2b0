package api

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestListLogs(t *testing.T) {
	srv := newTestServer(t)
	mustConfigure(t, srv, 2, 1, 1)
	srv.engine.SetWorkerActive(0, false)
	srv.engine.SetWorkerActive(0, true)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/v1/logs", nil)
	var body logsResponse
	decodeJSON(t, resp, &body)
	want := []string{
		"System configured with 2 workers and 1 clients.",
		"Worker 0 is DOWN.",
		"Worker 0 is BACK ONLINE.",
	}
	if len(body.Logs) != len(want) {
		t.Fatalf("logs = %q, want %q", body.Logs, want)
	}
	for i := range want {
		if body.Logs[i] != want[i] {
			t.Errorf("logs[%d] = %q, want %q", i, body.Logs[i], want[i])
		}
	}

	resp = doJSON(t, ts, http.MethodGet, "/v1/logs?tail=2", nil)
	decodeJSON(t, resp, &body)
	if len(body.Logs) != 2 || body.Logs[0] != want[1] {
		t.Errorf("tail logs = %q, want last two", body.Logs)
	}
}

func TestListLogsEmpty(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/v1/logs", nil)
	var body logsResponse
	decodeJSON(t, resp, &body)
	if body.Logs == nil || len(body.Logs) != 0 {
		t.Errorf("logs = %v, want empty array", body.Logs)
	}
}

func TestLogHistory(t *testing.T) {
	srv := newTestServer(t)
	mustConfigure(t, srv, 1, 1, 1)
	for range 4 {
		srv.engine.SetWorkerActive(0, false)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/v1/logs/history?limit=2&offset=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body logHistoryResponse
	decodeJSON(t, resp, &body)
	if body.Total != 5 {
		t.Errorf("total = %d, want 5", body.Total)
	}
	if body.Limit != 2 || body.Offset != 1 {
		t.Errorf("limit/offset = %d/%d, want 2/1", body.Limit, body.Offset)
	}
	if len(body.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(body.Entries))
	}
	if body.Entries[0].Seq != 1 || body.Entries[0].Message != "Worker 0 is DOWN." {
		t.Errorf("entries[0] = %+v", body.Entries[0])
	}
}

func TestLogHistoryClampsParams(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/v1/logs/history?limit=5000&offset=-3", nil)
	var body logHistoryResponse
	decodeJSON(t, resp, &body)
	if body.Limit != maxHistoryLimit || body.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want %d/0", body.Limit, body.Offset, maxHistoryLimit)
	}
	if body.Entries == nil {
		t.Error("entries is null, want empty array")
	}
}

func TestStreamLogs(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/logs/stream")
	if err != nil {
		t.Fatalf("GET /v1/logs/stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	// Headers arrive after the handler subscribed, so this entry is delivered.
	mustConfigure(t, srv, 2, 1, 1)

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case l, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed early, got %q", got)
			}
			if l != "" {
				got = append(got, l)
			}
		case <-timeout:
			t.Fatalf("timed out, got %q", got)
		}
	}
	if got[0] != "id: 0" {
		t.Errorf("first line = %q, want %q", got[0], "id: 0")
	}
	if got[1] != "data: System configured with 2 workers and 1 clients." {
		t.Errorf("second line = %q", got[1])
	}

	// Closing the engine ends the stream with a done event.
	srv.engine.Close()
	var rest []string
	for l := range lines {
		rest = append(rest, l)
	}
	if !strings.Contains(strings.Join(rest, "\n"), "event: done") {
		t.Errorf("missing done event, got %q", rest)
	}
}
