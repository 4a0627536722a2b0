// Package engine provides the request-dispatch engine. It admits client
// requests into a priority queue under per-client quotas, records every
// admitted request in an append-only ledger, and runs a dispatch loop that
// assigns queued requests to the least-loaded active worker.
package engine
