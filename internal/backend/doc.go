// Package backend holds the worker pool that the dispatch engine assigns
// requests to: each worker's identity, handled-request counter and
// active flag, plus the least-loaded selection policy.
package backend
