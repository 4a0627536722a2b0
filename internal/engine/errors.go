package engine

import (
	"errors"

	"github.com/seantiz/switchyard/internal/backend"
)

// Admission and control errors. Submit returns exactly one of the first four
// on rejection; none of them changes engine state.
var (
	ErrInvalidClient        = errors.New("invalid client id")
	ErrQuotaExceeded        = errors.New("client has reached max requests")
	ErrInvalidPriority      = errors.New("priority must be greater than zero")
	ErrDuplicateRequest     = errors.New("request already pending")
	ErrWorkerNotFound       = backend.ErrWorkerNotFound
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Reason codes reported alongside rejections.
const (
	ReasonInvalidClient        = "invalid_client"
	ReasonQuotaExceeded        = "quota_exceeded"
	ReasonInvalidPriority      = "invalid_priority"
	ReasonDuplicateRequest     = "duplicate_request"
	ReasonWorkerNotFound       = "worker_not_found"
	ReasonInvalidConfiguration = "invalid_configuration"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidClient, ReasonInvalidClient},
	{ErrQuotaExceeded, ReasonQuotaExceeded},
	{ErrInvalidPriority, ReasonInvalidPriority},
	{ErrDuplicateRequest, ReasonDuplicateRequest},
	{ErrWorkerNotFound, ReasonWorkerNotFound},
	{ErrInvalidConfiguration, ReasonInvalidConfiguration},
}

// Reason maps an engine error to its stable reason code, or "" if err is not
// one of the engine's sentinel errors.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}
