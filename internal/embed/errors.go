package embed

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch signals cosine similarity over vectors of
// different lengths. This is the one embedding fault that fails loudly:
// it means two different embedding models were mixed, an integration
// bug rather than a data condition.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrorKind classifies an embedding API failure at the transport
// boundary, so retry logic dispatches on a closed taxonomy instead of
// inspecting opaque errors.
type ErrorKind int

// Error kinds.
const (
	// KindInvalid covers malformed requests, auth failures, and any
	// other non-retryable API rejection.
	KindInvalid ErrorKind = iota
	// KindRateLimited is an HTTP 429 from the service.
	KindRateLimited
	// KindServer is a 5xx-class response.
	KindServer
	// KindNetwork is a transport-level failure (connection reset,
	// unknown host, timeout).
	KindNetwork
)

// String returns the kind name for logs.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "invalid"
	}
}

// APIError is a classified embedding service failure.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("embedding API %s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("embedding API %s error: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is worth retrying with backoff.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServer, KindNetwork:
		return true
	default:
		return false
	}
}

// classifyStatus maps an HTTP status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindInvalid
	}
}
