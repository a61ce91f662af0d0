package slack

import (
	"errors"
	"fmt"
)

// Standard errors for the slack package
var (
	// Configuration errors
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotInitialized = errors.New("service not initialized")
	ErrConfiguration  = errors.New("slack credentials not configured")

	// Invocation errors
	ErrValidation = errors.New("invalid parameters")
	ErrTransport  = errors.New("slack request failed")
	ErrProvider   = errors.New("slack API error")
)

// TransportError reports a failed HTTP exchange: the request could not be
// sent, the status was not 2xx, or the body was not an acknowledgment.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status=%d, body=%s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProviderError is returned when chat.postMessage answers with ok=false.
type ProviderError struct {
	Method string
	Code   string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("slack API error: %s: %s", e.Method, e.Code)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// ErrorKind classifies err for logs, metrics and HTTP status mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrInvalidConfig):
		return "configuration"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}
