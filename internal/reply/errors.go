package reply

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHistory is returned when a collaborator hands the engine a
// history that violates its contract.
var ErrMalformedHistory = errors.New("malformed conversation history")

// ErrorKind classifies provider failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// ProviderError is the only error type adapters should return.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies err from its HTTP status code. A zero status
// falls back to sniffing the message, matching how providers phrase throttling.
func NewProviderError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindFromStatus(status, err), Err: err}
}

// KindFromStatus maps an HTTP status (or, when unknown, the error text) to an ErrorKind.
func KindFromStatus(status int, err error) ErrorKind {
	switch status {
	case 429:
		return KindRateLimited
	case 401, 403:
		return KindUnauthorized
	}
	if status == 0 && err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "429") || strings.Contains(msg, "rate") {
			return KindRateLimited
		}
	}
	return KindUnknown
}

// Classify resolves any error returned by a Client into an ErrorKind.
func Classify(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindFromStatus(0, err)
}
