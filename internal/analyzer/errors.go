package analyzer

import (
	"errors"
	"fmt"

	"github.com/xaenox/sentimentlens/internal/analysis"
)

// ErrEmptyText is returned for blank submissions; no provider call is made.
var ErrEmptyText = errors.New("text is empty")

// ErrEmptyResponse is returned when the provider answered without text.
var ErrEmptyResponse = analysis.ErrEmptyResponse

// MalformedResponseError is returned when the payload cannot be parsed.
type MalformedResponseError = analysis.MalformedResponseError

// TransportError wraps any network or provider-side failure: bad
// credentials, rate limits, connectivity.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
