package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the provider produced no text payload.
var ErrEmptyResponse = errors.New("empty response from model")

// MalformedResponseError reports a payload that is not a JSON object of the
// expected shape.
type MalformedResponseError struct {
	Payload string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response (len=%d): %v", len(e.Payload), e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Decode parses the model output. Only the top-level shape is checked;
// field presence is left to the provider's schema enforcement and numeric
// values are returned as sent.
func Decode(outputText string) (Payload, error) {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return Payload{}, ErrEmptyResponse
	}
	if !strings.HasPrefix(s, "{") {
		return Payload{}, &MalformedResponseError{Payload: s, Err: errors.New("top-level value is not a JSON object")}
	}

	var p Payload
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&p); err != nil {
		return Payload{}, &MalformedResponseError{Payload: s, Err: err}
	}
	if dec.More() {
		return Payload{}, &MalformedResponseError{Payload: s, Err: errors.New("trailing data after JSON object")}
	}
	return p, nil
}

// RangeViolations lists numeric fields outside their documented bounds.
// Values are never clamped; callers only report them.
func RangeViolations(p Payload) []string {
	var out []string
	check := func(field string, v, lo, hi float64) {
		if v < lo || v > hi {
			out = append(out, fmt.Sprintf("%s=%g outside [%g,%g]", field, v, lo, hi))
		}
	}
	check("sentiment.score", p.Sentiment.Score, -1, 1)
	check("sentiment.confidence", p.Sentiment.Confidence, 0, 1)
	for i, e := range p.Emotions {
		check(fmt.Sprintf("emotions[%d].score", i), e.Score, 0, 1)
	}
	check("intensityScore", p.IntensityScore, 0, 100)
	return out
}
