// Package session tracks the lifecycle of the current submission and the
// result selected for display.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/xaenox/sentimentlens/internal/analyzer"
	"github.com/xaenox/sentimentlens/internal/history"
	"github.com/xaenox/sentimentlens/internal/models"
	"go.uber.org/zap"
)

type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

var (
	ErrNotInHistory = errors.New("result is not in history")
	ErrBusy         = errors.New("an analysis is already in progress")
)

// State is a read-only view of the session. CurrentResult may stay set in
// the Error state: a failure does not clear the last shown result.
type State struct {
	Status        Status
	CurrentResult *models.AnalysisResult
	ErrorMessage  string
	DraftText     string
}

type Option func(*Machine)

// WithObserver registers fn to receive a snapshot after every transition.
// Calls are serialized and never go backwards: a snapshot older than one
// already delivered is dropped. fn runs without the state lock held and may
// read the session, but must not call its mutating methods.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) { m.observer = fn }
}

type Machine struct {
	analyzer analyzer.Analyzer
	history  history.Store
	logger   *zap.Logger
	observer func(State)

	mu      sync.RWMutex
	state   State
	version uint64

	notifyMu sync.Mutex
	notified uint64
}

func New(a analyzer.Analyzer, h history.Store, logger *zap.Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{
		analyzer: a,
		history:  h,
		logger:   logger,
		state:    State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() State {
	s := m.state
	if s.CurrentResult != nil {
		r := s.CurrentResult.Clone()
		s.CurrentResult = &r
	}
	return s
}

// commitLocked marks a transition and returns the snapshot observers get.
func (m *Machine) commitLocked() (State, uint64) {
	m.version++
	return m.snapshotLocked(), m.version
}

// History returns the stored results, newest first.
func (m *Machine) History() []models.AnalysisResult {
	return m.history.Items()
}

func (m *Machine) UpdateDraft(text string) {
	m.mu.Lock()
	m.state.DraftText = text
	s, v := m.commitLocked()
	m.mu.Unlock()
	m.notify(s, v)
}

// SubmitDraft submits the current draft text.
func (m *Machine) SubmitDraft(ctx context.Context) bool {
	return m.Submit(ctx, m.Snapshot().DraftText)
}

// Submit analyzes text and reports whether the submission was accepted.
// Blank text and submissions made while another one is loading are
// ignored. The call blocks until the analysis resolves or fails.
func (m *Machine) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	m.mu.Lock()
	if m.state.Status == StatusLoading {
		m.mu.Unlock()
		m.logger.Debug("Ignoring submit while loading")
		return false
	}
	m.state.Status = StatusLoading
	m.state.ErrorMessage = ""
	s, v := m.commitLocked()
	m.mu.Unlock()
	m.notify(s, v)

	result, err := m.analyzer.Analyze(ctx, text)
	if err == nil {
		if rerr := m.history.Record(ctx, result.Clone()); rerr != nil {
			err = &recordError{err: rerr}
		}
	}

	m.mu.Lock()
	if err != nil {
		m.logger.Error("Analysis failed", zap.Error(err))
		m.state.Status = StatusError
		m.state.ErrorMessage = errorMessage(err)
	} else {
		m.state.Status = StatusSuccess
		m.state.CurrentResult = result
		m.state.DraftText = ""
	}
	s, v = m.commitLocked()
	m.mu.Unlock()
	m.notify(s, v)

	return true
}

// SelectFromHistory shows a stored result without calling the analyzer or
// changing the history.
func (m *Machine) SelectFromHistory(id string) error {
	item, ok := m.history.Find(id)
	if !ok {
		return ErrNotInHistory
	}

	m.mu.Lock()
	if m.state.Status == StatusLoading {
		m.mu.Unlock()
		return ErrBusy
	}
	m.state.Status = StatusSuccess
	m.state.CurrentResult = &item
	s, v := m.commitLocked()
	m.mu.Unlock()
	m.notify(s, v)
	return nil
}

// ClearHistory empties the history. Status and the current result are left
// untouched.
func (m *Machine) ClearHistory(ctx context.Context) error {
	if err := m.history.Clear(ctx); err != nil {
		m.logger.Error("Failed to clear history", zap.Error(err))
		return err
	}
	m.mu.Lock()
	s, v := m.commitLocked()
	m.mu.Unlock()
	m.notify(s, v)
	return nil
}

func (m *Machine) notify(s State, version uint64) {
	if m.observer == nil {
		return
	}
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if version <= m.notified {
		return
	}
	m.notified = version
	m.observer(s)
}

type recordError struct {
	err error
}

func (e *recordError) Error() string { return "saving analysis to history: " + e.err.Error() }

func (e *recordError) Unwrap() error { return e.err }

func errorMessage(err error) string {
	var (
		malformed *analyzer.MalformedResponseError
		transport *analyzer.TransportError
	)
	switch {
	case errors.Is(err, analyzer.ErrEmptyResponse):
		return "The model returned an empty response. Please try again."
	case errors.As(err, &malformed):
		return "The model returned a response that could not be understood."
	case errors.As(err, &transport):
		return "Analysis failed: " + transport.Err.Error()
	default:
		return "Analysis failed: " + err.Error()
	}
}
