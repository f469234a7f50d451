// Package history keeps the bounded, newest-first list of past analyses and
// mirrors it to durable storage after every change.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/xaenox/sentimentlens/internal/models"
	"github.com/xaenox/sentimentlens/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultKey      = "sentiment_history"
	DefaultCapacity = 10
)

// PersistenceCorruptionError reports a snapshot that could not be decoded.
// Load recovers from it by starting empty; it never reaches the user.
type PersistenceCorruptionError struct {
	Key string
	Err error
}

func (e *PersistenceCorruptionError) Error() string {
	return fmt.Sprintf("history snapshot %q is unreadable: %v", e.Key, e.Err)
}

func (e *PersistenceCorruptionError) Unwrap() error { return e.Err }

// Store is the interface the session depends on.
type Store interface {
	Load(ctx context.Context) []models.AnalysisResult
	Record(ctx context.Context, result models.AnalysisResult) error
	Clear(ctx context.Context) error
	Items() []models.AnalysisResult
	Find(id string) (models.AnalysisResult, bool)
}

type Options struct {
	Key      string
	Capacity int
}

// KVStore persists the full list as one JSON array under a single key.
type KVStore struct {
	kv       storage.KV
	key      string
	capacity int
	logger   *zap.Logger

	mu    sync.RWMutex
	items []models.AnalysisResult
}

func NewKVStore(kv storage.KV, opts Options, logger *zap.Logger) *KVStore {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{
		kv:       kv,
		key:      opts.Key,
		capacity: opts.Capacity,
		logger:   logger,
	}
}

// Load reads the persisted snapshot into memory and returns it. A missing
// snapshot yields an empty history; an unreadable one is logged and
// discarded.
func (s *KVStore) Load(ctx context.Context) []models.AnalysisResult {
	items, err := s.readSnapshot(ctx)
	if err != nil {
		var corrupt *PersistenceCorruptionError
		if errors.As(err, &corrupt) {
			s.logger.Warn("Discarding corrupted history snapshot",
				zap.Error(err),
				zap.String("key", s.key))
		} else {
			s.logger.Error("Failed to read history snapshot",
				zap.Error(err),
				zap.String("key", s.key))
		}
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	return s.Items()
}

func (s *KVStore) readSnapshot(ctx context.Context) ([]models.AnalysisResult, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.AnalysisResult
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &PersistenceCorruptionError{Key: s.key, Err: err}
	}
	if len(items) > s.capacity {
		items = items[:s.capacity]
	}
	return items, nil
}

// Record prepends result, evicts everything beyond capacity and writes the
// snapshot before returning. If the write fails the in-memory list is left
// as it was.
func (s *KVStore) Record(ctx context.Context, result models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.AnalysisResult, 0, min(len(s.items)+1, s.capacity))
	next = append(next, result.Clone())
	for _, item := range s.items {
		if len(next) == s.capacity {
			break
		}
		if item.ID == result.ID {
			continue
		}
		next = append(next, item)
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	if evicted := len(s.items) + 1 - len(next); evicted > 0 {
		s.logger.Debug("Evicted history entries", zap.Int("count", evicted))
	}
	s.items = next
	return nil
}

// Clear empties the history and removes the persisted snapshot.
func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.items = nil
	return nil
}

// Items returns a deep copy of the history, newest first.
func (s *KVStore) Items() []models.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AnalysisResult, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

func (s *KVStore) Find(id string) (models.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return models.AnalysisResult{}, false
}

func (s *KVStore) persist(ctx context.Context, items []models.AnalysisResult) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

var _ Store = (*KVStore)(nil)
