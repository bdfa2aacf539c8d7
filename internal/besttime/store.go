// Package besttime keeps the device-local personal best per difficulty and
// rule on top of a plain string key-value store.
package besttime

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"

	"number_rush/internal/domain"
	"number_rush/internal/logger"
)

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is a durable string store scoped to one device.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Key is the storage key of a best time.
func Key(d domain.Difficulty, r domain.Rule) string {
	return "bestTime_" + string(d) + "_" + string(r)
}

// Store reads and writes best times as seconds. Missing or corrupt values
// read as "no best time".
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Load(ctx context.Context, d domain.Difficulty, r domain.Rule) (float64, bool) {
	raw, err := s.kv.Get(ctx, Key(d, r))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("best time read failed", "key", Key(d, r), "error", err)
		}
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		logger.Warn("ignoring corrupt best time", "key", Key(d, r), "value", raw)
		return 0, false
	}
	return v, true
}

func (s *Store) Save(ctx context.Context, d domain.Difficulty, r domain.Rule, seconds float64) error {
	return s.kv.Set(ctx, Key(d, r), strconv.FormatFloat(seconds, 'f', -1, 64))
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{vals: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}
