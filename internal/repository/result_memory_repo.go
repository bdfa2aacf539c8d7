package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"number_rush/internal/domain"
)

const backendMemory = "memory"

// MemoryResultRepository keeps results in process memory. Used for local
// runs without a database and in tests.
type MemoryResultRepository struct {
	mu      sync.RWMutex
	results []domain.GameResult
	seq     int64
	now     func() time.Time
}

func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{now: time.Now}
}

func (m *MemoryResultRepository) Create(_ context.Context, g *domain.GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	g.ID = strconv.FormatInt(m.seq, 10)
	g.CreatedAt = m.now().UTC()
	m.results = append(m.results, *g)
	return nil
}

func (m *MemoryResultRepository) ListTop(_ context.Context, d domain.Difficulty, r domain.Rule, limit int) ([]*domain.GameResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]*domain.GameResult, 0)
	for i := range m.results {
		if m.results[i].Difficulty == d && m.results[i].Rule == r {
			g := m.results[i]
			res = append(res, &g)
		}
	}
	// stable keeps insertion order between equal times
	sort.SliceStable(res, func(i, j int) bool { return res[i].CompletionTime < res[j].CompletionTime })

	if limit = ClampLimit(limit); len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryResultRepository) Count(_ context.Context, d domain.Difficulty, r domain.Rule, lte *float64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, g := range m.results {
		if g.Difficulty != d || g.Rule != r {
			continue
		}
		if lte != nil && g.CompletionTime > *lte {
			continue
		}
		n++
	}
	return n, nil
}

func (m *MemoryResultRepository) ListRecent(_ context.Context, limit int) ([]*domain.GameResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = ClampLimit(limit)
	res := make([]*domain.GameResult, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(res) < limit; i-- {
		g := m.results[i]
		res = append(res, &g)
	}
	return res, nil
}

func (m *MemoryResultRepository) Ping(context.Context) error { return nil }

func (m *MemoryResultRepository) Close() {}
