package repository

import (
	"context"
	"fmt"

	"number_rush/internal/domain"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// ResultStore is the persistence contract for leaderboard results.
// Backends are interchangeable and safe for concurrent use.
type ResultStore interface {
	// Create appends a result and fills its ID and CreatedAt.
	Create(ctx context.Context, g *domain.GameResult) error
	// ListTop returns up to limit results of one class, fastest first.
	ListTop(ctx context.Context, d domain.Difficulty, r domain.Rule, limit int) ([]*domain.GameResult, error)
	// Count counts results of one class, only those with
	// completion_time <= *lte when lte is set.
	Count(ctx context.Context, d domain.Difficulty, r domain.Rule, lte *float64) (int64, error)
	// ListRecent returns the newest results across all classes.
	ListRecent(ctx context.Context, limit int) ([]*domain.GameResult, error)
	Ping(ctx context.Context) error
	Close()
}

// QueryError wraps a backend failure.
type QueryError struct {
	Backend string
	Op      string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ClampLimit applies the default and upper bound to a top-N limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	if limit > MaxTopLimit {
		return MaxTopLimit
	}
	return limit
}
