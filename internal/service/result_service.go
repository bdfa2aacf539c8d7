package service

import (
	"context"
	"time"

	"number_rush/internal/domain"
	"number_rush/internal/logger"
	"number_rush/internal/repository"
)

// ResultService validates submissions and answers leaderboard queries on top
// of whichever ResultStore is configured.
type ResultService struct {
	store repository.ResultStore
	now   func() time.Time
}

func NewResultService(store repository.ResultStore) *ResultService {
	return &ResultService{store: store, now: time.Now}
}

// Ranked is a stored result with its percentile in its class.
type Ranked struct {
	Result     *domain.GameResult `json:"result"`
	Percentage float64            `json:"percentage"`
}

func observe(op string, start time.Time) {
	StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Submit validates and appends a result. Repeated submissions of the same
// result are stored as separate entries.
func (s *ResultService) Submit(ctx context.Context, sub *domain.ResultSubmission) (*domain.GameResult, error) {
	g, err := sub.ToResult(s.now())
	if err != nil {
		ResultsSubmitted.WithLabelValues(sub.Difficulty, sub.Rule, "invalid").Inc()
		return nil, err
	}
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// SubmitResult stores a result produced by a server-side session.
func (s *ResultService) SubmitResult(ctx context.Context, g domain.GameResult) (*domain.GameResult, error) {
	sub := domain.SubmissionFromResult(g)
	return s.Submit(ctx, &sub)
}

func (s *ResultService) save(ctx context.Context, g *domain.GameResult) error {
	defer observe("create", time.Now())
	if err := s.store.Create(ctx, g); err != nil {
		ResultsSubmitted.WithLabelValues(string(g.Difficulty), string(g.Rule), "error").Inc()
		logger.WithContext(ctx).Error("failed to save game result", "difficulty", g.Difficulty, "rule", g.Rule, "error", err)
		return err
	}
	ResultsSubmitted.WithLabelValues(string(g.Difficulty), string(g.Rule), "ok").Inc()
	logger.WithContext(ctx).Info("game result saved", "id", g.ID, "difficulty", g.Difficulty, "rule", g.Rule, "time", g.CompletionTime)
	return nil
}

// SubmitAndRank stores the result and returns its inclusive percentile
// among all results of the same class, itself included.
func (s *ResultService) SubmitAndRank(ctx context.Context, sub *domain.ResultSubmission) (*Ranked, error) {
	g, err := s.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}
	pct, err := s.Percentile(ctx, g.Difficulty, g.Rule, g.CompletionTime)
	if err != nil {
		return nil, err
	}
	return &Ranked{Result: g, Percentage: pct}, nil
}

// Percentile computes the share of results in a class with a time <= seconds.
func (s *ResultService) Percentile(ctx context.Context, d domain.Difficulty, r domain.Rule, seconds float64) (float64, error) {
	defer observe("count", time.Now())
	betterOrEqual, err := s.store.Count(ctx, d, r, &seconds)
	if err != nil {
		return 0, err
	}
	total, err := s.store.Count(ctx, d, r, nil)
	if err != nil {
		return 0, err
	}
	return Percentile(betterOrEqual, total), nil
}

// Top returns the fastest results of a class.
func (s *ResultService) Top(ctx context.Context, d domain.Difficulty, r domain.Rule, limit int) ([]*domain.GameResult, error) {
	defer observe("list_top", time.Now())
	return s.store.ListTop(ctx, d, r, repository.ClampLimit(limit))
}

// Recent returns the newest results across all classes.
func (s *ResultService) Recent(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	defer observe("list_recent", time.Now())
	return s.store.ListRecent(ctx, repository.ClampLimit(limit))
}

func (s *ResultService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
