package domain

import (
	"math"
	"time"
)

// ResultSubmission is the request body for a new leaderboard entry.
// CompletionTime is a pointer so a 0 time is told apart from a missing one.
type ResultSubmission struct {
	Difficulty     string   `json:"difficulty"`
	Rule           string   `json:"rule"`
	CompletionTime *float64 `json:"completionTime"`
	PlayerName     string   `json:"playerName,omitempty"`
	Timestamp      int64    `json:"timestamp,omitempty"`
}

// ToResult validates the submission and builds the result to store.
// A zero timestamp is filled with now.
func (s *ResultSubmission) ToResult(now time.Time) (*GameResult, error) {
	if s.Difficulty == "" {
		return nil, missingField("difficulty")
	}
	if s.Rule == "" {
		return nil, missingField("rule")
	}
	if s.CompletionTime == nil {
		return nil, missingField("completionTime")
	}

	d, err := ParseDifficulty(s.Difficulty)
	if err != nil {
		return nil, &ValidationError{Field: "difficulty", Reason: err.Error()}
	}
	r, err := ParseRule(s.Rule)
	if err != nil {
		return nil, &ValidationError{Field: "rule", Reason: err.Error()}
	}

	t := *s.CompletionTime
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return nil, &ValidationError{Field: "completionTime", Reason: "must be a non-negative number"}
	}

	ts := s.Timestamp
	if ts == 0 {
		ts = now.UnixMilli()
	}

	return &GameResult{
		Difficulty:     d,
		Rule:           r,
		CompletionTime: t,
		PlayerName:     NormalizePlayerName(s.PlayerName),
		Timestamp:      ts,
	}, nil
}

// SubmissionFromResult builds the wire form of a finished result.
func SubmissionFromResult(g GameResult) ResultSubmission {
	t := g.CompletionTime
	return ResultSubmission{
		Difficulty:     string(g.Difficulty),
		Rule:           string(g.Rule),
		CompletionTime: &t,
		PlayerName:     g.PlayerName,
		Timestamp:      g.Timestamp,
	}
}
