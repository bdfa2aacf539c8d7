package game

import "number_rush/internal/domain"

// Factory builds sessions sharing one board mode.
type Factory struct {
	Mode BoardMode
}

func NewFactory(mode BoardMode) *Factory {
	return &Factory{Mode: mode}
}

// NewSession creates an idle session backed by best for personal records.
func (f *Factory) NewSession(d domain.Difficulty, r domain.Rule, best BestTimes) (*Session, error) {
	return NewSession(d, r, SessionConfig{Mode: f.Mode, Best: best})
}
