package game

import (
	"context"
	"math"
	"time"

	"number_rush/internal/domain"
	"number_rush/internal/logger"
)

// Session owns the play state of one board: idle -> playing -> completed.
// It is not safe for concurrent use; Runner serializes access to it.
type Session struct {
	difficulty domain.Difficulty
	rule       domain.Rule
	mode       BoardMode
	intn       Intn
	best       BestTimes

	phase     Phase
	board     []int
	next      int
	startedAt time.Time
	elapsed   float64

	wrong    int
	hasWrong bool
	wrongSeq uint64

	bestTime   *float64
	completion *Completion
}

// SessionConfig carries the optional collaborators of a session.
type SessionConfig struct {
	Mode BoardMode
	Intn Intn      // nil uses crypto/rand
	Best BestTimes // nil keeps best times in memory for the session's lifetime
}

// NewSession creates an idle session with a freshly shuffled board.
func NewSession(d domain.Difficulty, r domain.Rule, cfg SessionConfig) (*Session, error) {
	if !d.Valid() {
		return nil, ErrUnknownDifficulty
	}
	if !r.Valid() {
		return nil, ErrUnknownRule
	}
	if cfg.Mode == "" {
		cfg.Mode = BoardDistractors
	}
	if cfg.Intn == nil {
		cfg.Intn = cryptoIntn
	}
	if cfg.Best == nil {
		cfg.Best = newMemoryBestTimes()
	}
	s := &Session{
		difficulty: d,
		rule:       r,
		mode:       cfg.Mode,
		intn:       cfg.Intn,
		best:       cfg.Best,
		phase:      PhaseIdle,
	}
	s.reshuffle()
	return s, nil
}

func (s *Session) max() int {
	cfg, _ := s.difficulty.Config()
	return cfg.Max
}

func (s *Session) target() []int {
	return TargetSequence(s.max(), s.rule)
}

func (s *Session) reshuffle() {
	s.board = NewBoard(s.mode, s.max(), s.rule, s.intn)
}

func (s *Session) Phase() Phase { return s.phase }

// Start begins a fresh play from any phase. Starting while playing restarts.
func (s *Session) Start(ctx context.Context, now time.Time) {
	s.reshuffle()
	s.phase = PhasePlaying
	s.next = 0
	s.elapsed = 0
	s.startedAt = now
	s.hasWrong = false
	s.completion = nil

	s.bestTime = nil
	if v, ok := s.best.Load(ctx, s.difficulty, s.rule); ok {
		s.bestTime = &v
	}
}

// StartAs switches to the given difficulty and rule and starts, from any
// phase. It is the only way to change the class of a running game.
func (s *Session) StartAs(ctx context.Context, now time.Time, d domain.Difficulty, r domain.Rule) error {
	if !d.Valid() {
		return ErrUnknownDifficulty
	}
	if !r.Valid() {
		return ErrUnknownRule
	}
	s.difficulty = d
	s.rule = r
	s.Start(ctx, now)
	return nil
}

// SetDifficulty switches the grid. Rejected while playing.
func (s *Session) SetDifficulty(d domain.Difficulty) error {
	if !d.Valid() {
		return ErrUnknownDifficulty
	}
	return s.reconfigure(d, s.rule)
}

// SetRule switches the rule. Rejected while playing.
func (s *Session) SetRule(r domain.Rule) error {
	if !r.Valid() {
		return ErrUnknownRule
	}
	return s.reconfigure(s.difficulty, r)
}

func (s *Session) reconfigure(d domain.Difficulty, r domain.Rule) error {
	if s.phase == PhasePlaying {
		return ErrSessionActive
	}
	s.difficulty = d
	s.rule = r
	s.phase = PhaseIdle
	s.next = 0
	s.elapsed = 0
	s.hasWrong = false
	s.completion = nil
	s.reshuffle()
	return nil
}

// Tick refreshes the elapsed time while playing.
func (s *Session) Tick(now time.Time) bool {
	if s.phase != PhasePlaying {
		return false
	}
	s.elapsed = elapsedSeconds(s.startedAt, now)
	return true
}

// Click validates value against the next expected target number.
func (s *Session) Click(ctx context.Context, now time.Time, value int) ClickResult {
	if s.phase != PhasePlaying {
		return ClickResult{Outcome: ClickIgnored}
	}

	target := s.target()
	if s.next < len(target) && value == target[s.next] {
		s.next++
		s.hasWrong = false
		if s.next == len(target) {
			s.complete(ctx, now)
			return ClickResult{Outcome: ClickCompleted}
		}
		return ClickResult{Outcome: ClickCorrect}
	}

	s.wrong = value
	s.hasWrong = true
	s.wrongSeq++
	return ClickResult{Outcome: ClickWrong, WrongSeq: s.wrongSeq}
}

// ClearWrongClick drops the wrong-click flag if seq is still the latest one.
func (s *Session) ClearWrongClick(seq uint64) bool {
	if !s.hasWrong || seq != s.wrongSeq {
		return false
	}
	s.hasWrong = false
	return true
}

func (s *Session) complete(ctx context.Context, now time.Time) {
	s.elapsed = elapsedSeconds(s.startedAt, now)
	s.phase = PhaseCompleted

	var current *float64
	if v, ok := s.best.Load(ctx, s.difficulty, s.rule); ok {
		current = &v
	}

	t := s.elapsed
	newBest := current == nil || t < *current
	if newBest {
		current = &t
		if err := s.best.Save(ctx, s.difficulty, s.rule, t); err != nil {
			logger.Warn("failed to save best time", "difficulty", s.difficulty, "rule", s.rule, "error", err)
		}
	}
	s.bestTime = current

	s.completion = &Completion{
		Difficulty:     s.difficulty,
		Rule:           s.rule,
		CompletionTime: t,
		BestTime:       copyFloat(current),
		NewBest:        newBest,
		FinishedAt:     now,
	}
}

// Completion returns the result of a completed session.
func (s *Session) Completion() (Completion, bool) {
	if s.completion == nil {
		return Completion{}, false
	}
	return *s.completion, true
}

func (s *Session) Snapshot() Snapshot {
	cfg, _ := s.difficulty.Config()
	snap := Snapshot{
		Difficulty:        s.difficulty,
		Rule:              s.rule,
		Size:              cfg.Size,
		Phase:             s.phase,
		Board:             append([]int(nil), s.board...),
		NextExpectedIndex: s.next,
		TargetLength:      len(s.target()),
		ElapsedSeconds:    s.elapsed,
		BestTime:          copyFloat(s.bestTime),
	}
	if s.hasWrong {
		w := s.wrong
		snap.LastWrongClick = &w
	}
	return snap
}

func elapsedSeconds(start, now time.Time) float64 {
	return math.Round(now.Sub(start).Seconds()*100) / 100
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
