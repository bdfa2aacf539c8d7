package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"number_rush/internal/domain"
)

type memBest struct {
	vals    map[string]float64
	saveErr error
	saves   int
}

func newMemBest() *memBest { return &memBest{vals: map[string]float64{}} }

func (m *memBest) key(d domain.Difficulty, r domain.Rule) string { return string(d) + "_" + string(r) }

func (m *memBest) Load(_ context.Context, d domain.Difficulty, r domain.Rule) (float64, bool) {
	v, ok := m.vals[m.key(d, r)]
	return v, ok
}

func (m *memBest) Save(_ context.Context, d domain.Difficulty, r domain.Rule, s float64) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.vals[m.key(d, r)] = s
	return nil
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newEasyOdd(t *testing.T, best BestTimes) *Session {
	t.Helper()
	s, err := NewSession(domain.DifficultyEasy, domain.RuleOdd, SessionConfig{Best: best})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionCompletesInOrder(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)
	if s.Phase() != PhaseIdle {
		t.Fatalf("phase = %s; want idle", s.Phase())
	}

	s.Start(ctx, t0)
	if s.Phase() != PhasePlaying {
		t.Fatalf("phase = %s; want playing", s.Phase())
	}

	for i, n := range []int{1, 3, 5, 7} {
		if res := s.Click(ctx, t0.Add(time.Duration(i+1)*time.Second), n); res.Outcome != ClickCorrect {
			t.Fatalf("click %d: outcome %s", n, res.Outcome)
		}
	}
	res := s.Click(ctx, t0.Add(5*time.Second+123*time.Millisecond), 9)
	if res.Outcome != ClickCompleted {
		t.Fatalf("last click outcome %s; want completed", res.Outcome)
	}

	snap := s.Snapshot()
	if snap.Phase != PhaseCompleted || snap.NextExpectedIndex != 5 || snap.TargetLength != 5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ElapsedSeconds != 5.12 {
		t.Fatalf("elapsed = %v; want 5.12", snap.ElapsedSeconds)
	}

	// frozen after completion
	if s.Tick(t0.Add(time.Minute)) {
		t.Fatalf("tick must not run after completion")
	}
	if s.Snapshot().ElapsedSeconds != 5.12 {
		t.Fatalf("elapsed changed after completion")
	}
	if got := s.Click(ctx, t0.Add(time.Minute), 1); got.Outcome != ClickIgnored {
		t.Fatalf("click after completion: %s", got.Outcome)
	}
}

func TestSessionWrongClick(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)
	s.Start(ctx, t0)

	if res := s.Click(ctx, t0, 1); res.Outcome != ClickCorrect {
		t.Fatalf("click 1: %s", res.Outcome)
	}
	res := s.Click(ctx, t0, 5)
	if res.Outcome != ClickWrong {
		t.Fatalf("click 5: %s; want wrong", res.Outcome)
	}

	snap := s.Snapshot()
	if snap.NextExpectedIndex != 1 || snap.LastWrongClick == nil || *snap.LastWrongClick != 5 {
		t.Fatalf("unexpected snapshot after wrong click: %+v", snap)
	}
	if snap.Phase != PhasePlaying {
		t.Fatalf("wrong click ended the session")
	}

	if !s.ClearWrongClick(res.WrongSeq) {
		t.Fatalf("clear should succeed")
	}
	if s.Snapshot().LastWrongClick != nil {
		t.Fatalf("wrong click not cleared")
	}
}

func TestSessionStaleClearKeepsNewerWrongClick(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)
	s.Start(ctx, t0)

	first := s.Click(ctx, t0, 4)
	second := s.Click(ctx, t0, 6)
	if s.ClearWrongClick(first.WrongSeq) {
		t.Fatalf("stale clear must not clear the newer wrong click")
	}
	if w := s.Snapshot().LastWrongClick; w == nil || *w != 6 {
		t.Fatalf("last wrong click = %v; want 6", w)
	}
	if !s.ClearWrongClick(second.WrongSeq) {
		t.Fatalf("current clear should succeed")
	}
}

func TestSessionDistractorsAreWrong(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(domain.DifficultyEasy, domain.RulePrime, SessionConfig{})
	if err != nil {
		t.Fatal(err)
	}
	s.Start(ctx, t0)
	for _, n := range []int{1, 4, 9, 0, 100} {
		if res := s.Click(ctx, t0, n); res.Outcome != ClickWrong {
			t.Fatalf("click %d: %s; want wrong", n, res.Outcome)
		}
	}
}

func TestSessionClickWhileIdleIsNoop(t *testing.T) {
	s := newEasyOdd(t, nil)
	if res := s.Click(context.Background(), t0, 1); res.Outcome != ClickIgnored {
		t.Fatalf("idle click: %s", res.Outcome)
	}
	if s.Snapshot().NextExpectedIndex != 0 {
		t.Fatalf("idle click advanced the session")
	}
}

func TestSessionConfigChanges(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)

	if err := s.SetDifficulty(domain.DifficultyHard); err != nil {
		t.Fatalf("idle change: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Board) != 49 || snap.Phase != PhaseIdle || snap.Size != 7 {
		t.Fatalf("board not resynced: size=%d len=%d phase=%s", snap.Size, len(snap.Board), snap.Phase)
	}

	s.Start(ctx, t0)
	if err := s.SetRule(domain.RuleEven); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("change while playing: %v; want ErrSessionActive", err)
	}
	if err := s.SetDifficulty("giant"); !errors.Is(err, ErrUnknownDifficulty) {
		t.Fatalf("unknown difficulty: %v", err)
	}
}

func TestSessionRestartIsFresh(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)
	s.Start(ctx, t0)
	s.Click(ctx, t0, 1)
	s.Click(ctx, t0, 2)

	s.Start(ctx, t0.Add(time.Minute))
	snap := s.Snapshot()
	if snap.NextExpectedIndex != 0 || snap.LastWrongClick != nil || snap.ElapsedSeconds != 0 {
		t.Fatalf("restart kept old state: %+v", snap)
	}
	s.Tick(t0.Add(time.Minute + 1500*time.Millisecond))
	if got := s.Snapshot().ElapsedSeconds; got != 1.5 {
		t.Fatalf("elapsed = %v; want 1.5 from the new start", got)
	}
}

func playEasyOdd(t *testing.T, s *Session, took time.Duration) Completion {
	t.Helper()
	ctx := context.Background()
	s.Start(ctx, t0)
	for _, n := range []int{1, 3, 5, 7} {
		s.Click(ctx, t0, n)
	}
	if res := s.Click(ctx, t0.Add(took), 9); res.Outcome != ClickCompleted {
		t.Fatalf("expected completion, got %s", res.Outcome)
	}
	c, ok := s.Completion()
	if !ok {
		t.Fatalf("no completion")
	}
	return c
}

func TestSessionBestTimeUpdate(t *testing.T) {
	best := newMemBest()
	best.vals["easy_odd"] = 10.0
	s := newEasyOdd(t, best)

	c := playEasyOdd(t, s, 8500*time.Millisecond)
	if !c.NewBest || best.vals["easy_odd"] != 8.5 {
		t.Fatalf("8.5s should replace 10.0s: completion=%+v stored=%v", c, best.vals["easy_odd"])
	}

	c = playEasyOdd(t, s, 12*time.Second)
	if c.NewBest || best.vals["easy_odd"] != 8.5 {
		t.Fatalf("12.0s must not replace 8.5s: completion=%+v stored=%v", c, best.vals["easy_odd"])
	}
	if c.BestTime == nil || *c.BestTime != 8.5 {
		t.Fatalf("completion best = %v; want 8.5", c.BestTime)
	}
}

func TestSessionBestTimeWithoutStore(t *testing.T) {
	s := newEasyOdd(t, nil)

	c := playEasyOdd(t, s, 8*time.Second)
	if !c.NewBest || c.BestTime == nil || *c.BestTime != 8 {
		t.Fatalf("first run should set best 8: %+v", c)
	}

	c = playEasyOdd(t, s, 12*time.Second)
	if c.NewBest {
		t.Fatalf("12s must not replace 8s: %+v", c)
	}
	if c.BestTime == nil || *c.BestTime != 8 {
		t.Fatalf("completion best = %v; want 8", c.BestTime)
	}

	// records are kept per class
	if err := s.StartAs(context.Background(), t0, domain.DifficultyEasy, domain.RuleEven); err != nil {
		t.Fatalf("start as: %v", err)
	}
	if snap := s.Snapshot(); snap.BestTime != nil {
		t.Fatalf("easy/even best = %v; want none", *snap.BestTime)
	}
}

func TestSessionBestTimeFirstRecordAndSaveFailure(t *testing.T) {
	best := newMemBest()
	best.saveErr = errors.New("disk full")
	s := newEasyOdd(t, best)

	c := playEasyOdd(t, s, 3*time.Second)
	if !c.NewBest || best.saves != 1 {
		t.Fatalf("first record should be attempted: %+v saves=%d", c, best.saves)
	}
	if s.Phase() != PhaseCompleted {
		t.Fatalf("save failure must not break the session")
	}
}

func TestCompletionResult(t *testing.T) {
	c := Completion{Difficulty: domain.DifficultyEasy, Rule: domain.RuleOdd, CompletionTime: 4.2, FinishedAt: t0}
	r := c.Result("")
	if r.PlayerName != domain.AnonymousPlayerName || r.Timestamp != t0.UnixMilli() || r.CompletionTime != 4.2 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestSessionStartAsRestartsWithNewClass(t *testing.T) {
	ctx := context.Background()
	s := newEasyOdd(t, nil)
	s.Start(ctx, t0)
	s.Click(ctx, t0, 1)

	if err := s.StartAs(ctx, t0, domain.DifficultyHard, domain.RuleEven); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Phase != PhasePlaying || snap.NextExpectedIndex != 0 || snap.TargetLength != 24 || len(snap.Board) != 49 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if err := s.StartAs(ctx, t0, domain.DifficultyHard, "fib"); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("unknown rule: %v", err)
	}
}
