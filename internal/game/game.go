package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"number_rush/internal/domain"
)

// Phase - состояние сессии
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePlaying   Phase = "playing"
	PhaseCompleted Phase = "completed"
)

const (
	// TickInterval is how often the running clock is refreshed for display.
	TickInterval = 50 * time.Millisecond
	// WrongClickPulse is how long a wrong click stays flagged.
	WrongClickPulse = 300 * time.Millisecond
)

var (
	ErrSessionActive     = errors.New("game in progress")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownRule       = errors.New("unknown rule")
	ErrRunnerStopped     = errors.New("runner stopped")
)

// BestTimes is the device-local personal best storage a session reads on
// start and writes on a new record.
type BestTimes interface {
	Load(ctx context.Context, d domain.Difficulty, r domain.Rule) (float64, bool)
	Save(ctx context.Context, d domain.Difficulty, r domain.Rule, seconds float64) error
}

// memoryBestTimes is the BestTimes of a session created without a store.
// Records live as long as the session.
type memoryBestTimes struct {
	mu   sync.Mutex
	vals map[string]float64
}

func newMemoryBestTimes() *memoryBestTimes {
	return &memoryBestTimes{vals: make(map[string]float64)}
}

func (m *memoryBestTimes) Load(_ context.Context, d domain.Difficulty, r domain.Rule) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[string(d)+":"+string(r)]
	return v, ok
}

func (m *memoryBestTimes) Save(_ context.Context, d domain.Difficulty, r domain.Rule, seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[string(d)+":"+string(r)] = seconds
	return nil
}

// ClickOutcome is what a click did to the session.
type ClickOutcome int

const (
	ClickIgnored ClickOutcome = iota // not playing
	ClickCorrect
	ClickWrong
	ClickCompleted
)

func (o ClickOutcome) String() string {
	switch o {
	case ClickCorrect:
		return "correct"
	case ClickWrong:
		return "wrong"
	case ClickCompleted:
		return "completed"
	default:
		return "ignored"
	}
}

type ClickResult struct {
	Outcome ClickOutcome
	// WrongSeq identifies the wrong click so its pulse can be cleared later.
	WrongSeq uint64
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	Difficulty        domain.Difficulty `json:"difficulty"`
	Rule              domain.Rule       `json:"rule"`
	Size              int               `json:"size"`
	Phase             Phase             `json:"phase"`
	Board             []int             `json:"board"`
	NextExpectedIndex int               `json:"nextExpectedIndex"`
	TargetLength      int               `json:"targetLength"`
	ElapsedSeconds    float64           `json:"elapsedSeconds"`
	LastWrongClick    *int              `json:"lastWrongClick"`
	BestTime          *float64          `json:"bestTime"`
}

// Completion is published once per session on playing -> completed.
type Completion struct {
	Difficulty     domain.Difficulty `json:"difficulty"`
	Rule           domain.Rule       `json:"rule"`
	CompletionTime float64           `json:"completionTime"`
	BestTime       *float64          `json:"bestTime"`
	NewBest        bool              `json:"newBest"`
	FinishedAt     time.Time         `json:"finishedAt"`
}

// Result turns the completion into a leaderboard entry.
func (c Completion) Result(playerName string) domain.GameResult {
	return domain.GameResult{
		Difficulty:     c.Difficulty,
		Rule:           c.Rule,
		CompletionTime: c.CompletionTime,
		PlayerName:     domain.NormalizePlayerName(playerName),
		Timestamp:      c.FinishedAt.UnixMilli(),
	}
}
