package game

import (
	"context"
	"sync"
	"time"

	"number_rush/internal/domain"
)

type eventKind int

const (
	evStart eventKind = iota
	evClick
	evConfigure
	evClearWrong
)

type event struct {
	kind       eventKind
	value      int
	seq        uint64
	difficulty domain.Difficulty
	rule       domain.Rule
}

// RunnerConfig wires a Runner to its surroundings. Callbacks run on the
// runner goroutine and must not block for long.
type RunnerConfig struct {
	TickInterval    time.Duration
	WrongClickDelay time.Duration
	Now             func() time.Time

	OnSnapshot  func(Snapshot)
	OnCompleted func(Completion)
	OnError     func(error)
}

// Runner drives a Session from a serial event queue: clicks, config changes,
// the periodic clock tick and the delayed wrong-click clear all go through
// one goroutine.
type Runner struct {
	session *Session
	cfg     RunnerConfig

	events chan event
	done   chan struct{}

	stopOnce sync.Once
	ticker   *time.Ticker
	timers   map[uint64]*time.Timer
}

func NewRunner(s *Session, cfg RunnerConfig) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = TickInterval
	}
	if cfg.WrongClickDelay <= 0 {
		cfg.WrongClickDelay = WrongClickPulse
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{
		session: s,
		cfg:     cfg,
		events:  make(chan event, 64),
		done:    make(chan struct{}),
		timers:  make(map[uint64]*time.Timer),
	}
}

// Start queues a new play on the current difficulty and rule.
func (r *Runner) Start() error { return r.post(event{kind: evStart}) }

// StartWith queues a new play on the given difficulty and rule, restarting
// a running one. Empty values keep the current one.
func (r *Runner) StartWith(d domain.Difficulty, rule domain.Rule) error {
	return r.post(event{kind: evStart, difficulty: d, rule: rule})
}

// Click queues a tile click.
func (r *Runner) Click(value int) error { return r.post(event{kind: evClick, value: value}) }

// Configure queues a difficulty/rule change. Empty values keep the current one.
func (r *Runner) Configure(d domain.Difficulty, rule domain.Rule) error {
	return r.post(event{kind: evConfigure, difficulty: d, rule: rule})
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} { return r.done }

func (r *Runner) post(ev event) error {
	select {
	case <-r.done:
		return ErrRunnerStopped
	default:
	}
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	}
}

// Run processes events until ctx is cancelled. The tick only runs while the
// session is playing.
func (r *Runner) Run(ctx context.Context) error {
	defer r.stop()

	r.publish()

	for {
		var tickC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.events:
			r.handle(ctx, ev)
		case <-tickC:
			if r.session.Tick(r.cfg.Now()) {
				r.publish()
			}
		}
	}
}

func (r *Runner) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evStart:
		d, rule := r.resolve(ev)
		if err := r.session.StartAs(ctx, r.cfg.Now(), d, rule); err != nil {
			r.fail(err)
			return
		}
		r.startTicker()
		r.publish()

	case evClick:
		res := r.session.Click(ctx, r.cfg.Now(), ev.value)
		switch res.Outcome {
		case ClickIgnored:
			return
		case ClickWrong:
			r.scheduleClear(res.WrongSeq)
		case ClickCompleted:
			r.stopTicker()
		}
		r.publish()
		if res.Outcome == ClickCompleted && r.cfg.OnCompleted != nil {
			if c, ok := r.session.Completion(); ok {
				r.cfg.OnCompleted(c)
			}
		}

	case evConfigure:
		d, rule := r.resolve(ev)
		if !d.Valid() {
			r.fail(ErrUnknownDifficulty)
			return
		}
		if !rule.Valid() {
			r.fail(ErrUnknownRule)
			return
		}
		if err := r.session.reconfigure(d, rule); err != nil {
			r.fail(err)
			return
		}
		r.publish()

	case evClearWrong:
		delete(r.timers, ev.seq)
		if r.session.ClearWrongClick(ev.seq) {
			r.publish()
		}
	}
}

// resolve fills empty class fields of ev from the session.
func (r *Runner) resolve(ev event) (domain.Difficulty, domain.Rule) {
	d, rule := ev.difficulty, ev.rule
	if d == "" {
		d = r.session.difficulty
	}
	if rule == "" {
		rule = r.session.rule
	}
	return d, rule
}

func (r *Runner) scheduleClear(seq uint64) {
	r.timers[seq] = time.AfterFunc(r.cfg.WrongClickDelay, func() {
		_ = r.post(event{kind: evClearWrong, seq: seq})
	})
}

func (r *Runner) startTicker() {
	if r.ticker != nil {
		r.ticker.Reset(r.cfg.TickInterval)
		return
	}
	r.ticker = time.NewTicker(r.cfg.TickInterval)
}

func (r *Runner) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

func (r *Runner) stop() {
	r.stopOnce.Do(func() {
		r.stopTicker()
		for seq, t := range r.timers {
			t.Stop()
			delete(r.timers, seq)
		}
		close(r.done)
	})
}

func (r *Runner) publish() {
	if r.cfg.OnSnapshot != nil {
		r.cfg.OnSnapshot(r.session.Snapshot())
	}
}

func (r *Runner) fail(err error) {
	if r.cfg.OnError != nil {
		r.cfg.OnError(err)
	}
}
