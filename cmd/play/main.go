package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"number_rush/internal/besttime"
	"number_rush/internal/client"
	"number_rush/internal/domain"
	"number_rush/internal/game"
	"number_rush/internal/logger"
)

const help = `commands:
  start [difficulty] [rule]   start or restart (easy|medium|hard|crazy, sequence|odd|even|prime)
  config <difficulty> [rule]  change the board while not playing
  <number>                    click a tile
  submit [name]               send the last finished game to the leaderboard
  top [limit]                 show the leaderboard of the current board
  quit`

func main() {
	dbPath := flag.String("db", "number_rush.db", "sqlite file for personal best times")
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "result API base url, empty to play offline")
	mode := flag.String("board", "", "board mode: distractors or targets")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)

	boardMode, err := game.ParseBoardMode(*mode)
	if err != nil {
		logger.Fatal("invalid board mode", "error", err)
	}

	kv, err := besttime.NewSQLiteKV(*dbPath)
	if err != nil {
		logger.Fatal("open best time store", "path", *dbPath, "error", err)
	}
	defer kv.Close()

	session, err := game.NewFactory(boardMode).NewSession(domain.DifficultyEasy, domain.RuleSequence, besttime.NewStore(kv))
	if err != nil {
		logger.Fatal("create session", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &player{}
	if *apiURL != "" {
		p.results = client.New(*apiURL, nil)
	}
	runner := game.NewRunner(session, game.RunnerConfig{
		OnSnapshot:  p.render,
		OnCompleted: p.completed,
		OnError:     func(err error) { fmt.Println("!", err) },
	})
	go func() {
		_ = runner.Run(ctx)
	}()

	fmt.Println(help)
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !p.handle(ctx, runner, strings.Fields(line)) {
				return
			}
		}
	}
}

type player struct {
	results *client.ResultClient

	mu   sync.Mutex
	last game.Snapshot
	done *game.Completion
}

func (p *player) handle(ctx context.Context, runner *game.Runner, args []string) bool {
	if len(args) == 0 {
		return true
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "quit", "exit":
		return false
	case "help":
		fmt.Println(help)
	case "start":
		err = runner.StartWith(domain.Difficulty(arg(1)), domain.Rule(arg(2)))
	case "config":
		err = runner.Configure(domain.Difficulty(arg(1)), domain.Rule(arg(2)))
	case "submit":
		p.submit(ctx, strings.Join(args[1:], " "))
	case "top":
		limit, _ := strconv.Atoi(arg(1))
		p.top(ctx, limit)
	default:
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			fmt.Println("unknown command:", args[0])
			return true
		}
		err = runner.Click(n)
	}
	if err != nil {
		fmt.Println("!", err)
	}
	return true
}

// render prints the board when something other than the clock changed.
func (p *player) render(s game.Snapshot) {
	p.mu.Lock()
	prev := p.last
	p.last = s
	p.mu.Unlock()

	if s.Phase == prev.Phase && s.NextExpectedIndex == prev.NextExpectedIndex &&
		sameWrong(s.LastWrongClick, prev.LastWrongClick) && s.Difficulty == prev.Difficulty && s.Rule == prev.Rule &&
		len(s.Board) == len(prev.Board) && s.Phase != game.PhaseIdle {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s / %s] %s  %d/%d  %.2fs", s.Difficulty, domain.RuleLabels[s.Rule], s.Phase, s.NextExpectedIndex, s.TargetLength, s.ElapsedSeconds)
	if s.BestTime != nil {
		fmt.Fprintf(&b, "  best %.2fs", *s.BestTime)
	}
	b.WriteString("\n")
	for i, n := range s.Board {
		mark := " "
		if s.LastWrongClick != nil && *s.LastWrongClick == n {
			mark = "x"
		}
		fmt.Fprintf(&b, "%4d%s", n, mark)
		if (i+1)%s.Size == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Print(b.String())
}

func sameWrong(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (p *player) completed(c game.Completion) {
	p.mu.Lock()
	p.done = &c
	p.mu.Unlock()

	fmt.Printf("finished in %.2fs", c.CompletionTime)
	if c.NewBest {
		fmt.Print(" (new best!)")
	}
	fmt.Println(" - type `submit <name>` to post it")
}

func (p *player) submit(ctx context.Context, name string) {
	p.mu.Lock()
	c := p.done
	p.done = nil
	p.mu.Unlock()

	if c == nil {
		fmt.Println("! nothing to submit")
		return
	}
	if p.results == nil {
		fmt.Println("! offline, result not sent")
		return
	}
	pct, ok := p.results.Complete(ctx, c.Result(name))
	if !ok {
		fmt.Println("! could not reach the leaderboard")
		return
	}
	fmt.Printf("saved: %.1f%% of results are at or below your time\n", pct)
}

func (p *player) top(ctx context.Context, limit int) {
	if p.results == nil {
		fmt.Println("! offline")
		return
	}
	p.mu.Lock()
	d, r := p.last.Difficulty, p.last.Rule
	p.mu.Unlock()

	rows := p.results.Rank(ctx, d, r, limit)
	if len(rows) == 0 {
		fmt.Println("no results yet")
		return
	}
	for i, g := range rows {
		fmt.Printf("%3d. %-20s %7.2fs\n", i+1, g.PlayerName, g.CompletionTime)
	}
}
