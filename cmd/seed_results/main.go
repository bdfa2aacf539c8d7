package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"number_rush/internal/config"
	"number_rush/internal/db"
	"number_rush/internal/domain"
	"number_rush/internal/logger"
	"number_rush/internal/repository"
	"number_rush/internal/service"
)

var names = []string{"小明", "Ann", "Bao", "Chen", "Dana", ""}

// base seconds per difficulty, roughly what a practiced player needs
var base = map[domain.Difficulty]float64{
	domain.DifficultyEasy:   4,
	domain.DifficultyMedium: 14,
	domain.DifficultyHard:   35,
	domain.DifficultyCrazy:  80,
}

func main() {
	cfg := config.Load()
	perClass := flag.Int("n", 5, "results per difficulty and rule")
	flag.Parse()

	redisClient := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, repository.OpenOptions{
		Backend:     cfg.ResultStore,
		DatabaseURL: cfg.DatabaseURL,
		Redis:       redisClient,
	})
	if err != nil {
		logger.Fatal("failed to open result store", "error", err)
	}
	defer store.Close()

	svc := service.NewResultService(store)
	now := time.Now()
	seeded := 0

	for _, d := range domain.AllDifficulties {
		for _, r := range domain.AllRules {
			for i := 0; i < *perClass; i++ {
				g := domain.GameResult{
					Difficulty:     d,
					Rule:           r,
					CompletionTime: float64(int((base[d]*(0.8+rand.Float64()))*100)) / 100,
					PlayerName:     names[rand.Intn(len(names))],
					Timestamp:      now.Add(-time.Duration(rand.Intn(72)) * time.Hour).UnixMilli(),
				}
				if _, err := svc.SubmitResult(ctx, g); err != nil {
					logger.Fatal("seed failed", "difficulty", d, "rule", r, "error", err)
				}
				seeded++
			}
		}
	}

	logger.Info("results seeded", "count", seeded, "backend", cfg.ResultStore)
	if top, err := svc.Top(ctx, domain.DifficultyEasy, domain.RuleSequence, 3); err == nil {
		for i, g := range top {
			logger.Info("top easy/sequence", "rank", i+1, "player", g.PlayerName, "time", g.CompletionTime)
		}
	}
}
