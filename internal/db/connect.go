package db

import (
	"context"
	"fmt"
	"time"

	"number_rush/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Open creates a pgx pool and pings it.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected")
	return pool, nil
}

// Connect is Open for tools that cannot run without the database.
func Connect(dsn string) *pgxpool.Pool {
	pool, err := Open(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}
	return pool
}

// ConnectRedis returns nil when addr is empty or the server does not answer,
// so callers can fall back to in-process alternatives.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", addr)
	return client
}
