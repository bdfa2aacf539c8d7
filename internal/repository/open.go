package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"number_rush/internal/db"

	redis "github.com/redis/go-redis/v9"
)

// Backend names a ResultStore implementation.
type Backend string

const (
	BackendPostgres Backend = backendPostgres
	BackendSQL      Backend = backendSQL
	BackendRedis    Backend = backendRedis
	BackendMemory   Backend = backendMemory
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendPostgres, nil
	case BackendPostgres, BackendSQL, BackendRedis, BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("unknown result store %q (want postgres, sql, redis or memory)", s)
	}
}

// OpenOptions carries what the backends need to connect.
type OpenOptions struct {
	Backend     Backend
	DatabaseURL string
	Redis       *redis.Client
}

// Open builds the configured ResultStore. The caller owns it and must Close it;
// a borrowed redis client stays open.
func Open(ctx context.Context, opts OpenOptions) (ResultStore, error) {
	switch opts.Backend {
	case BackendPostgres, "":
		if opts.DatabaseURL == "" {
			return nil, errors.New("postgres result store needs DATABASE_URL")
		}
		pool, err := db.Open(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewGameResultRepository(pool), nil
	case BackendSQL:
		if opts.DatabaseURL == "" {
			return nil, errors.New("sql result store needs DATABASE_URL")
		}
		return OpenSQLResultRepository(ctx, opts.DatabaseURL)
	case BackendRedis:
		if opts.Redis == nil {
			return nil, errors.New("redis result store needs REDIS_ADDR")
		}
		return NewRedisResultRepository(opts.Redis), nil
	case BackendMemory:
		return NewMemoryResultRepository(), nil
	default:
		return nil, fmt.Errorf("unknown result store %q", opts.Backend)
	}
}
