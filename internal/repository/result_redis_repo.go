package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"number_rush/internal/domain"

	redis "github.com/redis/go-redis/v9"
)

const (
	backendRedis   = "redis"
	redisRecentKey = "results:recent"
	redisSeqKey    = "results:seq"
)

// RedisResultRepository keeps each result in a hash and indexes it in a
// per-class sorted set scored by completion time.
//
//	game:<seq>                  hash with the result fields
//	results:seq                 counter behind <seq>
//	scores:<difficulty>:<rule>  zset, score = completionTime
//	results:recent              zset, score = created_at ms
type RedisResultRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisResultRepository(client *redis.Client) *RedisResultRepository {
	return &RedisResultRepository{client: client, now: time.Now}
}

func scoreKey(d domain.Difficulty, r domain.Rule) string {
	return "scores:" + string(d) + ":" + string(r)
}

func (r *RedisResultRepository) fail(op string, err error) error {
	return &QueryError{Backend: backendRedis, Op: op, Err: err}
}

func (r *RedisResultRepository) Create(ctx context.Context, g *domain.GameResult) error {
	createdAt := r.now().UTC()
	seq, err := r.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return r.fail("create", err)
	}
	// zero-padded so equal scores sort in insertion order
	id := fmt.Sprintf("game:%019d", seq)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, id, map[string]any{
			"difficulty":     string(g.Difficulty),
			"rule":           string(g.Rule),
			"completionTime": strconv.FormatFloat(g.CompletionTime, 'f', -1, 64),
			"playerName":     g.PlayerName,
			"timestamp":      strconv.FormatInt(g.Timestamp, 10),
			"createdAt":      createdAt.Format(time.RFC3339Nano),
		})
		pipe.ZAdd(ctx, scoreKey(g.Difficulty, g.Rule), redis.Z{Score: g.CompletionTime, Member: id})
		pipe.ZAdd(ctx, redisRecentKey, redis.Z{Score: float64(createdAt.UnixMilli()), Member: id})
		return nil
	})
	if err != nil {
		return r.fail("create", err)
	}

	g.ID = id
	g.CreatedAt = createdAt
	return nil
}

func (r *RedisResultRepository) ListTop(ctx context.Context, d domain.Difficulty, rule domain.Rule, limit int) ([]*domain.GameResult, error) {
	ids, err := r.client.ZRange(ctx, scoreKey(d, rule), 0, int64(ClampLimit(limit)-1)).Result()
	if err != nil {
		return nil, r.fail("list top", err)
	}
	res, err := r.load(ctx, ids)
	if err != nil {
		return nil, r.fail("list top", err)
	}
	return res, nil
}

func (r *RedisResultRepository) Count(ctx context.Context, d domain.Difficulty, rule domain.Rule, lte *float64) (int64, error) {
	max := "+inf"
	if lte != nil {
		max = strconv.FormatFloat(*lte, 'f', -1, 64)
	}
	n, err := r.client.ZCount(ctx, scoreKey(d, rule), "-inf", max).Result()
	if err != nil {
		return 0, r.fail("count", err)
	}
	return n, nil
}

func (r *RedisResultRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	ids, err := r.client.ZRevRange(ctx, redisRecentKey, 0, int64(ClampLimit(limit)-1)).Result()
	if err != nil {
		return nil, r.fail("list recent", err)
	}
	res, err := r.load(ctx, ids)
	if err != nil {
		return nil, r.fail("list recent", err)
	}
	return res, nil
}

func (r *RedisResultRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op: the client is borrowed and closed by its owner.
func (r *RedisResultRepository) Close() {}

// load fetches the hashes for ids in one round trip, skipping ids whose
// hash is gone.
func (r *RedisResultRepository) load(ctx context.Context, ids []string) ([]*domain.GameResult, error) {
	res := make([]*domain.GameResult, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		g, err := resultFromHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, nil
}

func resultFromHash(id string, f map[string]string) (*domain.GameResult, error) {
	t, err := strconv.ParseFloat(f["completionTime"], 64)
	if err != nil {
		return nil, fmt.Errorf("%s: bad completionTime: %w", id, err)
	}
	ts, _ := strconv.ParseInt(f["timestamp"], 10, 64)
	createdAt, _ := time.Parse(time.RFC3339Nano, f["createdAt"])

	return &domain.GameResult{
		ID:             id,
		Difficulty:     domain.Difficulty(f["difficulty"]),
		Rule:           domain.Rule(f["rule"]),
		CompletionTime: t,
		PlayerName:     f["playerName"],
		Timestamp:      ts,
		CreatedAt:      createdAt,
	}, nil
}
