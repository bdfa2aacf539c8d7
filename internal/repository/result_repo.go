package repository

import (
	"context"
	"strconv"
	"time"

	"number_rush/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const backendPostgres = "postgres"

// GameResultRepository stores results in the game_results table through a
// pgx pool.
type GameResultRepository struct {
	db *pgxpool.Pool
}

func NewGameResultRepository(db *pgxpool.Pool) *GameResultRepository {
	return &GameResultRepository{db: db}
}

func (r *GameResultRepository) fail(op string, err error) error {
	return &QueryError{Backend: backendPostgres, Op: op, Err: err}
}

func (r *GameResultRepository) Create(ctx context.Context, g *domain.GameResult) error {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO game_results (difficulty, rule, completion_time, player_name, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		string(g.Difficulty),
		string(g.Rule),
		g.CompletionTime,
		g.PlayerName,
		g.Timestamp,
	).Scan(&id, &g.CreatedAt)
	if err != nil {
		return r.fail("create", err)
	}

	g.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *GameResultRepository) ListTop(ctx context.Context, d domain.Difficulty, rule domain.Rule, limit int) ([]*domain.GameResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, difficulty, rule, completion_time, COALESCE(player_name, ''), timestamp, created_at
		 FROM game_results
		 WHERE difficulty = $1 AND rule = $2
		 ORDER BY completion_time ASC, id ASC
		 LIMIT $3`,
		string(d), string(rule), ClampLimit(limit),
	)
	if err != nil {
		return nil, r.fail("list top", err)
	}
	defer rows.Close()

	res, err := r.scanRows(rows)
	if err != nil {
		return nil, r.fail("list top", err)
	}
	return res, nil
}

func (r *GameResultRepository) Count(ctx context.Context, d domain.Difficulty, rule domain.Rule, lte *float64) (int64, error) {
	var count int64
	var err error
	if lte == nil {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM game_results WHERE difficulty = $1 AND rule = $2`,
			string(d), string(rule),
		).Scan(&count)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM game_results WHERE difficulty = $1 AND rule = $2 AND completion_time <= $3`,
			string(d), string(rule), *lte,
		).Scan(&count)
	}
	if err != nil {
		return 0, r.fail("count", err)
	}
	return count, nil
}

func (r *GameResultRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, difficulty, rule, completion_time, COALESCE(player_name, ''), timestamp, created_at
		 FROM game_results
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, r.fail("list recent", err)
	}
	defer rows.Close()

	res, err := r.scanRows(rows)
	if err != nil {
		return nil, r.fail("list recent", err)
	}
	return res, nil
}

func (r *GameResultRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *GameResultRepository) Close() {
	r.db.Close()
}

func (r *GameResultRepository) scanRows(rows pgx.Rows) ([]*domain.GameResult, error) {
	res := make([]*domain.GameResult, 0)
	for rows.Next() {
		var (
			id         int64
			difficulty string
			rule       string
			g          domain.GameResult
			createdAt  time.Time
		)
		if err := rows.Scan(&id, &difficulty, &rule, &g.CompletionTime, &g.PlayerName, &g.Timestamp, &createdAt); err != nil {
			return nil, err
		}
		g.ID = strconv.FormatInt(id, 10)
		g.Difficulty = domain.Difficulty(difficulty)
		g.Rule = domain.Rule(rule)
		g.CreatedAt = createdAt
		res = append(res, &g)
	}
	return res, rows.Err()
}
