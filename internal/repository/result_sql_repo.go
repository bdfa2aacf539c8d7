package repository

import (
	"context"
	"time"

	"number_rush/internal/domain"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const backendSQL = "sql"

// resultRow mirrors a game_results row for sqlx scanning.
type resultRow struct {
	ID             string    `db:"id"`
	Difficulty     string    `db:"difficulty"`
	Rule           string    `db:"rule"`
	CompletionTime float64   `db:"completion_time"`
	PlayerName     string    `db:"player_name"`
	Timestamp      int64     `db:"timestamp"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r resultRow) toDomain() *domain.GameResult {
	return &domain.GameResult{
		ID:             r.ID,
		Difficulty:     domain.Difficulty(r.Difficulty),
		Rule:           domain.Rule(r.Rule),
		CompletionTime: r.CompletionTime,
		PlayerName:     r.PlayerName,
		Timestamp:      r.Timestamp,
		CreatedAt:      r.CreatedAt,
	}
}

const (
	sqlInsertResult = `INSERT INTO game_results (difficulty, rule, completion_time, player_name, timestamp)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`

	sqlSelectTop = `SELECT id, difficulty, rule, completion_time, COALESCE(player_name, '') AS player_name, timestamp, created_at
FROM game_results
WHERE difficulty = $1 AND rule = $2
ORDER BY completion_time ASC, id ASC
LIMIT $3`

	sqlSelectRecent = `SELECT id, difficulty, rule, completion_time, COALESCE(player_name, '') AS player_name, timestamp, created_at
FROM game_results
ORDER BY created_at DESC, id DESC
LIMIT $1`

	sqlCountClass    = `SELECT COUNT(*) FROM game_results WHERE difficulty = $1 AND rule = $2`
	sqlCountClassLte = `SELECT COUNT(*) FROM game_results WHERE difficulty = $1 AND rule = $2 AND completion_time <= $3`
)

// SQLResultRepository is the database/sql flavour of the store: plain SQL
// text over lib/pq, scanned with sqlx.
type SQLResultRepository struct {
	db *sqlx.DB
}

func NewSQLResultRepository(db *sqlx.DB) *SQLResultRepository {
	return &SQLResultRepository{db: db}
}

// OpenSQLResultRepository connects with lib/pq and verifies the connection.
func OpenSQLResultRepository(ctx context.Context, dsn string) (*SQLResultRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, &QueryError{Backend: backendSQL, Op: "connect", Err: err}
	}
	return NewSQLResultRepository(db), nil
}

func (r *SQLResultRepository) fail(op string, err error) error {
	return &QueryError{Backend: backendSQL, Op: op, Err: err}
}

func (r *SQLResultRepository) Create(ctx context.Context, g *domain.GameResult) error {
	var out struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	err := r.db.QueryRowxContext(ctx, sqlInsertResult,
		string(g.Difficulty), string(g.Rule), g.CompletionTime, g.PlayerName, g.Timestamp,
	).StructScan(&out)
	if err != nil {
		return r.fail("create", err)
	}
	g.ID = out.ID
	g.CreatedAt = out.CreatedAt
	return nil
}

func (r *SQLResultRepository) ListTop(ctx context.Context, d domain.Difficulty, rule domain.Rule, limit int) ([]*domain.GameResult, error) {
	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, sqlSelectTop, string(d), string(rule), ClampLimit(limit)); err != nil {
		return nil, r.fail("list top", err)
	}
	return toDomainRows(rows), nil
}

func (r *SQLResultRepository) Count(ctx context.Context, d domain.Difficulty, rule domain.Rule, lte *float64) (int64, error) {
	var count int64
	var err error
	if lte == nil {
		err = r.db.GetContext(ctx, &count, sqlCountClass, string(d), string(rule))
	} else {
		err = r.db.GetContext(ctx, &count, sqlCountClassLte, string(d), string(rule), *lte)
	}
	if err != nil {
		return 0, r.fail("count", err)
	}
	return count, nil
}

func (r *SQLResultRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GameResult, error) {
	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, sqlSelectRecent, ClampLimit(limit)); err != nil {
		return nil, r.fail("list recent", err)
	}
	return toDomainRows(rows), nil
}

func (r *SQLResultRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLResultRepository) Close() {
	_ = r.db.Close()
}

func toDomainRows(rows []resultRow) []*domain.GameResult {
	res := make([]*domain.GameResult, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res
}
