package integration

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"number_rush/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// openDB connects to DATABASE_URL and applies the migrations, or skips.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
	return pool
}

// uniquePlayer returns a player name whose rows are deleted after the test.
func uniquePlayer(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	name := "it-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM game_results WHERE player_name = $1`, name)
	})
	return name
}
