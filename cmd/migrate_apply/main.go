package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"number_rush/internal/db"
	"number_rush/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	apply := flag.Bool("apply", false, "apply migrations (default: list them)")
	migDir := flag.String("dir", filepath.Join("internal", "migrations"), "directory with .sql files")
	flag.Parse()

	files, err := os.ReadDir(*migDir)
	if err != nil {
		logger.Fatal("read migrations dir", "dir", *migDir, "error", err)
	}
	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(*migDir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		logger.Info("migration applied", "file", name)
	}
}
