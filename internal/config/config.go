package config

import (
	"os"
	"strconv"

	"number_rush/internal/game"
	"number_rush/internal/logger"
	"number_rush/internal/repository"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort    string
	AppVersion string
	LogLevel   string
	LogJSON    bool

	ResultStore   repository.Backend
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigin string
	BoardMode     game.BoardMode

	// Rate limits
	APIRateLimit     int
	APIRateWindow    int
	SubmitRateLimit  int
	SubmitRateWindow int
}

// Load reads the config from env (and .env when present)
func Load() *Config {
	_ = godotenv.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	logger.Init(logLevel, os.Getenv("LOG_JSON") == "true")

	store, err := repository.ParseBackend(os.Getenv("RESULT_STORE"))
	if err != nil {
		logger.Fatal("invalid RESULT_STORE", "error", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && (store == repository.BackendPostgres || store == repository.BackendSQL) {
		logger.Fatal("DATABASE_URL is not set", "result_store", store)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" && store == repository.BackendRedis {
		logger.Fatal("REDIS_ADDR is not set", "result_store", store)
	}

	boardMode, err := game.ParseBoardMode(os.Getenv("BOARD_MODE"))
	if err != nil {
		logger.Fatal("invalid BOARD_MODE", "error", err)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	return &Config{
		AppPort:          port,
		AppVersion:       version,
		LogLevel:         logLevel,
		LogJSON:          os.Getenv("LOG_JSON") == "true",
		ResultStore:      store,
		DatabaseURL:      dbURL,
		RedisAddr:        redisAddr,
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          intEnv("REDIS_DB", 0),
		AllowedOrigin:    os.Getenv("ALLOWED_ORIGIN"),
		BoardMode:        boardMode,
		APIRateLimit:     intEnv("API_RATE_LIMIT", 120), // запросов за окно
		APIRateWindow:    intEnv("API_RATE_WINDOW_SECONDS", 60),
		SubmitRateLimit:  intEnv("SUBMIT_RATE_LIMIT", 20), // отправок результатов за окно
		SubmitRateWindow: intEnv("SUBMIT_RATE_WINDOW_SECONDS", 60),
	}
}

// intEnv returns a non-negative int from env or def.
func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
