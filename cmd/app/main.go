package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"number_rush/internal/besttime"
	"number_rush/internal/config"
	"number_rush/internal/db"
	"number_rush/internal/game"
	httpServer "number_rush/internal/http"
	"number_rush/internal/http/middleware"
	"number_rush/internal/logger"
	"number_rush/internal/repository"
	"number_rush/internal/service"
	"number_rush/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	redisClient := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := repository.Open(ctx, repository.OpenOptions{
		Backend:     cfg.ResultStore,
		DatabaseURL: cfg.DatabaseURL,
		Redis:       redisClient,
	})
	cancel()
	if err != nil {
		logger.Fatal("failed to open result store", "backend", cfg.ResultStore, "error", err)
	}
	defer store.Close()
	logger.Info("result store ready", "backend", cfg.ResultStore)

	results := service.NewResultService(store)
	hub := ws.NewHub(ws.Deps{
		Factory: game.NewFactory(cfg.BoardMode),
		Results: results,
		BestKV:  besttime.NewDevices(redisClient).KV,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	// CORS for production (frontend on different domain)
	r.Use(middleware.CORS(cfg.AllowedOrigin))

	middleware.UseRedis(redisClient)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, cfg, results, hub)

	srv := &http.Server{
		Addr:     ":" + cfg.AppPort,
		Handler:  r,
		ErrorLog: slog.NewLogLogger(logger.Get().Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// hijacked websocket connections are not closed by srv.Shutdown
	hub.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
