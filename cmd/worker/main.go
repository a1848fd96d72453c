package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/modguard/modguard/internal/cache"
	"github.com/modguard/modguard/internal/config"
	"github.com/modguard/modguard/internal/database"
	"github.com/modguard/modguard/internal/embedding"
	"github.com/modguard/modguard/internal/queue"
	"github.com/modguard/modguard/internal/queue/workers"
	"github.com/modguard/modguard/internal/refindex"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Bootstrap(ctx, db); err != nil {
		slog.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	embedSvc := embedding.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	store := refindex.NewPgStore(db)
	loader := refindex.NewLoader(store, embedSvc)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()

	seedWorker := workers.NewSeedWorker(loader, cache.NewCache(rdb))
	mux.Handle(queue.TypeIndexSeed, asynq.HandlerFunc(seedWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
