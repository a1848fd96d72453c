package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/modguard/modguard/internal/cache"
	"github.com/modguard/modguard/internal/queue"
	"github.com/modguard/modguard/internal/refindex"
)

// SeedWorker loads reference datasets into the similarity index. A redis
// lock keyed by dataset path keeps concurrent retries of the same seed
// job from double-embedding.
type SeedWorker struct {
	loader *refindex.Loader
	cache  *cache.Cache
}

func NewSeedWorker(loader *refindex.Loader, c *cache.Cache) *SeedWorker {
	return &SeedWorker{loader: loader, cache: c}
}

func (w *SeedWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.IndexSeedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if w.cache != nil {
		lockKey := "index:seed:lock:" + payload.DatasetPath
		ok, err := w.cache.SetNX(ctx, lockKey, payload.RequestID, 10*time.Minute)
		if err == nil && !ok {
			slog.Info("seed already in progress, skipping", "dataset", payload.DatasetPath)
			return nil
		}
		defer w.cache.Delete(ctx, lockKey)
	}

	slog.Info("seeding reference index", "dataset", payload.DatasetPath, "request_id", payload.RequestID)

	count, err := w.loader.LoadFile(ctx, payload.DatasetPath)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", payload.DatasetPath, err)
	}

	slog.Info("reference index seeded", "dataset", payload.DatasetPath, "entries", count)
	return nil
}
