package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/modguard/modguard/internal/api/handlers"
	"github.com/modguard/modguard/internal/api/middleware"
	"github.com/modguard/modguard/internal/auth"
	"github.com/modguard/modguard/internal/cache"
	"github.com/modguard/modguard/internal/config"
	"github.com/modguard/modguard/internal/embedding"
	"github.com/modguard/modguard/internal/moderation"
	"github.com/modguard/modguard/internal/queue"
	"github.com/modguard/modguard/internal/refindex"
	"github.com/modguard/modguard/internal/similarity"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	allow *moderation.Allowlist
	jwt   *auth.JWTMiddleware
}

// NewRouter wires the moderation service graph. rdb may be nil when
// redis is unreachable; the oracle then runs uncached and seeding is
// unavailable over HTTP.
func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, allow *moderation.Allowlist) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		allow: allow,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Service graph
	embedSvc := embedding.NewService(rt.cfg.OpenAI.APIKey, rt.cfg.OpenAI.EmbeddingModel)
	store := refindex.NewPgStore(rt.db)
	loader := refindex.NewLoader(store, embedSvc)

	var oracle similarity.Oracle = similarity.NewVectorOracle(store, embedSvc)
	if rt.redis != nil {
		ttl := time.Duration(rt.cfg.Moderation.CacheTTLSeconds) * time.Second
		oracle = similarity.NewCachedOracle(oracle, cache.NewCache(rt.redis), ttl)
	}

	analyzer := moderation.NewAnalyzer(oracle, rt.allow, moderation.Config{
		WordThreshold:       rt.cfg.Moderation.WordThreshold,
		SemanticThreshold:   rt.cfg.Moderation.SemanticThreshold,
		ChunkSize:           rt.cfg.Moderation.ChunkSize,
		ChunkOverlap:        rt.cfg.Moderation.ChunkOverlap,
		KeepHighestPerLabel: rt.cfg.Moderation.KeepHighestPerLabel,
	})

	queueClient := queue.NewClient(rt.cfg.Redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		analyzeH := handlers.NewAnalyzeHandler(analyzer, rt.cfg.Moderation.MaxWords, rt.cfg.Moderation.MaxChars)
		r.Route("/moderation", func(r chi.Router) {
			r.Post("/analyze", analyzeH.Analyze)
		})

		indexH := handlers.NewIndexHandler(loader, store, queueClient)
		r.Route("/index", func(r chi.Router) {
			r.Post("/seed", indexH.Seed)
			r.Post("/entries", indexH.UpsertEntries)
			r.Get("/stats", indexH.Stats)
			r.Delete("/labels/{label}", indexH.DeleteLabel)
		})
	})

	return r
}
