package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/posting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Runtime holds the process-wide resources shared by the binaries.
type Runtime struct {
	Config *Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Memory *memstore.Store
	Module *accounting.Module
}

// Bootstrap connects storage for cfg.StoreDriver and assembles the ledger.
// Redis is optional: when it is unreachable reports run uncached.
func Bootstrap(ctx context.Context, cfg *Config, logger *slog.Logger, metrics posting.Recorder) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	var stores accounting.Stores
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory ledger store; data is lost on exit")
		rt.Memory = memstore.New()
		stores = accounting.MemoryStores(rt.Memory)
	} else {
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{})
		if err != nil {
			return nil, err
		}
		rt.Pool = pool
		stores = accounting.PostgresStores(pool)
	}

	var reportCache *reports.Cache
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		rt.Redis = client
		reportCache = reports.NewCache(client, cfg.ReportCacheTTL)
	}

	rt.Module = accounting.NewModule(stores, accounting.Options{
		Cache:   reportCache,
		Metrics: metrics,
		Logger:  logger,
	})
	return rt, nil
}

// Close releases the pool and the Redis client.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.Logger.Warn("redis close", slog.Any("error", err))
		}
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}
