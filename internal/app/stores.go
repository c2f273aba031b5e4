package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/api"
	cfgpkg "github.com/taoyao-code/frame-ingest/internal/config"
	"github.com/taoyao-code/frame-ingest/internal/migrate"
	"github.com/taoyao-code/frame-ingest/internal/storage"
	"github.com/taoyao-code/frame-ingest/internal/storage/csvstore"
	"github.com/taoyao-code/frame-ingest/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/frame-ingest/internal/storage/pg"
	redisstorage "github.com/taoyao-code/frame-ingest/internal/storage/redis"
)

// surfaceEntry 已启用的接入面及其配置
type surfaceEntry struct {
	name string
	cfg  cfgpkg.SurfaceConfig
}

func enabledSurfaces(cfg *cfgpkg.Config) []surfaceEntry {
	var out []surfaceEntry
	if cfg.Surfaces.Frame.Enabled {
		out = append(out, surfaceEntry{name: api.SurfaceFrame, cfg: cfg.Surfaces.Frame})
	}
	if cfg.Surfaces.Payload.Enabled {
		out = append(out, surfaceEntry{name: api.SurfacePayload, cfg: cfg.Surfaces.Payload})
	}
	return out
}

// Stores 每个接入面一个独立存储，以及后端共享的连接
type Stores struct {
	byName    map[string]storage.Store
	order     []string
	redis     *redisstorage.Client
	redisKeys []string
	pool      *pgxpool.Pool
}

// Get 按接入面名称取存储
func (s *Stores) Get(name string) storage.Store { return s.byName[name] }

// Names 按启用顺序返回接入面名称
func (s *Stores) Names() []string { return s.order }

func (s *Stores) add(name string, st storage.Store) {
	if s.byName == nil {
		s.byName = make(map[string]storage.Store)
	}
	s.byName[name] = st
	s.order = append(s.order, name)
}

// Close 关闭所有存储与后端连接
func (s *Stores) Close() error {
	var errs []error
	for _, name := range s.order {
		if err := s.byName[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store %s: %w", name, err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}

// OpenStores 按 storage.backend 打开各接入面的存储
func OpenStores(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) (*Stores, error) {
	stores := &Stores{}
	surfaces := enabledSurfaces(cfg)

	switch cfg.Storage.Backend {
	case cfgpkg.BackendCSV:
		for _, e := range surfaces {
			path := filepath.Join(cfg.Storage.CSVDir, e.cfg.StoreName+".csv")
			st, err := csvstore.Open(path, e.cfg.Field)
			if err != nil {
				_ = stores.Close()
				return nil, fmt.Errorf("open csv store %s: %w", e.name, err)
			}
			stores.add(e.name, st)
			log.Info("csv store opened", zap.String("surface", e.name), zap.String("path", path))
		}

	case cfgpkg.BackendRedis:
		client, err := redisstorage.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		stores.redis = client
		log.Info("redis client initialized",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("pool_size", cfg.Redis.PoolSize))
		for _, e := range surfaces {
			key := cfg.Redis.KeyPrefix + e.cfg.StoreName
			stores.add(e.name, redisstorage.NewRecordStore(client.Client, key, nil))
			stores.redisKeys = append(stores.redisKeys, key)
			log.Info("redis store ready", zap.String("surface", e.name), zap.String("key", key))
		}

	case cfgpkg.BackendPostgres:
		pool, err := pgstorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		stores.pool = pool
		if err := (migrate.Runner{}).Up(ctx, pool); err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		log.Info("db migrations applied")
		db, err := gormrepo.Open(pool)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		for _, e := range surfaces {
			stores.add(e.name, gormrepo.New(db, e.cfg.StoreName, nil))
			log.Info("postgres store ready", zap.String("surface", e.name), zap.String("surface_key", e.cfg.StoreName))
		}

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return stores, nil
}
