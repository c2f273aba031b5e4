package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taoyao-code/frame-ingest/internal/storage"
	"github.com/taoyao-code/frame-ingest/internal/storage/models"
)

// Open 基于已有 pgx 连接池创建 *gorm.DB，复用同一个池
func Open(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return db, nil
}

// Repository 基于 GORM 的 storage.Store 实现，每个接入面一个实例共享同一张表。
type Repository struct {
	db      *gorm.DB
	surface string
	clock   storage.Clock
}

// New 返回一个使用给定 *gorm.DB 的记录存储
func New(db *gorm.DB, surface string, clock storage.Clock) *Repository {
	if clock == nil {
		clock = time.Now
	}
	return &Repository{db: db, surface: surface, clock: clock}
}

func (r *Repository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.IngestRecord{}).Where("surface = ?", r.surface)
}

// Append 插入一行
func (r *Repository) Append(ctx context.Context, payload string) (storage.Record, error) {
	rec := storage.NewRecord(r.clock, payload)
	row := &models.IngestRecord{
		Surface:    r.surface,
		RecordedAt: rec.Timestamp,
		Payload:    rec.Payload,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return storage.Record{}, err
	}
	return rec, nil
}

// All 按 id 升序返回全部记录
func (r *Repository) All(ctx context.Context) ([]storage.Record, error) {
	var rows []models.IngestRecord
	if err := r.scoped(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// Last 返回 id 最大的一条
func (r *Repository) Last(ctx context.Context) (storage.Record, error) {
	var row models.IngestRecord
	err := r.scoped(ctx).Order("id DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, err
	}
	return toRecord(row), nil
}

// LastN 取最后 n 条，按追加顺序返回
func (r *Repository) LastN(ctx context.Context, n int) ([]storage.Record, error) {
	if n <= 0 {
		var count int64
		if err := r.scoped(ctx).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, storage.ErrNotFound
		}
		return []storage.Record{}, nil
	}

	var rows []models.IngestRecord
	if err := r.scoped(ctx).Order("id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	slices.Reverse(rows)
	return toRecords(rows), nil
}

// HealthCheck 探活
func (r *Repository) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 连接池由调用方关闭
func (r *Repository) Close() error { return nil }

func toRecord(row models.IngestRecord) storage.Record {
	return storage.Record{Timestamp: row.RecordedAt, Payload: row.Payload}
}

func toRecords(rows []models.IngestRecord) []storage.Record {
	out := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out
}
