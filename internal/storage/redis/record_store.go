package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// RecordStore 基于 Redis List 的记录存储
// 数据结构: key=<prefix><surface>, 每个元素为一条 JSON 记录, RPUSH 追加
type RecordStore struct {
	rdb   redis.Cmdable
	key   string
	clock storage.Clock
}

// NewRecordStore 创建 Redis 记录存储；rdb 的生命周期由调用方管理
func NewRecordStore(rdb redis.Cmdable, key string, clock storage.Clock) *RecordStore {
	if clock == nil {
		clock = time.Now
	}
	return &RecordStore{rdb: rdb, key: key, clock: clock}
}

// Key 存储使用的 Redis 键
func (s *RecordStore) Key() string { return s.key }

// Append 追加记录，RPUSH 本身是原子的
func (s *RecordStore) Append(ctx context.Context, payload string) (storage.Record, error) {
	rec := storage.NewRecord(s.clock, payload)
	data, err := json.Marshal(rec)
	if err != nil {
		return storage.Record{}, fmt.Errorf("marshal record: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.key, data).Err(); err != nil {
		return storage.Record{}, fmt.Errorf("rpush %s: %w", s.key, err)
	}
	return rec, nil
}

// All 返回全部记录
func (s *RecordStore) All(ctx context.Context) ([]storage.Record, error) {
	return s.lrange(ctx, 0, -1)
}

// Last 返回最后一条记录
func (s *RecordStore) Last(ctx context.Context) (storage.Record, error) {
	raw, err := s.rdb.LIndex(ctx, s.key, -1).Result()
	if errors.Is(err, redis.Nil) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("lindex %s: %w", s.key, err)
	}
	return decodeRecord(raw)
}

// LastN 返回最后 n 条记录
func (s *RecordStore) LastN(ctx context.Context, n int) ([]storage.Record, error) {
	if n <= 0 {
		size, err := s.rdb.LLen(ctx, s.key).Result()
		if err != nil {
			return nil, fmt.Errorf("llen %s: %w", s.key, err)
		}
		if size == 0 {
			return nil, storage.ErrNotFound
		}
		return []storage.Record{}, nil
	}

	recs, err := s.lrange(ctx, -int64(n), -1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, storage.ErrNotFound
	}
	return recs, nil
}

func (s *RecordStore) lrange(ctx context.Context, start, stop int64) ([]storage.Record, error) {
	items, err := s.rdb.LRange(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", s.key, err)
	}
	out := make([]storage.Record, 0, len(items))
	for _, raw := range items {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(raw string) (storage.Record, error) {
	var rec storage.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return storage.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// HealthCheck Ping 测试
func (s *RecordStore) HealthCheck(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close 客户端由调用方关闭，这里不做处理
func (s *RecordStore) Close() error { return nil }
