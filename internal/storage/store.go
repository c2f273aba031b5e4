package storage

import (
	"context"
	"errors"
	"time"
)

// TimestampLayout 记录时间戳格式（本地时间，秒精度）
const TimestampLayout = "2006-01-02 15:04:05"

// ErrNotFound 存储为空时读取最后一条/最后 N 条
var ErrNotFound = errors.New("no data available")

// Record 一条已接受的上报记录，创建后不可修改
type Record struct {
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// Store 只追加的记录存储。
// 约束：
// - 追加顺序即时间顺序，记录不会被修改或删除
// - All 在空存储上返回空切片而不是错误
// - Last/LastN 在空存储上返回 ErrNotFound
// - LastN(n<=0) 在非空存储上返回空切片；n 超过记录数时返回全部
type Store interface {
	Append(ctx context.Context, payload string) (Record, error)
	All(ctx context.Context) ([]Record, error)
	Last(ctx context.Context) (Record, error)
	LastN(ctx context.Context, n int) ([]Record, error)
	Close() error
}

// HealthChecker 可选接口，供健康检查使用
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Clock 时间来源，测试中可替换
type Clock func() time.Time

// Stamp 按 TimestampLayout 格式化本地时间
func Stamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// NewRecord 使用 clock 为 payload 打时间戳
func NewRecord(clock Clock, payload string) Record {
	if clock == nil {
		clock = time.Now
	}
	return Record{Timestamp: Stamp(clock()), Payload: payload}
}

// Tail 对内存中的有序记录实现 Last/LastN 语义
func Tail(records []Record, n int) ([]Record, error) {
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	if n <= 0 {
		return []Record{}, nil
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]Record, n)
	copy(out, records[len(records)-n:])
	return out, nil
}
