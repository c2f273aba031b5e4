// Package csvstore 基于两列 CSV 文件的只追加记录存储。
//
// 文件格式：
//
//	timestamp,frame
//	2025-01-02 03:04:05,010401e3
//
// 文件不存在时在打开时创建（只有表头）。进程独占该文件，
// 启动时全部读入内存，之后每次追加同时写文件与内存。
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// HeaderTimestamp 时间戳列名
const HeaderTimestamp = "timestamp"

// Store CSV 记录存储
type Store struct {
	mu      sync.RWMutex
	path    string
	column  string
	f       *os.File
	records []storage.Record
	clock   storage.Clock
}

// Option 配置项
type Option func(*Store)

// WithClock 替换时间来源
func WithClock(clock storage.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// Open 打开（必要时创建）path 处的 CSV 文件，column 为第二列列名（frame/payload）
func Open(path, column string, opts ...Option) (*Store, error) {
	if column == "" {
		return nil, errors.New("csvstore: empty column name")
	}
	s := &Store{path: path, column: column, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csvstore: create dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("csvstore: open %s: %w", path, err)
	}
	if err := s.load(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csvstore: seek: %w", err)
	}
	s.f = f
	return s, nil
}

// load 读取已有记录；空文件写入表头
func (s *Store) load(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("csvstore: stat: %w", err)
	}
	if info.Size() == 0 {
		return s.writeRow(f, HeaderTimestamp, s.column)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("csvstore: read header: %w", err)
	}
	if header[0] != HeaderTimestamp {
		return fmt.Errorf("csvstore: unexpected header %v in %s", header, s.path)
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("csvstore: read %s: %w", s.path, err)
		}
		s.records = append(s.records, storage.Record{Timestamp: row[0], Payload: row[1]})
	}

	// 上次写入未以换行结束时补齐，避免新行拼接到旧行
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("csvstore: read tail: %w", err)
	}
	if last[0] != '\n' {
		if _, err := f.WriteAt([]byte("\n"), info.Size()); err != nil {
			return fmt.Errorf("csvstore: repair tail: %w", err)
		}
	}
	return nil
}

func (s *Store) writeRow(f *os.File, fields ...string) error {
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvstore: seek: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("csvstore: write: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvstore: flush: %w", err)
	}
	return f.Sync()
}

// Append 追加一条记录并落盘
func (s *Store) Append(_ context.Context, payload string) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return storage.Record{}, os.ErrClosed
	}

	rec := storage.NewRecord(s.clock, payload)
	if err := s.writeRow(s.f, rec.Timestamp, rec.Payload); err != nil {
		return storage.Record{}, err
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// All 返回全部记录的副本
func (s *Store) All(_ context.Context) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Last 返回最后一条记录
func (s *Store) Last(ctx context.Context) (storage.Record, error) {
	recs, err := s.LastN(ctx, 1)
	if err != nil {
		return storage.Record{}, err
	}
	return recs[0], nil
}

// LastN 返回最后 n 条记录
func (s *Store) LastN(_ context.Context, n int) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storage.Tail(s.records, n)
}

// HealthCheck 检查文件仍可访问
func (s *Store) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.f == nil {
		return os.ErrClosed
	}
	_, err := s.f.Stat()
	return err
}

// Path 数据文件路径
func (s *Store) Path() string { return s.path }

// Close 关闭文件
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
