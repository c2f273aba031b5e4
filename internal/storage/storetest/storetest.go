// Package storetest 提供 storage.Store 实现的通用一致性测试
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// Factory 创建一个空的存储实例，使用给定时钟打时间戳
type Factory func(t *testing.T, clock storage.Clock) storage.Store

// StepClock 每次调用前进一秒的时钟
type StepClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStepClock 从 start 开始计时
func NewStepClock(start time.Time) *StepClock {
	return &StepClock{now: start}
}

// Now 返回当前时间并前进一秒
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

// Run 执行全部一致性用例
func Run(t *testing.T, newStore Factory) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	ctx := context.Background()

	t.Run("空存储", func(t *testing.T) {
		s := newStore(t, NewStepClock(start).Now)

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = s.Last(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.LastN(ctx, 3)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.LastN(ctx, 0)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("追加后读取最后一条", func(t *testing.T) {
		s := newStore(t, NewStepClock(start).Now)

		rec, err := s.Append(ctx, "010401e3")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-02 03:04:05", rec.Timestamp)
		assert.Equal(t, "010401e3", rec.Payload)

		last, err := s.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, rec, last)
	})

	t.Run("追加顺序", func(t *testing.T) {
		s := newStore(t, NewStepClock(start).Now)

		var want []storage.Record
		for i := 0; i < 5; i++ {
			rec, err := s.Append(ctx, fmt.Sprintf("frame-%d", i))
			require.NoError(t, err)
			want = append(want, rec)
		}

		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, all)

		last, err := s.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, want[4], last)

		two, err := s.LastN(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, want[3:], two)

		more, err := s.LastN(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, want, more)

		zero, err := s.LastN(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, zero)

		neg, err := s.LastN(ctx, -1)
		require.NoError(t, err)
		assert.Empty(t, neg)
	})

	t.Run("并发追加", func(t *testing.T) {
		s := newStore(t, NewStepClock(start).Now)

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Append(ctx, fmt.Sprintf("p%02d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		all, err := s.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, n)
		seen := make(map[string]bool, n)
		for _, r := range all {
			seen[r.Payload] = true
		}
		assert.Len(t, seen, n)
	})
}
