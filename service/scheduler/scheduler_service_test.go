/*
 * @module service/scheduler/scheduler_service_test
 * @description 任务调度器测试
 * @architecture 单元测试 - 内存假锁验证抢锁、续期与释放流程
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 假锁构造 -> 触发任务 -> 锁交互验证
 * @rules 未抢到锁不得执行任务，持锁执行期间必须周期续期
 * @dependencies testing
 * @refs scheduler_service.go
 */

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trackhub-service/service/event"
	"trackhub-service/testutil"
)

// fakeLock 内存分布式锁，记录各操作调用次数
type fakeLock struct {
	mu        sync.Mutex
	acquire   bool
	locked    bool
	lockErr   error
	refreshes int
	unlocks   int
}

func (f *fakeLock) TryLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquire, f.lockErr
}

func (f *fakeLock) Unlock(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks++
	return nil
}

func (f *fakeLock) Refresh(_ context.Context, _ string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakeLock) IsLocked(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked, f.lockErr
}

func (f *fakeLock) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func newTestScheduler(t *testing.T, lock *fakeLock) *SchedulerService {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	executor := NewTaskExecutor(tdb.DB, event.NewEventService(), nil)
	return NewSchedulerService(tdb.DB, executor, lock)
}

func TestTriggerTaskLockFlow(t *testing.T) {
	t.Run("抢到锁后执行并释放", func(t *testing.T) {
		lock := &fakeLock{acquire: true}
		s := newTestScheduler(t, lock)

		s.TriggerTask(context.Background(), "missing-task")
		assert.Equal(t, 1, lock.unlocks)
	})

	t.Run("未抢到锁静默跳过", func(t *testing.T) {
		lock := &fakeLock{acquire: false}
		s := newTestScheduler(t, lock)

		s.TriggerTask(context.Background(), "missing-task")
		assert.Equal(t, 0, lock.unlocks)
	})

	t.Run("抢锁失败不执行", func(t *testing.T) {
		lock := &fakeLock{lockErr: fmt.Errorf("redis不可用")}
		s := newTestScheduler(t, lock)

		s.TriggerTask(context.Background(), "missing-task")
		assert.Equal(t, 0, lock.unlocks)
	})
}

func TestKeepLockAlive(t *testing.T) {
	original := lockRefreshInterval
	lockRefreshInterval = 5 * time.Millisecond
	defer func() { lockRefreshInterval = original }()

	lock := &fakeLock{acquire: true}
	s := NewSchedulerService(nil, nil, lock)

	stop := s.keepLockAlive(context.Background(), "task-1")
	time.Sleep(40 * time.Millisecond)
	stop()
	refreshed := lock.refreshCount()
	assert.GreaterOrEqual(t, refreshed, 1)

	// 停止后不再续期
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, refreshed, lock.refreshCount())
}

func TestIsRunning(t *testing.T) {
	t.Run("单实例模式恒为否", func(t *testing.T) {
		s := NewSchedulerService(nil, nil, nil)
		assert.False(t, s.IsRunning(context.Background(), "task-1"))
	})

	t.Run("锁存在表示任务在执行", func(t *testing.T) {
		s := NewSchedulerService(nil, nil, &fakeLock{locked: true})
		assert.True(t, s.IsRunning(context.Background(), "task-1"))
	})

	t.Run("检查失败按未执行处理", func(t *testing.T) {
		s := NewSchedulerService(nil, nil, &fakeLock{lockErr: fmt.Errorf("redis不可用")})
		assert.False(t, s.IsRunning(context.Background(), "task-1"))
	})
}
