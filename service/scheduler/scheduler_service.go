/*
 * @module service/scheduler/scheduler_service
 * @description 导入任务调度器服务，按Cron表达式定时触发导入任务
 * @architecture 基于robfig/cron的调度器模式，分布式锁防止多实例重复执行
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 加载启用任务 -> 注册Cron -> 触发时抢锁 -> 执行器执行
 * @rules 未抢到锁的触发静默跳过，持锁执行期间周期续期；任务增删改后需调用Reload重建调度表
 * @dependencies github.com/robfig/cron/v3, trackhub-service/service/distributed_lock
 * @refs task_executor.go, service/init.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"trackhub-service/service/distributed_lock"
	"trackhub-service/service/models"
)

// 单个任务执行的锁TTL，覆盖最长预期执行时间
const taskLockTTL = 10 * time.Minute

// 锁续期周期，测试可缩短
var lockRefreshInterval = taskLockTTL / 3

// SchedulerService 导入任务调度器
type SchedulerService struct {
	db       *gorm.DB
	cron     *cron.Cron
	executor *TaskExecutor
	lock     distributed_lock.DistributedLock
	mutex    sync.Mutex
	entries  map[string]cron.EntryID // taskID -> cron条目
}

// NewSchedulerService 创建调度器，lock 为 nil 时退化为单实例模式
func NewSchedulerService(db *gorm.DB, executor *TaskExecutor, lock distributed_lock.DistributedLock) *SchedulerService {
	return &SchedulerService{
		db:       db,
		cron:     cron.New(),
		executor: executor,
		lock:     lock,
		entries:  make(map[string]cron.EntryID),
	}
}

// Start 加载任务并启动调度
func (s *SchedulerService) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("导入任务调度器已启动")
	return nil
}

// Stop 停止调度，等待在途任务结束
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("导入任务调度器已停止")
}

// Reload 重建调度表，任务定义变更后调用
func (s *SchedulerService) Reload() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskID, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, taskID)
	}

	var tasks []models.ImportTask
	if err := s.db.Where("is_enabled = ? AND cron_expr <> ''", true).Find(&tasks).Error; err != nil {
		return fmt.Errorf("加载定时任务失败: %w", err)
	}

	for _, task := range tasks {
		taskID := task.ID
		entryID, err := s.cron.AddFunc(task.CronExpr, func() {
			s.TriggerTask(context.Background(), taskID)
		})
		if err != nil {
			slog.Error("注册定时任务失败", "task_id", taskID, "cron", task.CronExpr, "error", err)
			continue
		}
		s.entries[taskID] = entryID
	}

	slog.Info("调度表已重建", "scheduled", len(s.entries))
	return nil
}

// TriggerTask 触发一次任务执行，多实例环境下先抢分布式锁
func (s *SchedulerService) TriggerTask(ctx context.Context, taskID string) {
	if s.lock != nil {
		acquired, err := s.lock.TryLock(ctx, taskID, taskLockTTL)
		if err != nil {
			slog.Error("获取任务锁失败", "task_id", taskID, "error", err)
			return
		}
		if !acquired {
			slog.Debug("任务已被其他实例执行，跳过", "task_id", taskID)
			return
		}
		defer func() {
			if err := s.lock.Unlock(ctx, taskID); err != nil {
				slog.Warn("释放任务锁失败", "task_id", taskID, "error", err)
			}
		}()
		// 执行超过TTL时锁会过期，续期保证长任务不被其他实例抢走
		stopRefresh := s.keepLockAlive(ctx, taskID)
		defer stopRefresh()
	}

	start := time.Now()
	if err := s.executor.Execute(ctx, taskID); err != nil {
		slog.Error("导入任务执行失败", "task_id", taskID, "error", err)
		return
	}
	slog.Info("导入任务执行完成", "task_id", taskID, "duration", time.Since(start))
}

// keepLockAlive 任务执行期间周期续期锁，返回的停止函数结束续期协程
func (s *SchedulerService) keepLockAlive(ctx context.Context, taskID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(lockRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.lock.Refresh(ctx, taskID, taskLockTTL); err != nil {
					slog.Warn("任务锁续期失败", "task_id", taskID, "error", err)
				}
			}
		}
	}()
	return func() { close(done) }
}

// IsRunning 检查任务是否正在被任一实例执行；单实例模式恒为否
func (s *SchedulerService) IsRunning(ctx context.Context, taskID string) bool {
	if s.lock == nil {
		return false
	}
	locked, err := s.lock.IsLocked(ctx, taskID)
	if err != nil {
		slog.Warn("检查任务锁状态失败", "task_id", taskID, "error", err)
		return false
	}
	return locked
}
