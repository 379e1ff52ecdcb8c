/*
 * @module service/reconcile/apply
 * @description 同步计划执行器，将 insert/update/delete 操作顺序应用到目标存储并汇报进度
 * @architecture 策略模式 - TargetStore 抽象目标存储，gorm 实现为默认后端
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 逐条执行 -> 进度回调 -> 错误收集 -> 汇总结果
 * @rules 单条失败不中断批次，结果携带逐条错误；大批次由调用方自行分片
 * @dependencies gorm.io/gorm, trackhub-service/service/models
 * @refs reconciler.go, service/models/import_models.go
 */

package reconcile

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackhub-service/service/models"
)

// TargetStore 目标存储抽象
type TargetStore interface {
	Insert(ctx context.Context, id string, data map[string]interface{}) error
	Update(ctx context.Context, id string, data map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// ProgressFunc 进度回调，done 为已处理条数（含失败），total 为总条数
type ProgressFunc func(done, total int)

// ApplySyncOperations 顺序执行同步计划，部分失败不中断
func ApplySyncOperations(ctx context.Context, ops []models.SyncOperation, store TargetStore, onProgress ProgressFunc) models.ApplyResult {
	result := models.ApplyResult{Succeeded: true}
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			result.Succeeded = false
			result.Errors = append(result.Errors, fmt.Sprintf("计划执行被取消: %v", err))
			return result
		}

		var err error
		switch op.Type {
		case models.OperationInsert:
			err = store.Insert(ctx, op.RecordID, op.Data)
		case models.OperationUpdate:
			err = store.Update(ctx, op.RecordID, op.Data)
		case models.OperationDelete:
			err = store.Delete(ctx, op.RecordID)
		default:
			err = fmt.Errorf("未知的操作类型: %s", op.Type)
		}

		if err != nil {
			result.Failed++
			result.Succeeded = false
			result.Errors = append(result.Errors, fmt.Sprintf("操作 %d (%s %s) 失败: %v", i+1, op.Type, op.RecordID, err))
		} else {
			result.Success++
		}
		if onProgress != nil {
			onProgress(i+1, len(ops))
		}
	}
	return result
}

// ShipmentStore 基于 gorm 的运单目标存储
type ShipmentStore struct {
	db *gorm.DB
}

// NewShipmentStore 创建运单存储
func NewShipmentStore(db *gorm.DB) *ShipmentStore {
	return &ShipmentStore{db: db}
}

// Insert 写入新运单记录，主键冲突时转为整行覆盖
func (s *ShipmentStore) Insert(ctx context.Context, id string, data map[string]interface{}) error {
	record := &models.ShipmentRecord{
		ID:   id,
		Data: models.JSONB(data),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(record).Error; err != nil {
		return fmt.Errorf("插入运单记录失败: %w", err)
	}
	return nil
}

// Update 更新运单记录数据
func (s *ShipmentStore) Update(ctx context.Context, id string, data map[string]interface{}) error {
	tx := s.db.WithContext(ctx).Model(&models.ShipmentRecord{}).
		Where("id = ?", id).
		Update("data", models.JSONB(data))
	if tx.Error != nil {
		return fmt.Errorf("更新运单记录失败: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("运单记录 %s 不存在", id)
	}
	return nil
}

// Delete 删除运单记录
func (s *ShipmentStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.ShipmentRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除运单记录失败: %w", err)
	}
	return nil
}
