/*
 * @module service/scheduler/task_executor
 * @description 导入任务执行器，串联抓取、管道执行、计划应用与结果落库
 * @architecture 分层架构 - 调度层，对管道纯函数做持久化编排
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 抓取源批次 -> 加载存量 -> 管道执行 -> 应用计划 -> 报告/审计落库 -> 事件发布
 * @rules 管道核心不落库，所有持久化与事件发布集中在本层
 * @dependencies gorm.io/gorm, trackhub-service/service/pipeline, trackhub-service/service/reconcile
 * @refs scheduler_service.go, fetchers.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"trackhub-service/client/connectors"
	"trackhub-service/service/correction"
	"trackhub-service/service/event"
	"trackhub-service/service/models"
	"trackhub-service/service/pipeline"
	"trackhub-service/service/reconcile"
)

// TaskExecutor 导入任务执行器
type TaskExecutor struct {
	db       *gorm.DB
	pipeline *pipeline.Pipeline
	events   *event.EventService
	feed     *connectors.MQTTConnector
}

// NewTaskExecutor 创建任务执行器
func NewTaskExecutor(db *gorm.DB, events *event.EventService, feed *connectors.MQTTConnector) *TaskExecutor {
	return &TaskExecutor{
		db:       db,
		pipeline: pipeline.NewPipeline(),
		events:   events,
		feed:     feed,
	}
}

// Execute 执行一次导入任务
func (e *TaskExecutor) Execute(ctx context.Context, taskID string) error {
	var task models.ImportTask
	if err := e.db.WithContext(ctx).First(&task, "id = ?", taskID).Error; err != nil {
		return fmt.Errorf("加载导入任务失败: %w", err)
	}

	e.events.PublishAsync(ctx, event.EventImportStarted, task.ID, task.Name, nil)

	result, err := e.runOnce(ctx, &task)
	if err != nil {
		e.events.PublishAsync(ctx, event.EventImportFailed, task.ID, task.Name, map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	e.events.PublishAsync(ctx, event.EventImportCompleted, task.ID, task.Name, map[string]interface{}{
		"records":       len(result.Reconciliation.Records),
		"new":           result.Reconciliation.Counts.New,
		"modified":      result.Reconciliation.Counts.Modified,
		"skipped":       result.Reconciliation.Counts.Skipped,
		"conflicts":     len(result.Reconciliation.Conflicts),
		"overall_score": result.Quality.OverallScore,
	})
	if len(result.Reconciliation.Conflicts) > 0 {
		e.events.PublishAsync(ctx, event.EventConflictPending, task.ID, task.Name, map[string]interface{}{
			"conflicts": len(result.Reconciliation.Conflicts),
		})
	}
	return nil
}

// runOnce 抓取、执行管道并应用计划
func (e *TaskExecutor) runOnce(ctx context.Context, task *models.ImportTask) (*pipeline.RunResult, error) {
	fetcher, err := NewFetcher(task, e.feed)
	if err != nil {
		return nil, err
	}
	source, err := fetcher.Fetch(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("抓取源批次失败: %w", err)
	}

	target, err := e.loadTarget(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := e.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	result, err := e.pipeline.Run(ctx, pipeline.RunInput{
		Source:       source,
		Target:       target,
		FieldMapping: fieldMappingOf(task),
		Rules:        rules,
		Config: models.IncrementalImportConfig{
			Strategy:           models.ImportStrategy(task.Strategy),
			ConflictResolution: models.ConflictResolution(task.Resolution),
			KeyFields:          task.KeyFields,
			SyncDirection:      models.SyncDirection(task.Direction),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := e.persistQualityReport(ctx, task.ID, result.Quality); err != nil {
		slog.Error("质量报告落库失败", "task_id", task.ID, "error", err)
	}
	e.applyPlan(ctx, task.ID, result.Reconciliation.AppliedChanges)

	now := time.Now()
	if err := e.db.WithContext(ctx).Model(task).Update("last_run_at", &now).Error; err != nil {
		slog.Error("更新任务执行时间失败", "task_id", task.ID, "error", err)
	}
	return result, nil
}

// loadTarget 加载存量运单作为对账目标批次
func (e *TaskExecutor) loadTarget(ctx context.Context) ([]map[string]interface{}, error) {
	var rows []models.ShipmentRecord
	if err := e.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("加载存量运单失败: %w", err)
	}
	target := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		target = append(target, map[string]interface{}(row.Data))
	}
	return target, nil
}

// loadRules 加载活动纠错规则，库为空时回退内置规则
func (e *TaskExecutor) loadRules(ctx context.Context) ([]models.CorrectionRule, error) {
	var defs []models.CorrectionRuleDef
	if err := e.db.WithContext(ctx).Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("加载纠错规则失败: %w", err)
	}
	if len(defs) == 0 {
		return correction.DefaultCorrectionRules(), nil
	}
	rules := make([]models.CorrectionRule, 0, len(defs))
	for _, def := range defs {
		rules = append(rules, def.ToRule())
	}
	return rules, nil
}

// persistQualityReport 质量报告落库
func (e *TaskExecutor) persistQualityReport(ctx context.Context, taskID string, report *models.DataQualityReport) error {
	metrics := make(models.JSONBArray, 0, len(report.Metrics))
	var criticalList []string
	for _, metric := range report.Metrics {
		metrics = append(metrics, models.JSONB{
			"name":   metric.Name,
			"score":  metric.Score,
			"weight": metric.Weight,
			"issues": metric.Issues,
		})
	}
	for _, metric := range report.Metrics {
		criticalList = append(criticalList, metric.Issues...)
	}

	record := models.QualityReportRecord{
		TaskID:       taskID,
		OverallScore: report.OverallScore,
		Summary: models.JSONB{
			"total_records":   report.Summary.TotalRecords,
			"valid_records":   report.Summary.ValidRecords,
			"invalid_records": report.Summary.InvalidRecords,
			"critical_issues": report.Summary.CriticalIssues,
			"warnings":        report.Summary.Warnings,
		},
		Metrics:      metrics,
		CriticalList: criticalList,
		GeneratedAt:  report.GeneratedAt,
	}
	return e.db.WithContext(ctx).Create(&record).Error
}

// applyPlan 执行应用计划并写审计记录
func (e *TaskExecutor) applyPlan(ctx context.Context, taskID string, ops []models.SyncOperation) {
	if len(ops) == 0 {
		return
	}
	store := reconcile.NewShipmentStore(e.db)
	applied := reconcile.ApplySyncOperations(ctx, ops, store, func(done, total int) {
		if done == total || done%500 == 0 {
			slog.Info("应用计划进度", "task_id", taskID, "done", done, "total", total)
		}
	})
	for _, errMsg := range applied.Errors {
		slog.Error("应用计划部分失败", "task_id", taskID, "error", errMsg)
	}

	for _, op := range ops {
		audit := models.AppliedChangeRecord{
			TaskID:    taskID,
			RecordID:  op.RecordID,
			Operation: string(op.Type),
			Data:      models.JSONB(op.Data),
			AppliedAt: time.Now(),
		}
		if err := e.db.WithContext(ctx).Create(&audit).Error; err != nil {
			slog.Error("审计记录写入失败", "task_id", taskID, "record_id", op.RecordID, "error", err)
		}
	}
}

// fieldMappingOf 任务的列映射，JSONB值转为字符串
func fieldMappingOf(task *models.ImportTask) map[string]string {
	mapping := make(map[string]string, len(task.FieldMapping))
	for col, field := range task.FieldMapping {
		if s, ok := field.(string); ok && s != "" {
			mapping[col] = s
		}
	}
	return mapping
}
