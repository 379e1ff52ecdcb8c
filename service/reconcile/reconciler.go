/*
 * @module service/reconcile/reconciler
 * @description 增量对账引擎，对源/目标批次按键字段哈希建立身份，分类 new/modified/deleted 并按策略解决冲突
 * @architecture 引擎模式 - 纯函数式差异计算，应用计划交由 apply.go 执行
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 身份哈希 -> 差异分类 -> 冲突解决 -> 计划/冲突输出
 * @rules 数据形态问题绝不向外抛出，结果以 errors 列表返回；manual 冲突只记录不自动应用
 * @dependencies github.com/spf13/cast, trackhub-service/service/models
 * @refs record_id.go, config.go, apply.go
 */

package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"trackhub-service/service/models"
)

// 对账时不参与字段比较的簿记字段
var bookkeepingFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// Reconciler 增量对账引擎
type Reconciler struct{}

// NewReconciler 创建对账引擎
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile 对源批次与目标批次执行一轮增量对账
func (r *Reconciler) Reconcile(ctx context.Context, source, target []map[string]interface{}, config models.IncrementalImportConfig) (result *models.IncrementalImportResult) {
	result = &models.IncrementalImportResult{
		Records:        []models.SyncRecord{},
		Conflicts:      []models.SyncRecord{},
		AppliedChanges: []models.SyncOperation{},
		Errors:         []string{},
		ProcessedAt:    time.Now(),
	}
	// 任何意外 panic 都收敛为带错误的全跳过结果
	defer func() {
		if rec := recover(); rec != nil {
			result.Counts = models.ImportCounts{Skipped: len(source)}
			result.Records = []models.SyncRecord{}
			result.Conflicts = []models.SyncRecord{}
			result.AppliedChanges = []models.SyncOperation{}
			result.Errors = append(result.Errors, fmt.Sprintf("对账过程发生异常: %v", rec))
		}
	}()

	if validation := ValidateConfig(config); !validation.IsValid {
		result.Counts = models.ImportCounts{Skipped: len(source)}
		result.Errors = append(result.Errors, validation.Errors...)
		return result
	}

	sourceByID, sourceOrder := indexByID(source, config.KeyFields)
	targetByID, targetOrder := indexByID(target, config.KeyFields)

	now := time.Now()
	for _, id := range sourceOrder {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("对账被取消: %v", err))
			return result
		}
		srcRecord := sourceByID[id]
		tgtRecord, exists := targetByID[id]
		if !exists {
			r.handleNew(result, id, srcRecord, config, now)
			continue
		}
		r.handleExisting(result, id, srcRecord, tgtRecord, config, now)
	}

	// 删除检测仅在 merge 策略下进行
	if config.Strategy == models.StrategyMerge {
		for _, id := range targetOrder {
			if _, exists := sourceByID[id]; exists {
				continue
			}
			r.handleMissing(result, id, targetByID[id], config, now)
		}
	}
	return result
}

// indexByID 构建 id -> 记录索引并保留首次出现顺序
func indexByID(records []map[string]interface{}, keyFields []string) (map[string]map[string]interface{}, []string) {
	byID := make(map[string]map[string]interface{}, len(records))
	order := make([]string, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		id := RecordID(record, keyFields)
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = record
	}
	return byID, order
}

// handleNew 源端存在而目标端缺失：replace 策略不引入新记录
func (r *Reconciler) handleNew(result *models.IncrementalImportResult, id string, src map[string]interface{}, config models.IncrementalImportConfig, now time.Time) {
	record := models.SyncRecord{
		ID:           id,
		SourceData:   src,
		ConflictType: models.ConflictNew,
		Timestamp:    now,
	}
	if config.Strategy == models.StrategyReplace {
		record.Resolution = models.ResolveSkip
		result.Records = append(result.Records, record)
		result.Counts.Skipped++
		return
	}
	record.Resolution = models.ResolveSource
	result.Records = append(result.Records, record)
	result.AppliedChanges = append(result.AppliedChanges, models.SyncOperation{
		Type:     models.OperationInsert,
		RecordID: id,
		Data:     src,
	})
	result.Counts.New++
}

// handleExisting 双端都存在：按非键字段差异决定 modified/skip
func (r *Reconciler) handleExisting(result *models.IncrementalImportResult, id string, src, tgt map[string]interface{}, config models.IncrementalImportConfig, now time.Time) {
	changed := diffFields(src, tgt, config.KeyFields)
	if len(changed) == 0 {
		result.Counts.Skipped++
		return
	}

	record := models.SyncRecord{
		ID:            id,
		SourceData:    src,
		TargetData:    tgt,
		ConflictType:  models.ConflictModified,
		Timestamp:     now,
		ChangedFields: changed,
	}

	resolution := config.ConflictResolution
	if resolution == models.ResolutionNewerWins {
		if sourceIsNewer(src, tgt) {
			resolution = models.ResolutionSourceWins
		} else {
			resolution = models.ResolutionTargetWins
		}
	}

	switch resolution {
	case models.ResolutionManual:
		record.ConflictType = models.ConflictConflict
		record.SourceValues = pickFields(src, changed)
		result.Records = append(result.Records, record)
		result.Conflicts = append(result.Conflicts, record)
		result.Counts.Modified++
	case models.ResolutionSourceWins:
		record.Resolution = models.ResolveMerged
		result.Records = append(result.Records, record)
		result.AppliedChanges = append(result.AppliedChanges, models.SyncOperation{
			Type:     models.OperationUpdate,
			RecordID: id,
			Data:     shallowMerge(tgt, src),
		})
		result.Counts.Modified++
	case models.ResolutionTargetWins:
		record.Resolution = models.ResolveMerged
		result.Records = append(result.Records, record)
		result.AppliedChanges = append(result.AppliedChanges, models.SyncOperation{
			Type:     models.OperationUpdate,
			RecordID: id,
			Data:     shallowMerge(tgt, nil),
		})
		result.Counts.Modified++
	}
}

// handleMissing 目标端存在而源端缺失：双向同步交人工裁决，单向同步不静默删除
func (r *Reconciler) handleMissing(result *models.IncrementalImportResult, id string, tgt map[string]interface{}, config models.IncrementalImportConfig, now time.Time) {
	record := models.SyncRecord{
		ID:           id,
		TargetData:   tgt,
		ConflictType: models.ConflictDeleted,
		Timestamp:    now,
	}
	if config.SyncDirection == models.DirectionBidirectional {
		record.ConflictType = models.ConflictConflict
		result.Records = append(result.Records, record)
		result.Conflicts = append(result.Conflicts, record)
		result.Counts.Deleted++
		return
	}
	record.Resolution = models.ResolveSkip
	result.Records = append(result.Records, record)
	result.Counts.Skipped++
}

// diffFields 比较除键字段与簿记字段外的全部字段，返回排序后的差异字段名
func diffFields(src, tgt map[string]interface{}, keyFields []string) []string {
	keys := make(map[string]bool, len(keyFields))
	for _, k := range keyFields {
		keys[k] = true
	}

	fields := make(map[string]bool, len(src)+len(tgt))
	for k := range src {
		fields[k] = true
	}
	for k := range tgt {
		fields[k] = true
	}

	var changed []string
	for field := range fields {
		if keys[field] || bookkeepingFields[field] {
			continue
		}
		srcVal := strings.TrimSpace(cast.ToString(src[field]))
		tgtVal := strings.TrimSpace(cast.ToString(tgt[field]))
		if srcVal != tgtVal {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)
	return changed
}

// sourceIsNewer 比较时间戳，源端严格更新才算新
func sourceIsNewer(src, tgt map[string]interface{}) bool {
	srcTime := recordTime(src)
	tgtTime := recordTime(tgt)
	return srcTime.After(tgtTime)
}

// recordTime 取 updated_at，缺失时回退 created_at，解析失败为零值
func recordTime(record map[string]interface{}) time.Time {
	for _, field := range []string{"updated_at", "created_at"} {
		raw, exists := record[field]
		if !exists || raw == nil {
			continue
		}
		if t, err := cast.ToTimeE(raw); err == nil && !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// shallowMerge 以 base 为底、overlay 覆盖的浅合并，入参不被修改
func shallowMerge(base, overlay map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// pickFields 抽取指定字段的源端值
func pickFields(record map[string]interface{}, fields []string) map[string]interface{} {
	picked := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		picked[f] = record[f]
	}
	return picked
}
