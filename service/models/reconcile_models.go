/*
 * @module service/models/reconcile_models
 * @description 增量对账相关模型，定义同步记录、导入配置、差异结果与应用计划
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 键值哈希 -> 差异分类 -> 冲突解决 -> 应用计划输出
 * @rules 每条记录每轮对账只做一次解决决策，manual 冲突绝不自动应用
 * @dependencies time
 * @refs service/reconcile/reconciler.go
 */

package models

import "time"

// ImportStrategy 导入策略
type ImportStrategy string

const (
	StrategyMerge   ImportStrategy = "merge"
	StrategyReplace ImportStrategy = "replace"
	StrategyAppend  ImportStrategy = "append"
)

// ConflictResolution 冲突解决策略
type ConflictResolution string

const (
	ResolutionNewerWins  ConflictResolution = "newer_wins"
	ResolutionSourceWins ConflictResolution = "source_wins"
	ResolutionTargetWins ConflictResolution = "target_wins"
	ResolutionManual     ConflictResolution = "manual"
)

// SyncDirection 同步方向
type SyncDirection string

const (
	DirectionUnidirectional SyncDirection = "unidirectional"
	DirectionBidirectional  SyncDirection = "bidirectional"
)

// ConflictType 记录差异分类，每条记录恰好属于一类
type ConflictType string

const (
	ConflictNew      ConflictType = "new"
	ConflictModified ConflictType = "modified"
	ConflictDeleted  ConflictType = "deleted"
	ConflictConflict ConflictType = "conflict"
)

// Resolution 记录的解决方式
type Resolution string

const (
	ResolveSource Resolution = "source"
	ResolveTarget Resolution = "target"
	ResolveMerged Resolution = "merged"
	ResolveSkip   Resolution = "skip"
)

// SyncRecord 一条对账单元
type SyncRecord struct {
	ID            string                 `json:"id"` // 由键字段值确定性哈希得出
	SourceData    map[string]interface{} `json:"source_data"`
	TargetData    map[string]interface{} `json:"target_data"` // 新增记录时为空
	ConflictType  ConflictType           `json:"conflict_type"`
	Resolution    Resolution             `json:"resolution,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields []string               `json:"changed_fields,omitempty"` // 供人工裁决
	SourceValues  map[string]interface{} `json:"source_values,omitempty"`  // 冲突字段的源端值
}

// IncrementalImportConfig 增量导入配置
type IncrementalImportConfig struct {
	Strategy           ImportStrategy     `json:"strategy"`
	ConflictResolution ConflictResolution `json:"conflict_resolution"`
	KeyFields          []string           `json:"key_fields"` // 有序，共同定义记录身份
	SyncDirection      SyncDirection      `json:"sync_direction"`
}

// SyncOperationType 应用操作类型
type SyncOperationType string

const (
	OperationInsert SyncOperationType = "insert"
	OperationUpdate SyncOperationType = "update"
	OperationDelete SyncOperationType = "delete"
)

// SyncOperation 一条待应用的变更
type SyncOperation struct {
	Type     SyncOperationType      `json:"type"`
	RecordID string                 `json:"record_id"`
	Data     map[string]interface{} `json:"data"`
}

// ImportCounts 分类计数
type ImportCounts struct {
	New      int `json:"new"`
	Modified int `json:"modified"`
	Deleted  int `json:"deleted"`
	Skipped  int `json:"skipped"`
}

// IncrementalImportResult 一轮对账的完整结果
type IncrementalImportResult struct {
	Counts         ImportCounts    `json:"counts"`
	Records        []SyncRecord    `json:"records"`         // 全量差异清单
	Conflicts      []SyncRecord    `json:"conflicts"`       // 待人工裁决子集
	AppliedChanges []SyncOperation `json:"applied_changes"` // 待执行的具体变更
	Errors         []string        `json:"errors"`
	ProcessedAt    time.Time       `json:"processed_at"`
}

// ConfigValidation 配置校验结果，纯检查器，不抛错
type ConfigValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// ApplyResult 应用计划的执行结果，部分失败不中断
type ApplyResult struct {
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	Succeeded bool     `json:"succeeded"` // 任一操作失败则为 false
	Errors    []string `json:"errors,omitempty"`
}
