/*
 * @module service/models/correction_models
 * @description 智能纠错相关模型，定义纠错规则、替换方式和纠错结果
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 规则配置 -> 规则过滤排序 -> 逐条应用 -> 置信度汇总
 * @rules 规则按优先级升序应用，优先级1置信0.9、2置信0.7、其余0.5
 * @dependencies time
 * @refs service/correction/rule_engine.go
 */

package models

import "time"

// ReplacementKind 替换方式
type ReplacementKind string

const (
	ReplacementLiteral   ReplacementKind = "literal"   // 字面替换，支持 $1 分组引用
	ReplacementTransform ReplacementKind = "transform" // 内置转换函数
	ReplacementScript    ReplacementKind = "script"    // yaegi 脚本转换
)

// CorrectionRule 纠错规则
type CorrectionRule struct {
	ID          string          `json:"id"`
	Field       string          `json:"field"`   // 目标语义字段
	Pattern     string          `json:"pattern"` // 匹配正则，按不区分大小写编译
	Kind        ReplacementKind `json:"kind"`
	Replacement string          `json:"replacement"` // literal：替换串；transform：函数名；script：脚本源码
	Enabled     bool            `json:"enabled"`
	Priority    int             `json:"priority"` // 数值小的先应用
	Description string          `json:"description"`
}

// CorrectionResult 单个值的纠错结果
type CorrectionResult struct {
	OriginalValue  string   `json:"original_value"`
	CorrectedValue string   `json:"corrected_value"`
	AppliedRules   []string `json:"applied_rules"`
	Confidence     float64  `json:"confidence"` // 未修改的值视为完全可信，置信度1.0
	RecordIndex    int      `json:"record_index,omitempty"`
	Field          string   `json:"field,omitempty"`
}

// SmartCorrectionAnalysis 批量纠错分析结果
type SmartCorrectionAnalysis struct {
	Corrections       []CorrectionResult `json:"corrections"`
	RecordCorrected   []bool             `json:"record_corrected"`
	TotalCorrections  int                `json:"total_corrections"`
	RecordsTouched    int                `json:"records_touched"`
	OverallConfidence float64            `json:"overall_confidence"`
	AnalyzedAt        time.Time          `json:"analyzed_at"`
}
