/*
 * @module service/models/quality_models
 * @description 数据质量评估相关模型，定义质量指标、字段分析、阈值与报告结构
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 批次映射 -> 四维度评分 -> 阈值比对 -> 报告生成
 * @rules 所有百分比均落在 [0,100]，空批次各维度按100计
 * @dependencies time
 * @refs service/data_quality/analyzer.go
 */

package models

import "time"

// OverallMetricName 报告首位综合指标的展示名称（沿用产品面板的既有标签）
const OverallMetricName = "Qualidade Geral"

// QualityMetric 命名加权质量指标
type QualityMetric struct {
	Name            string   `json:"name"`
	Score           float64  `json:"score"`  // 0-100
	Weight          int      `json:"weight"` // 必填身份字段为2，综合指标为3，其余为1
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// FieldQualityAnalysis 单字段四维度分析
type FieldQualityAnalysis struct {
	Field        string   `json:"field"`        // 源列名
	MappedField  string   `json:"mapped_field"` // 规范字段名
	Completeness float64  `json:"completeness"`
	Validity     float64  `json:"validity"`
	Consistency  float64  `json:"consistency"`
	Uniqueness   float64  `json:"uniqueness"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// QualityThresholds 各维度最低可接受百分比
type QualityThresholds struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Consistency  float64 `json:"consistency"`
	Uniqueness   float64 `json:"uniqueness"`
}

// DefaultQualityThresholds 默认阈值
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		Completeness: 95,
		Validity:     90,
		Consistency:  85,
		Uniqueness:   98,
	}
}

// QualitySummary 批次汇总计数
type QualitySummary struct {
	TotalRecords   int `json:"total_records"`
	ValidRecords   int `json:"valid_records"`
	InvalidRecords int `json:"invalid_records"`
	CriticalIssues int `json:"critical_issues"`
	Warnings       int `json:"warnings"`
}

// DataQualityReport 数据质量报告
type DataQualityReport struct {
	OverallScore    float64                `json:"overall_score"`
	Summary         QualitySummary         `json:"summary"`
	Metrics         []QualityMetric        `json:"metrics"`
	FieldAnalyses   []FieldQualityAnalysis `json:"field_analyses"`
	Recommendations []string               `json:"recommendations"` // 已去重
	GeneratedAt     time.Time              `json:"generated_at"`
}
