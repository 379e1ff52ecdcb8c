/*
 * @module service/data_quality/analyzer
 * @description 数据质量分析器，对映射后的记录批次计算完整性/有效性/一致性/唯一性四维度得分并生成质量报告
 * @architecture 引擎模式 - 纯函数式批次分析，不持有状态
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 列抽取 -> 四维度评分 -> 加权汇总 -> 阈值比对 -> 报告组装
 * @rules 所有百分比落在 [0,100]；空批次各维度按100计；必填身份字段权重2，综合指标权重3
 * @dependencies github.com/spf13/cast, trackhub-service/service/models
 * @refs field_types.go, service/pipeline
 */

package data_quality

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"trackhub-service/service/models"
)

// 字段贡献度中各维度的固定权重
const (
	weightCompleteness = 0.3
	weightValidity     = 0.4
	weightConsistency  = 0.2
	weightUniqueness   = 0.1
)

// Analyzer 数据质量分析器
type Analyzer struct {
	thresholds models.QualityThresholds
}

// NewAnalyzer 使用默认阈值创建分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{thresholds: models.DefaultQualityThresholds()}
}

// NewAnalyzerWithThresholds 使用自定义阈值创建分析器
func NewAnalyzerWithThresholds(t models.QualityThresholds) *Analyzer {
	return &Analyzer{thresholds: t}
}

// fieldScores 单字段四维度得分与元信息
type fieldScores struct {
	column       string
	field        string
	completeness float64
	validity     float64
	consistency  float64
	uniqueness   float64
	weight       int
	samples      []string
}

// weighted 字段的综合得分（未乘权重）
func (s fieldScores) weighted() float64 {
	return s.completeness*weightCompleteness +
		s.validity*weightValidity +
		s.consistency*weightConsistency +
		s.uniqueness*weightUniqueness
}

// Analyze 对记录批次执行质量分析，fieldMapping 为源列名到规范字段名的映射
func (a *Analyzer) Analyze(ctx context.Context, records []map[string]interface{}, fieldMapping map[string]string) (*models.DataQualityReport, error) {
	report := &models.DataQualityReport{
		Metrics:         []models.QualityMetric{},
		FieldAnalyses:   []models.FieldQualityAnalysis{},
		Recommendations: []string{},
		GeneratedAt:     time.Now(),
	}
	report.Summary.TotalRecords = len(records)

	// 源列名排序，保证报告顺序确定
	columns := make([]string, 0, len(fieldMapping))
	for col := range fieldMapping {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	var weightedSum float64
	var weightTotal int
	var fieldMetrics []models.QualityMetric
	recSet := make(map[string]bool)

	for _, col := range columns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("质量分析被取消: %w", err)
		}
		field := fieldMapping[col]
		scores := a.analyzeColumn(records, col, field)

		report.FieldAnalyses = append(report.FieldAnalyses, models.FieldQualityAnalysis{
			Field:        col,
			MappedField:  field,
			Completeness: scores.completeness,
			Validity:     scores.validity,
			Consistency:  scores.consistency,
			Uniqueness:   scores.uniqueness,
			SampleValues: scores.samples,
		})

		metric := a.buildFieldMetric(scores, report, recSet)
		fieldMetrics = append(fieldMetrics, metric)

		weightedSum += scores.weighted() * float64(scores.weight)
		weightTotal += scores.weight
	}

	overall := 100.0
	if weightTotal > 0 {
		overall = weightedSum / float64(weightTotal)
	}
	report.OverallScore = overall

	overallMetric := models.QualityMetric{
		Name:   models.OverallMetricName,
		Score:  overall,
		Weight: 3,
	}
	if overall < 70 {
		overallMetric.Issues = append(overallMetric.Issues, fmt.Sprintf("综合质量得分 %.1f 低于70，批次整体质量不可接受", overall))
		rec := "建议先执行纠错规则清洗后再导入"
		overallMetric.Recommendations = append(overallMetric.Recommendations, rec)
		if !recSet[rec] {
			recSet[rec] = true
			report.Recommendations = append(report.Recommendations, rec)
		}
		report.Summary.CriticalIssues++
	}
	report.Metrics = append([]models.QualityMetric{overallMetric}, fieldMetrics...)

	a.summarizeRecords(records, fieldMapping, report)
	return report, nil
}

// analyzeColumn 抽取单列并计算四维度得分
func (a *Analyzer) analyzeColumn(records []map[string]interface{}, col, field string) fieldScores {
	scores := fieldScores{column: col, field: field, weight: 1}
	if mandatoryFields[field] {
		scores.weight = 2
	}

	values := make([]string, 0, len(records))
	for _, record := range records {
		raw, exists := record[col]
		if !exists || raw == nil {
			values = append(values, "")
			continue
		}
		values = append(values, cast.ToString(raw))
	}

	var nonEmpty []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}

	// 完整性：非空占比，空批次视为完整
	scores.completeness = 100
	if len(values) > 0 {
		scores.completeness = float64(len(nonEmpty)) / float64(len(values)) * 100
	}

	// 有效性：非空值中通过类型谓词的占比
	scores.validity = 100
	if len(nonEmpty) > 0 {
		valid := 0
		for _, v := range nonEmpty {
			if isValidValue(field, strings.TrimSpace(v)) {
				valid++
			}
		}
		scores.validity = float64(valid) / float64(len(nonEmpty)) * 100
	}

	// 一致性：按格式类别数扣分，无规则字段恒为100
	scores.consistency = 100
	if penalty := consistencyPenalty(field); penalty > 0 && len(nonEmpty) > 0 {
		patterns := make(map[string]bool)
		for _, v := range nonEmpty {
			patterns[formatPattern(field, strings.TrimSpace(v))] = true
		}
		if extra := len(patterns) - 1; extra > 0 {
			scores.consistency = 100 - float64(extra)*penalty
			if scores.consistency < 0 {
				scores.consistency = 0
			}
		}
	}

	// 唯一性：非空值中去重后的占比
	scores.uniqueness = 100
	if len(nonEmpty) > 0 {
		distinct := make(map[string]bool)
		for _, v := range nonEmpty {
			distinct[strings.TrimSpace(v)] = true
		}
		scores.uniqueness = float64(len(distinct)) / float64(len(nonEmpty)) * 100

		for v := range distinct {
			if len(scores.samples) >= 3 {
				break
			}
			scores.samples = append(scores.samples, v)
		}
		sort.Strings(scores.samples)
	}
	return scores
}

// buildFieldMetric 阈值比对生成字段指标，同时累计严重问题/警告计数
func (a *Analyzer) buildFieldMetric(s fieldScores, report *models.DataQualityReport, recSet map[string]bool) models.QualityMetric {
	metric := models.QualityMetric{
		Name:   s.field,
		Score:  s.weighted(),
		Weight: s.weight,
	}
	mandatory := mandatoryFields[s.field]

	addIssue := func(issue, rec string, critical bool) {
		metric.Issues = append(metric.Issues, issue)
		metric.Recommendations = append(metric.Recommendations, rec)
		if critical {
			report.Summary.CriticalIssues++
		} else {
			report.Summary.Warnings++
		}
		if !recSet[rec] {
			recSet[rec] = true
			report.Recommendations = append(report.Recommendations, rec)
		}
	}

	if s.completeness < a.thresholds.Completeness {
		addIssue(
			fmt.Sprintf("字段 %s 完整性 %.1f%% 低于阈值 %.1f%%", s.field, s.completeness, a.thresholds.Completeness),
			fmt.Sprintf("补齐字段 %s 的缺失值或在源端设为必填", s.field),
			mandatory,
		)
	}
	if s.validity < a.thresholds.Validity {
		addIssue(
			fmt.Sprintf("字段 %s 有效性 %.1f%% 低于阈值 %.1f%%", s.field, s.validity, a.thresholds.Validity),
			fmt.Sprintf("检查字段 %s 的取值格式并配置对应纠错规则", s.field),
			mandatory,
		)
	}
	if s.consistency < a.thresholds.Consistency {
		addIssue(
			fmt.Sprintf("字段 %s 一致性 %.1f%% 低于阈值 %.1f%%", s.field, s.consistency, a.thresholds.Consistency),
			fmt.Sprintf("统一字段 %s 的书写格式", s.field),
			false,
		)
	}
	if s.uniqueness < a.thresholds.Uniqueness {
		addIssue(
			fmt.Sprintf("字段 %s 唯一性 %.1f%% 低于阈值 %.1f%%", s.field, s.uniqueness, a.thresholds.Uniqueness),
			fmt.Sprintf("排查字段 %s 的重复取值，可能存在重复导入", s.field),
			identityUniqueFields[s.field],
		)
	}
	return metric
}

// summarizeRecords 统计有效记录数：所有已映射的必填字段非空且通过谓词
func (a *Analyzer) summarizeRecords(records []map[string]interface{}, fieldMapping map[string]string, report *models.DataQualityReport) {
	var mandatoryColumns []string
	for col, field := range fieldMapping {
		if mandatoryFields[field] {
			mandatoryColumns = append(mandatoryColumns, col)
		}
	}
	sort.Strings(mandatoryColumns)

	for _, record := range records {
		valid := true
		for _, col := range mandatoryColumns {
			value := strings.TrimSpace(cast.ToString(record[col]))
			if value == "" || !isValidValue(fieldMapping[col], value) {
				valid = false
				break
			}
		}
		if valid {
			report.Summary.ValidRecords++
		} else {
			report.Summary.InvalidRecords++
		}
	}
}
