/*
 * @module service/correction/rule_engine
 * @description 纠错规则引擎，按优先级对字段值执行正则替换、内置转换与脚本转换，并输出置信度
 * @architecture 引擎模式 - 无状态执行器 + 脚本编译缓存
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 规则过滤 -> 优先级排序 -> 逐条应用 -> 置信度聚合
 * @rules 同字段规则按优先级升序执行，前一条的输出是后一条的输入；无法编译的规则跳过不中断
 * @dependencies github.com/spf13/cast, trackhub-service/service/models
 * @refs defaults.go, transforms.go, script_executor.go
 */

package correction

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/spf13/cast"

	"trackhub-service/service/models"
)

// 时间源，测试可替换
var nowFunc = time.Now

// Engine 纠错规则引擎
type Engine struct {
	scripts *ScriptExecutor
}

// NewEngine 创建纠错规则引擎
func NewEngine() *Engine {
	return &Engine{
		scripts: NewScriptExecutor(),
	}
}

// Correct 对单个字段值应用指定字段类型的全部启用规则
func (e *Engine) Correct(value, fieldType string, rules []models.CorrectionRule) models.CorrectionResult {
	result := models.CorrectionResult{
		OriginalValue:  value,
		CorrectedValue: value,
		AppliedRules:   []string{},
		Confidence:     1.0,
		Field:          fieldType,
	}
	if value == "" {
		return result
	}

	applicable := make([]models.CorrectionRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled && r.Field == fieldType {
			applicable = append(applicable, r)
		}
	}
	if len(applicable) == 0 {
		return result
	}
	// 稳定排序保证同优先级按注册顺序执行
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority < applicable[j].Priority
	})

	current := value
	var confidences []float64
	for _, rule := range applicable {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			slog.Warn("纠错规则正则编译失败，跳过", "rule_id", rule.ID, "pattern", rule.Pattern, "error", err)
			continue
		}
		next, err := e.applyRule(re, rule, current)
		if err != nil {
			slog.Warn("纠错规则执行失败，跳过", "rule_id", rule.ID, "error", err)
			continue
		}
		if next != current {
			result.AppliedRules = append(result.AppliedRules, rule.ID)
			confidences = append(confidences, ruleConfidence(rule.Priority))
			current = next
		}
	}

	result.CorrectedValue = current
	if len(confidences) > 0 {
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		result.Confidence = sum / float64(len(confidences))
	}
	return result
}

// applyRule 按替换类别应用单条规则
func (e *Engine) applyRule(re *regexp.Regexp, rule models.CorrectionRule, value string) (string, error) {
	switch rule.Kind {
	case models.ReplacementLiteral:
		return re.ReplaceAllString(value, rule.Replacement), nil
	case models.ReplacementTransform:
		fn, ok := LookupTransform(rule.Replacement)
		if !ok {
			return value, fmt.Errorf("未知的内置转换: %s", rule.Replacement)
		}
		return re.ReplaceAllStringFunc(value, fn), nil
	case models.ReplacementScript:
		fn, err := e.scripts.Compile(rule.Replacement)
		if err != nil {
			return value, fmt.Errorf("脚本编译失败: %w", err)
		}
		return re.ReplaceAllStringFunc(value, fn), nil
	default:
		return value, fmt.Errorf("未知的替换类别: %s", rule.Kind)
	}
}

// ruleConfidence 按优先级映射单条规则的置信度档位
func ruleConfidence(priority int) float64 {
	switch priority {
	case 1:
		return 0.9
	case 2:
		return 0.7
	default:
		return 0.5
	}
}

// AnalyzeAndCorrect 对记录批次的指定字段执行智能纠错，字段名同时作为记录键与字段类型
func (e *Engine) AnalyzeAndCorrect(records []map[string]interface{}, fields []string, rules []models.CorrectionRule) *models.SmartCorrectionAnalysis {
	mapping := make(map[string]string, len(fields))
	for _, f := range fields {
		mapping[f] = f
	}
	return e.AnalyzeAndCorrectMapped(records, mapping, rules)
}

// AnalyzeAndCorrectMapped 按列映射执行批次纠错：读写源列名，按映射到的规范字段匹配规则
func (e *Engine) AnalyzeAndCorrectMapped(records []map[string]interface{}, fieldMapping map[string]string, rules []models.CorrectionRule) *models.SmartCorrectionAnalysis {
	analysis := &models.SmartCorrectionAnalysis{
		Corrections:     []models.CorrectionResult{},
		RecordCorrected: make([]bool, len(records)),
	}

	// 源列名排序，保证批次输出顺序确定
	columns := make([]string, 0, len(fieldMapping))
	for col := range fieldMapping {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	var confidenceSum float64
	var confidenceCount int
	for idx, record := range records {
		if record == nil {
			continue
		}
		for _, col := range columns {
			raw, exists := record[col]
			if !exists || raw == nil {
				continue
			}
			value := cast.ToString(raw)
			if value == "" {
				continue
			}
			res := e.Correct(value, fieldMapping[col], rules)
			if len(res.AppliedRules) == 0 {
				continue
			}
			res.RecordIndex = idx + 1
			record[col] = res.CorrectedValue
			analysis.Corrections = append(analysis.Corrections, res)
			analysis.TotalCorrections += len(res.AppliedRules)
			analysis.RecordCorrected[idx] = true
			confidenceSum += res.Confidence
			confidenceCount++
		}
	}

	for _, touched := range analysis.RecordCorrected {
		if touched {
			analysis.RecordsTouched++
		}
	}
	if confidenceCount > 0 {
		analysis.OverallConfidence = confidenceSum / float64(confidenceCount)
	} else {
		analysis.OverallConfidence = 1.0
	}
	analysis.AnalyzedAt = nowFunc()
	return analysis
}
