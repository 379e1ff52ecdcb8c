/*
 * @module service/pipeline/pipeline
 * @description 导入对账管道编排：纠错 -> 质量分析 -> 承运商识别富化 -> 增量对账
 * @architecture 管道模式 - 各阶段为纯函数，本层只负责编排与指标
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 批次输入 -> 逐阶段处理 -> 汇总结果输出
 * @rules 阶段之间检查取消信号；管道不落库，持久化由调度层负责
 * @dependencies trackhub-service/service/carrier, trackhub-service/service/correction, trackhub-service/service/data_quality, trackhub-service/service/reconcile
 * @refs metrics.go, service/scheduler
 */

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cast"

	"trackhub-service/service/carrier"
	"trackhub-service/service/correction"
	"trackhub-service/service/data_quality"
	"trackhub-service/service/models"
	"trackhub-service/service/reconcile"
)

// Pipeline 导入对账管道
type Pipeline struct {
	corrections *correction.Engine
	quality     *data_quality.Analyzer
	classifier  *carrier.Classifier
	reconciler  *reconcile.Reconciler
}

// NewPipeline 使用默认部件创建管道
func NewPipeline() *Pipeline {
	return &Pipeline{
		corrections: correction.NewEngine(),
		quality:     data_quality.NewAnalyzer(),
		classifier:  carrier.NewDefaultClassifier(),
		reconciler:  reconcile.NewReconciler(),
	}
}

// RunInput 一次管道执行的全部输入
type RunInput struct {
	Source       []map[string]interface{}       `json:"source"`        // 待导入批次，纠错阶段原地修改
	Target       []map[string]interface{}       `json:"target"`        // 既有存量批次
	FieldMapping map[string]string              `json:"field_mapping"` // 源列名 -> 规范字段名
	Rules        []models.CorrectionRule        `json:"rules"`
	Config       models.IncrementalImportConfig `json:"config"`
}

// RunResult 一次管道执行的汇总结果
type RunResult struct {
	Corrections    *models.SmartCorrectionAnalysis `json:"corrections"`
	Quality        *models.DataQualityReport       `json:"quality"`
	Reconciliation *models.IncrementalImportResult `json:"reconciliation"`
	Duration       time.Duration                   `json:"duration"`
}

// Run 对一个批次执行完整管道
func (p *Pipeline) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}
	recordsProcessed.Add(float64(len(input.Source)))

	// 纠错阶段：读写源列、按映射到的规范字段匹配规则
	stageStart := time.Now()
	result.Corrections = p.corrections.AnalyzeAndCorrectMapped(input.Source, input.FieldMapping, input.Rules)
	correctionsApplied.Add(float64(result.Corrections.TotalCorrections))
	stageDuration.WithLabelValues("correction").Observe(time.Since(stageStart).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("管道在纠错阶段后被取消: %w", err)
	}

	// 质量分析阶段
	stageStart = time.Now()
	quality, err := p.quality.Analyze(ctx, input.Source, input.FieldMapping)
	if err != nil {
		return nil, fmt.Errorf("质量分析失败: %w", err)
	}
	result.Quality = quality
	stageDuration.WithLabelValues("quality").Observe(time.Since(stageStart).Seconds())

	// 承运商识别富化阶段
	stageStart = time.Now()
	p.enrichCarrier(input.Source, input.FieldMapping)
	stageDuration.WithLabelValues("carrier").Observe(time.Since(stageStart).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("管道在识别阶段后被取消: %w", err)
	}

	// 增量对账阶段
	stageStart = time.Now()
	result.Reconciliation = p.reconciler.Reconcile(ctx, input.Source, input.Target, input.Config)
	conflictsDetected.Add(float64(len(result.Reconciliation.Conflicts)))
	stageDuration.WithLabelValues("reconcile").Observe(time.Since(stageStart).Seconds())

	result.Duration = time.Since(start)
	slog.Info("管道执行完成",
		"records", len(input.Source),
		"corrections", result.Corrections.TotalCorrections,
		"overall_score", result.Quality.OverallScore,
		"conflicts", len(result.Reconciliation.Conflicts),
		"duration", result.Duration,
	)
	return result, nil
}

// enrichCarrier 对含运单号的记录写入承运商与识别置信度
func (p *Pipeline) enrichCarrier(records []map[string]interface{}, fieldMapping map[string]string) {
	trackingColumn := ""
	for col, field := range fieldMapping {
		if field == data_quality.FieldTrackingCode {
			trackingColumn = col
			break
		}
	}
	if trackingColumn == "" {
		return
	}

	for _, record := range records {
		if record == nil {
			continue
		}
		code := cast.ToString(record[trackingColumn])
		if code == "" {
			continue
		}
		best := p.classifier.BestGuess(code)
		if best == nil {
			record["carrier"] = ""
			record["carrier_confidence"] = 0.0
			continue
		}
		record["carrier"] = best.Pattern.ID
		record["carrier_confidence"] = classificationConfidence(best)
		carrierClassified.WithLabelValues(best.Pattern.ID).Inc()
	}
}

// classificationConfidence 校验位通过为高置信，未通过降档
func classificationConfidence(candidate *models.CarrierCandidate) float64 {
	if candidate.ChecksumOK {
		return 0.9
	}
	return 0.6
}
