/*
 * @module service/pipeline/metrics
 * @description 导入管道 Prometheus 指标定义
 * @architecture 工具模块 - 进程级指标单例
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 管道执行 -> 指标累计 -> /metrics 暴露
 * @rules 指标只增不减，标签基数受控（阶段名/承运商ID为闭集）
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs pipeline.go, main.go
 */

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackhub",
		Subsystem: "pipeline",
		Name:      "records_processed_total",
		Help:      "管道处理的记录总数",
	})
	correctionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackhub",
		Subsystem: "pipeline",
		Name:      "corrections_applied_total",
		Help:      "纠错规则命中总次数",
	})
	conflictsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackhub",
		Subsystem: "pipeline",
		Name:      "conflicts_detected_total",
		Help:      "对账产生的待人工裁决冲突总数",
	})
	carrierClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackhub",
		Subsystem: "pipeline",
		Name:      "carrier_classified_total",
		Help:      "按承运商统计的识别次数",
	}, []string{"carrier"})
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trackhub",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "各阶段执行耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
)
