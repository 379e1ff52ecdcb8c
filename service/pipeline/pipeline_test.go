/*
 * @module service/pipeline/pipeline_test
 * @description 导入对账管道集成测试
 * @architecture 集成测试 - 串联纠错、质量分析、承运商识别与对账
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 脏批次输入 -> 管道执行 -> 各阶段结果验证
 * @rules 管道各阶段结果必须相互一致
 * @dependencies testing
 * @refs pipeline.go
 */

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackhub-service/service/correction"
	"trackhub-service/service/models"
)

func testMapping() map[string]string {
	return map[string]string{
		"codigo":  "tracking_code",
		"email":   "customer_email",
		"cliente": "customer_name",
	}
}

func testConfig() models.IncrementalImportConfig {
	return models.IncrementalImportConfig{
		Strategy:           models.StrategyMerge,
		ConflictResolution: models.ResolutionSourceWins,
		KeyFields:          []string{"codigo"},
		SyncDirection:      models.DirectionUnidirectional,
	}
}

func TestPipelineRun(t *testing.T) {
	p := NewPipeline()
	source := []map[string]interface{}{
		{"codigo": "jd 123456785br", "email": "ana@GMAI.com", "cliente": "ana maria"},
	}

	result, err := p.Run(context.Background(), RunInput{
		Source:       source,
		Target:       nil,
		FieldMapping: testMapping(),
		Rules:        correction.DefaultCorrectionRules(),
		Config:       testConfig(),
	})
	require.NoError(t, err)

	// 纠错阶段原地修改源批次
	assert.Equal(t, "JD123456785BR", source[0]["codigo"])
	assert.Equal(t, "ana@gmail.com", source[0]["email"])
	assert.Equal(t, "Ana Maria", source[0]["cliente"])
	require.NotNil(t, result.Corrections)
	assert.Equal(t, 1, result.Corrections.RecordsTouched)

	// 识别阶段写入承运商富化字段
	assert.Equal(t, "correios", source[0]["carrier"])
	assert.Equal(t, 0.9, source[0]["carrier_confidence"])

	// 质量报告基于纠错后的批次
	require.NotNil(t, result.Quality)
	assert.Equal(t, 1, result.Quality.Summary.TotalRecords)
	assert.Equal(t, 1, result.Quality.Summary.ValidRecords)

	// 对账：空目标批次产生一条插入
	require.NotNil(t, result.Reconciliation)
	assert.Equal(t, 1, result.Reconciliation.Counts.New)
	require.Len(t, result.Reconciliation.AppliedChanges, 1)
	assert.Equal(t, models.OperationInsert, result.Reconciliation.AppliedChanges[0].Type)
}

func TestPipelineRunModifiedRecord(t *testing.T) {
	p := NewPipeline()
	source := []map[string]interface{}{
		{"codigo": "JD123456785BR", "email": "ana@gmail.com", "cliente": "Ana Maria", "status": "shipped"},
	}
	target := []map[string]interface{}{
		{
			"codigo": "JD123456785BR", "email": "ana@gmail.com", "cliente": "Ana Maria",
			"status": "pending", "carrier": "correios", "carrier_confidence": 0.9,
		},
	}

	result, err := p.Run(context.Background(), RunInput{
		Source:       source,
		Target:       target,
		FieldMapping: testMapping(),
		Rules:        correction.DefaultCorrectionRules(),
		Config:       testConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Reconciliation.Counts.Modified)
	require.Len(t, result.Reconciliation.AppliedChanges, 1)
	assert.Equal(t, models.OperationUpdate, result.Reconciliation.AppliedChanges[0].Type)
	assert.Equal(t, "shipped", result.Reconciliation.AppliedChanges[0].Data["status"])
}

func TestPipelineRunUnknownCarrier(t *testing.T) {
	p := NewPipeline()
	source := []map[string]interface{}{
		{"codigo": "???", "email": "x@y.com", "cliente": "Zé"},
	}

	result, err := p.Run(context.Background(), RunInput{
		Source:       source,
		FieldMapping: testMapping(),
		Rules:        correction.DefaultCorrectionRules(),
		Config:       testConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, "", source[0]["carrier"])
	assert.Equal(t, 0.0, source[0]["carrier_confidence"])
	assert.NotNil(t, result.Quality)
}

func TestPipelineRunCancelled(t *testing.T) {
	p := NewPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, RunInput{
		Source:       []map[string]interface{}{{"codigo": "JD123456785BR"}},
		FieldMapping: testMapping(),
		Config:       testConfig(),
	})
	assert.Error(t, err)
}

func TestPipelineRunEmptyBatch(t *testing.T) {
	p := NewPipeline()

	result, err := p.Run(context.Background(), RunInput{
		FieldMapping: testMapping(),
		Rules:        correction.DefaultCorrectionRules(),
		Config:       testConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Corrections.OverallConfidence)
	assert.Equal(t, 100.0, result.Quality.OverallScore)
	assert.Equal(t, models.ImportCounts{}, result.Reconciliation.Counts)
}
