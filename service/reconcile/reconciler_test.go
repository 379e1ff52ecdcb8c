/*
 * @module service/reconcile/reconciler_test
 * @description 增量对账引擎测试
 * @architecture 单元测试 - 验证差异分类、冲突解决策略与计数完整性
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 源/目标批次构造 -> 对账执行 -> 计划与冲突验证
 * @rules manual 冲突绝不出现在待应用计划中
 * @dependencies testing
 * @refs reconciler.go, record_id.go, config.go
 */

package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackhub-service/service/models"
)

var keyTracking = []string{"tracking_code"}

func mergeConfig(resolution models.ConflictResolution, direction models.SyncDirection) models.IncrementalImportConfig {
	return models.IncrementalImportConfig{
		Strategy:           models.StrategyMerge,
		ConflictResolution: resolution,
		KeyFields:          keyTracking,
		SyncDirection:      direction,
	}
}

func TestRecordID(t *testing.T) {
	t.Run("相同键值产生相同ID", func(t *testing.T) {
		a := map[string]interface{}{"tracking_code": "JD123456785BR", "status": "pending"}
		b := map[string]interface{}{"tracking_code": "JD123456785BR", "status": "shipped"}
		assert.Equal(t, RecordID(a, keyTracking), RecordID(b, keyTracking))
	})

	t.Run("不同键值产生不同ID", func(t *testing.T) {
		a := map[string]interface{}{"tracking_code": "JD123456785BR"}
		b := map[string]interface{}{"tracking_code": "OT453124780BR"}
		assert.NotEqual(t, RecordID(a, keyTracking), RecordID(b, keyTracking))
	})

	t.Run("键值两侧空白不影响身份", func(t *testing.T) {
		a := map[string]interface{}{"tracking_code": " JD123456785BR "}
		b := map[string]interface{}{"tracking_code": "JD123456785BR"}
		assert.Equal(t, RecordID(a, keyTracking), RecordID(b, keyTracking))
	})

	t.Run("复合键字段顺序敏感", func(t *testing.T) {
		record := map[string]interface{}{"tracking_code": "JD123456785BR", "order_number": "PED-1"}
		id1 := RecordID(record, []string{"tracking_code", "order_number"})
		id2 := RecordID(record, []string{"order_number", "tracking_code"})
		assert.NotEqual(t, id1, id2)
	})
}

func TestReconcileSourceWins(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "shipped"},
	}
	target := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "pending"},
	}

	result := r.Reconcile(context.Background(), source, target,
		mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

	assert.Empty(t, result.Errors)
	assert.Equal(t, models.ImportCounts{Modified: 1}, result.Counts)
	assert.Empty(t, result.Conflicts)
	require.Len(t, result.AppliedChanges, 1)
	op := result.AppliedChanges[0]
	assert.Equal(t, models.OperationUpdate, op.Type)
	assert.Equal(t, "shipped", op.Data["status"])
}

func TestReconcileManual(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "shipped"},
	}
	target := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "pending"},
	}

	result := r.Reconcile(context.Background(), source, target,
		mergeConfig(models.ResolutionManual, models.DirectionUnidirectional))

	assert.Empty(t, result.AppliedChanges)
	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, models.ConflictConflict, conflict.ConflictType)
	assert.Equal(t, []string{"status"}, conflict.ChangedFields)
	assert.Equal(t, map[string]interface{}{"status": "shipped"}, conflict.SourceValues)
	assert.Equal(t, models.ImportCounts{Modified: 1}, result.Counts)
}

func TestReconcileTargetWins(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "shipped"},
	}
	target := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "pending"},
	}

	result := r.Reconcile(context.Background(), source, target,
		mergeConfig(models.ResolutionTargetWins, models.DirectionUnidirectional))

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, models.ImportCounts{Modified: 1}, result.Counts)
	// 目标端胜出：更新操作保持目标端取值
	require.Len(t, result.AppliedChanges, 1)
	assert.Equal(t, "pending", result.AppliedChanges[0].Data["status"])
}

func TestReconcileNewerWins(t *testing.T) {
	r := NewReconciler()

	t.Run("源端时间戳更新时源端胜出", func(t *testing.T) {
		source := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "shipped", "updated_at": "2026-08-20T12:00:00Z"},
		}
		target := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "pending", "updated_at": "2026-08-10T12:00:00Z"},
		}

		result := r.Reconcile(context.Background(), source, target,
			mergeConfig(models.ResolutionNewerWins, models.DirectionUnidirectional))

		require.Len(t, result.AppliedChanges, 1)
		assert.Equal(t, "shipped", result.AppliedChanges[0].Data["status"])
	})

	t.Run("目标端时间戳更新时目标端胜出", func(t *testing.T) {
		source := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "shipped", "updated_at": "2026-08-10T12:00:00Z"},
		}
		target := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "pending", "updated_at": "2026-08-20T12:00:00Z"},
		}

		result := r.Reconcile(context.Background(), source, target,
			mergeConfig(models.ResolutionNewerWins, models.DirectionUnidirectional))

		require.Len(t, result.AppliedChanges, 1)
		assert.Equal(t, "pending", result.AppliedChanges[0].Data["status"])
	})

	t.Run("缺失updated_at回退created_at", func(t *testing.T) {
		source := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "shipped", "created_at": "2026-08-20T12:00:00Z"},
		}
		target := []map[string]interface{}{
			{"tracking_code": "JD123456785BR", "status": "pending", "created_at": "2026-08-10T12:00:00Z"},
		}

		result := r.Reconcile(context.Background(), source, target,
			mergeConfig(models.ResolutionNewerWins, models.DirectionUnidirectional))

		require.Len(t, result.AppliedChanges, 1)
		assert.Equal(t, "shipped", result.AppliedChanges[0].Data["status"])
	})
}

func TestReconcileNewRecords(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "OT453124780BR", "status": "pending"},
	}

	t.Run("merge策略产生插入操作", func(t *testing.T) {
		result := r.Reconcile(context.Background(), source, nil,
			mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

		assert.Equal(t, models.ImportCounts{New: 1}, result.Counts)
		require.Len(t, result.AppliedChanges, 1)
		assert.Equal(t, models.OperationInsert, result.AppliedChanges[0].Type)
		require.Len(t, result.Records, 1)
		assert.Equal(t, models.ConflictNew, result.Records[0].ConflictType)
		assert.Equal(t, models.ResolveSource, result.Records[0].Resolution)
	})

	t.Run("replace策略不引入新记录", func(t *testing.T) {
		config := mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional)
		config.Strategy = models.StrategyReplace

		result := r.Reconcile(context.Background(), source, nil, config)

		assert.Equal(t, models.ImportCounts{Skipped: 1}, result.Counts)
		assert.Empty(t, result.AppliedChanges)
		require.Len(t, result.Records, 1)
		assert.Equal(t, models.ResolveSkip, result.Records[0].Resolution)
	})
}

func TestReconcileDeletionDetection(t *testing.T) {
	r := NewReconciler()
	target := []map[string]interface{}{
		{"tracking_code": "PN785123466BR", "status": "delivered"},
	}

	t.Run("merge双向同步交人工裁决", func(t *testing.T) {
		result := r.Reconcile(context.Background(), nil, target,
			mergeConfig(models.ResolutionSourceWins, models.DirectionBidirectional))

		assert.Equal(t, models.ImportCounts{Deleted: 1}, result.Counts)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, models.ConflictConflict, result.Conflicts[0].ConflictType)
		assert.Empty(t, result.AppliedChanges)
	})

	t.Run("merge单向同步不静默删除", func(t *testing.T) {
		result := r.Reconcile(context.Background(), nil, target,
			mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

		assert.Equal(t, models.ImportCounts{Skipped: 1}, result.Counts)
		assert.Empty(t, result.Conflicts)
		require.Len(t, result.Records, 1)
		assert.Equal(t, models.ResolveSkip, result.Records[0].Resolution)
	})

	t.Run("append策略不做删除检测", func(t *testing.T) {
		config := mergeConfig(models.ResolutionSourceWins, models.DirectionBidirectional)
		config.Strategy = models.StrategyAppend

		result := r.Reconcile(context.Background(), nil, target, config)

		assert.Equal(t, models.ImportCounts{}, result.Counts)
		assert.Empty(t, result.Records)
	})
}

func TestReconcileUnchangedSkipped(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "pending", "updated_at": "2026-08-20T12:00:00Z"},
	}
	target := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "pending", "updated_at": "2026-08-01T08:00:00Z"},
	}

	// 簿记字段差异不构成修改
	result := r.Reconcile(context.Background(), source, target,
		mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

	assert.Equal(t, models.ImportCounts{Skipped: 1}, result.Counts)
	assert.Empty(t, result.AppliedChanges)
}

func TestReconcileCountsCoverUnion(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "A1234567801", "status": "new-rec"},
		{"tracking_code": "B1234567802", "status": "changed"},
		{"tracking_code": "C1234567803", "status": "same"},
	}
	target := []map[string]interface{}{
		{"tracking_code": "B1234567802", "status": "old"},
		{"tracking_code": "C1234567803", "status": "same"},
		{"tracking_code": "D1234567804", "status": "gone"},
	}

	result := r.Reconcile(context.Background(), source, target,
		mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

	c := result.Counts
	assert.Equal(t, 1, c.New)
	assert.Equal(t, 1, c.Modified)
	assert.Equal(t, 0, c.Deleted)
	// C 未变化 + D 单向不删除
	assert.Equal(t, 2, c.Skipped)
	assert.Equal(t, 4, c.New+c.Modified+c.Deleted+c.Skipped)
}

func TestReconcileDuplicateSourceKeys(t *testing.T) {
	r := NewReconciler()
	// 同键重复记录以最后一条为准，身份只计一次
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR", "status": "first"},
		{"tracking_code": "JD123456785BR", "status": "second"},
	}

	result := r.Reconcile(context.Background(), source, nil,
		mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

	assert.Equal(t, models.ImportCounts{New: 1}, result.Counts)
	require.Len(t, result.AppliedChanges, 1)
	assert.Equal(t, "second", result.AppliedChanges[0].Data["status"])
}

func TestReconcileInvalidConfig(t *testing.T) {
	r := NewReconciler()
	source := []map[string]interface{}{
		{"tracking_code": "JD123456785BR"},
		{"tracking_code": "OT453124780BR"},
	}

	result := r.Reconcile(context.Background(), source, nil, models.IncrementalImportConfig{
		Strategy:           "overwrite",
		ConflictResolution: models.ResolutionSourceWins,
		SyncDirection:      models.DirectionUnidirectional,
	})

	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, models.ImportCounts{Skipped: 2}, result.Counts)
	assert.Empty(t, result.AppliedChanges)
}

func TestReconcileCancelledContext(t *testing.T) {
	r := NewReconciler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := r.Reconcile(ctx, []map[string]interface{}{{"tracking_code": "JD123456785BR"}}, nil,
		mergeConfig(models.ResolutionSourceWins, models.DirectionUnidirectional))

	assert.NotEmpty(t, result.Errors)
}

func TestValidateConfig(t *testing.T) {
	t.Run("合法配置通过", func(t *testing.T) {
		v := ValidateConfig(mergeConfig(models.ResolutionManual, models.DirectionBidirectional))
		assert.True(t, v.IsValid)
		assert.Empty(t, v.Errors)
	})

	t.Run("缺少键字段", func(t *testing.T) {
		config := mergeConfig(models.ResolutionManual, models.DirectionBidirectional)
		config.KeyFields = nil
		v := ValidateConfig(config)
		assert.False(t, v.IsValid)
		assert.NotEmpty(t, v.Errors)
	})

	t.Run("空键字段名", func(t *testing.T) {
		config := mergeConfig(models.ResolutionManual, models.DirectionBidirectional)
		config.KeyFields = []string{"tracking_code", " "}
		v := ValidateConfig(config)
		assert.False(t, v.IsValid)
	})

	t.Run("多处错误全部收集", func(t *testing.T) {
		v := ValidateConfig(models.IncrementalImportConfig{
			Strategy:           "overwrite",
			ConflictResolution: "coin_flip",
			SyncDirection:      "diagonal",
		})
		assert.False(t, v.IsValid)
		assert.Len(t, v.Errors, 4)
	})
}
