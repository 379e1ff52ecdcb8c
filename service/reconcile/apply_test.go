/*
 * @module service/reconcile/apply_test
 * @description 同步计划执行器测试
 * @architecture 单元测试 - 内存假存储验证部分失败语义，sqlite 验证 gorm 存储
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 计划构造 -> 执行 -> 结果与存储状态验证
 * @rules 单条失败不得中断后续操作
 * @dependencies testing, gorm.io/driver/sqlite
 * @refs apply.go
 */

package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackhub-service/service/models"
	"trackhub-service/testutil"
)

// fakeStore 内存目标存储，failOn 指定的记录ID操作返回错误
type fakeStore struct {
	records map[string]map[string]interface{}
	failOn  string
	calls   []string
}

func newFakeStore(failOn string) *fakeStore {
	return &fakeStore{records: make(map[string]map[string]interface{}), failOn: failOn}
}

func (f *fakeStore) Insert(_ context.Context, id string, data map[string]interface{}) error {
	f.calls = append(f.calls, "insert:"+id)
	if id == f.failOn {
		return fmt.Errorf("存储不可用")
	}
	f.records[id] = data
	return nil
}

func (f *fakeStore) Update(_ context.Context, id string, data map[string]interface{}) error {
	f.calls = append(f.calls, "update:"+id)
	if id == f.failOn {
		return fmt.Errorf("存储不可用")
	}
	f.records[id] = data
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete:"+id)
	if id == f.failOn {
		return fmt.Errorf("存储不可用")
	}
	delete(f.records, id)
	return nil
}

func TestApplySyncOperations(t *testing.T) {
	ops := []models.SyncOperation{
		{Type: models.OperationInsert, RecordID: "a", Data: map[string]interface{}{"status": "pending"}},
		{Type: models.OperationUpdate, RecordID: "b", Data: map[string]interface{}{"status": "shipped"}},
		{Type: models.OperationDelete, RecordID: "c"},
	}

	t.Run("全部成功", func(t *testing.T) {
		store := newFakeStore("")
		result := ApplySyncOperations(context.Background(), ops, store, nil)

		assert.True(t, result.Succeeded)
		assert.Equal(t, 3, result.Success)
		assert.Equal(t, 0, result.Failed)
		assert.Empty(t, result.Errors)
	})

	t.Run("部分失败不中断", func(t *testing.T) {
		store := newFakeStore("b")
		result := ApplySyncOperations(context.Background(), ops, store, nil)

		assert.False(t, result.Succeeded)
		assert.Equal(t, 2, result.Success)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "b")
		// 失败后的操作仍然执行
		assert.Equal(t, []string{"insert:a", "update:b", "delete:c"}, store.calls)
	})

	t.Run("未知操作类型记为失败", func(t *testing.T) {
		store := newFakeStore("")
		result := ApplySyncOperations(context.Background(),
			[]models.SyncOperation{{Type: "upsert", RecordID: "x"}}, store, nil)

		assert.False(t, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("空计划视为成功", func(t *testing.T) {
		result := ApplySyncOperations(context.Background(), nil, newFakeStore(""), nil)
		assert.True(t, result.Succeeded)
		assert.Equal(t, 0, result.Success+result.Failed)
	})
}

func TestApplySyncOperationsProgress(t *testing.T) {
	ops := []models.SyncOperation{
		{Type: models.OperationInsert, RecordID: "a", Data: map[string]interface{}{}},
		{Type: models.OperationInsert, RecordID: "b", Data: map[string]interface{}{}},
	}

	var progress [][2]int
	ApplySyncOperations(context.Background(), ops, newFakeStore(""), func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
}

func TestApplySyncOperationsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newFakeStore("")
	result := ApplySyncOperations(ctx,
		[]models.SyncOperation{{Type: models.OperationInsert, RecordID: "a"}}, store, nil)

	assert.False(t, result.Succeeded)
	assert.Empty(t, store.calls)
}

func TestShipmentStore(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	store := NewShipmentStore(tdb.DB)
	ctx := context.Background()

	t.Run("插入与更新", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, "rec-1", map[string]interface{}{"status": "pending"}))
		require.NoError(t, store.Update(ctx, "rec-1", map[string]interface{}{"status": "shipped"}))

		var record models.ShipmentRecord
		require.NoError(t, tdb.DB.First(&record, "id = ?", "rec-1").Error)
		assert.Equal(t, "shipped", record.Data["status"])
	})

	t.Run("重复插入转为覆盖", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, "rec-2", map[string]interface{}{"status": "a"}))
		require.NoError(t, store.Insert(ctx, "rec-2", map[string]interface{}{"status": "b"}))

		var record models.ShipmentRecord
		require.NoError(t, tdb.DB.First(&record, "id = ?", "rec-2").Error)
		assert.Equal(t, "b", record.Data["status"])
	})

	t.Run("更新不存在的记录报错", func(t *testing.T) {
		assert.Error(t, store.Update(ctx, "missing", map[string]interface{}{"status": "x"}))
	})

	t.Run("删除", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, "rec-3", map[string]interface{}{}))
		require.NoError(t, store.Delete(ctx, "rec-3"))

		var count int64
		tdb.DB.Model(&models.ShipmentRecord{}).Where("id = ?", "rec-3").Count(&count)
		assert.Equal(t, int64(0), count)
	})
}
