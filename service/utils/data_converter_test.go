/*
 * @module service/utils/data_converter_test
 * @description 数据转换工具测试
 * @architecture 单元测试 - 验证字符集转换与记录规范化
 * @dependencies testing
 * @refs data_converter.go
 */

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLatin1(t *testing.T) {
	dc := NewDataConverter()

	// "São Paulo" 的 Latin-1 字节序列
	decoded, err := dc.DecodeLatin1([]byte{'S', 0xE3, 'o', ' ', 'P', 'a', 'u', 'l', 'o'})
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", decoded)
}

func TestEnsureUTF8(t *testing.T) {
	dc := NewDataConverter()

	t.Run("合法UTF-8原样返回", func(t *testing.T) {
		assert.Equal(t, "João", dc.EnsureUTF8([]byte("João")))
	})

	t.Run("非UTF-8按Latin-1解码", func(t *testing.T) {
		assert.Equal(t, "João", dc.EnsureUTF8([]byte{'J', 'o', 0xE3, 'o'}))
	})
}

func TestNormalizeRecord(t *testing.T) {
	dc := NewDataConverter()

	record := dc.NormalizeRecord(
		[]string{" Codigo ", "CLIENTE", "", "Email"},
		[]string{" JD123456785BR ", "Ana Maria"},
	)

	assert.Equal(t, map[string]interface{}{
		"codigo":  "JD123456785BR",
		"cliente": "Ana Maria",
		"email":   "",
	}, record)
}

func TestNormalizeBatch(t *testing.T) {
	dc := NewDataConverter()

	t.Run("map切片原样返回", func(t *testing.T) {
		batch := []map[string]interface{}{{"codigo": "JD123456785BR"}}
		records, err := dc.NormalizeBatch(batch)
		require.NoError(t, err)
		assert.Equal(t, batch, records)
	})

	t.Run("interface切片逐条转换", func(t *testing.T) {
		records, err := dc.NormalizeBatch([]interface{}{
			map[string]interface{}{"codigo": "JD123456785BR"},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "JD123456785BR", records[0]["codigo"])
	})

	t.Run("非键值元素报错", func(t *testing.T) {
		_, err := dc.NormalizeBatch([]interface{}{"not-a-map"})
		assert.Error(t, err)
	})

	t.Run("不支持的类型报错", func(t *testing.T) {
		_, err := dc.NormalizeBatch(42)
		assert.Error(t, err)
	})
}
