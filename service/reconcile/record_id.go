/*
 * @module service/reconcile/record_id
 * @description 基于键字段值的确定性记录身份哈希
 * @architecture 工具函数 - 无状态
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 键字段取值 -> 有序拼接 -> xxhash64 -> 十六进制编码
 * @rules 仅键字段参与哈希，非键字段差异不会改变记录身份
 * @dependencies github.com/cespare/xxhash/v2, github.com/spf13/cast
 * @refs reconciler.go
 */

package reconcile

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
)

// 键值拼接分隔符，避免 ("ab","c") 与 ("a","bc") 合并后同串
const keySeparator = "\x1f"

// RecordID 对记录的键字段值做确定性哈希，返回16位十六进制标识
func RecordID(record map[string]interface{}, keyFields []string) string {
	parts := make([]string, 0, len(keyFields))
	for _, field := range keyFields {
		value := ""
		if raw, exists := record[field]; exists && raw != nil {
			value = strings.TrimSpace(cast.ToString(raw))
		}
		parts = append(parts, value)
	}
	sum := xxhash.Sum64String(strings.Join(parts, keySeparator))
	return strconv.FormatUint(sum, 16)
}
