/*
 * @module service/utils/data_converter
 * @description 数据转换工具，负责CSV批次的字符集转换与记录规范化
 * @architecture 工具函数模式 - 无状态转换方法集合
 * @dependencies github.com/spf13/cast, golang.org/x/text/encoding/charmap
 * @refs service/scheduler/task_executor.go, service/pipeline
 */

package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DataConverter 数据转换器
type DataConverter struct{}

// NewDataConverter 创建数据转换器实例
func NewDataConverter() *DataConverter {
	return &DataConverter{}
}

// DecodeLatin1 将 ISO-8859-1 字节序列转换为 UTF-8 字符串
// 巴西市场的CSV导出常见 Latin-1 编码
func (dc *DataConverter) DecodeLatin1(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("Latin-1解码失败: %w", err)
	}
	return string(decoded), nil
}

// EnsureUTF8 输入已是合法UTF-8则原样返回，否则按 Latin-1 解码
func (dc *DataConverter) EnsureUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if decoded, err := dc.DecodeLatin1(data); err == nil {
		return decoded
	}
	return string(data)
}

// NormalizeRecord 将CSV一行转换为键值记录：列名小写去空白，值统一为字符串
func (dc *DataConverter) NormalizeRecord(header []string, row []string) map[string]interface{} {
	record := make(map[string]interface{}, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if key == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		record[key] = value
	}
	return record
}

// NormalizeBatch 将任意形态的批次数据统一为 map 切片
func (dc *DataConverter) NormalizeBatch(raw interface{}) ([]map[string]interface{}, error) {
	switch batch := raw.(type) {
	case []map[string]interface{}:
		return batch, nil
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(batch))
		for i, item := range batch {
			record, err := cast.ToStringMapE(item)
			if err != nil {
				return nil, fmt.Errorf("第 %d 条记录不是键值结构: %w", i+1, err)
			}
			records = append(records, record)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("不支持的批次数据类型: %T", raw)
	}
}
