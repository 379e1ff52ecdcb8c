/*
 * @module service/data_quality/field_types
 * @description 规范字段类型的有效性谓词与格式一致性分类器
 * @architecture 策略模式 - 按字段类型分派校验与格式识别
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 字段映射 -> 类型识别 -> 谓词/格式分类
 * @rules 无专属谓词的字段非空即有效；无一致性规则的字段一致性恒为100
 * @dependencies regexp, time
 * @refs analyzer.go
 */

package data_quality

import (
	"regexp"
	"strings"
	"time"
)

// 规范字段名
const (
	FieldTrackingCode  = "tracking_code"
	FieldCustomerName  = "customer_name"
	FieldCustomerEmail = "customer_email"
	FieldCustomerPhone = "customer_phone"
	FieldOrderNumber   = "order_number"
	FieldOrderValue    = "order_value"
	FieldPostalCode    = "postal_code"
	FieldShipmentDate  = "shipment_date"
	FieldCity          = "destination_city"
)

// 必填身份字段，权重2且阈值不达标计为严重问题
var mandatoryFields = map[string]bool{
	FieldTrackingCode:  true,
	FieldCustomerName:  true,
	FieldCustomerEmail: true,
}

// 唯一性不达标恒为严重问题的字段（疑似重复导入）
var identityUniqueFields = map[string]bool{
	FieldTrackingCode: true,
	FieldOrderNumber:  true,
}

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[\d\s()\-\.]{8,20}$`)
	trackingRegex = regexp.MustCompile(`^([A-Z]{2}\d{9}[A-Z]{2}|1Z[0-9A-Z]{16}|TBA\d{9,12}|[A-Z]{2,3}\d{8,12}|\d{9,15}|957\d{8})$`)
	currencyRegex = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)
	postalRegex   = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	digitsRegex   = regexp.MustCompile(`^\d+$`)
	dateSlashDMY  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dateISO       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateDashDMY   = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	datePatterns  = []string{"02/01/2006", "2006-01-02", "02-01-2006", "2006/01/02"}
)

// isValidValue 按字段类型判断非空值是否有效
func isValidValue(field, value string) bool {
	switch field {
	case FieldCustomerEmail:
		return emailRegex.MatchString(value)
	case FieldCustomerPhone:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, value)
		return phoneRegex.MatchString(value) && len(digits) >= 8 && len(digits) <= 15
	case FieldTrackingCode:
		return trackingRegex.MatchString(strings.ToUpper(value))
	case FieldOrderValue:
		return currencyRegex.MatchString(value)
	case FieldPostalCode:
		return postalRegex.MatchString(value)
	case FieldShipmentDate:
		return parseDate(value)
	default:
		// 无专属谓词，非空即有效
		return true
	}
}

func parseDate(value string) bool {
	for _, layout := range datePatterns {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// consistencyPenalty 返回字段每多出一种格式扣减的分值，0表示该字段不参与一致性检查
func consistencyPenalty(field string) float64 {
	switch field {
	case FieldCustomerPhone:
		return 20
	case FieldOrderValue:
		return 25
	case FieldShipmentDate:
		return 15
	default:
		return 0
	}
}

// formatPattern 将值归入字段类型相关的格式类别
func formatPattern(field, value string) string {
	switch field {
	case FieldCustomerPhone:
		if digitsRegex.MatchString(value) {
			return "digits_only"
		}
		if strings.ContainsAny(value, "()- .") {
			return "formatted"
		}
		return "other"
	case FieldOrderValue:
		switch {
		case strings.Contains(value, ","):
			return "comma_decimal"
		case strings.Contains(value, "."):
			return "dot_decimal"
		default:
			return "integer"
		}
	case FieldShipmentDate:
		switch {
		case dateSlashDMY.MatchString(value):
			return "dd/mm/yyyy"
		case dateISO.MatchString(value):
			return "yyyy-mm-dd"
		case dateDashDMY.MatchString(value):
			return "dd-mm-yyyy"
		default:
			return "other"
		}
	default:
		return "uniform"
	}
}
