/*
 * @module service/correction/defaults
 * @description 内置默认纠错规则，覆盖邮箱、电话、运单号、客户姓名、邮编与金额等语义字段
 * @architecture 静态数据 - 每次调用返回全新副本，基线不可被外部修改
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 默认规则构造 -> 规则集初始化/重置
 * @rules 优先级1为确定性清理、2为常见错误修复、3为展示性规整
 * @dependencies trackhub-service/service/models
 * @refs ruleset.go, rule_engine.go
 */

package correction

import "trackhub-service/service/models"

// 管道使用的规范语义字段名
const (
	FieldTrackingCode  = "tracking_code"
	FieldCustomerName  = "customer_name"
	FieldCustomerEmail = "customer_email"
	FieldCustomerPhone = "customer_phone"
	FieldPostalCode    = "postal_code"
	FieldOrderValue    = "order_value"
	FieldCity          = "destination_city"
)

// DefaultCorrectionRules 返回默认规则基线的全新副本
func DefaultCorrectionRules() []models.CorrectionRule {
	return []models.CorrectionRule{
		{
			ID:          "email-trim",
			Field:       FieldCustomerEmail,
			Pattern:     `^\s+|\s+$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "",
			Enabled:     true,
			Priority:    1,
			Description: "去除邮箱首尾空白",
		},
		{
			ID:          "email-lowercase",
			Field:       FieldCustomerEmail,
			Pattern:     `[A-Z]`,
			Kind:        models.ReplacementTransform,
			Replacement: "lowercase",
			Enabled:     true,
			Priority:    1,
			Description: "邮箱统一小写",
		},
		{
			ID:          "email-common-typos",
			Field:       FieldCustomerEmail,
			Pattern:     `@(gmai|gmal|gmial|gamil|gmaill)\.com$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "@gmail.com",
			Enabled:     true,
			Priority:    2,
			Description: "修复 gmail 域名常见拼写错误",
		},
		{
			ID:          "email-hotmail-typos",
			Field:       FieldCustomerEmail,
			Pattern:     `@(hotmal|hotmai|hotnail)\.com$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "@hotmail.com",
			Enabled:     true,
			Priority:    2,
			Description: "修复 hotmail 域名常见拼写错误",
		},
		{
			ID:          "phone-keep-digits",
			Field:       FieldCustomerPhone,
			Pattern:     `[^0-9+]`,
			Kind:        models.ReplacementLiteral,
			Replacement: "",
			Enabled:     true,
			Priority:    1,
			Description: "电话仅保留数字与国际前缀",
		},
		{
			ID:          "phone-leading-zero",
			Field:       FieldCustomerPhone,
			Pattern:     `^0(\d{10,11})$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "$1",
			Enabled:     true,
			Priority:    2,
			Description: "去除长途拨号前导0",
		},
		{
			ID:          "tracking-strip-spaces",
			Field:       FieldTrackingCode,
			Pattern:     `\s`,
			Kind:        models.ReplacementLiteral,
			Replacement: "",
			Enabled:     true,
			Priority:    1,
			Description: "运单号去除空白",
		},
		{
			ID:          "tracking-uppercase",
			Field:       FieldTrackingCode,
			Pattern:     `[a-z]`,
			Kind:        models.ReplacementTransform,
			Replacement: "uppercase",
			Enabled:     true,
			Priority:    1,
			Description: "运单号统一大写",
		},
		{
			ID:          "name-collapse-spaces",
			Field:       FieldCustomerName,
			Pattern:     `\s{2,}`,
			Kind:        models.ReplacementLiteral,
			Replacement: " ",
			Enabled:     true,
			Priority:    1,
			Description: "姓名压缩连续空白",
		},
		{
			ID:          "name-trim",
			Field:       FieldCustomerName,
			Pattern:     `^\s+|\s+$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "",
			Enabled:     true,
			Priority:    1,
			Description: "去除姓名首尾空白",
		},
		{
			ID:          "name-title-case",
			Field:       FieldCustomerName,
			Pattern:     `^.+$`,
			Kind:        models.ReplacementTransform,
			Replacement: "title_case",
			Enabled:     true,
			Priority:    3,
			Description: "姓名规整为首字母大写",
		},
		{
			ID:          "postal-code-format",
			Field:       FieldPostalCode,
			Pattern:     `^(\d{5})(\d{3})$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "$1-$2",
			Enabled:     true,
			Priority:    2,
			Description: "邮编补充连字符（CEP 格式）",
		},
		{
			ID:          "currency-comma-decimal",
			Field:       FieldOrderValue,
			Pattern:     `^(\d+),(\d{2})$`,
			Kind:        models.ReplacementLiteral,
			Replacement: "$1.$2",
			Enabled:     true,
			Priority:    2,
			Description: "金额逗号小数分隔符转为点号",
		},
		{
			ID:          "city-remove-accents",
			Field:       FieldCity,
			Pattern:     `^.+$`,
			Kind:        models.ReplacementTransform,
			Replacement: "remove_accents",
			Enabled:     false,
			Priority:    3,
			Description: "目的地城市去重音（用于匹配场景，默认停用）",
		},
	}
}
