/*
 * @module service/carrier/patterns
 * @description 承运商运单号模式注册表，进程启动时构建一次的只读静态数据
 * @architecture 静态注册表模式 - 模式不可变，派生前缀索引
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 模式定义 -> 注册表构建 -> 前缀索引派生
 * @rules 同优先级模式之间的先后顺序即注册顺序，注册表变更后必须重建前缀索引
 * @dependencies regexp, trackhub-service/service/models
 * @refs checksum.go, classifier.go
 */

package carrier

import (
	"regexp"

	"trackhub-service/service/models"
)

// DefaultPatterns 内置承运商模式注册表
// 注册顺序在同优先级平级时即最终排序顺序
var DefaultPatterns = []*models.TrackingPattern{
	{
		ID:      "correios",
		Name:    "Correios",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^[A-Z]{2}\d{9}BR$`),
		},
		Length:   13,
		Checksum: ChecksumMod11,
		Priority: 100,
		Prefixes: []string{"JD", "PN", "OT", "SS", "RA", "LB", "NL", "RC"},
		Examples: []string{"JD123456785BR", "OT453124780BR", "PN785123466BR"},
		Format:   "2 letras de serviço + 8 dígitos + dígito verificador + BR",
	},
	{
		ID:      "china-post-registered",
		Name:    "China Post 挂号小包",
		Country: "CN",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^[RLU][A-Z]\d{9}CN$`),
		},
		Length:   13,
		Checksum: ChecksumMod11,
		Priority: 98,
		Prefixes: []string{"RA", "RB", "RC", "LK", "UA"},
		Examples: []string{"RA123456785CN"},
		Format:   "跨境小包，UPU S10 编码，后缀 CN",
	},
	{
		ID:      "ups",
		Name:    "UPS",
		Country: "US",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^1Z[A-Z0-9]{16}$`),
		},
		Length:   18,
		Checksum: ChecksumLuhnAlphanumeric,
		Priority: 95,
		Prefixes: []string{"1Z"},
		Examples: []string{"1Z999AA10123456784"},
		Format:   "1Z + 账号6位 + 服务2位 + 包裹7位 + 校验位",
	},
	{
		ID:      "amazon-logistics",
		Name:    "Amazon Logistics",
		Country: "US",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^TBA\d{12}$`),
		},
		Length:   15,
		Priority: 90,
		Prefixes: []string{"TBA"},
		Examples: []string{"TBA123456789012"},
		Format:   "TBA + 12 dígitos",
	},
	{
		ID:      "loggi",
		Name:    "Loggi",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^LGG\d{10}$`),
		},
		Length:   13,
		Priority: 85,
		Prefixes: []string{"LGG"},
		Examples: []string{"LGG1234567890"},
		Format:   "LGG + 10 dígitos",
	},
	{
		ID:      "total-express",
		Name:    "Total Express",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^TE\d{10}$`),
		},
		Length:   12,
		Priority: 80,
		Prefixes: []string{"TE"},
		Examples: []string{"TE1234567890"},
		Format:   "TE + 10 dígitos",
	},
	{
		ID:      "mercado-envios",
		Name:    "Mercado Envios",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^ME\d{9,11}$`),
		},
		LengthRange: [2]int{11, 13},
		Priority:    75,
		Prefixes:    []string{"ME"},
		Examples:    []string{"ME12345678901"},
		Format:      "ME + 9 a 11 dígitos",
	},
	{
		ID:      "azul-cargo",
		Name:    "Azul Cargo Express",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^AZ\d{9}$`),
		},
		Length:   11,
		Priority: 70,
		Prefixes: []string{"AZ"},
		Examples: []string{"AZ123456789"},
		Format:   "AZ + 9 dígitos",
	},
	{
		ID:      "latam-cargo",
		Name:    "LATAM Cargo",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^957\d{8}$`),
		},
		Length:   11,
		Priority: 65,
		Prefixes: []string{"957"},
		Examples: []string{"95712345678"},
		Format:   "AWB 航空运单，航司前缀 957 + 8 dígitos",
	},
	{
		ID:      "dhl-express",
		Name:    "DHL Express",
		Country: "DE",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^\d{10}$`),
		},
		Length:   10,
		Checksum: ChecksumMod7,
		Priority: 55,
		Examples: []string{"1234567895", "9876543214"},
		Format:   "10 dígitos，第10位为模7校验位",
	},
	{
		ID:      "jadlog",
		Name:    "Jadlog",
		Country: "BR",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^\d{14}$`),
		},
		Length:   14,
		Priority: 52,
		Examples: []string{"12345678901234"},
		Format:   "14 dígitos",
	},
	{
		ID:      "fedex",
		Name:    "FedEx",
		Country: "US",
		Regexes: []*regexp.Regexp{
			regexp.MustCompile(`^\d{12}$`),
			regexp.MustCompile(`^\d{15}$`),
		},
		LengthRange: [2]int{12, 15},
		Priority:    50,
		Examples:    []string{"123456789012", "123456789012345"},
		Format:      "12 ou 15 dígitos",
	},
}
