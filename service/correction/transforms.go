/*
 * @module service/correction/transforms
 * @description 纠错规则的内置转换函数集合，按名称注册、对每个正则命中片段调用一次
 * @architecture 注册表模式 - 名称到纯函数的只读映射
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 规则引用转换名 -> 注册表查找 -> 逐命中应用
 * @rules 转换函数必须是确定性的纯函数，幂等应用不产生新变化
 * @dependencies golang.org/x/text, strings, unicode
 * @refs rule_engine.go, service/utils/data_converter.go
 */

package correction

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TransformFunc 确定性转换函数，对每个正则命中片段调用一次
type TransformFunc func(match string) string

var titleCaser = cases.Title(language.BrazilianPortuguese)

// accentStripper 去重音转换链：NFD分解 -> 去除组合记号 -> NFC重组
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// builtinTransforms 内置转换函数注册表
var builtinTransforms = map[string]TransformFunc{
	"lowercase": strings.ToLower,
	"uppercase": strings.ToUpper,
	"trim":      strings.TrimSpace,
	"title_case": func(match string) string {
		return titleCaser.String(strings.ToLower(match))
	},
	"digits_only": func(match string) string {
		var b strings.Builder
		for _, r := range match {
			if unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	},
	"remove_accents": func(match string) string {
		out, _, err := transform.String(accentStripper, match)
		if err != nil {
			return match
		}
		return out
	},
}

// LookupTransform 按名称查找内置转换函数
func LookupTransform(name string) (TransformFunc, bool) {
	fn, ok := builtinTransforms[name]
	return fn, ok
}
