/*
 * @module service/models/carrier_models
 * @description 承运商识别相关模型，定义运单号模式、校验函数和识别候选结果
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 模式注册 -> 前缀索引构建 -> 运单号识别 -> 候选排序
 * @rules 模式注册表在进程启动时加载一次，之后只读
 * @dependencies regexp
 * @refs service/carrier/classifier.go
 */

package models

import "regexp"

// ChecksumFunc 校验位检验函数
// 当输入形状与该算法期望不符时必须返回 true（形状错误不由校验位判定）
type ChecksumFunc func(code string) bool

// TrackingPattern 运单号模式，描述单个承运商的编码格式
type TrackingPattern struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Country     string           `json:"country"`
	Regexes     []*regexp.Regexp `json:"-"`
	Length      int              `json:"length,omitempty"` // 固定长度，0 表示不限制
	LengthRange [2]int           `json:"length_range"`     // [min,max]，均为0表示不限制
	Checksum    ChecksumFunc     `json:"-"`
	Priority    int              `json:"priority"` // 数值越大越具体，平级时保持注册顺序
	Prefixes    []string         `json:"prefixes"`
	Examples    []string         `json:"examples"`
	Format      string           `json:"format"`
}

// CarrierCandidate 承运商识别候选结果
type CarrierCandidate struct {
	Pattern    *TrackingPattern `json:"pattern"`
	Matched    bool             `json:"matched"`
	ChecksumOK bool             `json:"checksum_ok"`
}
