/*
 * @module service/carrier/classifier
 * @description 承运商识别器，基于模式注册表对运单号做多模式匹配、校验位检验与优先级排序
 * @architecture 静态注册表 + 前缀索引 - 注册表构建后只读，可跨并发调用共享
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 输入归一化 -> 前缀候选收集 -> 正则/长度匹配 -> 校验位检验 -> 优先级降序排序
 * @rules 识别永不抛错，空候选列表表示未知承运商，由调用方自行处理
 * @dependencies sort, strings, unicode, trackhub-service/service/models
 * @refs patterns.go, checksum.go, service/pipeline
 */

package carrier

import (
	"sort"
	"strings"
	"unicode"

	"trackhub-service/service/models"
)

// Classifier 承运商识别器
type Classifier struct {
	registry    []*models.TrackingPattern
	prefixIndex map[string][]*models.TrackingPattern
	noPrefix    []*models.TrackingPattern
}

// NewClassifier 基于给定注册表创建识别器并派生前缀索引
func NewClassifier(registry []*models.TrackingPattern) *Classifier {
	c := &Classifier{registry: registry}
	c.rebuildPrefixIndex()
	return c
}

// NewDefaultClassifier 基于内置注册表创建识别器
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultPatterns)
}

// rebuildPrefixIndex 重建前缀索引，注册表变更后必须调用
func (c *Classifier) rebuildPrefixIndex() {
	c.prefixIndex = make(map[string][]*models.TrackingPattern)
	c.noPrefix = nil

	for _, p := range c.registry {
		if len(p.Prefixes) == 0 {
			c.noPrefix = append(c.noPrefix, p)
			continue
		}
		for _, prefix := range p.Prefixes {
			key := strings.ToUpper(prefix)
			c.prefixIndex[key] = append(c.prefixIndex[key], p)
		}
	}
}

// Classify 识别运单号，返回按优先级降序的候选列表
// 同优先级候选保持注册顺序（稳定排序），由调用方结合上下文信息消歧
func (c *Classifier) Classify(code string) []models.CarrierCandidate {
	candidates := []models.CarrierCandidate{}

	norm := NormalizeCode(code)
	if norm == "" {
		return candidates
	}

	// 前缀命中仅用于缩小候选集，未声明前缀的模式始终参与匹配
	seen := make(map[string]bool)
	var pool []*models.TrackingPattern

	appendPool := func(patterns []*models.TrackingPattern) {
		for _, p := range patterns {
			if !seen[p.ID] {
				seen[p.ID] = true
				pool = append(pool, p)
			}
		}
	}

	if len(norm) >= 3 {
		appendPool(c.prefixIndex[norm[:3]])
	}
	if len(norm) >= 2 {
		appendPool(c.prefixIndex[norm[:2]])
	}
	appendPool(c.noPrefix)

	// 为保持注册顺序带来的平级稳定性，按注册表顺序遍历候选池
	for _, p := range c.registry {
		if !seen[p.ID] {
			continue
		}
		if !c.matches(p, norm) {
			continue
		}

		checksumOK := true
		if p.Checksum != nil {
			checksumOK = p.Checksum(norm)
		}

		candidates = append(candidates, models.CarrierCandidate{
			Pattern:    p,
			Matched:    true,
			ChecksumOK: checksumOK,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Pattern.Priority > candidates[j].Pattern.Priority
	})

	return candidates
}

// BestGuess 返回优先级最高的候选，未识别时返回 nil
func (c *Classifier) BestGuess(code string) *models.CarrierCandidate {
	candidates := c.Classify(code)
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// matches 模式匹配：任一正则命中即可，声明了长度约束时还需满足长度
func (c *Classifier) matches(p *models.TrackingPattern, code string) bool {
	if p.Length > 0 && len(code) != p.Length {
		return false
	}
	if p.LengthRange[0] > 0 || p.LengthRange[1] > 0 {
		if len(code) < p.LengthRange[0] || len(code) > p.LengthRange[1] {
			return false
		}
	}

	for _, re := range p.Regexes {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// NormalizeCode 输入归一化：转大写并去除所有空白字符，任何正则匹配前统一执行
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
