/*
 * @module service/correction/ruleset
 * @description 纠错规则集，由配置方独占持有的可变规则列表，内置默认规则基线不可变
 * @architecture 值对象模式 - 规则集显式传递，不设进程级可变注册表
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 默认规则加载 -> 增删改/启停 -> 重置恢复基线
 * @rules 管理操作只变更活动规则集，默认基线永不被修改，重置始终可恢复
 * @dependencies trackhub-service/service/models
 * @refs rule_engine.go, defaults.go
 */

package correction

import (
	"fmt"

	"trackhub-service/service/models"
)

// RuleSet 活动纠错规则集合，单写者持有，不得与进行中的批量纠错并发修改
type RuleSet struct {
	rules []models.CorrectionRule
}

// NewRuleSet 基于默认规则创建规则集
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: DefaultCorrectionRules()}
}

// NewRuleSetWith 基于给定规则创建规则集
func NewRuleSetWith(rules []models.CorrectionRule) *RuleSet {
	rs := &RuleSet{rules: make([]models.CorrectionRule, len(rules))}
	copy(rs.rules, rules)
	return rs
}

// Rules 返回活动规则的副本
func (rs *RuleSet) Rules() []models.CorrectionRule {
	out := make([]models.CorrectionRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Add 添加规则，ID 重复时报错
func (rs *RuleSet) Add(rule models.CorrectionRule) error {
	if rule.ID == "" {
		return fmt.Errorf("规则ID不能为空")
	}
	for _, r := range rs.rules {
		if r.ID == rule.ID {
			return fmt.Errorf("规则 %s 已存在", rule.ID)
		}
	}
	rs.rules = append(rs.rules, rule)
	return nil
}

// Update 更新规则
func (rs *RuleSet) Update(rule models.CorrectionRule) error {
	for i, r := range rs.rules {
		if r.ID == rule.ID {
			rs.rules[i] = rule
			return nil
		}
	}
	return fmt.Errorf("规则 %s 不存在", rule.ID)
}

// Delete 删除规则
func (rs *RuleSet) Delete(id string) error {
	for i, r := range rs.rules {
		if r.ID == id {
			rs.rules = append(rs.rules[:i], rs.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("规则 %s 不存在", id)
}

// Toggle 启用/停用规则
func (rs *RuleSet) Toggle(id string, enabled bool) error {
	for i, r := range rs.rules {
		if r.ID == id {
			rs.rules[i].Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("规则 %s 不存在", id)
}

// Reset 重置为默认规则基线
func (rs *RuleSet) Reset() {
	rs.rules = DefaultCorrectionRules()
}
