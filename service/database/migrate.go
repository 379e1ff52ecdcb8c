/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责表结构迁移与内置规则数据初始化
 * @architecture 分层架构 - 数据访问层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 应用启动 -> 表结构迁移 -> 内置规则播种
 * @rules 播种只补缺不覆盖，用户对内置规则的修改在重启后保留
 * @dependencies gorm.io/gorm, trackhub-service/service/models
 * @refs service/init.go
 */

package database

import (
	"fmt"

	"gorm.io/gorm"

	"trackhub-service/service/correction"
	"trackhub-service/service/models"
)

// AutoMigrate 迁移全部表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ImportTask{},
		&models.CorrectionRuleDef{},
		&models.QualityReportRecord{},
		&models.AppliedChangeRecord{},
		&models.ShipmentRecord{},
	)
}

// InitializeData 播种内置纠错规则，已存在的记录不覆盖
func InitializeData(db *gorm.DB) error {
	for _, rule := range correction.DefaultCorrectionRules() {
		var count int64
		if err := db.Model(&models.CorrectionRuleDef{}).Where("id = ?", rule.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("查询内置规则 %s 失败: %w", rule.ID, err)
		}
		if count > 0 {
			continue
		}
		def := models.CorrectionRuleDef{
			ID:          rule.ID,
			Field:       rule.Field,
			Pattern:     rule.Pattern,
			Kind:        string(rule.Kind),
			Replacement: rule.Replacement,
			Priority:    rule.Priority,
			IsEnabled:   rule.Enabled,
			IsBuiltIn:   true,
			Description: rule.Description,
		}
		if err := db.Create(&def).Error; err != nil {
			return fmt.Errorf("播种内置规则 %s 失败: %w", rule.ID, err)
		}
	}
	return nil
}
