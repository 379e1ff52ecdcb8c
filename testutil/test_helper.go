/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trackhub-service/service/models"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.ImportTask{},
		&models.CorrectionRuleDef{},
		&models.QualityReportRecord{},
		&models.AppliedChangeRecord{},
		&models.ShipmentRecord{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"import_tasks",
		"correction_rule_defs",
		"quality_report_records",
		"applied_change_records",
		"shipment_records",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct{}

// NewImportTask 构造一个可直接入库的导入任务
func (f *TestDataFactory) NewImportTask(name string) *models.ImportTask {
	return &models.ImportTask{
		Name:       name,
		SourceType: "csv",
		KeyFields:  []string{"tracking_code"},
		Strategy:   string(models.StrategyMerge),
		Resolution: string(models.ResolutionNewerWins),
		Direction:  string(models.DirectionUnidirectional),
		FieldMapping: models.JSONB{
			"codigo":  "tracking_code",
			"cliente": "customer_name",
			"email":   "customer_email",
		},
		IsEnabled: true,
	}
}

// NewShipmentRecord 构造一条运单落地记录
func (f *TestDataFactory) NewShipmentRecord(id string, data map[string]interface{}) *models.ShipmentRecord {
	return &models.ShipmentRecord{
		ID:        id,
		Data:      models.JSONB(data),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
