/*
 * @module service/models/import_models
 * @description 导入任务相关持久化模型，包括任务定义、纠错规则存储、质量报告与应用变更记录
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 任务创建 -> 批次处理 -> 报告落库 -> 变更应用记录
 * @rules 管道核心本身不落库，持久化由外部协作方（本层+database层）负责
 * @dependencies gorm.io/gorm, github.com/google/uuid, github.com/lib/pq
 * @refs service/database/migrate.go, service/scheduler
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ImportTask 导入任务模型，描述一个 CSV 导入或市场平台同步作业
type ImportTask struct {
	ID             string         `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	SourceType     string         `gorm:"not null" json:"source_type"` // csv/marketplace/mqtt
	Marketplace    string         `json:"marketplace,omitempty"`       // mercado_livre/shopee/amazon 等
	CronExpr       string         `json:"cron_expr,omitempty"`         // 定时任务表达式，空表示手动触发
	KeyFields      pq.StringArray `gorm:"type:text[]" json:"key_fields"`
	Strategy       string         `gorm:"not null;default:'merge'" json:"strategy"`
	Resolution     string         `gorm:"not null;default:'newer_wins'" json:"resolution"`
	Direction      string         `gorm:"not null;default:'unidirectional'" json:"direction"`
	FieldMapping   JSONB          `gorm:"type:jsonb" json:"field_mapping"`
	CredentialsEnc string         `json:"-"` // 市场平台凭证密文
	IsEnabled      bool           `gorm:"not null;default:true" json:"is_enabled"`
	LastRunAt      *time.Time     `json:"last_run_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate 创建前钩子
func (t *ImportTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CorrectionRuleDef 纠错规则持久化模型，活动规则集的存储形态
type CorrectionRuleDef struct {
	ID          string    `gorm:"primary_key;size:100" json:"id"`
	Field       string    `gorm:"not null;index" json:"field"`
	Pattern     string    `gorm:"not null" json:"pattern"`
	Kind        string    `gorm:"not null;default:'literal'" json:"kind"`
	Replacement string    `json:"replacement"`
	Priority    int       `gorm:"not null;default:3" json:"priority"`
	IsEnabled   bool      `gorm:"not null;default:true" json:"is_enabled"`
	IsBuiltIn   bool      `gorm:"not null;default:false" json:"is_built_in"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ToRule 转换为引擎使用的规则值
func (d *CorrectionRuleDef) ToRule() CorrectionRule {
	return CorrectionRule{
		ID:          d.ID,
		Field:       d.Field,
		Pattern:     d.Pattern,
		Kind:        ReplacementKind(d.Kind),
		Replacement: d.Replacement,
		Enabled:     d.IsEnabled,
		Priority:    d.Priority,
		Description: d.Description,
	}
}

// QualityReportRecord 质量报告落库模型
type QualityReportRecord struct {
	ID           string         `gorm:"type:uuid;primary_key" json:"id"`
	TaskID       string         `gorm:"index" json:"task_id"`
	OverallScore float64        `gorm:"not null" json:"overall_score"`
	Summary      JSONB          `gorm:"type:jsonb" json:"summary"`
	Metrics      JSONBArray     `gorm:"type:jsonb" json:"metrics"`
	CriticalList pq.StringArray `gorm:"type:text[]" json:"critical_list"`
	GeneratedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"generated_at"`
}

// BeforeCreate 创建前钩子
func (r *QualityReportRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// AppliedChangeRecord 已应用变更记录，供审计与回溯
type AppliedChangeRecord struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	TaskID    string    `gorm:"index" json:"task_id"`
	RecordID  string    `gorm:"not null;index" json:"record_id"`
	Operation string    `gorm:"not null" json:"operation"` // insert/update/delete
	Data      JSONB     `gorm:"type:jsonb" json:"data"`
	AppliedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"applied_at"`
}

// BeforeCreate 创建前钩子
func (a *AppliedChangeRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// ShipmentRecord 运单落地表，对账应用计划的目标存储
type ShipmentRecord struct {
	ID        string    `gorm:"size:32;primary_key" json:"id"` // 键字段哈希
	Data      JSONB     `gorm:"type:jsonb;not null" json:"data"`
	Carrier   string    `gorm:"index" json:"carrier,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
