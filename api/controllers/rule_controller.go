/*
 * @module api/controllers/rule_controller
 * @description 纠错规则管理控制器，提供规则的增删改查、启停与重置
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow HTTP请求处理流程
 * @rules 重置只恢复内置规则基线，用户自建规则一并清除；内置规则不可删除
 * @dependencies gorm.io/gorm, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/correction/defaults.go, service/models/import_models.go
 */

package controllers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"

	"trackhub-service/service"
	"trackhub-service/service/correction"
	"trackhub-service/service/models"
)

// RuleController 纠错规则管理控制器
type RuleController struct{}

// NewRuleController 创建纠错规则控制器实例
func NewRuleController() *RuleController {
	return &RuleController{}
}

// RuleRequest 规则创建/更新请求
type RuleRequest struct {
	ID          string `json:"id" example:"email-lowercase"`
	Field       string `json:"field" example:"customer_email"`
	Pattern     string `json:"pattern" example:"[A-Z]"`
	Kind        string `json:"kind" example:"transform"`
	Replacement string `json:"replacement" example:"lowercase"`
	Priority    int    `json:"priority" example:"1"`
	IsEnabled   bool   `json:"is_enabled" example:"true"`
	Description string `json:"description"`
}

func (req *RuleRequest) validate() error {
	if req.ID == "" || req.Field == "" || req.Pattern == "" {
		return errors.New("id、field、pattern 均不能为空")
	}
	switch models.ReplacementKind(req.Kind) {
	case models.ReplacementLiteral, models.ReplacementTransform, models.ReplacementScript:
	default:
		return errors.New("kind 必须是 literal/transform/script 之一")
	}
	if _, err := regexp.Compile("(?i)" + req.Pattern); err != nil {
		return errors.New("pattern 不是合法正则: " + err.Error())
	}
	return nil
}

// ListRules 查询全部规则
// @Summary 查询纠错规则
// @Description 返回全部纠错规则，按字段和优先级排序
// @Tags 纠错规则
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.CorrectionRuleDef} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /correction-rules [get]
func (c *RuleController) ListRules(w http.ResponseWriter, r *http.Request) {
	var defs []models.CorrectionRuleDef
	if err := service.DB.Order("field, priority, id").Find(&defs).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询规则失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", defs))
}

// CreateRule 创建规则
// @Summary 创建纠错规则
// @Description 创建用户自建纠错规则
// @Tags 纠错规则
// @Accept json
// @Produce json
// @Param rule body RuleRequest true "规则定义"
// @Success 200 {object} APIResponse{data=models.CorrectionRuleDef} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /correction-rules [post]
func (c *RuleController) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := req.validate(); err != nil {
		render.JSON(w, r, BadRequestResponse("规则定义无效", err))
		return
	}

	def := models.CorrectionRuleDef{
		ID:          req.ID,
		Field:       req.Field,
		Pattern:     req.Pattern,
		Kind:        req.Kind,
		Replacement: req.Replacement,
		Priority:    req.Priority,
		IsEnabled:   req.IsEnabled,
		IsBuiltIn:   false,
		Description: req.Description,
	}
	if err := service.DB.Create(&def).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("创建规则失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建成功", def))
}

// UpdateRule 更新规则
// @Summary 更新纠错规则
// @Description 更新已有规则的定义
// @Tags 纠错规则
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param rule body RuleRequest true "规则定义"
// @Success 200 {object} APIResponse{data=models.CorrectionRuleDef} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /correction-rules/{id} [put]
func (c *RuleController) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var def models.CorrectionRuleDef
	if err := service.DB.First(&def, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, NotFoundResponse("规则不存在", nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse("查询规则失败", err))
		return
	}

	var req RuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	req.ID = id
	if err := req.validate(); err != nil {
		render.JSON(w, r, BadRequestResponse("规则定义无效", err))
		return
	}

	def.Field = req.Field
	def.Pattern = req.Pattern
	def.Kind = req.Kind
	def.Replacement = req.Replacement
	def.Priority = req.Priority
	def.IsEnabled = req.IsEnabled
	def.Description = req.Description
	if err := service.DB.Save(&def).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("更新规则失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", def))
}

// ToggleRule 启停规则
// @Summary 启停纠错规则
// @Description 切换规则的启用状态
// @Tags 纠错规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse{data=models.CorrectionRuleDef} "切换成功"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /correction-rules/{id}/toggle [post]
func (c *RuleController) ToggleRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var def models.CorrectionRuleDef
	if err := service.DB.First(&def, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, NotFoundResponse("规则不存在", nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse("查询规则失败", err))
		return
	}

	def.IsEnabled = !def.IsEnabled
	if err := service.DB.Save(&def).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("切换规则状态失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("切换成功", def))
}

// DeleteRule 删除规则
// @Summary 删除纠错规则
// @Description 删除用户自建规则，内置规则不可删除
// @Tags 纠错规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 400 {object} APIResponse "内置规则不可删除"
// @Failure 404 {object} APIResponse "规则不存在"
// @Router /correction-rules/{id} [delete]
func (c *RuleController) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var def models.CorrectionRuleDef
	if err := service.DB.First(&def, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, NotFoundResponse("规则不存在", nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse("查询规则失败", err))
		return
	}
	if def.IsBuiltIn {
		render.JSON(w, r, BadRequestResponse("内置规则不可删除，可改为停用", nil))
		return
	}

	if err := service.DB.Delete(&def).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("删除规则失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// ResetRules 重置规则为内置基线
// @Summary 重置纠错规则
// @Description 清空全部规则并重新播种内置规则基线
// @Tags 纠错规则
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.CorrectionRuleDef} "重置成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /correction-rules/reset [post]
func (c *RuleController) ResetRules(w http.ResponseWriter, r *http.Request) {
	err := service.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CorrectionRuleDef{}).Error; err != nil {
			return err
		}
		for _, rule := range correction.DefaultCorrectionRules() {
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
			if err := tx.Create(&def).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("重置规则失败", err))
		return
	}

	var defs []models.CorrectionRuleDef
	if err := service.DB.Order("field, priority, id").Find(&defs).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询规则失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("重置成功", defs))
}
