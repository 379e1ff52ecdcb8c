/*
 * @module api/controllers/import_controller
 * @description 导入管道控制器，暴露承运商识别、批次纠错、质量分析与增量对账接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow HTTP请求处理流程
 * @rules 管道核心为纯函数，控制器只做参数解析与规则装配
 * @dependencies trackhub-service/service/pipeline, github.com/go-chi/render
 * @refs service/carrier/classifier.go, service/reconcile/reconciler.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"trackhub-service/service"
	"trackhub-service/service/carrier"
	"trackhub-service/service/correction"
	"trackhub-service/service/data_quality"
	"trackhub-service/service/models"
	"trackhub-service/service/pipeline"
	"trackhub-service/service/reconcile"
)

// ImportController 导入管道控制器
type ImportController struct {
	classifier *carrier.Classifier
	engine     *correction.Engine
	reconciler *reconcile.Reconciler
	pipeline   *pipeline.Pipeline
}

// NewImportController 创建导入管道控制器实例
func NewImportController() *ImportController {
	return &ImportController{
		classifier: carrier.NewDefaultClassifier(),
		engine:     correction.NewEngine(),
		reconciler: reconcile.NewReconciler(),
		pipeline:   pipeline.NewPipeline(),
	}
}

// ClassifyRequest 运单号识别请求
type ClassifyRequest struct {
	Code string `json:"code" example:"JD123456785BR"`
}

// Classify 识别运单号承运商
// @Summary 识别运单号承运商
// @Description 对运单号按模式注册表识别，返回按优先级排序的候选承运商列表
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "运单号"
// @Success 200 {object} APIResponse{data=[]models.CarrierCandidate} "识别成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /import/classify [post]
func (c *ImportController) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if req.Code == "" {
		render.JSON(w, r, BadRequestResponse("运单号不能为空", nil))
		return
	}

	candidates := c.classifier.Classify(req.Code)
	render.JSON(w, r, SuccessResponse("识别完成", candidates))
}

// CorrectRequest 单值纠错请求
type CorrectRequest struct {
	Value string `json:"value" example:"joão@GMAI.com"`
	Field string `json:"field" example:"customer_email"`
}

// Correct 对单个字段值执行纠错
// @Summary 单值纠错
// @Description 使用活动规则集对单个字段值执行纠错
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body CorrectRequest true "字段值与字段类型"
// @Success 200 {object} APIResponse{data=models.CorrectionResult} "纠错完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import/correct [post]
func (c *ImportController) Correct(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	rules, err := loadActiveRules()
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("加载纠错规则失败", err))
		return
	}
	result := c.engine.Correct(req.Value, req.Field, rules)
	render.JSON(w, r, SuccessResponse("纠错完成", result))
}

// AnalyzeCorrectionsRequest 批次纠错请求
type AnalyzeCorrectionsRequest struct {
	Records      []map[string]interface{} `json:"records"`
	FieldMapping map[string]string        `json:"field_mapping"`
}

// AnalyzeCorrections 对批次执行智能纠错
// @Summary 批次智能纠错
// @Description 对记录批次的映射字段执行纠错并返回分析汇总，纠错结果写回记录
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body AnalyzeCorrectionsRequest true "记录批次与列映射"
// @Success 200 {object} APIResponse{data=models.SmartCorrectionAnalysis} "分析完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import/corrections/analyze [post]
func (c *ImportController) AnalyzeCorrections(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeCorrectionsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	rules, err := loadActiveRules()
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("加载纠错规则失败", err))
		return
	}
	analysis := c.engine.AnalyzeAndCorrectMapped(req.Records, req.FieldMapping, rules)
	render.JSON(w, r, SuccessResponse("分析完成", map[string]interface{}{
		"analysis": analysis,
		"records":  req.Records,
	}))
}

// AnalyzeQualityRequest 质量分析请求
type AnalyzeQualityRequest struct {
	Records      []map[string]interface{}  `json:"records"`
	FieldMapping map[string]string         `json:"field_mapping"`
	Thresholds   *models.QualityThresholds `json:"thresholds,omitempty"`
}

// AnalyzeQuality 对批次执行质量分析
// @Summary 批次质量分析
// @Description 计算四维度质量得分并生成质量报告
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body AnalyzeQualityRequest true "记录批次、列映射与可选阈值"
// @Success 200 {object} APIResponse{data=models.DataQualityReport} "分析完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import/quality/analyze [post]
func (c *ImportController) AnalyzeQuality(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeQualityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	analyzer := data_quality.NewAnalyzer()
	if req.Thresholds != nil {
		analyzer = data_quality.NewAnalyzerWithThresholds(*req.Thresholds)
	}
	report, err := analyzer.Analyze(r.Context(), req.Records, req.FieldMapping)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("质量分析失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("分析完成", report))
}

// ReconcileRequest 增量对账请求
type ReconcileRequest struct {
	Source []map[string]interface{}       `json:"source"`
	Target []map[string]interface{}       `json:"target"`
	Config models.IncrementalImportConfig `json:"config"`
}

// Reconcile 执行增量对账
// @Summary 增量对账
// @Description 对源批次与目标批次执行差异分类与冲突解决，返回应用计划与待裁决冲突
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body ReconcileRequest true "源批次、目标批次与导入配置"
// @Success 200 {object} APIResponse{data=models.IncrementalImportResult} "对账完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /import/reconcile [post]
func (c *ImportController) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if validation := reconcile.ValidateConfig(req.Config); !validation.IsValid {
		render.JSON(w, r, BadRequestResponse("导入配置无效", nil))
		return
	}

	result := c.reconciler.Reconcile(r.Context(), req.Source, req.Target, req.Config)
	render.JSON(w, r, SuccessResponse("对账完成", result))
}

// ValidateConfigRequest 配置校验请求
type ValidateConfigRequest struct {
	Config models.IncrementalImportConfig `json:"config"`
}

// ValidateConfig 校验导入配置
// @Summary 校验导入配置
// @Description 纯校验器，返回配置的全部问题
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body ValidateConfigRequest true "导入配置"
// @Success 200 {object} APIResponse{data=models.ConfigValidation} "校验完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /import/config/validate [post]
func (c *ImportController) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	var req ValidateConfigRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	render.JSON(w, r, SuccessResponse("校验完成", reconcile.ValidateConfig(req.Config)))
}

// ApplyRequest 应用计划执行请求
type ApplyRequest struct {
	Operations []models.SyncOperation `json:"operations"`
}

// Apply 执行应用计划
// @Summary 执行应用计划
// @Description 将对账产生的插入/更新/删除操作应用到运单存储，部分失败不中断
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body ApplyRequest true "操作列表"
// @Success 200 {object} APIResponse{data=models.ApplyResult} "执行完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /import/reconcile/apply [post]
func (c *ImportController) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	store := reconcile.NewShipmentStore(service.DB)
	result := reconcile.ApplySyncOperations(r.Context(), req.Operations, store, nil)
	render.JSON(w, r, SuccessResponse("执行完成", result))
}

// RunPipelineRequest 完整管道执行请求
type RunPipelineRequest struct {
	Source       []map[string]interface{}       `json:"source"`
	Target       []map[string]interface{}       `json:"target"`
	FieldMapping map[string]string              `json:"field_mapping"`
	Config       models.IncrementalImportConfig `json:"config"`
}

// RunPipeline 对批次执行完整导入管道
// @Summary 执行完整管道
// @Description 纠错 -> 质量分析 -> 承运商识别富化 -> 增量对账，一次调用完成
// @Tags 导入管道
// @Accept json
// @Produce json
// @Param request body RunPipelineRequest true "管道输入"
// @Success 200 {object} APIResponse{data=pipeline.RunResult} "执行完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import/pipeline [post]
func (c *ImportController) RunPipeline(w http.ResponseWriter, r *http.Request) {
	var req RunPipelineRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	rules, err := loadActiveRules()
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("加载纠错规则失败", err))
		return
	}
	result, err := c.pipeline.Run(r.Context(), pipeline.RunInput{
		Source:       req.Source,
		Target:       req.Target,
		FieldMapping: req.FieldMapping,
		Rules:        rules,
		Config:       req.Config,
	})
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("管道执行失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("执行完成", result))
}

// loadActiveRules 加载活动纠错规则，库为空时回退内置规则
func loadActiveRules() ([]models.CorrectionRule, error) {
	var defs []models.CorrectionRuleDef
	if err := service.DB.Find(&defs).Error; err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return correction.DefaultCorrectionRules(), nil
	}
	rules := make([]models.CorrectionRule, 0, len(defs))
	for _, def := range defs {
		rules = append(rules, def.ToRule())
	}
	return rules, nil
}
