/*
 * @module api/controllers/task_controller
 * @description 导入任务管理控制器，提供任务增删改查、手动触发与历史报告查询
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow HTTP请求处理流程
 * @rules 任务凭证在入库前加密，接口永不回显明文凭证
 * @dependencies gorm.io/gorm, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/scheduler/scheduler_service.go, service/models/import_models.go
 */

package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"

	"trackhub-service/service"
	"trackhub-service/service/models"
	"trackhub-service/service/reconcile"
	"trackhub-service/service/utils"
)

// TaskController 导入任务管理控制器
type TaskController struct {
	crypto *utils.CryptoUtils
}

// NewTaskController 创建导入任务控制器实例
func NewTaskController() *TaskController {
	return &TaskController{crypto: utils.NewCryptoUtils()}
}

// TaskRequest 任务创建/更新请求
type TaskRequest struct {
	Name         string                 `json:"name" example:"mercado-livre-daily"`
	SourceType   string                 `json:"source_type" example:"marketplace"`
	Marketplace  string                 `json:"marketplace,omitempty" example:"mercado_livre"`
	CronExpr     string                 `json:"cron_expr,omitempty" example:"0 3 * * *"`
	KeyFields    []string               `json:"key_fields"`
	Strategy     string                 `json:"strategy" example:"merge"`
	Resolution   string                 `json:"resolution" example:"newer_wins"`
	Direction    string                 `json:"direction" example:"unidirectional"`
	FieldMapping map[string]interface{} `json:"field_mapping"`
	Credentials  string                 `json:"credentials,omitempty"` // 明文凭证，入库前加密
	IsEnabled    bool                   `json:"is_enabled" example:"true"`
}

func (req *TaskRequest) validate() error {
	if req.Name == "" || req.SourceType == "" {
		return errors.New("name 与 source_type 不能为空")
	}
	validation := reconcile.ValidateConfig(models.IncrementalImportConfig{
		Strategy:           models.ImportStrategy(req.Strategy),
		ConflictResolution: models.ConflictResolution(req.Resolution),
		KeyFields:          req.KeyFields,
		SyncDirection:      models.SyncDirection(req.Direction),
	})
	if !validation.IsValid {
		return errors.New(validation.Errors[0])
	}
	return nil
}

// ListTasks 查询任务列表
// @Summary 查询导入任务
// @Description 返回全部导入任务
// @Tags 导入任务
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ImportTask} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import-tasks [get]
func (c *TaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	var tasks []models.ImportTask
	if err := service.DB.Order("created_at desc").Find(&tasks).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询任务失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", tasks))
}

// CreateTask 创建任务
// @Summary 创建导入任务
// @Description 创建导入任务，凭证加密存储；含Cron表达式的任务自动进入调度
// @Tags 导入任务
// @Accept json
// @Produce json
// @Param task body TaskRequest true "任务定义"
// @Success 200 {object} APIResponse{data=models.ImportTask} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import-tasks [post]
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := req.validate(); err != nil {
		render.JSON(w, r, BadRequestResponse("任务定义无效", err))
		return
	}

	task := models.ImportTask{
		Name:         req.Name,
		SourceType:   req.SourceType,
		Marketplace:  req.Marketplace,
		CronExpr:     req.CronExpr,
		KeyFields:    req.KeyFields,
		Strategy:     req.Strategy,
		Resolution:   req.Resolution,
		Direction:    req.Direction,
		FieldMapping: models.JSONB(req.FieldMapping),
		IsEnabled:    req.IsEnabled,
	}
	if req.Credentials != "" {
		enc, err := c.crypto.Encrypt(req.Credentials)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse("凭证加密失败", err))
			return
		}
		task.CredentialsEnc = enc
	}

	if err := service.DB.Create(&task).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("创建任务失败", err))
		return
	}
	c.reloadScheduler()
	render.JSON(w, r, SuccessResponse("创建成功", task))
}

// UpdateTask 更新任务
// @Summary 更新导入任务
// @Description 更新任务定义，凭证字段留空则保留原凭证
// @Tags 导入任务
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param task body TaskRequest true "任务定义"
// @Success 200 {object} APIResponse{data=models.ImportTask} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /import-tasks/{id} [put]
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task models.ImportTask
	if err := service.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, NotFoundResponse("任务不存在", nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse("查询任务失败", err))
		return
	}

	var req TaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := req.validate(); err != nil {
		render.JSON(w, r, BadRequestResponse("任务定义无效", err))
		return
	}

	task.Name = req.Name
	task.SourceType = req.SourceType
	task.Marketplace = req.Marketplace
	task.CronExpr = req.CronExpr
	task.KeyFields = req.KeyFields
	task.Strategy = req.Strategy
	task.Resolution = req.Resolution
	task.Direction = req.Direction
	task.FieldMapping = models.JSONB(req.FieldMapping)
	task.IsEnabled = req.IsEnabled
	if req.Credentials != "" {
		enc, err := c.crypto.Encrypt(req.Credentials)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse("凭证加密失败", err))
			return
		}
		task.CredentialsEnc = enc
	}

	if err := service.DB.Save(&task).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("更新任务失败", err))
		return
	}
	c.reloadScheduler()
	render.JSON(w, r, SuccessResponse("更新成功", task))
}

// DeleteTask 删除任务
// @Summary 删除导入任务
// @Description 删除任务并从调度表移除
// @Tags 导入任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "任务不存在"
// @Router /import-tasks/{id} [delete]
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx := service.DB.Delete(&models.ImportTask{}, "id = ?", id)
	if tx.Error != nil {
		render.JSON(w, r, InternalErrorResponse("删除任务失败", tx.Error))
		return
	}
	if tx.RowsAffected == 0 {
		render.JSON(w, r, NotFoundResponse("任务不存在", nil))
		return
	}
	c.reloadScheduler()
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// RunTask 手动触发任务
// @Summary 手动触发导入任务
// @Description 异步触发一次任务执行，立即返回
// @Tags 导入任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse "已触发"
// @Failure 404 {object} APIResponse "任务不存在"
// @Failure 409 {object} APIResponse "任务正在执行"
// @Router /import-tasks/{id}/run [post]
func (c *TaskController) RunTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var task models.ImportTask
	if err := service.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.JSON(w, r, NotFoundResponse("任务不存在", nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse("查询任务失败", err))
		return
	}

	if service.GlobalSchedulerService.IsRunning(r.Context(), task.ID) {
		render.JSON(w, r, ConflictResponse("任务正在执行中", nil))
		return
	}

	go service.GlobalSchedulerService.TriggerTask(context.Background(), task.ID)
	render.JSON(w, r, SuccessResponse("已触发", map[string]string{"task_id": task.ID}))
}

// ListReports 查询任务的质量报告
// @Summary 查询质量报告
// @Description 分页返回任务的历史质量报告
// @Tags 导入任务
// @Produce json
// @Param id path string true "任务ID"
// @Param page query int false "页码"
// @Param size query int false "每页条数"
// @Success 200 {object} PaginatedResponse{data=[]models.QualityReportRecord} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import-tasks/{id}/reports [get]
func (c *TaskController) ListReports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, size := pagination(r)

	var total int64
	if err := service.DB.Model(&models.QualityReportRecord{}).Where("task_id = ?", id).Count(&total).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询报告失败", err))
		return
	}

	var reports []models.QualityReportRecord
	if err := service.DB.Where("task_id = ?", id).
		Order("generated_at desc").
		Offset((page - 1) * size).Limit(size).
		Find(&reports).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询报告失败", err))
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   reports,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// ListChanges 查询任务的已应用变更
// @Summary 查询应用变更审计
// @Description 分页返回任务执行中已应用的变更记录
// @Tags 导入任务
// @Produce json
// @Param id path string true "任务ID"
// @Param page query int false "页码"
// @Param size query int false "每页条数"
// @Success 200 {object} PaginatedResponse{data=[]models.AppliedChangeRecord} "查询成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /import-tasks/{id}/changes [get]
func (c *TaskController) ListChanges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, size := pagination(r)

	var total int64
	if err := service.DB.Model(&models.AppliedChangeRecord{}).Where("task_id = ?", id).Count(&total).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询变更记录失败", err))
		return
	}

	var changes []models.AppliedChangeRecord
	if err := service.DB.Where("task_id = ?", id).
		Order("applied_at desc").
		Offset((page - 1) * size).Limit(size).
		Find(&changes).Error; err != nil {
		render.JSON(w, r, InternalErrorResponse("查询变更记录失败", err))
		return
	}

	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   changes,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// reloadScheduler 任务变更后重建调度表
func (c *TaskController) reloadScheduler() {
	if service.GlobalSchedulerService == nil {
		return
	}
	if err := service.GlobalSchedulerService.Reload(); err != nil {
		slog.Error("调度表重建失败", "error", err)
	}
}

// pagination 解析分页参数，默认第1页每页20条
func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	return page, size
}
