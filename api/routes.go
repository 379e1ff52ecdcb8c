/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"trackhub-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 导入管道
	r.Route("/import", func(r chi.Router) {
		importController := controllers.NewImportController()
		r.Post("/classify", importController.Classify)
		r.Post("/correct", importController.Correct)
		r.Post("/corrections/analyze", importController.AnalyzeCorrections)
		r.Post("/quality/analyze", importController.AnalyzeQuality)
		r.Post("/reconcile", importController.Reconcile)
		r.Post("/reconcile/apply", importController.Apply)
		r.Post("/config/validate", importController.ValidateConfig)
		r.Post("/pipeline", importController.RunPipeline)
	})

	// 纠错规则管理
	r.Route("/correction-rules", func(r chi.Router) {
		ruleController := controllers.NewRuleController()
		r.Get("/", ruleController.ListRules)
		r.Post("/", ruleController.CreateRule)
		r.Post("/reset", ruleController.ResetRules)
		r.Put("/{id}", ruleController.UpdateRule)
		r.Delete("/{id}", ruleController.DeleteRule)
		r.Post("/{id}/toggle", ruleController.ToggleRule)
	})

	// 导入任务管理
	r.Route("/import-tasks", func(r chi.Router) {
		taskController := controllers.NewTaskController()
		r.Get("/", taskController.ListTasks)
		r.Post("/", taskController.CreateTask)
		r.Put("/{id}", taskController.UpdateTask)
		r.Delete("/{id}", taskController.DeleteTask)
		r.Post("/{id}/run", taskController.RunTask)
		r.Get("/{id}/reports", taskController.ListReports)
		r.Get("/{id}/changes", taskController.ListChanges)
	})
}
