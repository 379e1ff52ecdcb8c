/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、实时流接入与调度器启动
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保数据库迁移完成后才启动调度器和API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/database/migrate.go, service/scheduler/scheduler_service.go
 */

package service

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trackhub-service/client/connectors"
	"trackhub-service/service/database"
	"trackhub-service/service/distributed_lock"
	"trackhub-service/service/event"
	"trackhub-service/service/scheduler"
)

var (
	DB                     *gorm.DB
	GlobalEventService     *event.EventService
	GlobalFeed             *connectors.MQTTConnector
	GlobalTaskExecutor     *scheduler.TaskExecutor
	GlobalSchedulerService *scheduler.SchedulerService
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "trackhub")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=America/Sao_Paulo",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("内置规则初始化失败: %v", err)
	}
	log.Println("内置规则初始化完成")
}

// initServices 初始化服务
func initServices() {
	GlobalEventService = event.NewEventService()

	// MQTT实时流按配置可选接入
	if cfg := connectors.ConfigFromEnv(); cfg != nil {
		GlobalFeed = connectors.NewMQTTConnector(cfg)
		if err := GlobalFeed.Connect(); err != nil {
			log.Printf("MQTT实时流接入失败，继续以离线方式运行: %v", err)
			GlobalFeed = nil
		}
	}

	GlobalTaskExecutor = scheduler.NewTaskExecutor(DB, GlobalEventService, GlobalFeed)

	// 多实例部署时启用Redis分布式锁
	var lock distributed_lock.DistributedLock
	if os.Getenv("REDIS_HOST") != "" || os.Getenv("SCHEDULER_DISTRIBUTED") == "true" {
		redisLock, err := distributed_lock.NewRedisLock()
		if err != nil {
			log.Printf("Redis分布式锁初始化失败，调度器以单实例模式运行: %v", err)
		} else {
			lock = redisLock
		}
	}

	GlobalSchedulerService = scheduler.NewSchedulerService(DB, GlobalTaskExecutor, lock)
	if err := GlobalSchedulerService.Start(); err != nil {
		log.Fatalf("调度器启动失败: %v", err)
	}
}
