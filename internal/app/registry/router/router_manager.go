/**
 * 路由:路由管理器
 * @author: sun977
 * @date: 2025.11.21
 * @description: 路由管理器，包含Router结构体、NewRouter函数和SetupRoutes主函数
 * @func:
 */
package router

import (
	"signhub/internal/app/registry/middleware"
	"signhub/internal/config"
	companyHandler "signhub/internal/handler/company"
	taskHandler "signhub/internal/handler/task"
	mysqlRepo "signhub/internal/repo/mysql"
	redisRepo "signhub/internal/repo/redis"
	companyService "signhub/internal/service/company"
	taskService "signhub/internal/service/task"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Router 路由管理器
type Router struct {
	config            *config.Config
	engine            *gin.Engine
	middlewareManager *middleware.MiddlewareManager
	companyHandler    *companyHandler.CompanyHandler
	taskHandler       *taskHandler.TaskHandler
}

// NewRouter 创建路由管理器实例
// 在这里完成 repo -> service -> handler 的逐层装配
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Router {
	// 数据访问层
	companyRepo := mysqlRepo.NewCompanyRepository(db)
	taskRepo := mysqlRepo.NewTaskRepository(db)

	// 凭证缓存可选，redisClient 为 nil 时服务层直接退化为逐请求查库
	var credentialCache redisRepo.CredentialStore
	if redisClient != nil {
		credentialCache = redisRepo.NewCredentialCache(redisClient, cfg.Database.Redis.CredentialTTL)
	}

	// 业务服务层
	companySvc := companyService.NewCompanyService(companyRepo, credentialCache)
	taskSvc := taskService.NewTaskService(taskRepo)

	// 中间件管理器
	middlewareManager := middleware.NewMiddlewareManager(companySvc, &cfg.Security)

	return &Router{
		config:            cfg,
		middlewareManager: middlewareManager,
		companyHandler:    companyHandler.NewCompanyHandler(companySvc),
		taskHandler:       taskHandler.NewTaskHandler(taskSvc),
	}
}

// SetupRoutes 设置所有路由并返回Gin引擎
func (r *Router) SetupRoutes() *gin.Engine {
	// 根据配置设置Gin运行模式
	gin.SetMode(r.config.Server.Mode)

	engine := gin.New()
	r.engine = engine

	// 全局中间件
	engine.Use(r.middlewareManager.GinRecoveryMiddleware())
	engine.Use(r.middlewareManager.GinLoggingMiddleware())

	// 公开路由（无需凭证）
	r.setupPublicRoutes(engine)

	// 认证路由（需要Bearer凭证）
	r.setupAuthenticatedRoutes(engine)

	return engine
}

// setupPublicRoutes 设置公开路由
func (r *Router) setupPublicRoutes(engine *gin.Engine) {
	// 公司注册，返回首个凭证
	engine.POST("/register", r.companyHandler.Register)
	// 健康检查
	engine.GET("/health", r.healthCheck)
}

// setupAuthenticatedRoutes 设置需要凭证认证的路由
func (r *Router) setupAuthenticatedRoutes(engine *gin.Engine) {
	authenticated := engine.Group("")
	authenticated.Use(r.middlewareManager.GinCredentialAuthMiddleware())

	// 凭证轮换
	authenticated.POST("/regenerate-token", r.companyHandler.RegenerateToken)

	// 任务创建
	authenticated.POST("/tasks/buyer/sign_single_invoice", r.taskHandler.CreateSingleInvoiceTasks)
	authenticated.POST("/tasks/supplier/sign_all_invoices", r.taskHandler.CreateMultipleInvoicesTasks)

	// 任务状态查询与回报
	authenticated.POST("/tasks/status/singleInvoice", r.taskHandler.GetSingleInvoiceStatus)
	authenticated.PUT("/tasks/status", r.taskHandler.UpdateTaskStatuses)

	// 机器拉取等待任务
	authenticated.GET("/machine/tasks", r.taskHandler.GetMachineTasks)
}
