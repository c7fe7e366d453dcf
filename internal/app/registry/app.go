/**
 * 应用:registry应用装配
 * @author: sun977
 * @date: 2025.11.21
 * @description: registry应用程序，按 配置 -> 日志 -> MySQL -> Redis(可选) -> 路由 的顺序完成初始化
 * @func:
 *   - NewApp 创建应用实例
 *   - GetEngine 获取Gin引擎
 *   - Close 释放资源
 */
package registry

import (
	"fmt"

	"signhub/internal/app/registry/router"
	"signhub/internal/config"
	"signhub/internal/pkg/database"
	"signhub/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// App registry应用程序结构体
type App struct {
	config        *config.Config
	logManager    *logger.LoggerManager
	db            *gorm.DB
	redisClient   *redis.Client
	router        *router.Router
	engine        *gin.Engine
	configWatcher *config.ConfigWatcher
}

// NewApp 创建registry应用实例
func NewApp(configPath string) (*App, error) {
	// 加载配置
	cfg, err := config.LoadConfig(configPath, "")
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 初始化日志
	logManager, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// 连接MySQL
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	// 连接Redis（可选，仅用于凭证缓存加速）
	var redisClient *redis.Client
	if cfg.Database.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(&cfg.Database.Redis)
		if err != nil {
			// Redis不可用不阻断启动，认证退化为逐请求查库
			logger.LogSystemEvent("app", "redis_unavailable", "Redis连接失败,凭证缓存退化为直接查库", logger.WarnLevel, map[string]interface{}{
				"error": err.Error(),
			})
			redisClient = nil
		}
	}

	// 装配路由
	r := router.NewRouter(db, redisClient, cfg)
	engine := r.SetupRoutes()

	// 配置热更新：目前只热加载日志配置(级别/格式)，其余变更需要重启
	watcher, err := config.NewConfigWatcher(configPath, "")
	if err != nil {
		return nil, fmt.Errorf("创建配置监听器失败: %w", err)
	}
	watcher.AddCallback(func(oldCfg, newCfg *config.Config) error {
		return logManager.UpdateConfig(&newCfg.Log)
	})
	if err := watcher.Start(); err != nil {
		logger.LogSystemEvent("app", "config_watcher_failed", "配置监听启动失败,热更新不可用", logger.WarnLevel, map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.LogSystemEvent("app", "startup", "registry应用初始化完成", logger.InfoLevel, map[string]interface{}{
		"mode":          cfg.Server.Mode,
		"redis_enabled": redisClient != nil,
	})

	return &App{
		config:        cfg,
		logManager:    logManager,
		db:            db,
		redisClient:   redisClient,
		router:        r,
		engine:        engine,
		configWatcher: watcher,
	}, nil
}

// GetConfig 获取配置实例
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetEngine 获取Gin引擎
func (a *App) GetEngine() *gin.Engine {
	return a.engine
}

// Close 释放应用持有的资源
func (a *App) Close() error {
	if a.configWatcher != nil {
		if err := a.configWatcher.Stop(); err != nil {
			logger.LogSystemEvent("app", "shutdown", "停止配置监听失败", logger.WarnLevel, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.LogSystemEvent("app", "shutdown", "关闭Redis连接失败", logger.WarnLevel, map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
