/**
 * 中间件:日志相关中间件
 * @author: sun977
 * @date: 2025.11.21
 * @description: 定义日志中间件
 * @func:
 *   - GinLoggingMiddleware Gin日志中间件[同时把客户端IP存储到Gin上下文和标准上下文,供后续使用]
 *   - GinRecoveryMiddleware Gin异常恢复中间件
 */
package middleware

import (
	"context"
	"net/http"
	"time"

	"signhub/internal/model"
	"signhub/internal/pkg/logger"
	"signhub/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinLoggingMiddleware Gin日志中间件
// 记录所有HTTP请求的访问日志
// 使用方式: router.Use(middlewareManager.GinLoggingMiddleware())
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	skipPaths := make(map[string]bool, len(m.securityConfig.Logging.SkipPaths))
	for _, p := range m.securityConfig.Logging.SkipPaths {
		skipPaths[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		// 提取并格式化客户端IP
		clientIP := utils.GetClientIP(c)
		requestID := c.GetHeader("X-Request-ID")

		// 存储到Gin上下文
		c.Set("client_ip", clientIP)

		// 存储到标准上下文，service层及以下使用标准上下文获取
		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyClientIP, clientIP)
		c.Request = c.Request.WithContext(ctx)

		// 处理请求
		c.Next()

		// 记录访问日志
		if !m.securityConfig.Logging.EnableRequestLog || skipPaths[c.Request.URL.Path] {
			return
		}
		companyUUID := c.GetString("company_uuid")
		logger.LogAccessRequest(c, start, requestID, companyUUID)
	}
}

// GinRecoveryMiddleware Gin异常恢复中间件
// 捕获处理器panic，记录系统日志并返回500，避免进程退出
func (m *MiddlewareManager) GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.LogSystemEvent("http_server", "panic_recovered", "处理请求时发生panic", logger.ErrorLevel, map[string]interface{}{
					"panic":     r,
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": utils.GetClientIP(c),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.APIResponse{
					Code:    http.StatusInternalServerError,
					Status:  "failed",
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
