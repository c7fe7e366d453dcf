/**
 * 路由:健康检查路由
 * @author: sun977
 * @date: 2025.11.21
 * @description: 包含健康检查处理器
 * @func:
 */

package router

import (
	"net/http"

	"signhub/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// healthCheck 健康检查处理器
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": logger.NowFormatted(),
	})
}
