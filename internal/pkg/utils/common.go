/*
 * @author: sun977
 * @date: 2025.11.20
 * @description: 通用的工具包
 * @func:
 */

package utils

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKey 类型用于标准上下文键的定义，避免使用裸字符串造成键冲突
type ContextKey string

// ContextKeyClientIP 标准上下文中存储客户端IP的统一键
const ContextKeyClientIP ContextKey = "client_ip"

// GetClientIP 从Gin上下文提取标准化的客户端IP
// 优先级: X-Forwarded-For 首段 > X-Real-IP > RemoteAddr
func GetClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// GetClientIPFromContext 从标准上下文读取客户端IP（统一键）
// 来源: clientIP 最初是logging中间件写入标准上下文 GinLoggingMiddleware() 中
// 如果不存在或类型不匹配，返回空字符串
func GetClientIPFromContext(ctx context.Context) string {
	v := ctx.Value(ContextKeyClientIP)
	if ip, ok := v.(string); ok {
		return ip
	}
	return ""
}
