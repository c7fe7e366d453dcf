/**
 * 中间件:认证相关中间件
 * @author: sun977
 * @date: 2025.11.21
 * @description: 基于不透明Bearer凭证的公司认证中间件
 * @func:
 *   - GinCredentialAuthMiddleware: Gin公司凭证认证中间件
 *   - extractCredentialFromGinHeader: 从Gin请求头中提取Bearer凭证
 */
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"signhub/internal/model"
	"signhub/internal/pkg/logger"
	"signhub/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinCredentialAuthMiddleware Gin公司凭证认证中间件
// 验证请求头中的Bearer凭证，并将公司信息存储到Gin上下文中
// 凭证是不透明随机串，逐请求查库（可选Redis缓存加速），轮换后旧凭证立即失效
// 使用方式: router.Use(middlewareManager.GinCredentialAuthMiddleware())
func (m *MiddlewareManager) GinCredentialAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.GetClientIP(c)
		requestID := c.GetHeader("X-Request-ID")

		// 从请求头中提取凭证
		credential, err := m.extractCredentialFromGinHeader(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.APIResponse{
				Code:    http.StatusUnauthorized,
				Status:  "failed",
				Message: "missing or invalid authorization header",
				Error:   err.Error(),
			})
			c.Abort()
			return
		}

		// 验证凭证并解析出公司
		company, err := m.companyService.Authenticate(c.Request.Context(), credential)
		if err != nil {
			logger.LogBusinessError(err, requestID, "", clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation":         "credential_validation",
				"credential_prefix": credentialPrefix(credential),
			})
			status := http.StatusUnauthorized
			message := "invalid credential"
			if !errors.Is(err, model.ErrUnauthorized) {
				status = http.StatusInternalServerError
				message = "credential validation failed"
			}
			c.JSON(status, model.APIResponse{
				Code:    status,
				Status:  "failed",
				Message: message,
				Error:   err.Error(),
			})
			c.Abort()
			return
		}

		// 将公司信息存储到Gin上下文，供后续处理器使用
		c.Set("company", company)
		c.Set("company_uuid", company.CompanyUUID)
		c.Set("company_name", company.Name)

		c.Next()
	}
}

// extractCredentialFromGinHeader 从Gin请求头中提取Bearer凭证
func (m *MiddlewareManager) extractCredentialFromGinHeader(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {credential}'")
	}
	if parts[1] == "" {
		return "", errors.New("empty credential")
	}

	return parts[1], nil
}

// RequireCompany 从Gin上下文提取认证中间件写入的公司
// 缺失时写入401响应并返回nil，处理器判空后直接return即可
func RequireCompany(c *gin.Context) *model.Company {
	if v, exists := c.Get("company"); exists {
		if company, ok := v.(*model.Company); ok {
			return company
		}
	}
	c.JSON(http.StatusUnauthorized, model.APIResponse{
		Code:    http.StatusUnauthorized,
		Status:  "failed",
		Message: "unauthorized",
		Error:   model.ErrUnauthorized.Error(),
	})
	return nil
}

// credentialPrefix 返回凭证前缀用于日志记录，避免完整凭证落盘
func credentialPrefix(credential string) string {
	if len(credential) > 8 {
		return credential[:8] + "..."
	}
	return "..."
}
