/**
 * 处理器:公司注册与凭证轮换接口
 * @author: sun977
 * @date: 2025.11.21
 * @description: 公司身份相关的HTTP接口处理器
 * @func:
 *   - Register 公司注册接口[公开]
 *   - RegenerateToken 凭证轮换接口[需认证]
 */
package company

import (
	"net/http"

	"signhub/internal/app/registry/middleware"
	"signhub/internal/model"
	"signhub/internal/pkg/logger"
	"signhub/internal/pkg/utils"
	companyService "signhub/internal/service/company"

	"github.com/gin-gonic/gin"
)

// CompanyHandler 公司接口处理器
type CompanyHandler struct {
	companyService *companyService.CompanyService
}

// NewCompanyHandler 创建公司处理器实例
func NewCompanyHandler(companyService *companyService.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// Register 公司注册接口
// 注册成功返回新公司的Bearer凭证，凭证仅在此时和轮换时下发
// @Router /register [post]
func (h *CompanyHandler) Register(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	requestID := c.GetHeader("X-Request-ID")

	var req model.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}

	company, err := h.companyService.Register(c.Request.Context(), req.Name)
	if err != nil {
		logger.LogBusinessError(err, requestID, "", clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
			"operation":    "company_register",
			"company_name": req.Name,
		})
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "failed",
			Message: "company registration failed",
			Error:   err.Error(),
		})
		return
	}

	logger.LogBusinessOperation("company_register", company.CompanyUUID, company.Name, clientIP, requestID, "success", "公司注册成功", nil)
	c.JSON(http.StatusCreated, model.APIResponse{
		Code:    http.StatusCreated,
		Status:  "success",
		Message: "company registered",
		Data: model.CredentialResponse{
			Credential: company.AuthToken,
		},
	})
}

// RegenerateToken 凭证轮换接口
// 为当前认证公司签发新凭证，旧凭证立即失效
// @Router /regenerate-token [post]
func (h *CompanyHandler) RegenerateToken(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	requestID := c.GetHeader("X-Request-ID")

	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	credential, err := h.companyService.RegenerateToken(c.Request.Context(), company.CompanyUUID)
	if err != nil {
		logger.LogBusinessError(err, requestID, company.CompanyUUID, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
			"operation": "regenerate_token",
		})
		status := http.StatusInternalServerError
		if err == model.ErrCompanyNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, model.APIResponse{
			Code:    status,
			Status:  "failed",
			Message: "credential rotation failed",
			Error:   err.Error(),
		})
		return
	}

	logger.LogBusinessOperation("regenerate_token", company.CompanyUUID, company.Name, clientIP, requestID, "success", "凭证轮换成功", nil)
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "credential regenerated",
		Data: model.CredentialResponse{
			Credential: credential,
		},
	})
}
