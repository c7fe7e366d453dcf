package middleware

import (
	"signhub/internal/config"
	companyService "signhub/internal/service/company"
)

// MiddlewareManager 中间件管理器
// 负责管理所有Gin框架的中间件，提供统一的中间件接口
type MiddlewareManager struct {
	companyService *companyService.CompanyService // 公司服务，用于凭证验证
	securityConfig *config.SecurityConfig         // 安全配置，用于中间件配置
}

// NewMiddlewareManager 创建中间件管理器
// 参数:
//   - companyService: 公司服务实例
//   - securityConfig: 安全配置实例
//
// 返回: 中间件管理器实例
func NewMiddlewareManager(companyService *companyService.CompanyService, securityConfig *config.SecurityConfig) *MiddlewareManager {
	return &MiddlewareManager{
		companyService: companyService,
		securityConfig: securityConfig,
	}
}
