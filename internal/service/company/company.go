/**
 * 服务层:公司(租户)业务逻辑
 * @author: sun977
 * @date: 2025.11.04
 * @description: 公司注册、凭证轮换、凭证认证
 * @func:
 * 1.Register 注册公司并生成凭证
 * 2.RegenerateToken 整体替换凭证，旧凭证立即失效
 * 3.Authenticate 凭证认证(读穿Redis缓存)
 */
package company

import (
	"context"

	"signhub/internal/model"
	"signhub/internal/pkg/auth"
	"signhub/internal/pkg/logger"
	"signhub/internal/repo/mysql"
	redisRepo "signhub/internal/repo/redis"

	"github.com/google/uuid"
)

// CompanyService 公司服务
// cache 可以为 nil，此时认证直接查库
type CompanyService struct {
	companyRepo mysql.CompanyRepository
	cache       redisRepo.CredentialStore
}

// NewCompanyService 创建公司服务实例
func NewCompanyService(companyRepo mysql.CompanyRepository, cache redisRepo.CredentialStore) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		cache:       cache,
	}
}

// Register 注册公司并返回生成的凭证
func (s *CompanyService) Register(ctx context.Context, name string) (*model.Company, error) {
	token, err := auth.GenerateCredential(name)
	if err != nil {
		return nil, model.NewStorageError(err)
	}

	company := &model.Company{
		CompanyUUID: uuid.NewString(),
		Name:        name,
		AuthToken:   token,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, model.NewStorageError(err)
	}

	return company, nil
}

// RegenerateToken 为指定公司整体替换凭证
// 旧凭证在本方法返回后必须立即失效: 先写库，再删除旧凭证的缓存键
func (s *CompanyService) RegenerateToken(ctx context.Context, companyUUID string) (string, error) {
	company, err := s.companyRepo.GetByUUID(ctx, companyUUID)
	if err != nil {
		return "", model.NewStorageError(err)
	}
	if company == nil {
		return "", model.ErrCompanyNotFound
	}

	newToken, err := auth.GenerateCredential(company.Name)
	if err != nil {
		return "", model.NewStorageError(err)
	}

	if err := s.companyRepo.UpdateToken(ctx, companyUUID, newToken); err != nil {
		return "", model.NewStorageError(err)
	}

	// 删除旧凭证缓存键，失败时不能忽略，否则旧凭证在TTL内仍可认证
	if s.cache != nil {
		if err := s.cache.Delete(ctx, company.AuthToken); err != nil {
			return "", model.NewStorageError(err)
		}
	}

	return newToken, nil
}

// Authenticate 凭证认证
// 读穿缓存: 命中直接返回，未命中查库并回填。缓存故障降级为查库
func (s *CompanyService) Authenticate(ctx context.Context, token string) (*model.Company, error) {
	if token == "" {
		return nil, model.ErrUnauthorized
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, token)
		if err != nil {
			logger.LogSystemEvent("credential_cache", "get_failed", err.Error(), logger.WarnLevel, nil)
		} else if cached != nil {
			return cached, nil
		}
	}

	company, err := s.companyRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, model.NewStorageError(err)
	}
	if company == nil {
		return nil, model.ErrUnauthorized
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, company); err != nil {
			logger.LogSystemEvent("credential_cache", "set_failed", err.Error(), logger.WarnLevel, nil)
		}
	}

	return company, nil
}
