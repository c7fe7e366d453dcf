/**
 * 仓库层:公司数据访问
 * @author: sun977
 * @date: 2025.11.04
 * @description: 公司实体的数据访问层，单纯数据访问，不包含业务逻辑
 */
package mysql

import (
	"context"
	"errors"

	"signhub/internal/model"

	"gorm.io/gorm"
)

// CompanyRepository 公司仓库接口
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByUUID(ctx context.Context, companyUUID string) (*model.Company, error)
	GetByToken(ctx context.Context, token string) (*model.Company, error)
	UpdateToken(ctx context.Context, companyUUID string, newToken string) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository 创建公司仓库实例
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{
		db: db,
	}
}

// Create 创建公司
func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// GetByUUID 按UUID获取公司，不存在时返回 nil, nil
func (r *companyRepository) GetByUUID(ctx context.Context, companyUUID string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).Where("company_uuid = ?", companyUUID).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// GetByToken 按凭证获取公司，不存在时返回 nil, nil
// 认证入口，凭证轮换后旧值在这里立即查不到
func (r *companyRepository) GetByToken(ctx context.Context, token string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).Where("auth_token = ?", token).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// UpdateToken 整体替换公司凭证
func (r *companyRepository) UpdateToken(ctx context.Context, companyUUID string, newToken string) error {
	return r.db.WithContext(ctx).Model(&model.Company{}).
		Where("company_uuid = ?", companyUUID).
		Update("auth_token", newToken).Error
}
