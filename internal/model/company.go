/**
 * 模型:公司(租户)实体
 * @author: sun977
 * @date: 2025.11.03
 * @description: 公司实体，任务的所有者，通过不透明凭证认证
 */
package model

import "time"

// Company 公司(租户)实体
// AuthToken 全局唯一，轮换时整体替换，旧值立即失效
type Company struct {
	CompanyUUID string    `json:"company_uuid" gorm:"type:char(36);primaryKey;comment:公司UUID"`
	Name        string    `json:"name" gorm:"size:255;not null;comment:公司名称"`
	AuthToken   string    `json:"-" gorm:"size:255;not null;uniqueIndex;comment:认证凭证"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;comment:创建时间"`
}

// TableName 指定表名
func (Company) TableName() string {
	return "companies"
}
