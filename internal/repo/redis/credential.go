/**
 * 仓库层:凭证缓存
 * @author: sun977
 * @date: 2025.11.04
 * @description: 认证凭证的Redis读穿缓存(凭证 -> 公司)，凭证轮换时必须删除旧键保证立即失效
 * @func: 单纯数据访问，不包含业务逻辑
 */
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signhub/internal/model"

	"github.com/go-redis/redis/v8"
)

// CredentialStore 凭证缓存访问接口
type CredentialStore interface {
	// Get 按凭证获取缓存的公司，未命中返回 nil, nil
	Get(ctx context.Context, token string) (*model.Company, error)
	// Set 缓存凭证对应的公司
	Set(ctx context.Context, token string, company *model.Company) error
	// Delete 删除凭证缓存键
	Delete(ctx context.Context, token string) error
}

// CredentialCache 凭证缓存
type CredentialCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCredentialCache 创建凭证缓存实例
func NewCredentialCache(client *redis.Client, ttl time.Duration) *CredentialCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CredentialCache{
		client: client,
		ttl:    ttl,
	}
}

// credentialKey 生成缓存键[KEY:credential:{token}]
func (c *CredentialCache) credentialKey(token string) string {
	return fmt.Sprintf("credential:%s", token)
}

// Get 按凭证获取缓存的公司，未命中返回 nil, nil
func (c *CredentialCache) Get(ctx context.Context, token string) (*model.Company, error) {
	data, err := c.client.Get(ctx, c.credentialKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential from cache: %w", err)
	}

	var company model.Company
	if err := json.Unmarshal([]byte(data), &company); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached company: %w", err)
	}
	return &company, nil
}

// Set 缓存凭证对应的公司
func (c *CredentialCache) Set(ctx context.Context, token string, company *model.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("failed to marshal company: %w", err)
	}

	if err := c.client.Set(ctx, c.credentialKey(token), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store credential in cache: %w", err)
	}
	return nil
}

// Delete 删除凭证缓存键
// 凭证轮换时先删缓存再返回新凭证，确保旧凭证立即失效
func (c *CredentialCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, c.credentialKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential from cache: %w", err)
	}
	return nil
}
