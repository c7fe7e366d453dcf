/**
 * 公司仓库测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 基于内存sqlite验证公司检索和凭证更新
 */
package mysql

import (
	"context"
	"testing"

	"signhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()

	company := &model.Company{
		CompanyUUID: "c1",
		Name:        "Alfa SRL",
		AuthToken:   "token-1",
	}
	require.NoError(t, repo.Create(ctx, company))

	got, err := repo.GetByUUID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alfa SRL", got.Name)

	got, err = repo.GetByToken(ctx, "token-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.CompanyUUID)

	// 不存在时返回 nil, nil
	got, err = repo.GetByUUID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 凭证更新后旧凭证查不到公司
	require.NoError(t, repo.UpdateToken(ctx, "c1", "token-2"))

	got, err = repo.GetByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByToken(ctx, "token-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.CompanyUUID)
}
