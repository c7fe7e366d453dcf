/**
 * 公司服务测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 覆盖公司注册、凭证轮换后的新旧凭证行为、凭证认证
 */
package company

import (
	"context"
	"testing"

	"signhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- 测试桩：内存版 CompanyRepository --------------------

type fakeCompanyRepo struct {
	byUUID  map[string]*model.Company
	byToken map[string]*model.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		byUUID:  make(map[string]*model.Company),
		byToken: make(map[string]*model.Company),
	}
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *model.Company) error {
	cp := *company
	r.byUUID[cp.CompanyUUID] = &cp
	r.byToken[cp.AuthToken] = &cp
	return nil
}

func (r *fakeCompanyRepo) GetByUUID(ctx context.Context, companyUUID string) (*model.Company, error) {
	return r.byUUID[companyUUID], nil
}

func (r *fakeCompanyRepo) GetByToken(ctx context.Context, token string) (*model.Company, error) {
	return r.byToken[token], nil
}

func (r *fakeCompanyRepo) UpdateToken(ctx context.Context, companyUUID string, newToken string) error {
	company := r.byUUID[companyUUID]
	delete(r.byToken, company.AuthToken)
	company.AuthToken = newToken
	r.byToken[newToken] = company
	return nil
}

// -------------------- 测试桩：内存版 CredentialStore --------------------

type fakeCredentialCache struct {
	entries map[string]*model.Company
	deleted []string
	getErr  error
	setErr  error
	delErr  error
	hits    int
}

func newFakeCredentialCache() *fakeCredentialCache {
	return &fakeCredentialCache{entries: make(map[string]*model.Company)}
}

func (c *fakeCredentialCache) Get(ctx context.Context, token string) (*model.Company, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if company, ok := c.entries[token]; ok {
		c.hits++
		return company, nil
	}
	return nil, nil
}

func (c *fakeCredentialCache) Set(ctx context.Context, token string, company *model.Company) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[token] = company
	return nil
}

func (c *fakeCredentialCache) Delete(ctx context.Context, token string) error {
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, token)
	c.deleted = append(c.deleted, token)
	return nil
}

// -------------------- 测试 --------------------

func TestRegister_IssuesCredential(t *testing.T) {
	svc := NewCompanyService(newFakeCompanyRepo(), nil)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)
	assert.NotEmpty(t, company.CompanyUUID)
	assert.Len(t, company.AuthToken, 64) // sha256十六进制

	// 两次注册生成的凭证互不相同
	other, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)
	assert.NotEqual(t, company.AuthToken, other.AuthToken)
}

func TestAuthenticate_ResolvesCompanyByCredential(t *testing.T) {
	svc := NewCompanyService(newFakeCompanyRepo(), nil)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), company.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyUUID, got.CompanyUUID)

	_, err = svc.Authenticate(context.Background(), "bogus-token")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestRegenerateToken_OldCredentialStopsWorking(t *testing.T) {
	svc := NewCompanyService(newFakeCompanyRepo(), nil)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)
	oldToken := company.AuthToken

	newToken, err := svc.RegenerateToken(context.Background(), company.CompanyUUID)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)

	// 新凭证可用，旧凭证立即失效
	got, err := svc.Authenticate(context.Background(), newToken)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyUUID, got.CompanyUUID)

	_, err = svc.Authenticate(context.Background(), oldToken)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

// 认证未命中缓存时查库回填，再次认证走缓存
func TestAuthenticate_ReadThroughCache(t *testing.T) {
	cache := newFakeCredentialCache()
	svc := NewCompanyService(newFakeCompanyRepo(), cache)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), company.AuthToken)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)
	assert.Contains(t, cache.entries, company.AuthToken) // 查库后已回填

	got, err := svc.Authenticate(context.Background(), company.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyUUID, got.CompanyUUID)
	assert.Equal(t, 1, cache.hits)
}

// 缓存读写故障降级为查库，不影响认证结果
func TestAuthenticate_CacheFailureDegradesToDB(t *testing.T) {
	cache := newFakeCredentialCache()
	cache.getErr = assert.AnError
	cache.setErr = assert.AnError
	svc := NewCompanyService(newFakeCompanyRepo(), cache)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), company.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyUUID, got.CompanyUUID)
}

// 凭证轮换在返回前删除旧凭证的缓存键，旧凭证不能再靠缓存命中认证
func TestRegenerateToken_InvalidatesCachedCredential(t *testing.T) {
	cache := newFakeCredentialCache()
	svc := NewCompanyService(newFakeCompanyRepo(), cache)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)
	oldToken := company.AuthToken

	// 预热缓存
	_, err = svc.Authenticate(context.Background(), oldToken)
	require.NoError(t, err)
	require.Contains(t, cache.entries, oldToken)

	newToken, err := svc.RegenerateToken(context.Background(), company.CompanyUUID)
	require.NoError(t, err)

	assert.Contains(t, cache.deleted, oldToken)
	assert.NotContains(t, cache.entries, oldToken)

	_, err = svc.Authenticate(context.Background(), oldToken)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	got, err := svc.Authenticate(context.Background(), newToken)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyUUID, got.CompanyUUID)
}

// 缓存删除失败时轮换必须报错，否则旧凭证在TTL内仍可认证
func TestRegenerateToken_CacheDeleteFailure(t *testing.T) {
	cache := newFakeCredentialCache()
	cache.delErr = assert.AnError
	svc := NewCompanyService(newFakeCompanyRepo(), cache)

	company, err := svc.Register(context.Background(), "Alfa SRL")
	require.NoError(t, err)

	_, err = svc.RegenerateToken(context.Background(), company.CompanyUUID)
	var storageErr *model.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestRegenerateToken_UnknownCompany(t *testing.T) {
	svc := NewCompanyService(newFakeCompanyRepo(), nil)

	_, err := svc.RegenerateToken(context.Background(), "no-such-company")
	assert.ErrorIs(t, err, model.ErrCompanyNotFound)
}
