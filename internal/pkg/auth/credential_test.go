/**
 * 凭证生成测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 验证凭证格式和不可预测性
 */
package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCredential_Format(t *testing.T) {
	credential, err := GenerateCredential("Alfa SRL")
	require.NoError(t, err)
	assert.Len(t, credential, 64)

	_, err = hex.DecodeString(credential)
	assert.NoError(t, err)
}

func TestGenerateCredential_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		credential, err := GenerateCredential("Alfa SRL")
		require.NoError(t, err)
		assert.False(t, seen[credential], "同名公司多次生成的凭证不得重复")
		seen[credential] = true
	}
}
