/**
 * 凭证工具
 * @author: sun977
 * @date: 2025.11.03
 * @description: 租户不透明Bearer凭证的生成，凭证为随机派生的sha256十六进制串
 * @func: GenerateCredential
 */
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateCredential 为公司生成一个新的不透明凭证
// 凭证由 公司名+当前纳秒时间+UUID+随机字节 经sha256派生，
// 结果是64位十六进制字符串，整体替换旧凭证(不做增量轮换)
func GenerateCredential(companyName string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to read random nonce: %w", err)
	}

	raw := fmt.Sprintf("%s%d%s%s", companyName, time.Now().UnixNano(), uuid.NewString(), hex.EncodeToString(nonce))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}
