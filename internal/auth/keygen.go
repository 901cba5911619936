package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const rawKeyLength = 32

// GenerateRawKey 生成原始API密钥，只在生成时展示一次，不落库
func GenerateRawKey() (string, error) {
	buf := make([]byte, rawKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}
	// base64url 比 hex 更适合放在请求头里
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashKey 对原始密钥做单向哈希，库中只保存哈希值
func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// GenerateApiKey 生成一对密钥：原始密钥返回给调用方，哈希值落库
func GenerateApiKey() (rawKey, hashedKey string, err error) {
	rawKey, err = GenerateRawKey()
	if err != nil {
		return "", "", err
	}
	return rawKey, HashKey(rawKey), nil
}

// VerifyApiKey 恒定时间比较原始密钥与存储的哈希
func VerifyApiKey(providedRawKey, storedHashedKey string) bool {
	providedHash := HashKey(providedRawKey)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHashedKey)) == 1
}
