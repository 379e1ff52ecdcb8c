/*
 * @module service/utils/crypto_utils
 * @description 凭证加密工具，负责市场平台API凭证的加密存储与解密使用
 * @architecture 加密工具集模式 - 无状态，密钥由环境变量派生
 * @dependencies crypto/aes, crypto/cipher, golang.org/x/crypto/pbkdf2
 * @refs service/scheduler/marketplace_fetcher.go, service/models/import_models.go
 */

package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2 参数，盐随密文一同存储
const (
	saltSize   = 16
	keyIter    = 10000
	keySize    = 32 // AES-256
	nonceSize  = 12 // GCM 标准
	defaultKey = "trackhub-default-key"
)

// CryptoUtils 凭证加密工具
type CryptoUtils struct {
	passphrase []byte
}

// NewCryptoUtils 创建加密工具实例，密钥来自 CREDENTIALS_KEY 环境变量
func NewCryptoUtils() *CryptoUtils {
	passphrase := os.Getenv("CREDENTIALS_KEY")
	if passphrase == "" {
		passphrase = defaultKey
	}
	return &CryptoUtils{passphrase: []byte(passphrase)}
}

// Encrypt AES-GCM加密，输出 base64(盐+随机数+密文)
func (cu *CryptoUtils) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("生成盐失败: %w", err)
	}

	gcm, err := cu.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("生成随机数失败: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(append(salt, nonce...), sealed...)
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt 解密 Encrypt 的输出
func (cu *CryptoUtils) Decrypt(ciphertext string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("解码base64失败: %w", err)
	}
	if len(payload) < saltSize+nonceSize {
		return "", fmt.Errorf("密文长度不足")
	}

	salt := payload[:saltSize]
	nonce := payload[saltSize : saltSize+nonceSize]
	sealed := payload[saltSize+nonceSize:]

	gcm, err := cu.cipherFor(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("解密失败: %w", err)
	}
	return string(plaintext), nil
}

// cipherFor 由口令和盐派生密钥并构造GCM
func (cu *CryptoUtils) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(cu.passphrase, salt, keyIter, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("创建AES块失败: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("创建GCM失败: %w", err)
	}
	return gcm, nil
}
