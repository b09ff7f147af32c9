/*
 * @Description: 密码哈希
 * @Author: inkwell
 * @Date: 2026-03-03 15:55:21
 * @LastEditTime: 2026-03-03 15:55:21
 * @LastEditors: inkwell
 */
package security

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只接受不超过 72 字节的输入
const maxBcryptInput = 72

// prepare 把超过 bcrypt 上限的密码压缩为固定长度，避免长密码被拒绝或截断
func prepare(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword 对密码进行加盐哈希处理
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(prepare(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash 验证密码哈希
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prepare(password))
	return err == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CompareDummy 在账户不存在时执行一次等价的哈希比较，使登录耗时与账户是否存在无关
func CompareDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("inkwell-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, prepare(password))
}
