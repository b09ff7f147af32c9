/*
 * @Description: JWT 令牌的签发与解析
 * @Author: inkwell
 * @Date: 2026-03-03 16:40:00
 * @LastEditTime: 2026-04-20 21:13:45
 * @LastEditors: inkwell
 */
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer 是签发方标识
const Issuer = "inkwell"

var errEmptySecret = errors.New("JWT Secret 不能为空")

// GenerateToken 为公共用户 ID 签发一个指定类型和有效期的令牌，返回令牌及其 Claims
func GenerateToken(publicUserID string, tokenType TokenType, ttl time.Duration, secretKey []byte) (string, *CustomClaims, error) {
	if len(secretKey) == 0 {
		return "", nil, errEmptySecret
	}

	now := time.Now()
	claims := &CustomClaims{
		UserID:    publicUserID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("签名令牌失败: %w", err)
	}
	return signed, claims, nil
}

// ParseToken 解析 JWT Token，并校验签名算法、签发方和令牌类型
func ParseToken(tokenStr string, expected TokenType, secretKey []byte) (*CustomClaims, error) {
	if len(secretKey) == 0 {
		return nil, errEmptySecret
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("解析token失败: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("无效或过期Token")
	}
	if claims.TokenType != expected {
		return nil, fmt.Errorf("令牌类型不匹配: %s", claims.TokenType)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("令牌缺少 jti")
	}

	return claims, nil
}
