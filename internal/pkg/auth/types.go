package auth

import "github.com/golang-jwt/jwt/v5"

// ActorKey 是在 gin.Context 中存储当前调用者 (model.Actor) 的键。
const ActorKey = "actor"

// TokenType 区分访问令牌和刷新令牌，两者不能互换使用
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// CustomClaims 定义了 JWT 的自定义 Claims 结构体。
// UserID 存储的是用户的公共 ID，RegisteredClaims.ID 是用于注销的 jti。
type CustomClaims struct {
	UserID    string    `json:"user_id"`    // 用户公共ID
	TokenType TokenType `json:"token_type"` // 令牌类型
	jwt.RegisteredClaims
}
