// internal/app/middleware/auth.go
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/pkg/auth"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/response"
	service_auth "github.com/inkwell-cms/inkwell/pkg/service/auth"
)

type Middleware struct {
	tokenSvc service_auth.TokenService
	logger   *slog.Logger
}

func NewMiddleware(tokenSvc service_auth.TokenService, logger *slog.Logger) *Middleware {
	return &Middleware{tokenSvc: tokenSvc, logger: logger.With("component", "middleware")}
}

// bearerToken 从 Authorization 头中取出 Bearer 令牌，格式不正确时返回空字符串
func bearerToken(c *gin.Context) (token string, present bool) {
	header := c.Request.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", true
	}
	return parts[1], true
}

// JWTAuth 是一个强制性的JWT认证中间件
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "Token格式不正确")
			c.Abort()
			return
		}

		actor, err := m.tokenSvc.ParseAccessToken(c.Request.Context(), token)
		if err != nil {
			m.logger.DebugContext(c.Request.Context(), "JWT token解析失败", "error", err)
			response.FailWithError(c, err)
			c.Abort()
			return
		}

		c.Set(auth.ActorKey, actor)
		c.Next()
	}
}

// JWTAuthOptional 是一个可选的JWT认证中间件
// 如果没有Token，按匿名访问者放行；如果有Token但无效或过期，返回401触发前端刷新
func (m *Middleware) JWTAuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present || token == "" {
			c.Set(auth.ActorKey, model.Anonymous())
			c.Next()
			return
		}

		actor, err := m.tokenSvc.ParseAccessToken(c.Request.Context(), token)
		if err != nil {
			response.FailWithError(c, err)
			c.Abort()
			return
		}

		c.Set(auth.ActorKey, actor)
		c.Next()
	}
}

// ActorFrom 取出中间件存入的调用者，没有时返回匿名访问者
func ActorFrom(c *gin.Context) model.Actor {
	if v, ok := c.Get(auth.ActorKey); ok {
		if actor, ok := v.(model.Actor); ok {
			return actor
		}
	}
	return model.Anonymous()
}

// BearerToken 供注销接口读取当前请求携带的访问令牌
func BearerToken(c *gin.Context) string {
	token, _ := bearerToken(c)
	return token
}
