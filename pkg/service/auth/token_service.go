/*
 * @Description: 令牌服务
 * @Author: inkwell
 * @Date: 2026-03-03 16:52:47
 * @LastEditTime: 2026-04-20 21:16:08
 * @LastEditors: inkwell
 */
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-cms/inkwell/internal/pkg/auth"
	"github.com/inkwell-cms/inkwell/pkg/config"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/service/utility"
)

// revokedKeyPrefix 是已注销令牌 jti 在缓存中的键前缀
const revokedKeyPrefix = "auth:revoked:"

// SessionTokens 是一次登录签发的令牌对
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // 访问令牌过期时间，毫秒时间戳
}

type TokenService interface {
	GenerateSessionTokens(ctx context.Context, user *model.UserAccount) (*SessionTokens, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	// ParseAccessToken 校验访问令牌并返回对应的调用者
	ParseAccessToken(ctx context.Context, accessToken string) (model.Actor, error)
	// RevokeToken 注销一个访问令牌或刷新令牌，直到它原本的过期时间
	RevokeToken(ctx context.Context, token string) error
}

type tokenService struct {
	userRepo   repository.UserRepository
	cacheSvc   utility.CacheService
	encoder    *idgen.Encoder
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService 构造函数。配置中没有 JWT 密钥时生成一个随机密钥，重启后已签发的令牌全部失效。
func NewTokenService(
	userRepo repository.UserRepository,
	cacheSvc utility.CacheService,
	encoder *idgen.Encoder,
	cfg *config.Config,
	logger *slog.Logger,
) (TokenService, error) {
	secret := cfg.GetString(config.KeyJWTSecret)
	if secret == "" {
		random, err := idgen.GenerateRandomSeed()
		if err != nil {
			return nil, fmt.Errorf("生成 JWT 密钥失败: %w", err)
		}
		secret = random
		logger.Warn("⚠️ 未配置 JWT.Secret，已使用随机密钥，重启后所有会话将失效")
	}
	return &tokenService{
		userRepo:   userRepo,
		cacheSvc:   cacheSvc,
		encoder:    encoder,
		secret:     []byte(secret),
		accessTTL:  cfg.GetDuration(config.KeyJWTAccessTTL),
		refreshTTL: cfg.GetDuration(config.KeyJWTRefreshTTL),
	}, nil
}

// --- JWT 会话令牌实现 ---

func (s *tokenService) GenerateSessionTokens(ctx context.Context, user *model.UserAccount) (*SessionTokens, error) {
	publicID, err := s.encoder.Encode(user.ID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}

	accessToken, accessClaims, err := auth.GenerateToken(publicID, auth.TokenTypeAccess, s.accessTTL, s.secret)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := auth.GenerateToken(publicID, auth.TokenTypeRefresh, s.refreshTTL, s.secret)
	if err != nil {
		return nil, err
	}

	return &SessionTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessClaims.ExpiresAt.Time.UnixMilli(),
	}, nil
}

func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.verify(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", 0, err
	}

	// 1. 解码公共用户 ID
	userID, err := s.encoder.Decode(claims.UserID, idgen.EntityTypeUser)
	if err != nil {
		return "", 0, constant.ErrInvalidToken
	}

	// 2. 用户必须仍然存在且未被封禁
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", 0, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return "", 0, constant.ErrInvalidToken
	}
	if user.IsBanned {
		return "", 0, constant.ErrAccountBanned
	}

	// 3. 重新生成 Access Token
	accessToken, newClaims, err := auth.GenerateToken(claims.UserID, auth.TokenTypeAccess, s.accessTTL, s.secret)
	if err != nil {
		return "", 0, err
	}
	return accessToken, newClaims.ExpiresAt.Time.UnixMilli(), nil
}

func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (model.Actor, error) {
	claims, err := s.verify(ctx, accessToken, auth.TokenTypeAccess)
	if err != nil {
		return model.Anonymous(), err
	}
	userID, err := s.encoder.Decode(claims.UserID, idgen.EntityTypeUser)
	if err != nil {
		return model.Anonymous(), constant.ErrInvalidToken
	}
	return model.ActorOf(userID), nil
}

func (s *tokenService) RevokeToken(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, auth.TokenTypeAccess, s.secret)
	if err != nil {
		claims, err = auth.ParseToken(token, auth.TokenTypeRefresh, s.secret)
	}
	if err != nil {
		return constant.ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheSvc.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("注销令牌失败: %w", err)
	}
	return nil
}

// verify 解析令牌并检查其是否已被注销
func (s *tokenService) verify(ctx context.Context, token string, expected auth.TokenType) (*auth.CustomClaims, error) {
	claims, err := auth.ParseToken(token, expected, s.secret)
	if err != nil {
		return nil, constant.ErrInvalidToken
	}
	revoked, err := s.cacheSvc.Exists(ctx, revokedKeyPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("检查令牌状态失败: %w", err)
	}
	if revoked {
		return nil, constant.ErrInvalidToken
	}
	return claims, nil
}
