/*
 * @Description: 登录注册服务
 * @Author: inkwell
 * @Date: 2026-03-03 17:02:19
 * @LastEditTime: 2026-09-05 12:48:33
 * @LastEditors: inkwell
 */
package auth

import (
	"context"
	"log/slog"

	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/service/user"
)

// LoginResult 是登录成功后返回给接入层的数据
type LoginResult struct {
	User *model.UserAccount
	*SessionTokens
}

// AuthService 定义了所有认证相关的业务逻辑接口
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, email, nickname, password string) (*model.UserAccount, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	// Logout 注销给定的令牌，空字符串会被忽略
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// authService 是 AuthService 接口的实现
type authService struct {
	userSvc  user.UserService
	tokenSvc TokenService
	logger   *slog.Logger
}

// NewAuthService 是 authService 的构造函数
func NewAuthService(userSvc user.UserService, tokenSvc TokenService, logger *slog.Logger) AuthService {
	return &authService{
		userSvc:  userSvc,
		tokenSvc: tokenSvc,
		logger:   logger.With("service", "auth"),
	}
}

// Login 实现了用户登录的完整业务逻辑。
// 邮箱不存在和密码错误返回同一个错误；密码正确但账户已封禁时返回 ErrAccountBanned。
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.userSvc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, constant.ErrInvalidCredentials
	}

	tokens, err := s.tokenSvc.GenerateSessionTokens(ctx, u)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "用户登录", "user_id", u.ID)
	return &LoginResult{User: u, SessionTokens: tokens}, nil
}

// Register 注册新账户，注册后不会自动登录
func (s *authService) Register(ctx context.Context, email, nickname, password string) (*model.UserAccount, error) {
	return s.userSvc.Register(ctx, email, password, nickname)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	return s.tokenSvc.RefreshAccessToken(ctx, refreshToken)
}

func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		if err := s.tokenSvc.RevokeToken(ctx, token); err != nil {
			return err
		}
	}
	return nil
}
