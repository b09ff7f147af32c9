/*
 * @Description: 认证接口
 * @Author: inkwell
 * @Date: 2026-03-03 17:25:04
 * @LastEditTime: 2026-10-13 16:12:50
 * @LastEditors: inkwell
 */
package auth_handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/pkg/handler/user/dto"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	"github.com/inkwell-cms/inkwell/pkg/service/auth"
)

// AuthHandler 封装了所有认证相关的控制器方法
type AuthHandler struct {
	authSvc auth.AuthService
	encoder *idgen.Encoder
}

// NewAuthHandler 是 AuthHandler 的构造函数，用于依赖注入
func NewAuthHandler(authSvc auth.AuthService, encoder *idgen.Encoder) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, encoder: encoder}
}

// LoginRequest 定义了登录请求的结构
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 定义了注册请求的结构，长度限制由业务层校验
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Nickname       string `json:"nickname" binding:"required"`
	Password       string `json:"password" binding:"required"`
	RepeatPassword string `json:"repeat_password" binding:"required"`
}

// RefreshTokenRequest 定义了刷新令牌请求的结构
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest 中的刷新令牌是可选的，访问令牌从 Authorization 头读取
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse 是登录成功时返回给客户端的数据
type LoginResponse struct {
	UserInfo     *dto.UserInfoResponse `json:"userInfo"`
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
	Expires      int64                 `json:"expires"` // 访问令牌过期时间，毫秒时间戳
}

// Login 处理用户登录请求
// @Summary      用户登录
// @Description  用户通过邮箱和密码进行登录
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "登录信息"
// @Success      200   {object}  response.Response{data=LoginResponse}  "登录成功"
// @Failure      400   {object}  response.Response  "邮箱或密码格式不正确"
// @Failure      401   {object}  response.Response  "认证失败"
// @Failure      403   {object}  response.Response  "账户已被封禁"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "邮箱或密码格式不正确")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	info, err := dto.ToUserInfo(result.User, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, LoginResponse{
		UserInfo:     info,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Expires:      result.ExpiresAt,
	}, "登录成功")
}

// Register 处理用户注册请求
// @Summary      用户注册
// @Description  新账户为普通作者，需等待管理员审核
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "注册信息"
// @Success      201   {object}  response.Response{data=dto.UserInfoResponse}  "注册成功"
// @Failure      400   {object}  response.Response  "参数错误或邮箱、昵称已被占用"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "邮箱格式不正确或必填字段为空")
		return
	}
	if req.Password != req.RepeatPassword {
		response.Fail(c, http.StatusBadRequest, "两次输入的密码不一致")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Email, strings.TrimSpace(req.Nickname), req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	info, err := dto.ToUserInfo(u, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, info, "注册成功，请等待管理员审核")
}

// RefreshToken 处理刷新 Access Token 的请求
// @Summary      刷新令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body  body      RefreshTokenRequest  true  "刷新令牌"
// @Success      200   {object}  response.Response{data=object{accessToken=string,expires=int64}}
// @Failure      401   {object}  response.Response  "刷新令牌无效或已过期"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "刷新令牌不能为空")
		return
	}

	accessToken, expires, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"accessToken": accessToken,
		"expires":     expires,
	}, "刷新成功")
}

// Logout 注销当前访问令牌，以及请求体中可选的刷新令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), middleware.BearerToken(c), req.RefreshToken); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "已退出登录")
}
