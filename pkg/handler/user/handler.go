/*
 * @Description: 用户接口
 * @Author: inkwell
 * @Date: 2026-03-04 18:47:26
 * @LastEditTime: 2026-10-14 10:28:09
 * @LastEditors: inkwell
 */

// Package user_handler 提供账户资料与账户管理接口。
package user_handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
	moderation_dto "github.com/inkwell-cms/inkwell/pkg/handler/moderation/dto"
	"github.com/inkwell-cms/inkwell/pkg/handler/user/dto"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	"github.com/inkwell-cms/inkwell/pkg/service/user"
)

// UserHandler 账户接口
type UserHandler struct {
	userSvc user.UserService
	encoder *idgen.Encoder
}

func NewUserHandler(userSvc user.UserService, encoder *idgen.Encoder) *UserHandler {
	return &UserHandler{userSvc: userSvc, encoder: encoder}
}

// userID 解码路径中的用户公共ID
func (h *UserHandler) userID(c *gin.Context) (uint, bool) {
	id, err := h.encoder.Decode(c.Param("id"), idgen.EntityTypeUser)
	if err != nil {
		response.FailWithError(c, constant.NewNotFoundError("用户不存在"))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) respondUser(c *gin.Context, u *model.UserAccount, message string) {
	info, err := dto.ToUserInfo(u, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, info, message)
}

func (h *UserHandler) respondRecord(c *gin.Context, r *model.ModerationRecord, message string) {
	record, err := moderation_dto.ToRecord(r, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, record, message)
}

// GetCurrentUser 返回当前登录用户的完整资料
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	u, err := h.userSvc.GetByID(c.Request.Context(), actor.UserID())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if u == nil {
		response.FailWithError(c, constant.NewNotFoundError("用户不存在"))
		return
	}
	h.respondUser(c, u, "获取用户信息成功")
}

// GetUser
// @Summary      查看用户资料
// @Description  本人和未被封禁的审核员、管理员可以看到完整资料，其他人只能看到公开资料
// @Tags         用户
// @Produce      json
// @Param        id path string true "用户公共ID"
// @Success      200 {object} response.Response{data=dto.UserInfoResponse}
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	target, full, err := h.userSvc.ViewProfile(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if target == nil {
		response.FailWithError(c, constant.NewNotFoundError("用户不存在"))
		return
	}
	if full {
		h.respondUser(c, target, "获取用户信息成功")
		return
	}

	public, err := dto.ToPublicUser(target, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, public, "获取用户信息成功")
}

// ListUsers 按角色、账户状态和封禁状态筛选用户，仅审核员和管理员可用
func (h *UserHandler) ListUsers(c *gin.Context) {
	var filter repository.UserFilter
	if raw := c.Query("role"); raw != "" {
		role, err := model.ParseUserRole(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("state"); raw != "" {
		state, err := model.ParseAccountState(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.State = &state
	}
	if raw := c.Query("banned"); raw != "" {
		banned, err := strconv.ParseBool(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "banned 必须是 true 或 false")
			return
		}
		filter.IsBanned = &banned
	}

	users, err := h.userSvc.List(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := dto.ToUserInfoList(users, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取用户列表成功")
}

// UpdateProfile
// @Summary      修改资料
// @Description  本人或管理员可以修改邮箱、昵称和密码，未传的字段保持不变
// @Tags         用户
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "用户公共ID"
// @Param        body body dto.UpdateProfileRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=dto.UserInfoResponse}
// @Failure      400 {object} response.Response "参数错误或邮箱、昵称已被占用"
// @Failure      403 {object} response.Response "没有权限"
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求体格式错误")
		return
	}
	u, err := h.userSvc.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c), id, user.ProfileUpdate{
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondUser(c, u, "资料修改成功")
}

// CloseAccount 注销账户；cascade=true 时同时删除该用户的全部文章和评论
func (h *UserHandler) CloseAccount(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	cascade, _ := strconv.ParseBool(c.DefaultQuery("cascade", "false"))
	if err := h.userSvc.CloseAccount(c.Request.Context(), middleware.ActorFrom(c), id, cascade); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "账户已注销")
}

func (h *UserHandler) ListPendingAccounts(c *gin.Context) {
	users, err := h.userSvc.ListPendingAccounts(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	list, err := dto.ToUserInfoList(users, h.encoder)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, list, "获取待审核账户成功")
}

func (h *UserHandler) ValidateAccount(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.userSvc.ValidateAccount(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "账户已通过审核")
}

func (h *UserHandler) RefuseAccount(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.userSvc.RefuseAccount(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "账户已被拒绝")
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "角色不能为空")
		return
	}
	u, err := h.userSvc.ChangeRole(c.Request.Context(), middleware.ActorFrom(c), id, req.Role)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondUser(c, u, "角色修改成功")
}

// Ban 封禁账户并写入审核记录
func (h *UserHandler) Ban(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req dto.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "封禁理由不能为空")
		return
	}
	record, err := h.userSvc.Ban(c.Request.Context(), middleware.ActorFrom(c), id, req.Description)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecord(c, record, "账户已封禁")
}

func (h *UserHandler) Unban(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.userSvc.Unban(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "账户已解封")
}

// Report 举报用户，只写审核记录，不改变账户状态
func (h *UserHandler) Report(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req dto.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "举报说明不能为空")
		return
	}
	record, err := h.userSvc.Report(c.Request.Context(), middleware.ActorFrom(c), id, req.Description)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.respondRecord(c, record, "举报已记录")
}
