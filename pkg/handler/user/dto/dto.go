/*
 * @Description: 用户接口的请求与响应结构
 * @Author: inkwell
 * @Date: 2026-03-04 18:30:11
 * @LastEditTime: 2026-10-13 16:15:44
 * @LastEditors: inkwell
 */

// Package dto 定义了用户相关接口的请求与响应结构，认证接口也复用这里的用户信息。
package dto

import (
	"time"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
)

// UserInfoResponse 是返回给客户端的用户信息，不包含密码哈希
type UserInfoResponse struct {
	ID        string    `json:"id"` // 用户的公共ID
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	State     string    `json:"state"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUserResponse 是对其他用户展示的资料，省略邮箱和审核信息
type PublicUserResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest 只修改传入的字段
type UpdateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Nickname *string `json:"nickname"`
	Password *string `json:"password"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// DescriptionRequest 用于封禁和举报，说明会写入审核记录
type DescriptionRequest struct {
	Description string `json:"description" binding:"required"`
}

func ToUserInfo(u *model.UserAccount, enc *idgen.Encoder) (*UserInfoResponse, error) {
	publicID, err := enc.Encode(u.ID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}
	return &UserInfoResponse{
		ID:        publicID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Role:      u.Role.String(),
		State:     u.State.String(),
		IsBanned:  u.IsBanned,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func ToPublicUser(u *model.UserAccount, enc *idgen.Encoder) (*PublicUserResponse, error) {
	publicID, err := enc.Encode(u.ID, idgen.EntityTypeUser)
	if err != nil {
		return nil, err
	}
	return &PublicUserResponse{
		ID:        publicID,
		Nickname:  u.Nickname,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}, nil
}

// ToUserInfoList 批量转换
func ToUserInfoList(users []*model.UserAccount, enc *idgen.Encoder) ([]*UserInfoResponse, error) {
	list := make([]*UserInfoResponse, 0, len(users))
	for _, u := range users {
		item, err := ToUserInfo(u, enc)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}
