/*
 * @Description: 用户仓储接口
 * @Author: inkwell
 * @Date: 2026-03-05 10:40:29
 * @LastEditTime: 2026-08-02 10:09:58
 * @LastEditors: inkwell
 */
package repository

import (
	"context"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// UserFilter 是用户列表的筛选条件，nil 字段不参与筛选
type UserFilter struct {
	Role     *model.UserRole
	State    *model.AccountState
	IsBanned *bool
}

// UserRepository 定义了所有用户数据操作的契约。
type UserRepository interface {
	// 嵌入基础接口，自动获得 FindByID, Save 方法
	BaseRepository[model.UserAccount]

	// FindByEmail 根据邮箱查找用户，不存在时返回 (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.UserAccount, error)

	// ExistsByEmail 判断邮箱是否已被 excludeID 以外的用户占用，excludeID 为 0 表示不排除
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)

	// ExistsByNickname 判断昵称是否已被 excludeID 以外的用户占用
	ExistsByNickname(ctx context.Context, nickname string, excludeID uint) (bool, error)

	// FindAll 按条件查询用户，按注册时间升序
	FindAll(ctx context.Context, filter UserFilter) ([]*model.UserAccount, error)

	// Count 按条件统计用户数量
	Count(ctx context.Context, filter UserFilter) (int64, error)

	UpdateRole(ctx context.Context, id uint, role model.UserRole) error
	UpdateState(ctx context.Context, id uint, state model.AccountState) error
	SetBanned(ctx context.Context, id uint, banned bool) error
}
