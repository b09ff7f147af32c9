/*
 * @Description: 权限规则表
 * @Author: inkwell
 * @Date: 2026-03-08 11:00:00
 * @LastEditTime: 2026-10-14 10:21:48
 * @LastEditors: inkwell
 */

// Package policy 集中定义每个操作允许的角色与归属组合。
// 所有 Service 在执行写操作前都通过这里判定，判定函数不依赖任何实体或存储。
package policy

import (
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// Action 是需要鉴权的操作
type Action string

const (
	ContentCreate   Action = "content.create"
	ContentEdit     Action = "content.edit"
	ContentDelete   Action = "content.delete"
	ContentModerate Action = "content.moderate"
	ContentQueue    Action = "content.queue"

	UserReport        Action = "user.report"
	UserBan           Action = "user.ban"
	UserChangeRole    Action = "user.change_role"
	UserReview        Action = "user.review"
	UserList          Action = "user.list"
	UserClose         Action = "user.close"
	UserUpdateProfile Action = "user.update_profile"
	UserViewFull      Action = "user.view_full"

	ModerationHistory    Action = "moderation.history"
	ModerationStatistics Action = "moderation.statistics"
)

// rule 描述一个操作的放行条件
type rule struct {
	privileged bool // 审核员或管理员放行
	admin      bool // 仅管理员放行
	owner      bool // 资源所有者放行
	anyone     bool // 任意已登录用户放行
}

var rules = map[Action]rule{
	ContentCreate:   {anyone: true},
	ContentEdit:     {owner: true, privileged: true},
	ContentDelete:   {owner: true, privileged: true},
	ContentModerate: {privileged: true},
	ContentQueue:    {privileged: true},

	UserReport:        {privileged: true},
	UserBan:           {admin: true},
	UserChangeRole:    {admin: true},
	UserReview:        {admin: true},
	UserList:          {privileged: true},
	UserClose:         {owner: true, admin: true},
	UserUpdateProfile: {owner: true, admin: true},
	UserViewFull:      {owner: true, privileged: true},

	ModerationHistory:    {privileged: true},
	ModerationStatistics: {admin: true},
}

// Allows 判断给定角色（以及是否为资源所有者）能否执行操作。未登记的操作一律拒绝。
func Allows(action Action, role model.UserRole, isOwner bool) bool {
	r, ok := rules[action]
	if !ok {
		return false
	}
	switch {
	case r.anyone:
		return true
	case r.owner && isOwner:
		return true
	case r.admin && role.IsAdmin():
		return true
	case r.privileged && role.IsPrivileged():
		return true
	}
	return false
}

// Check 在 Allows 的基础上处理账户本身：不存在的账户和已封禁账户不能执行任何写操作。
func Check(action Action, user *model.UserAccount, isOwner bool) error {
	if user == nil {
		return constant.NewForbiddenError("请先登录")
	}
	if user.IsBanned {
		return constant.ErrAccountBanned
	}
	if !Allows(action, user.Role, isOwner) {
		return constant.NewForbiddenError("权限不足，无法执行该操作")
	}
	return nil
}

// FullProfileVisible 判断访问者能否看到账户的完整资料。
// 本人总是可以；审核员和管理员需要未被封禁，其他人只能看到公开资料。
func FullProfileVisible(target, viewer *model.UserAccount) bool {
	if target == nil || viewer == nil {
		return false
	}
	isOwner := viewer.ID == target.ID
	if !isOwner && viewer.IsBanned {
		return false
	}
	return Allows(UserViewFull, viewer.Role, isOwner)
}
