// in pkg/domain/model/user.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// ========= 业务常量 (与数据库实现无关) =========

// UserRole 是账户角色。角色只能由管理员显式调整，用户不能自行提升。
type UserRole string

const (
	RoleWriter        UserRole = "writer"        // 普通作者
	RoleModerator     UserRole = "moderator"     // 审核员
	RoleAdministrator UserRole = "administrator" // 管理员
)

// ParseUserRole 将字符串解析为角色，未知值返回错误。
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleWriter, RoleModerator, RoleAdministrator:
		return r, nil
	}
	return "", fmt.Errorf("未知的账户角色: %q", s)
}

// IsPrivileged 审核员和管理员都属于特权角色
func (r UserRole) IsPrivileged() bool {
	return r == RoleModerator || r == RoleAdministrator
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdministrator
}

func (r UserRole) String() string { return string(r) }

// AccountState 是注册审核阶段，与角色相互独立。
type AccountState string

const (
	AccountStatePending   AccountState = "pending"   // 等待管理员审核
	AccountStateValidated AccountState = "validated" // 已通过
	AccountStateRefused   AccountState = "refused"   // 已拒绝
)

// ParseAccountState 将字符串解析为账户状态
func ParseAccountState(s string) (AccountState, error) {
	switch st := AccountState(strings.ToLower(strings.TrimSpace(s))); st {
	case AccountStatePending, AccountStateValidated, AccountStateRefused:
		return st, nil
	}
	return "", fmt.Errorf("未知的账户状态: %q", s)
}

func (s AccountState) String() string { return string(s) }

// ========= 领域模型定义 =========

// UserAccount 是用户账户的领域模型。账户从不物理删除，注销即封禁。
type UserAccount struct {
	ID           uint
	Email        string
	PasswordHash string
	Nickname     string
	Role         UserRole
	State        AccountState
	IsBanned     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUserAccount 创建一个新注册的账户：普通作者、待审核、未封禁。
func NewUserAccount(email, passwordHash, nickname string) *UserAccount {
	return &UserAccount{
		Email:        email,
		PasswordHash: passwordHash,
		Nickname:     nickname,
		Role:         RoleWriter,
		State:        AccountStatePending,
	}
}

// IsPrivileged 判断账户是否为审核员或管理员
func (u *UserAccount) IsPrivileged() bool {
	return u != nil && u.Role.IsPrivileged()
}

func (u *UserAccount) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}
