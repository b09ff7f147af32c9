package policy

import (
	"context"
	"fmt"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// UserFinder 是解析调用者所需的最小仓储能力
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*model.UserAccount, error)
}

// ResolveActor 加载调用者账户，匿名或账户不存在时返回 nil。
// 角色总是以存储中的为准，不信任令牌中携带的信息。
func ResolveActor(ctx context.Context, users UserFinder, actor model.Actor) (*model.UserAccount, error) {
	if actor.IsAnonymous() {
		return nil, nil
	}
	u, err := users.FindByID(ctx, actor.UserID())
	if err != nil {
		return nil, fmt.Errorf("加载当前用户失败: %w", err)
	}
	return u, nil
}

// ResolveViewer 用于只读查询：已封禁的账户按匿名访问者处理
func ResolveViewer(ctx context.Context, users UserFinder, actor model.Actor) (*model.UserAccount, error) {
	u, err := ResolveActor(ctx, users, actor)
	if err != nil || u == nil || u.IsBanned {
		return nil, err
	}
	return u, nil
}
