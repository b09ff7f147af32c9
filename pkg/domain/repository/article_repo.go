/*
 * @Description: 文章仓储接口
 * @Author: inkwell
 * @Date: 2026-03-05 10:50:18
 * @LastEditTime: 2026-05-26 16:34:07
 * @LastEditors: inkwell
 */
package repository

import (
	"context"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// ArticleFilter 是文章查询的筛选条件，只包含等值与子串条件
type ArticleFilter struct {
	State         *model.ContentState
	OwnerID       *uint
	Visibility    *model.Visibility
	TitleContains string // 标题子串匹配，空字符串表示不限
	OldestFirst   bool   // 默认按创建时间倒序
	Limit         int    // 0 表示不限
}

// ArticleRepository 定义了文章数据操作的契约
type ArticleRepository interface {
	BaseRepository[model.Article]

	FindAll(ctx context.Context, filter ArticleFilter) ([]*model.Article, error)
	Count(ctx context.Context, filter ArticleFilter) (int64, error)

	// UpdateState 只修改审核状态和更新时间，文章不存在时返回 constant.ErrNotFound
	UpdateState(ctx context.Context, id uint, state model.ContentState) error

	// UpdateStateByOwner 批量修改某个用户全部文章的状态，返回受影响的行数
	UpdateStateByOwner(ctx context.Context, ownerID uint, state model.ContentState) (int64, error)
}
