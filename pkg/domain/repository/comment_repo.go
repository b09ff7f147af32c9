/*
 * @Description: 评论仓储接口
 * @Author: inkwell
 * @Date: 2026-03-05 11:02:33
 * @LastEditTime: 2026-05-26 16:34:07
 * @LastEditors: inkwell
 */
package repository

import (
	"context"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// CommentFilter 是评论查询的筛选条件
type CommentFilter struct {
	State       *model.ContentState
	OwnerID     *uint
	ArticleID   *uint
	OldestFirst bool
	Limit       int
}

// CommentRepository 定义了评论数据操作的契约
type CommentRepository interface {
	BaseRepository[model.Comment]

	FindAll(ctx context.Context, filter CommentFilter) ([]*model.Comment, error)
	Count(ctx context.Context, filter CommentFilter) (int64, error)

	// UpdateState 只修改审核状态和更新时间，评论不存在时返回 constant.ErrNotFound
	UpdateState(ctx context.Context, id uint, state model.ContentState) error

	// UpdateStateByOwner 批量修改某个用户全部评论的状态，返回受影响的行数
	UpdateStateByOwner(ctx context.Context, ownerID uint, state model.ContentState) (int64, error)
}
