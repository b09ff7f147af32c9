/*
 * @Description: 审核日志仓储接口
 * @Author: inkwell
 * @Date: 2026-03-08 15:20:45
 * @LastEditTime: 2026-10-14 10:40:12
 * @LastEditors: inkwell
 */
package repository

import (
	"context"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

// ModerationFilter 是审核记录的筛选条件
type ModerationFilter struct {
	ActionType      *model.ActionType
	ModeratorID     *uint
	TargetUserID    *uint
	TargetArticleID *uint
	TargetCommentID *uint
	Period          TimeRange
	Limit           int
}

// ModeratorCount 是单个审核员的记录数量
type ModeratorCount struct {
	ModeratorID uint
	Count       int64
}

// ModerationRepository 是只追加的审核日志仓储，不提供修改和删除。
type ModerationRepository interface {
	Create(ctx context.Context, record *model.ModerationRecord) error
	FindByID(ctx context.Context, id uint) (*model.ModerationRecord, error)

	// FindAll 按条件查询，按时间倒序
	FindAll(ctx context.Context, filter ModerationFilter) ([]*model.ModerationRecord, error)
	Count(ctx context.Context, filter ModerationFilter) (int64, error)

	// CountByActionType 按记录类型分组计数，没有记录的类型不出现在结果中
	CountByActionType(ctx context.Context, filter ModerationFilter) (map[model.ActionType]int64, error)

	// CountByModerator 按审核员分组计数，按数量倒序
	CountByModerator(ctx context.Context, filter ModerationFilter) ([]ModeratorCount, error)
}
