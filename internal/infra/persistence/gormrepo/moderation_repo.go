/*
 * @Description: 审核日志仓储的 gorm 实现
 * @Author: inkwell
 * @Date: 2026-03-09 16:44:10
 * @LastEditTime: 2026-10-13 18:02:39
 * @LastEditors: inkwell
 */
package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

// moderationRepo 只实现插入与查询，审核日志一旦写入不再修改
type moderationRepo struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) repository.ModerationRepository {
	return &moderationRepo{db: db}
}

func (r *moderationRepo) Create(ctx context.Context, m *model.ModerationRecord) error {
	if m.ID != 0 {
		return fmt.Errorf("审核记录 %d 已存在，不允许修改", m.ID)
	}
	row := fromDomainRecord(m)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}

func (r *moderationRepo) FindByID(ctx context.Context, id uint) (*model.ModerationRecord, error) {
	var row moderationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainRecord(&row)
}

func (r *moderationRepo) filtered(ctx context.Context, f repository.ModerationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&moderationRow{})
	if f.ActionType != nil {
		q = q.Where("action_type = ?", string(*f.ActionType))
	}
	if f.ModeratorID != nil {
		q = q.Where("moderator_id = ?", *f.ModeratorID)
	}
	if f.TargetUserID != nil {
		q = q.Where("target_user_id = ?", *f.TargetUserID)
	}
	if f.TargetArticleID != nil {
		q = q.Where("target_article_id = ?", *f.TargetArticleID)
	}
	if f.TargetCommentID != nil {
		q = q.Where("target_comment_id = ?", *f.TargetCommentID)
	}
	return wherePeriod(q, f.Period)
}

func (r *moderationRepo) FindAll(ctx context.Context, f repository.ModerationFilter) ([]*model.ModerationRecord, error) {
	q := orderByCreated(r.filtered(ctx, f), false)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []moderationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*model.ModerationRecord, 0, len(rows))
	for i := range rows {
		m, err := toDomainRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	return records, nil
}

func (r *moderationRepo) Count(ctx context.Context, f repository.ModerationFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *moderationRepo) CountByActionType(ctx context.Context, f repository.ModerationFilter) (map[model.ActionType]int64, error) {
	var rows []struct {
		ActionType string
		Total      int64
	}
	err := r.filtered(ctx, f).
		Select("action_type, COUNT(*) AS total").
		Group("action_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ActionType]int64, len(rows))
	for _, row := range rows {
		t, err := model.ParseActionType(row.ActionType)
		if err != nil {
			return nil, err
		}
		counts[t] = row.Total
	}
	return counts, nil
}

func (r *moderationRepo) CountByModerator(ctx context.Context, f repository.ModerationFilter) ([]repository.ModeratorCount, error) {
	var rows []struct {
		ModeratorID uint
		Total       int64
	}
	err := r.filtered(ctx, f).
		Select("moderator_id, COUNT(*) AS total").
		Group("moderator_id").
		Order("total DESC").
		Order("moderator_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]repository.ModeratorCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.ModeratorCount{ModeratorID: row.ModeratorID, Count: row.Total})
	}
	return counts, nil
}
