/*
 * @Description: 评论仓储的 gorm 实现
 * @Author: inkwell
 * @Date: 2026-03-07 10:18:31
 * @LastEditTime: 2026-06-19 14:50:22
 * @LastEditors: inkwell
 */
package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var row commentRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainComment(&row)
}

func (r *commentRepo) Save(ctx context.Context, c *model.Comment) error {
	row := fromDomainComment(c)
	db := r.db.WithContext(ctx)

	if row.ID == 0 {
		if err := db.Create(row).Error; err != nil {
			return err
		}
	} else {
		row.UpdatedAt = time.Now().UTC()
		res := db.Model(&commentRow{}).
			Where("id = ?", row.ID).
			Select("body", "state", "updated_at").
			Updates(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("评论 %d: %w", row.ID, constant.ErrNotFound)
		}
	}

	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *commentRepo) filtered(ctx context.Context, f repository.CommentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&commentRow{})
	if f.State != nil {
		q = q.Where("state = ?", string(*f.State))
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.ArticleID != nil {
		q = q.Where("article_id = ?", *f.ArticleID)
	}
	return q
}

func (r *commentRepo) FindAll(ctx context.Context, f repository.CommentFilter) ([]*model.Comment, error) {
	q := orderByCreated(r.filtered(ctx, f), f.OldestFirst)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []commentRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, 0, len(rows))
	for i := range rows {
		c, err := toDomainComment(&rows[i])
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (r *commentRepo) Count(ctx context.Context, f repository.CommentFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *commentRepo) UpdateState(ctx context.Context, id uint, state model.ContentState) error {
	res := r.db.WithContext(ctx).Model(&commentRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"state": string(state), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("评论 %d: %w", id, constant.ErrNotFound)
	}
	return nil
}

func (r *commentRepo) UpdateStateByOwner(ctx context.Context, ownerID uint, state model.ContentState) (int64, error) {
	res := r.db.WithContext(ctx).Model(&commentRow{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]any{"state": string(state), "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
