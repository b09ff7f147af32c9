/*
 * @Description: 文章仓储的 gorm 实现
 * @Author: inkwell
 * @Date: 2026-03-06 15:02:48
 * @LastEditTime: 2026-10-13 17:36:05
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

type articleRepo struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) repository.ArticleRepository {
	return &articleRepo{db: db}
}

func (r *articleRepo) FindByID(ctx context.Context, id uint) (*model.Article, error) {
	var row articleRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainArticle(&row)
}

func (r *articleRepo) Save(ctx context.Context, a *model.Article) error {
	row := fromDomainArticle(a)
	db := r.db.WithContext(ctx)

	if row.ID == 0 {
		if err := db.Create(row).Error; err != nil {
			return err
		}
	} else {
		row.UpdatedAt = time.Now().UTC()
		res := db.Model(&articleRow{}).
			Where("id = ?", row.ID).
			Select("title", "body", "visibility", "state", "updated_at").
			Updates(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("文章 %d: %w", row.ID, constant.ErrNotFound)
		}
	}

	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = row.UpdatedAt
	return nil
}

// filtered 构造筛选查询；第二个返回值为 true 时标题条件需要在内存中匹配
func (r *articleRepo) filtered(ctx context.Context, f repository.ArticleFilter) (*gorm.DB, bool) {
	q := r.db.WithContext(ctx).Model(&articleRow{})
	if f.State != nil {
		q = q.Where("state = ?", string(*f.State))
	}
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Visibility != nil {
		q = q.Where("visibility = ?", string(*f.Visibility))
	}
	inMemory := false
	if f.TitleContains != "" {
		q, inMemory = whereContains(q, "title", f.TitleContains)
	}
	return q, inMemory
}

func (r *articleRepo) FindAll(ctx context.Context, f repository.ArticleFilter) ([]*model.Article, error) {
	q, inMemory := r.filtered(ctx, f)
	q = orderByCreated(q, f.OldestFirst)
	if f.Limit > 0 && !inMemory {
		q = q.Limit(f.Limit)
	}

	var rows []articleRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	articles := make([]*model.Article, 0, len(rows))
	for i := range rows {
		if inMemory && !foldContains(rows[i].Title, f.TitleContains) {
			continue
		}
		a, err := toDomainArticle(&rows[i])
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
		if f.Limit > 0 && len(articles) == f.Limit {
			break
		}
	}
	return articles, nil
}

func (r *articleRepo) Count(ctx context.Context, f repository.ArticleFilter) (int64, error) {
	q, inMemory := r.filtered(ctx, f)
	if !inMemory {
		var n int64
		err := q.Count(&n).Error
		return n, err
	}

	var titles []string
	if err := q.Pluck("title", &titles).Error; err != nil {
		return 0, err
	}
	var n int64
	for _, title := range titles {
		if foldContains(title, f.TitleContains) {
			n++
		}
	}
	return n, nil
}

func (r *articleRepo) UpdateState(ctx context.Context, id uint, state model.ContentState) error {
	res := r.db.WithContext(ctx).Model(&articleRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"state": string(state), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("文章 %d: %w", id, constant.ErrNotFound)
	}
	return nil
}

func (r *articleRepo) UpdateStateByOwner(ctx context.Context, ownerID uint, state model.ContentState) (int64, error) {
	res := r.db.WithContext(ctx).Model(&articleRow{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]any{"state": string(state), "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
