/*
 * @Description: 用户仓储的 gorm 实现
 * @Author: inkwell
 * @Date: 2026-03-05 13:27:44
 * @LastEditTime: 2026-08-02 10:09:58
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

// gormUserRepository 是 UserRepository 的 gorm 实现
type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 是 gormUserRepository 的构造函数
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*model.UserAccount, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainUser(&row)
}

// FindByEmail 按邮箱查找用户
func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainUser(&row)
}

func (r *gormUserRepository) Save(ctx context.Context, u *model.UserAccount) error {
	row := fromDomainUser(u)
	db := r.db.WithContext(ctx)

	if row.ID == 0 {
		if err := db.Create(row).Error; err != nil {
			return translateWriteError(err)
		}
	} else {
		row.UpdatedAt = time.Now().UTC()
		res := db.Model(&userRow{}).
			Where("id = ?", row.ID).
			Select("email", "password_hash", "nickname", "role", "state", "is_banned", "updated_at").
			Updates(row)
		if res.Error != nil {
			return translateWriteError(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("用户 %d: %w", row.ID, constant.ErrNotFound)
		}
	}

	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *gormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *gormUserRepository) ExistsByNickname(ctx context.Context, nickname string, excludeID uint) (bool, error) {
	return r.exists(ctx, "nickname", nickname, excludeID)
}

func (r *gormUserRepository) exists(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&userRow{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *gormUserRepository) filtered(ctx context.Context, f repository.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&userRow{})
	if f.Role != nil {
		q = q.Where("role = ?", string(*f.Role))
	}
	if f.State != nil {
		q = q.Where("state = ?", string(*f.State))
	}
	if f.IsBanned != nil {
		q = q.Where("is_banned = ?", *f.IsBanned)
	}
	return q
}

func (r *gormUserRepository) FindAll(ctx context.Context, f repository.UserFilter) ([]*model.UserAccount, error) {
	var rows []userRow
	if err := orderByCreated(r.filtered(ctx, f), true).Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*model.UserAccount, 0, len(rows))
	for i := range rows {
		u, err := toDomainUser(&rows[i])
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *gormUserRepository) Count(ctx context.Context, f repository.UserFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *gormUserRepository) UpdateRole(ctx context.Context, id uint, role model.UserRole) error {
	return r.updateColumn(ctx, id, "role", string(role))
}

func (r *gormUserRepository) UpdateState(ctx context.Context, id uint, state model.AccountState) error {
	return r.updateColumn(ctx, id, "state", string(state))
}

func (r *gormUserRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	return r.updateColumn(ctx, id, "is_banned", banned)
}

func (r *gormUserRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("用户 %d: %w", id, constant.ErrNotFound)
	}
	return nil
}
