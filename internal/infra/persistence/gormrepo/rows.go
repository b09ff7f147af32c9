// Package gormrepo 是仓储接口的 gorm 实现。
// 表结构只在本包内可见，行与领域模型之间逐字段转换，枚举列通过 model.Parse* 校验。
package gormrepo

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/domain/model"
)

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	Nickname     string `gorm:"size:50;not null;uniqueIndex"`
	Role         string `gorm:"size:20;not null;index"`
	State        string `gorm:"size:20;not null;index"`
	IsBanned     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type articleRow struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:255;not null"`
	Body       string    `gorm:"type:text;not null"`
	Visibility string    `gorm:"size:10;not null"`
	State      string    `gorm:"size:10;not null;index"`
	OwnerID    uint      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (articleRow) TableName() string { return "articles" }

type commentRow struct {
	ID        uint      `gorm:"primaryKey"`
	Body      string    `gorm:"type:text;not null"`
	State     string    `gorm:"size:10;not null;index"`
	OwnerID   uint      `gorm:"not null;index"`
	ArticleID uint      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (commentRow) TableName() string { return "comments" }

// moderationRow 只插入不更新，因此没有 UpdatedAt
type moderationRow struct {
	ID              uint      `gorm:"primaryKey"`
	ActionType      string    `gorm:"size:30;not null;index"`
	Description     string    `gorm:"type:text;not null"`
	ModeratorID     uint      `gorm:"not null;index"`
	TargetUserID    *uint     `gorm:"index"`
	TargetArticleID *uint     `gorm:"index"`
	TargetCommentID *uint     `gorm:"index"`
	CreatedAt       time.Time `gorm:"index"`
}

func (moderationRow) TableName() string { return "moderation_records" }

// AutoMigrate 创建或更新全部业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &articleRow{}, &commentRow{}, &moderationRow{})
}

// --- 行 <-> 领域模型 ---

func toDomainUser(r *userRow) (*model.UserAccount, error) {
	role, err := model.ParseUserRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("用户 %d 数据损坏: %w", r.ID, err)
	}
	state, err := model.ParseAccountState(r.State)
	if err != nil {
		return nil, fmt.Errorf("用户 %d 数据损坏: %w", r.ID, err)
	}
	return &model.UserAccount{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Nickname:     r.Nickname,
		Role:         role,
		State:        state,
		IsBanned:     r.IsBanned,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

func fromDomainUser(u *model.UserAccount) *userRow {
	return &userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		Role:         string(u.Role),
		State:        string(u.State),
		IsBanned:     u.IsBanned,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainArticle(r *articleRow) (*model.Article, error) {
	visibility, err := model.ParseVisibility(r.Visibility)
	if err != nil {
		return nil, fmt.Errorf("文章 %d 数据损坏: %w", r.ID, err)
	}
	state, err := model.ParseContentState(r.State)
	if err != nil {
		return nil, fmt.Errorf("文章 %d 数据损坏: %w", r.ID, err)
	}
	return &model.Article{
		ID:         r.ID,
		Title:      r.Title,
		Body:       r.Body,
		Visibility: visibility,
		State:      state,
		OwnerID:    r.OwnerID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func fromDomainArticle(a *model.Article) *articleRow {
	return &articleRow{
		ID:         a.ID,
		Title:      a.Title,
		Body:       a.Body,
		Visibility: string(a.Visibility),
		State:      string(a.State),
		OwnerID:    a.OwnerID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toDomainComment(r *commentRow) (*model.Comment, error) {
	state, err := model.ParseContentState(r.State)
	if err != nil {
		return nil, fmt.Errorf("评论 %d 数据损坏: %w", r.ID, err)
	}
	return &model.Comment{
		ID:        r.ID,
		Body:      r.Body,
		State:     state,
		OwnerID:   r.OwnerID,
		ArticleID: r.ArticleID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func fromDomainComment(c *model.Comment) *commentRow {
	return &commentRow{
		ID:        c.ID,
		Body:      c.Body,
		State:     string(c.State),
		OwnerID:   c.OwnerID,
		ArticleID: c.ArticleID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toDomainRecord(r *moderationRow) (*model.ModerationRecord, error) {
	actionType, err := model.ParseActionType(r.ActionType)
	if err != nil {
		return nil, fmt.Errorf("审核记录 %d 数据损坏: %w", r.ID, err)
	}
	return &model.ModerationRecord{
		ID:          r.ID,
		ActionType:  actionType,
		Description: r.Description,
		ModeratorID: r.ModeratorID,
		Target: model.ModerationTarget{
			UserID:    r.TargetUserID,
			ArticleID: r.TargetArticleID,
			CommentID: r.TargetCommentID,
		},
		CreatedAt: r.CreatedAt,
	}, nil
}

func fromDomainRecord(m *model.ModerationRecord) *moderationRow {
	return &moderationRow{
		ID:              m.ID,
		ActionType:      string(m.ActionType),
		Description:     m.Description,
		ModeratorID:     m.ModeratorID,
		TargetUserID:    m.Target.UserID,
		TargetArticleID: m.Target.ArticleID,
		TargetCommentID: m.Target.CommentID,
		CreatedAt:       m.CreatedAt,
	}
}
