// internal/domain/model/comment.go
package model

import "time"

// Comment 是评论的核心领域模型，只能挂在已通过审核的文章下。
type Comment struct {
	ID        uint
	Body      string
	State     ContentState
	OwnerID   uint
	ArticleID uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- 领域逻辑方法 ---

func (c *Comment) IsOwnedBy(userID uint) bool {
	return userID != 0 && c.OwnerID == userID
}

func (c *Comment) IsAccepted() bool {
	return c.State == ContentStateAccepted
}
