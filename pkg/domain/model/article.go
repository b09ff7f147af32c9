/*
 * @Description: 文章领域模型
 * @Author: inkwell
 * @Date: 2026-03-05 10:31:09
 * @LastEditTime: 2026-06-11 18:06:43
 * @LastEditors: inkwell
 */
package model

import "time"

// Article 是文章的核心领域模型，业务逻辑（Service层）围绕它进行。
type Article struct {
	ID         uint
	Title      string
	Body       string // Markdown 原文
	Visibility Visibility
	State      ContentState
	OwnerID    uint
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOwnedBy 判断文章是否属于指定用户
func (a *Article) IsOwnedBy(userID uint) bool {
	return userID != 0 && a.OwnerID == userID
}

// IsAccepted 检查文章是否已通过审核
func (a *Article) IsAccepted() bool {
	return a.State == ContentStateAccepted
}
