/*
 * @Description: 内容可见性规则
 * @Author: inkwell
 * @Date: 2026-03-08 11:35:26
 * @LastEditTime: 2026-10-13 20:02:11
 * @LastEditors: inkwell
 */
package policy

import "github.com/inkwell-cms/inkwell/pkg/domain/model"

// ArticleVisible 是文章的可见性规则，viewer 为 nil 表示匿名访问者：
// 已通过审核且（公开或访问者已登录）的文章可见；所有者和特权用户总是可见。
func ArticleVisible(a *model.Article, viewer *model.UserAccount) bool {
	if a == nil {
		return false
	}
	if viewer != nil && (viewer.IsPrivileged() || a.IsOwnedBy(viewer.ID)) {
		return true
	}
	return a.IsAccepted() && (a.Visibility == model.VisibilityPublic || viewer != nil)
}

// CommentVisible 是评论的可见性规则：未通过审核的评论只对所有者和特权用户可见；
// 已通过审核的评论跟随所属文章，文章对访问者不可见时，评论作者本人也看不到。
func CommentVisible(c *model.Comment, parent *model.Article, viewer *model.UserAccount) bool {
	if c == nil {
		return false
	}
	if !c.IsAccepted() {
		return viewer != nil && (viewer.IsPrivileged() || c.IsOwnedBy(viewer.ID))
	}
	return ArticleVisible(parent, viewer)
}
