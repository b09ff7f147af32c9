/*
 * @Description: 审核记录领域模型
 * @Author: inkwell
 * @Date: 2026-03-08 14:14:52
 * @LastEditTime: 2026-10-13 19:10:26
 * @LastEditors: inkwell
 */
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActionType 是审核记录的类型
type ActionType string

const (
	ActionTypeArticleRefusal ActionType = "article_refusal" // 拒绝文章
	ActionTypeCommentRefusal ActionType = "comment_refusal" // 拒绝评论
	ActionTypeUserReport     ActionType = "user_report"     // 举报用户
	ActionTypeAccountBan     ActionType = "account_ban"     // 封禁账户
)

// AllActionTypes 按固定顺序列出全部记录类型，统计时用它补齐零值
var AllActionTypes = []ActionType{
	ActionTypeArticleRefusal,
	ActionTypeCommentRefusal,
	ActionTypeUserReport,
	ActionTypeAccountBan,
}

// TargetKind 标识审核记录指向的对象种类
type TargetKind int

const (
	TargetUser TargetKind = iota + 1
	TargetArticle
	TargetComment
)

// ParseActionType 解析记录类型
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(strings.ToLower(strings.TrimSpace(s))); t {
	case ActionTypeArticleRefusal, ActionTypeCommentRefusal, ActionTypeUserReport, ActionTypeAccountBan:
		return t, nil
	}
	return "", fmt.Errorf("未知的审核记录类型: %q", s)
}

// TargetKind 返回该类型记录必须指向的对象种类
func (t ActionType) TargetKind() TargetKind {
	switch t {
	case ActionTypeArticleRefusal:
		return TargetArticle
	case ActionTypeCommentRefusal:
		return TargetComment
	case ActionTypeUserReport, ActionTypeAccountBan:
		return TargetUser
	}
	return 0
}

func (t ActionType) String() string { return string(t) }

// ModerationTarget 是审核记录的目标引用，三个字段中恰好一个非空。
type ModerationTarget struct {
	UserID    *uint
	ArticleID *uint
	CommentID *uint
}

func TargetingUser(id uint) ModerationTarget {
	return ModerationTarget{UserID: &id}
}

func TargetingArticle(id uint) ModerationTarget {
	return ModerationTarget{ArticleID: &id}
}

func TargetingComment(id uint) ModerationTarget {
	return ModerationTarget{CommentID: &id}
}

// Kind 返回目标种类；没有目标或目标多于一个时返回 0。
func (t ModerationTarget) Kind() TargetKind {
	var kind TargetKind
	n := 0
	if t.UserID != nil {
		kind, n = TargetUser, n+1
	}
	if t.ArticleID != nil {
		kind, n = TargetArticle, n+1
	}
	if t.CommentID != nil {
		kind, n = TargetComment, n+1
	}
	if n != 1 {
		return 0
	}
	return kind
}

// ModerationRecord 是不可变的审核日志条目，只追加不修改。
type ModerationRecord struct {
	ID          uint
	ActionType  ActionType
	Description string
	ModeratorID uint
	Target      ModerationTarget
	CreatedAt   time.Time
}

var (
	errEmptyDescription = errors.New("审核记录必须填写说明")
	errTargetMismatch   = errors.New("审核记录的目标与记录类型不匹配")
)

// NewModerationRecord 是创建审核记录的唯一入口，负责校验说明和目标。
func NewModerationRecord(actionType ActionType, description string, moderatorID uint, target ModerationTarget) (*ModerationRecord, error) {
	if _, err := ParseActionType(string(actionType)); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errEmptyDescription
	}
	if target.Kind() == 0 || target.Kind() != actionType.TargetKind() {
		return nil, errTargetMismatch
	}
	return &ModerationRecord{
		ActionType:  actionType,
		Description: description,
		ModeratorID: moderatorID,
		Target:      target,
	}, nil
}
