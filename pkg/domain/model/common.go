package model

import (
	"fmt"
	"strings"
)

// ContentState 是文章与评论共用的审核状态。
//
// 状态流转：
//
//	pending  --accept-->  accepted
//	accepted --refuse-->  refused
//	refused  --edit-->    pending   (非特权作者修改后重新进入审核)
//	any      --erase-->   erased    (终态)
type ContentState string

const (
	ContentStatePending  ContentState = "pending"  // 待审核
	ContentStateAccepted ContentState = "accepted" // 已通过
	ContentStateRefused  ContentState = "refused"  // 已拒绝
	ContentStateErased   ContentState = "erased"   // 已删除（软删除）
)

// ParseContentState 将字符串解析为审核状态，未知值返回错误。
func ParseContentState(s string) (ContentState, error) {
	switch st := ContentState(strings.ToLower(strings.TrimSpace(s))); st {
	case ContentStatePending, ContentStateAccepted, ContentStateRefused, ContentStateErased:
		return st, nil
	}
	return "", fmt.Errorf("未知的审核状态: %q", s)
}

// IsTerminal 判断是否为终态。erased 之后的内容不会再被任何操作恢复。
func (s ContentState) IsTerminal() bool {
	return s == ContentStateErased
}

func (s ContentState) String() string { return string(s) }

// Visibility 定义文章的可见范围
type Visibility string

const (
	VisibilityPublic  Visibility = "public"  // 所有人可见
	VisibilityPrivate Visibility = "private" // 仅登录用户可见
)

// ParseVisibility 将字符串解析为可见范围
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	}
	return "", fmt.Errorf("未知的可见范围: %q", s)
}

func (v Visibility) String() string { return string(v) }

// ModerationAction 是审核员对内容执行的动作
type ModerationAction string

const (
	ActionAccept ModerationAction = "accept"
	ActionRefuse ModerationAction = "refuse"
	ActionErase  ModerationAction = "erase"
)

// ParseModerationAction 解析审核动作
func ParseModerationAction(s string) (ModerationAction, error) {
	switch a := ModerationAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAccept, ActionRefuse, ActionErase:
		return a, nil
	}
	return "", fmt.Errorf("未知的审核动作: %q", s)
}

// TargetState 返回动作对应的目标状态。
func (a ModerationAction) TargetState() ContentState {
	switch a {
	case ActionAccept:
		return ContentStateAccepted
	case ActionRefuse:
		return ContentStateRefused
	case ActionErase:
		return ContentStateErased
	}
	return ""
}
