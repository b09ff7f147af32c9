/*
 * @Description: 审核日志服务
 * @Author: inkwell
 * @Date: 2026-03-09 16:58:42
 * @LastEditTime: 2026-10-14 10:50:03
 * @LastEditors: inkwell
 */

// Package moderation 提供审核日志的查询、统计与报表。
// 原始记录对审核员和管理员开放，统计与报表仅管理员可用。
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/policy"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

// ReportTimeLayout 是报表起止时间的唯一合法格式，按 UTC 解释
const ReportTimeLayout = "2006-01-02 15:04:05"

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Statistics 是全站审核统计
type Statistics struct {
	ByType          map[model.ActionType]int64
	Total           int64
	PendingArticles int64
	PendingComments int64
}

// ModeratorStatistics 是单个审核员的记录统计
type ModeratorStatistics struct {
	ModeratorID uint
	Nickname    string
	ByType      map[model.ActionType]int64
	Total       int64
}

// ModeratorEntry 是报表中按审核员汇总的一行
type ModeratorEntry struct {
	ModeratorID uint
	Nickname    string
	Count       int64
}

// Report 是一个闭区间内的审核报表
type Report struct {
	Start       time.Time
	End         time.Time
	ByType      map[model.ActionType]int64
	Total       int64
	ByModerator []ModeratorEntry
}

type Service struct {
	moderationRepo repository.ModerationRepository
	userRepo       repository.UserRepository
	articleRepo    repository.ArticleRepository
	commentRepo    repository.CommentRepository
	logger         *slog.Logger
}

func NewService(
	moderationRepo repository.ModerationRepository,
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		moderationRepo: moderationRepo,
		userRepo:       userRepo,
		articleRepo:    articleRepo,
		commentRepo:    commentRepo,
		logger:         logger.With("service", "moderation"),
	}
}

func (s *Service) authorize(ctx context.Context, actor model.Actor, action policy.Action) (*model.UserAccount, error) {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(action, u, false); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) find(ctx context.Context, filter repository.ModerationFilter) ([]*model.ModerationRecord, error) {
	records, err := s.moderationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询审核记录失败: %w", err)
	}
	return records, nil
}

// AuthorizeHistory 检查调用者能否查看审核记录，调用方据此在解析筛选参数之前拒绝无权限的请求
func (s *Service) AuthorizeHistory(ctx context.Context, actor model.Actor) error {
	_, err := s.authorize(ctx, actor, policy.ModerationHistory)
	return err
}

// History 按条件查询审核记录，按时间倒序
func (s *Service) History(ctx context.Context, actor model.Actor, filter repository.ModerationFilter) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	return s.find(ctx, filter)
}

// RecentActions 返回最近的审核记录，limit 被修正到 [1, 100]，为 0 时取 10
func (s *Service) RecentActions(ctx context.Context, actor model.Actor, limit int) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	return s.find(ctx, repository.ModerationFilter{Limit: limit})
}

// OpenReports 返回尚未处理的举报：被举报账户仍未封禁的举报记录，按时间倒序
func (s *Service) OpenReports(ctx context.Context, actor model.Actor) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	reportType := model.ActionTypeUserReport
	reports, err := s.find(ctx, repository.ModerationFilter{ActionType: &reportType})
	if err != nil {
		return nil, err
	}

	banned := make(map[uint]bool)
	open := make([]*model.ModerationRecord, 0, len(reports))
	for _, r := range reports {
		if r.Target.UserID == nil {
			continue
		}
		userID := *r.Target.UserID
		isBanned, seen := banned[userID]
		if !seen {
			u, err := s.userRepo.FindByID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("查询被举报用户失败: %w", err)
			}
			// 账户已删除的举报不再需要处理
			isBanned = u == nil || u.IsBanned
			banned[userID] = isBanned
		}
		if !isBanned {
			open = append(open, r)
		}
	}
	return open, nil
}

// ArticleHistory 返回针对某篇文章的全部审核记录
func (s *Service) ArticleHistory(ctx context.Context, actor model.Actor, articleID uint) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	a, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if a == nil {
		return nil, constant.NewNotFoundError("文章不存在")
	}
	return s.find(ctx, repository.ModerationFilter{TargetArticleID: &articleID})
}

// CommentHistory 返回针对某条评论的全部审核记录
func (s *Service) CommentHistory(ctx context.Context, actor model.Actor, commentID uint) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	c, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if c == nil {
		return nil, constant.NewNotFoundError("评论不存在")
	}
	return s.find(ctx, repository.ModerationFilter{TargetCommentID: &commentID})
}

// UserHistory 返回针对某个用户的举报和封禁记录
func (s *Service) UserHistory(ctx context.Context, actor model.Actor, userID uint) ([]*model.ModerationRecord, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationHistory); err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if u == nil {
		return nil, constant.NewNotFoundError("用户不存在")
	}
	return s.find(ctx, repository.ModerationFilter{TargetUserID: &userID})
}

// countByType 按类型计数，并为没有记录的类型补零
func (s *Service) countByType(ctx context.Context, filter repository.ModerationFilter) (map[model.ActionType]int64, int64, error) {
	counts, err := s.moderationRepo.CountByActionType(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("统计审核记录失败: %w", err)
	}
	byType := make(map[model.ActionType]int64, len(model.AllActionTypes))
	var total int64
	for _, t := range model.AllActionTypes {
		byType[t] = counts[t]
		total += counts[t]
	}
	return byType, total, nil
}

// Statistics 返回全站审核统计和待审核队列长度
func (s *Service) Statistics(ctx context.Context, actor model.Actor) (*Statistics, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationStatistics); err != nil {
		return nil, err
	}
	byType, total, err := s.countByType(ctx, repository.ModerationFilter{})
	if err != nil {
		return nil, err
	}

	pending := model.ContentStatePending
	pendingArticles, err := s.articleRepo.Count(ctx, repository.ArticleFilter{State: &pending})
	if err != nil {
		return nil, fmt.Errorf("统计待审核文章失败: %w", err)
	}
	pendingComments, err := s.commentRepo.Count(ctx, repository.CommentFilter{State: &pending})
	if err != nil {
		return nil, fmt.Errorf("统计待审核评论失败: %w", err)
	}

	return &Statistics{
		ByType:          byType,
		Total:           total,
		PendingArticles: pendingArticles,
		PendingComments: pendingComments,
	}, nil
}

// ModeratorStatistics 返回某个审核员产生的记录统计
func (s *Service) ModeratorStatistics(ctx context.Context, actor model.Actor, moderatorID uint) (*ModeratorStatistics, error) {
	if _, err := s.authorize(ctx, actor, policy.ModerationStatistics); err != nil {
		return nil, err
	}
	m, err := s.userRepo.FindByID(ctx, moderatorID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if m == nil {
		return nil, constant.NewNotFoundError("用户不存在")
	}

	byType, total, err := s.countByType(ctx, repository.ModerationFilter{ModeratorID: &moderatorID})
	if err != nil {
		return nil, err
	}
	return &ModeratorStatistics{
		ModeratorID: moderatorID,
		Nickname:    m.Nickname,
		ByType:      byType,
		Total:       total,
	}, nil
}

// ParseReportTime 按 ReportTimeLayout 解析时间
func ParseReportTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(ReportTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, constant.NewValidationError("时间格式必须为 %s", ReportTimeLayout)
	}
	return t, nil
}

// GenerateReport 汇总 [start, end] 闭区间内的审核记录，按类型和审核员分别计数
func (s *Service) GenerateReport(ctx context.Context, actor model.Actor, start, end string) (*Report, error) {
	admin, err := s.authorize(ctx, actor, policy.ModerationStatistics)
	if err != nil {
		return nil, err
	}

	from, err := ParseReportTime(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseReportTime(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, constant.NewValidationError("开始时间不能晚于结束时间")
	}

	// 结束时间精确到秒，这一秒内的记录也算在区间内
	filter := repository.ModerationFilter{
		Period: repository.TimeRange{From: from, To: to.Add(time.Second - time.Nanosecond)},
	}
	byType, total, err := s.countByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := s.moderationRepo.CountByModerator(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("按审核员统计失败: %w", err)
	}
	entries := make([]ModeratorEntry, 0, len(counts))
	for _, c := range counts {
		entry := ModeratorEntry{ModeratorID: c.ModeratorID, Count: c.Count}
		m, err := s.userRepo.FindByID(ctx, c.ModeratorID)
		if err != nil {
			return nil, fmt.Errorf("查询审核员失败: %w", err)
		}
		if m != nil {
			entry.Nickname = m.Nickname
		}
		entries = append(entries, entry)
	}

	s.logger.InfoContext(ctx, "生成审核报表", "admin_id", admin.ID, "start", start, "end", end, "total", total)
	return &Report{
		Start:       from,
		End:         to,
		ByType:      byType,
		Total:       total,
		ByModerator: entries,
	}, nil
}
