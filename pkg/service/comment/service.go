/*
 * @Description: 评论服务
 * @Author: inkwell
 * @Date: 2026-03-07 11:26:05
 * @LastEditTime: 2026-10-13 20:15:40
 * @LastEditors: inkwell
 */
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/policy"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

const (
	MinBodyLength = 3
	MaxBodyLength = 10000

	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// Service 评论服务
type Service struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	txManager   repository.TransactionManager
	logger      *slog.Logger
}

// NewService 创建评论服务实例
func NewService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger.With("service", "comment"),
	}
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n < MinBodyLength || n > MaxBodyLength {
		return "", constant.NewValidationError("评论内容长度必须在 %d 到 %d 个字符之间", MinBodyLength, MaxBodyLength)
	}
	return body, nil
}

// Create 在已通过审核的文章下发表评论。
// 文章不存在或尚未通过审核时返回 NotFound，审核员和管理员的评论直接通过。
func (s *Service) Create(ctx context.Context, actor model.Actor, articleID uint, body string) (*model.Comment, error) {
	// 1. 校验内容
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	// 2. 鉴权
	author, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.ContentCreate, author, false); err != nil {
		return nil, err
	}

	// 3. 检查所属文章
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if article == nil || !article.IsAccepted() {
		return nil, constant.NewNotFoundError("文章不存在或尚未通过审核")
	}

	// 4. 保存
	state := model.ContentStatePending
	if author.IsPrivileged() {
		state = model.ContentStateAccepted
	}
	c := &model.Comment{
		Body:      body,
		State:     state,
		OwnerID:   author.ID,
		ArticleID: articleID,
	}
	if err := s.commentRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("保存评论失败: %w", err)
	}

	s.logger.InfoContext(ctx, "评论已创建", "comment_id", c.ID, "article_id", articleID, "owner_id", author.ID, "state", c.State)
	return c, nil
}

// Update 修改评论内容，规则与文章一致：非特权作者修改后重新待审核。
func (s *Service) Update(ctx context.Context, actor model.Actor, id uint, body string) (*model.Comment, error) {
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}

	editor, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	c, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if c == nil {
		return nil, constant.NewNotFoundError("评论不存在")
	}
	if err := policy.Check(policy.ContentEdit, editor, editor != nil && c.IsOwnedBy(editor.ID)); err != nil {
		return nil, err
	}
	if c.State.IsTerminal() {
		return nil, constant.NewNotFoundError("评论已被删除")
	}

	c.Body = body
	if !editor.IsPrivileged() {
		c.State = model.ContentStatePending
	}
	if err := s.commentRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("更新评论失败: %w", err)
	}

	s.logger.InfoContext(ctx, "评论已修改", "comment_id", c.ID, "editor_id", editor.ID, "state", c.State)
	return c, nil
}

// Moderate 对评论执行审核动作，refuse 时在同一事务中写入审核记录。
func (s *Service) Moderate(ctx context.Context, actor model.Actor, id uint, action string, description string) (*model.Comment, error) {
	act, err := model.ParseModerationAction(action)
	if err != nil {
		return nil, constant.NewValidationError("审核动作必须是 accept、refuse 或 erase")
	}

	moderator, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.ContentModerate, moderator, false); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if act == model.ActionRefuse && description == "" {
		return nil, constant.NewValidationError("拒绝评论时必须填写理由")
	}

	var result *model.Comment
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		c, err := repos.Comment.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("查询评论失败: %w", err)
		}
		if c == nil {
			return constant.NewNotFoundError("评论不存在")
		}
		if c.State.IsTerminal() && act != model.ActionErase {
			return constant.NewNotFoundError("评论已被删除")
		}

		target := act.TargetState()
		if err := repos.Comment.UpdateState(ctx, id, target); err != nil {
			return fmt.Errorf("更新评论状态失败: %w", err)
		}
		c.State = target

		if act == model.ActionRefuse {
			record, err := model.NewModerationRecord(model.ActionTypeCommentRefusal, description, moderator.ID, model.TargetingComment(id))
			if err != nil {
				return err
			}
			if err := repos.Moderation.Create(ctx, record); err != nil {
				return fmt.Errorf("写入审核记录失败: %w", err)
			}
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "评论已审核", "comment_id", id, "moderator_id", moderator.ID, "action", act)
	return result, nil
}

// GetByID 返回调用者可见的评论，不存在或不可见时返回 (nil, nil)
func (s *Service) GetByID(ctx context.Context, actor model.Actor, id uint) (*model.Comment, error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	c, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	parent, err := s.articleRepo.FindByID(ctx, c.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if !policy.CommentVisible(c, parent, viewer) {
		return nil, nil
	}
	return c, nil
}

// Delete 软删除评论，仅所有者或特权用户可以执行，重复删除视为成功
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uint) error {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return err
	}
	c, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询评论失败: %w", err)
	}
	if c == nil {
		return constant.NewNotFoundError("评论不存在")
	}
	if err := policy.Check(policy.ContentDelete, u, u != nil && c.IsOwnedBy(u.ID)); err != nil {
		return err
	}
	if c.State.IsTerminal() {
		return nil
	}
	if err := s.commentRepo.UpdateState(ctx, id, model.ContentStateErased); err != nil {
		return fmt.Errorf("删除评论失败: %w", err)
	}

	s.logger.InfoContext(ctx, "评论已删除", "comment_id", id, "actor_id", u.ID)
	return nil
}

// ListByArticle 列出文章下调用者可见的评论，按时间正序。
// 文章本身对调用者不可见时返回 NotFound。
func (s *Service) ListByArticle(ctx context.Context, actor model.Actor, articleID uint) ([]*model.Comment, error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if !policy.ArticleVisible(article, viewer) {
		return nil, constant.NewNotFoundError("文章不存在")
	}

	comments, err := s.commentRepo.FindAll(ctx, repository.CommentFilter{ArticleID: &articleID, OldestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("查询评论列表失败: %w", err)
	}
	visible := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		if policy.CommentVisible(c, article, viewer) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// ListByOwner 列出某个用户发表的、调用者可见的评论
func (s *Service) ListByOwner(ctx context.Context, actor model.Actor, ownerID uint) ([]*model.Comment, error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindAll(ctx, repository.CommentFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, fmt.Errorf("查询用户评论失败: %w", err)
	}
	return s.filterVisible(ctx, comments, viewer)
}

// ListPending 返回评论待审核队列，先提交的排在前面
func (s *Service) ListPending(ctx context.Context, actor model.Actor) ([]*model.Comment, error) {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.ContentQueue, u, false); err != nil {
		return nil, err
	}
	pending := model.ContentStatePending
	comments, err := s.commentRepo.FindAll(ctx, repository.CommentFilter{State: &pending, OldestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("查询待审核评论失败: %w", err)
	}
	return comments, nil
}

// CountByArticle 统计文章下已通过审核的评论数量
func (s *Service) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	accepted := model.ContentStateAccepted
	n, err := s.commentRepo.Count(ctx, repository.CommentFilter{ArticleID: &articleID, State: &accepted})
	if err != nil {
		return 0, fmt.Errorf("统计评论数量失败: %w", err)
	}
	return n, nil
}

// ListRecent 返回最新的已通过评论，只包含所属文章对调用者可见的部分。
// limit 超出范围时被修正到 [1, 50]，为 0 时取默认值 10。
func (s *Service) ListRecent(ctx context.Context, actor model.Actor, limit int) ([]*model.Comment, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	accepted := model.ContentStateAccepted
	comments, err := s.commentRepo.FindAll(ctx, repository.CommentFilter{State: &accepted})
	if err != nil {
		return nil, fmt.Errorf("查询最新评论失败: %w", err)
	}

	recent := make([]*model.Comment, 0, limit)
	parents := make(map[uint]*model.Article)
	for _, c := range comments {
		if len(recent) == limit {
			break
		}
		parent, err := s.parent(ctx, parents, c.ArticleID)
		if err != nil {
			return nil, err
		}
		// 所属文章必须已通过审核，特权用户也不例外
		if c.IsAccepted() && policy.ArticleVisible(parent, viewer) && parent.IsAccepted() {
			recent = append(recent, c)
		}
	}
	return recent, nil
}

func (s *Service) filterVisible(ctx context.Context, comments []*model.Comment, viewer *model.UserAccount) ([]*model.Comment, error) {
	parents := make(map[uint]*model.Article)
	visible := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		parent, err := s.parent(ctx, parents, c.ArticleID)
		if err != nil {
			return nil, err
		}
		if policy.CommentVisible(c, parent, viewer) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// parent 带缓存地加载评论所属文章
func (s *Service) parent(ctx context.Context, cache map[uint]*model.Article, articleID uint) (*model.Article, error) {
	if a, ok := cache[articleID]; ok {
		return a, nil
	}
	a, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	cache[articleID] = a
	return a, nil
}
