/*
 * @Description: 文章服务
 * @Author: inkwell
 * @Date: 2026-03-06 09:44:30
 * @LastEditTime: 2026-10-13 17:51:22
 * @LastEditors: inkwell
 */
package article

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-cms/inkwell/internal/pkg/parser"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/policy"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

const (
	MaxTitleLength     = 255
	MinSearchTermRunes = 3
)

// CreateParams 是创建文章的输入，Visibility 为 "public" 或 "private"
type CreateParams struct {
	Title      string
	Body       string
	Visibility string
}

// UpdateParams 是修改文章的输入，字段含义与 CreateParams 相同
type UpdateParams = CreateParams

// ListParams 是文章列表的筛选条件，结果只包含调用者可见的文章
type ListParams struct {
	repository.PageQuery
	State   *model.ContentState
	OwnerID *uint
}

// Service 文章服务：创建、修改、审核、软删除，以及按可见性规则读取。
type Service struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	txManager   repository.TransactionManager
	logger      *slog.Logger
}

func NewService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger.With("service", "article"),
	}
}

// validate 校验并规范化输入字段。标题中的 HTML 标签会被移除。
func validate(p CreateParams) (title, body string, visibility model.Visibility, err error) {
	title = parser.StripHTML(p.Title)
	if title == "" {
		return "", "", "", constant.NewValidationError("文章标题不能为空")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", "", constant.NewValidationError("文章标题不能超过 %d 个字符", MaxTitleLength)
	}
	if strings.TrimSpace(p.Body) == "" {
		return "", "", "", constant.NewValidationError("文章内容不能为空")
	}
	visibility, err = model.ParseVisibility(p.Visibility)
	if err != nil {
		return "", "", "", constant.NewValidationError("可见范围必须是 public 或 private")
	}
	return title, p.Body, visibility, nil
}

// Create 创建文章。审核员和管理员发布的文章直接通过，其余进入待审核。
func (s *Service) Create(ctx context.Context, actor model.Actor, p CreateParams) (*model.Article, error) {
	// 1. 校验字段
	title, body, visibility, err := validate(p)
	if err != nil {
		return nil, err
	}

	// 2. 加载作者并鉴权
	author, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.ContentCreate, author, false); err != nil {
		return nil, err
	}

	// 3. 决定初始状态并保存
	state := model.ContentStatePending
	if author.IsPrivileged() {
		state = model.ContentStateAccepted
	}
	a := &model.Article{
		Title:      title,
		Body:       body,
		Visibility: visibility,
		State:      state,
		OwnerID:    author.ID,
	}
	if err := s.articleRepo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("保存文章失败: %w", err)
	}

	s.logger.InfoContext(ctx, "文章已创建", "article_id", a.ID, "owner_id", a.OwnerID, "state", a.State)
	return a, nil
}

// Update 修改文章。非特权作者修改后重新进入待审核；审核员和管理员修改时保持原状态。
func (s *Service) Update(ctx context.Context, actor model.Actor, id uint, p UpdateParams) (*model.Article, error) {
	title, body, visibility, err := validate(p)
	if err != nil {
		return nil, err
	}

	editor, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}

	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if a == nil {
		return nil, constant.NewNotFoundError("文章不存在")
	}

	isOwner := editor != nil && a.IsOwnedBy(editor.ID)
	if err := policy.Check(policy.ContentEdit, editor, isOwner); err != nil {
		return nil, err
	}
	if a.State.IsTerminal() {
		return nil, constant.NewNotFoundError("文章已被删除")
	}

	a.Title = title
	a.Body = body
	a.Visibility = visibility
	if !editor.IsPrivileged() {
		a.State = model.ContentStatePending
	}

	if err := s.articleRepo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("更新文章失败: %w", err)
	}

	s.logger.InfoContext(ctx, "文章已修改", "article_id", a.ID, "editor_id", editor.ID, "state", a.State)
	return a, nil
}

// Moderate 对文章执行审核动作。三种动作都是幂等的；
// refuse 必须提供理由，并与状态变更在同一事务中写入审核记录。
func (s *Service) Moderate(ctx context.Context, actor model.Actor, id uint, action string, description string) (*model.Article, error) {
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
		return nil, constant.NewValidationError("拒绝文章时必须填写理由")
	}

	var result *model.Article
	err = s.txManager.Do(ctx, func(repos repository.Repositories) error {
		a, err := repos.Article.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("查询文章失败: %w", err)
		}
		if a == nil {
			return constant.NewNotFoundError("文章不存在")
		}
		if a.State.IsTerminal() && act != model.ActionErase {
			return constant.NewNotFoundError("文章已被删除")
		}

		target := act.TargetState()
		if err := repos.Article.UpdateState(ctx, id, target); err != nil {
			return fmt.Errorf("更新文章状态失败: %w", err)
		}
		a.State = target

		if act == model.ActionRefuse {
			record, err := model.NewModerationRecord(model.ActionTypeArticleRefusal, description, moderator.ID, model.TargetingArticle(id))
			if err != nil {
				return err
			}
			if err := repos.Moderation.Create(ctx, record); err != nil {
				return fmt.Errorf("写入审核记录失败: %w", err)
			}
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "文章已审核", "article_id", id, "moderator_id", moderator.ID, "action", act)
	return result, nil
}

// GetByID 返回调用者可见的文章；文章不存在或不可见时都返回 (nil, nil)。
func (s *Service) GetByID(ctx context.Context, actor model.Actor, id uint) (*model.Article, error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	if !policy.ArticleVisible(a, viewer) {
		return nil, nil
	}
	return a, nil
}

// List 按条件列出调用者可见的文章，按创建时间倒序分页。
func (s *Service) List(ctx context.Context, actor model.Actor, p ListParams) (*repository.PageResult[model.Article], error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	articles, err := s.articleRepo.FindAll(ctx, repository.ArticleFilter{State: p.State, OwnerID: p.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("查询文章列表失败: %w", err)
	}
	return repository.Paginate(filterVisible(articles, viewer), p.PageQuery), nil
}

// ListByOwner 列出某个用户的文章：本人看到全部，其他人只看到可见的部分。
func (s *Service) ListByOwner(ctx context.Context, actor model.Actor, ownerID uint) ([]*model.Article, error) {
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	articles, err := s.articleRepo.FindAll(ctx, repository.ArticleFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, fmt.Errorf("查询用户文章失败: %w", err)
	}
	return filterVisible(articles, viewer), nil
}

// ListPending 返回待审核队列，先提交的排在前面。仅审核员和管理员可用。
func (s *Service) ListPending(ctx context.Context, actor model.Actor) ([]*model.Article, error) {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.ContentQueue, u, false); err != nil {
		return nil, err
	}
	pending := model.ContentStatePending
	articles, err := s.articleRepo.FindAll(ctx, repository.ArticleFilter{State: &pending, OldestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("查询待审核文章失败: %w", err)
	}
	return articles, nil
}

// Delete 软删除文章（状态变为 erased），仅所有者或特权用户可以执行。重复删除视为成功。
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uint) error {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return err
	}
	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询文章失败: %w", err)
	}
	if a == nil {
		return constant.NewNotFoundError("文章不存在")
	}
	if err := policy.Check(policy.ContentDelete, u, u != nil && a.IsOwnedBy(u.ID)); err != nil {
		return err
	}
	if a.State.IsTerminal() {
		return nil
	}
	if err := s.articleRepo.UpdateState(ctx, id, model.ContentStateErased); err != nil {
		return fmt.Errorf("删除文章失败: %w", err)
	}

	s.logger.InfoContext(ctx, "文章已删除", "article_id", id, "actor_id", u.ID)
	return nil
}

// Search 按标题子串搜索调用者可见的文章，关键字至少 3 个字符。
func (s *Service) Search(ctx context.Context, actor model.Actor, term string) ([]*model.Article, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchTermRunes {
		return nil, constant.NewValidationError("搜索关键字至少需要 %d 个字符", MinSearchTermRunes)
	}
	viewer, err := policy.ResolveViewer(ctx, s.userRepo, actor)
	if err != nil {
		return nil, err
	}
	articles, err := s.articleRepo.FindAll(ctx, repository.ArticleFilter{TitleContains: term})
	if err != nil {
		return nil, fmt.Errorf("搜索文章失败: %w", err)
	}
	return filterVisible(articles, viewer), nil
}

func filterVisible(articles []*model.Article, viewer *model.UserAccount) []*model.Article {
	visible := make([]*model.Article, 0, len(articles))
	for _, a := range articles {
		if policy.ArticleVisible(a, viewer) {
			visible = append(visible, a)
		}
	}
	return visible
}

// Count 按状态统计文章数量，state 为 nil 时统计全部。仅审核员和管理员可用。
func (s *Service) Count(ctx context.Context, actor model.Actor, state *model.ContentState) (int64, error) {
	u, err := policy.ResolveActor(ctx, s.userRepo, actor)
	if err != nil {
		return 0, err
	}
	if err := policy.Check(policy.ContentQueue, u, false); err != nil {
		return 0, err
	}
	n, err := s.articleRepo.Count(ctx, repository.ArticleFilter{State: state})
	if err != nil {
		return 0, fmt.Errorf("统计文章数量失败: %w", err)
	}
	return n, nil
}
