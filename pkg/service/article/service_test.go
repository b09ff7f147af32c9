package article

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/testutil"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

func newTestService(t *testing.T) (*Service, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	svc := NewService(store.Repos.Article, store.Repos.User, store.Tx, testutil.DiscardLogger())
	return svc, store
}

func validParams() CreateParams {
	return CreateParams{Title: "第一篇文章", Body: "正文", Visibility: "public"}
}

func TestCreate_InitialState(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		role model.UserRole
		want model.ContentState
	}{
		{name: "普通作者进入待审核", role: model.RoleWriter, want: model.ContentStatePending},
		{name: "审核员直接通过", role: model.RoleModerator, want: model.ContentStateAccepted},
		{name: "管理员直接通过", role: model.RoleAdministrator, want: model.ContentStateAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := store.CreateUser(t, tt.role)
			a, err := svc.Create(ctx, model.ActorOf(u.ID), validParams())
			require.NoError(t, err)
			assert.NotZero(t, a.ID)
			assert.Equal(t, tt.want, a.State)
			assert.Equal(t, u.ID, a.OwnerID)
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	writer := store.CreateUser(t, model.RoleWriter)

	t.Run("匿名用户", func(t *testing.T) {
		_, err := svc.Create(ctx, model.Anonymous(), validParams())
		assert.ErrorIs(t, err, constant.ErrForbidden)
	})

	t.Run("已封禁用户", func(t *testing.T) {
		banned := store.CreateUser(t, model.RoleWriter)
		require.NoError(t, store.Repos.User.SetBanned(ctx, banned.ID, true))
		_, err := svc.Create(ctx, model.ActorOf(banned.ID), validParams())
		assert.ErrorIs(t, err, constant.ErrAccountBanned)
	})

	invalid := []struct {
		name   string
		params CreateParams
	}{
		{name: "标题为空", params: CreateParams{Title: "   ", Body: "正文", Visibility: "public"}},
		{name: "标题只有标签", params: CreateParams{Title: "<b></b>", Body: "正文", Visibility: "public"}},
		{name: "内容为空", params: CreateParams{Title: "标题", Body: "", Visibility: "public"}},
		{name: "可见范围未知", params: CreateParams{Title: "标题", Body: "正文", Visibility: "friends"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, model.ActorOf(writer.ID), tt.params)
			assert.ErrorIs(t, err, constant.ErrValidation)
		})
	}
}

func TestCreate_StripsTitleMarkup(t *testing.T) {
	svc, store := newTestService(t)
	writer := store.CreateUser(t, model.RoleWriter)

	a, err := svc.Create(context.Background(), model.ActorOf(writer.ID), CreateParams{
		Title:      "<b>加粗</b>的标题",
		Body:       "正文",
		Visibility: "private",
	})
	require.NoError(t, err)
	assert.Equal(t, "加粗的标题", a.Title)
	assert.Equal(t, model.VisibilityPrivate, a.Visibility)
}

func TestUpdate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	other := store.CreateUser(t, model.RoleWriter)
	moderator := store.CreateUser(t, model.RoleModerator)

	t.Run("所有者修改后重新待审核", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
		updated, err := svc.Update(ctx, model.ActorOf(owner.ID), a.ID, UpdateParams{Title: "新标题", Body: "新正文", Visibility: "private"})
		require.NoError(t, err)
		assert.Equal(t, model.ContentStatePending, updated.State)

		stored, err := store.Repos.Article.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "新标题", stored.Title)
		assert.Equal(t, model.VisibilityPrivate, stored.Visibility)
		assert.Equal(t, model.ContentStatePending, stored.State)
	})

	t.Run("被拒绝的文章可以重新提交", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStateRefused, model.VisibilityPublic)
		updated, err := svc.Update(ctx, model.ActorOf(owner.ID), a.ID, validParams())
		require.NoError(t, err)
		assert.Equal(t, model.ContentStatePending, updated.State)
	})

	t.Run("审核员修改保持原状态", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
		updated, err := svc.Update(ctx, model.ActorOf(moderator.ID), a.ID, validParams())
		require.NoError(t, err)
		assert.Equal(t, model.ContentStateAccepted, updated.State)
	})

	t.Run("其他作者无权修改", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		_, err := svc.Update(ctx, model.ActorOf(other.ID), a.ID, validParams())
		assert.ErrorIs(t, err, constant.ErrForbidden)
	})

	t.Run("已删除的文章不能修改", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStateErased, model.VisibilityPublic)
		_, err := svc.Update(ctx, model.ActorOf(owner.ID), a.ID, validParams())
		assert.ErrorIs(t, err, constant.ErrNotFound)
	})

	t.Run("文章不存在", func(t *testing.T) {
		_, err := svc.Update(ctx, model.ActorOf(owner.ID), 9999, validParams())
		assert.ErrorIs(t, err, constant.ErrNotFound)
	})
}

func TestModerate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	moderator := store.CreateUser(t, model.RoleModerator)

	t.Run("拒绝时写入审核记录", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		got, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "refuse", "  内容不符合规范  ")
		require.NoError(t, err)
		assert.Equal(t, model.ContentStateRefused, got.State)

		records, err := store.Repos.Moderation.FindAll(ctx, repository.ModerationFilter{TargetArticleID: &a.ID})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.ActionTypeArticleRefusal, records[0].ActionType)
		assert.Equal(t, "内容不符合规范", records[0].Description)
		assert.Equal(t, moderator.ID, records[0].ModeratorID)
	})

	t.Run("拒绝必须填写理由", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		_, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "refuse", " ")
		assert.ErrorIs(t, err, constant.ErrValidation)

		stored, err := store.Repos.Article.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ContentStatePending, stored.State)
	})

	t.Run("通过是幂等的且不写记录", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		for i := 0; i < 2; i++ {
			got, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "accept", "")
			require.NoError(t, err)
			assert.Equal(t, model.ContentStateAccepted, got.State)
		}
		count, err := store.Repos.Moderation.Count(ctx, repository.ModerationFilter{TargetArticleID: &a.ID})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("已删除的文章只接受 erase", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStateErased, model.VisibilityPublic)
		_, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "accept", "")
		assert.ErrorIs(t, err, constant.ErrNotFound)

		got, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "erase", "")
		require.NoError(t, err)
		assert.Equal(t, model.ContentStateErased, got.State)
	})

	t.Run("普通作者无权审核", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		_, err := svc.Moderate(ctx, model.ActorOf(owner.ID), a.ID, "accept", "")
		assert.ErrorIs(t, err, constant.ErrForbidden)
	})

	t.Run("未知动作", func(t *testing.T) {
		a := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
		_, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), a.ID, "publish", "")
		assert.ErrorIs(t, err, constant.ErrValidation)
	})

	t.Run("文章不存在", func(t *testing.T) {
		_, err := svc.Moderate(ctx, model.ActorOf(moderator.ID), 9999, "accept", "")
		assert.ErrorIs(t, err, constant.ErrNotFound)
	})
}

func TestGetByID_Visibility(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	reader := store.CreateUser(t, model.RoleWriter)
	moderator := store.CreateUser(t, model.RoleModerator)
	banned := store.CreateUser(t, model.RoleWriter)
	require.NoError(t, store.Repos.User.SetBanned(ctx, banned.ID, true))

	public := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
	private := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPrivate)
	pending := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)

	tests := []struct {
		name    string
		actor   model.Actor
		article *model.Article
		visible bool
	}{
		{"匿名访问公开文章", model.Anonymous(), public, true},
		{"匿名访问私有文章", model.Anonymous(), private, false},
		{"登录用户访问私有文章", model.ActorOf(reader.ID), private, true},
		{"封禁用户按匿名处理", model.ActorOf(banned.ID), private, false},
		{"其他用户访问待审核文章", model.ActorOf(reader.ID), pending, false},
		{"所有者访问待审核文章", model.ActorOf(owner.ID), pending, true},
		{"审核员访问待审核文章", model.ActorOf(moderator.ID), pending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetByID(ctx, tt.actor, tt.article.ID)
			require.NoError(t, err)
			if tt.visible {
				require.NotNil(t, got)
				assert.Equal(t, tt.article.ID, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}

	got, err := svc.GetByID(ctx, model.Anonymous(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)

	for i := 0; i < 5; i++ {
		store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
	}
	store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
	store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPrivate)

	page, err := svc.List(ctx, model.Anonymous(), ListParams{PageQuery: repository.PageQuery{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Items, 2)

	mine, err := svc.List(ctx, model.ActorOf(owner.ID), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), mine.Total)

	pendingState := model.ContentStatePending
	filtered, err := svc.List(ctx, model.ActorOf(owner.ID), ListParams{State: &pendingState})
	require.NoError(t, err)
	assert.Equal(t, int64(1), filtered.Total)
}

func TestListByOwner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	other := store.CreateUser(t, model.RoleWriter)

	store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
	store.CreateArticle(t, owner, model.ContentStateRefused, model.VisibilityPublic)
	store.CreateArticle(t, other, model.ContentStateAccepted, model.VisibilityPublic)

	own, err := svc.ListByOwner(ctx, model.ActorOf(owner.ID), owner.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	seen, err := svc.ListByOwner(ctx, model.ActorOf(other.ID), owner.ID)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestListPending(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	moderator := store.CreateUser(t, model.RoleModerator)

	first := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
	store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)
	second := store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPrivate)

	queue, err := svc.ListPending(ctx, model.ActorOf(moderator.ID))
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)

	_, err = svc.ListPending(ctx, model.ActorOf(owner.ID))
	assert.ErrorIs(t, err, constant.ErrForbidden)
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	other := store.CreateUser(t, model.RoleWriter)

	a := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)

	err := svc.Delete(ctx, model.ActorOf(other.ID), a.ID)
	assert.ErrorIs(t, err, constant.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, model.ActorOf(owner.ID), a.ID))
	require.NoError(t, svc.Delete(ctx, model.ActorOf(owner.ID), a.ID), "重复删除应视为成功")

	stored, err := store.Repos.Article.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored, "软删除不应移除数据")
	assert.Equal(t, model.ContentStateErased, stored.State)

	got, err := svc.GetByID(ctx, model.Anonymous(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = svc.Delete(ctx, model.ActorOf(owner.ID), 9999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	writer := store.CreateUser(t, model.RoleWriter)
	moderator := store.CreateUser(t, model.RoleModerator)

	_, err := svc.Create(ctx, model.ActorOf(moderator.ID), CreateParams{Title: "Go 并发模式", Body: "正文", Visibility: "public"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.ActorOf(moderator.ID), CreateParams{Title: "100% 覆盖率", Body: "正文", Visibility: "public"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.ActorOf(writer.ID), CreateParams{Title: "Go 并发陷阱", Body: "正文", Visibility: "public"})
	require.NoError(t, err)

	_, err = svc.Search(ctx, model.Anonymous(), "Go")
	assert.ErrorIs(t, err, constant.ErrValidation)

	found, err := svc.Search(ctx, model.Anonymous(), "go 并发")
	require.NoError(t, err)
	require.Len(t, found, 1, "待审核的文章不应出现在匿名搜索结果中")
	assert.Equal(t, "Go 并发模式", found[0].Title)

	found, err = svc.Search(ctx, model.ActorOf(writer.ID), "go 并发")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(ctx, model.Anonymous(), "00%")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = svc.Create(ctx, model.ActorOf(moderator.ID), CreateParams{Title: "Élan Guide", Body: "正文", Visibility: "public"})
	require.NoError(t, err)
	for _, term := range []string{"Élan", "élan", "ÉLAN GUI"} {
		found, err = svc.Search(ctx, model.Anonymous(), term)
		require.NoError(t, err)
		require.Len(t, found, 1, "非 ASCII 字母也不区分大小写: %s", term)
		assert.Equal(t, "Élan Guide", found[0].Title)
	}
}

func TestCount(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := store.CreateUser(t, model.RoleWriter)
	admin := store.CreateUser(t, model.RoleAdministrator)

	store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
	store.CreateArticle(t, owner, model.ContentStatePending, model.VisibilityPublic)
	store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)

	pending := model.ContentStatePending
	n, err := svc.Count(ctx, model.ActorOf(admin.ID), &pending)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.Count(ctx, model.ActorOf(admin.ID), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.Count(ctx, model.ActorOf(owner.ID), nil)
	assert.ErrorIs(t, err, constant.ErrForbidden)
}
