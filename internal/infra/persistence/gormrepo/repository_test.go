package gormrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/testutil"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

func ptr[T any](v T) *T { return &v }

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	repo := store.Repos.User

	u := model.NewUserAccount("a@x.com", "hash", "Bob")
	require.NoError(t, repo.Save(ctx, u))
	require.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	t.Run("按邮箱查找", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Bob", got.Nickname)
		assert.Equal(t, model.RoleWriter, got.Role)
		assert.Equal(t, model.AccountStatePending, got.State)
		assert.False(t, got.IsBanned)
	})

	t.Run("不存在时返回 nil", func(t *testing.T) {
		got, err := repo.FindByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("唯一约束冲突转换为校验错误", func(t *testing.T) {
		dup := model.NewUserAccount("a@x.com", "hash", "Other")
		err := repo.Save(ctx, dup)
		require.ErrorIs(t, err, constant.ErrDuplicate)
		assert.True(t, errors.Is(err, constant.ErrValidation))

		dup = model.NewUserAccount("b@x.com", "hash", "Bob")
		assert.ErrorIs(t, repo.Save(ctx, dup), constant.ErrDuplicate)
	})

	t.Run("唯一性判断可以排除自身", func(t *testing.T) {
		taken, err := repo.ExistsByEmail(ctx, "a@x.com", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.ExistsByEmail(ctx, "a@x.com", u.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		taken, err = repo.ExistsByNickname(ctx, "Bob", u.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("状态字段更新", func(t *testing.T) {
		require.NoError(t, repo.UpdateRole(ctx, u.ID, model.RoleModerator))
		require.NoError(t, repo.SetBanned(ctx, u.ID, true))
		require.NoError(t, repo.UpdateState(ctx, u.ID, model.AccountStateValidated))

		got, err := repo.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleModerator, got.Role)
		assert.True(t, got.IsBanned)
		assert.Equal(t, model.AccountStateValidated, got.State)

		assert.ErrorIs(t, repo.SetBanned(ctx, 9999, true), constant.ErrNotFound)
	})

	t.Run("按条件筛选", func(t *testing.T) {
		n, err := repo.Count(ctx, repository.UserFilter{IsBanned: ptr(true)})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		users, err := repo.FindAll(ctx, repository.UserFilter{State: ptr(model.AccountStatePending)})
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestArticleRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	repo := store.Repos.Article
	owner := store.CreateUser(t, model.RoleWriter)
	other := store.CreateUser(t, model.RoleWriter)

	guide := &model.Article{Title: "Go 100% Guide", Body: "body", Visibility: model.VisibilityPublic, State: model.ContentStatePending, OwnerID: owner.ID}
	require.NoError(t, repo.Save(ctx, guide))
	store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPrivate)
	store.CreateArticle(t, other, model.ContentStateAccepted, model.VisibilityPublic)

	t.Run("保存后更新", func(t *testing.T) {
		guide.Title = "Go 100% Guide v2"
		guide.State = model.ContentStateRefused
		require.NoError(t, repo.Save(ctx, guide))

		got, err := repo.FindByID(ctx, guide.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go 100% Guide v2", got.Title)
		assert.Equal(t, model.ContentStateRefused, got.State)
		assert.Equal(t, owner.ID, got.OwnerID)
	})

	t.Run("更新不存在的文章", func(t *testing.T) {
		ghost := &model.Article{ID: 9999, Title: "x", Body: "y", Visibility: model.VisibilityPublic, State: model.ContentStatePending}
		assert.ErrorIs(t, repo.Save(ctx, ghost), constant.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateState(ctx, 9999, model.ContentStateErased), constant.ErrNotFound)
	})

	t.Run("标题子串匹配会转义通配符", func(t *testing.T) {
		found, err := repo.FindAll(ctx, repository.ArticleFilter{TitleContains: "100%"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, guide.ID, found[0].ID)

		found, err = repo.FindAll(ctx, repository.ArticleFilter{TitleContains: "go 100"})
		require.NoError(t, err)
		assert.Len(t, found, 1, "匹配不区分大小写")

		found, err = repo.FindAll(ctx, repository.ArticleFilter{TitleContains: "_"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("按状态和作者筛选", func(t *testing.T) {
		n, err := repo.Count(ctx, repository.ArticleFilter{OwnerID: ptr(owner.ID)})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = repo.Count(ctx, repository.ArticleFilter{State: ptr(model.ContentStateAccepted), Visibility: ptr(model.VisibilityPublic)})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("批量修改作者全部文章", func(t *testing.T) {
		affected, err := repo.UpdateStateByOwner(ctx, owner.ID, model.ContentStateErased)
		require.NoError(t, err)
		assert.EqualValues(t, 2, affected)

		n, err := repo.Count(ctx, repository.ArticleFilter{OwnerID: ptr(owner.ID), State: ptr(model.ContentStateErased)})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		got, err := repo.FindAll(ctx, repository.ArticleFilter{OwnerID: ptr(other.ID)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.ContentStateAccepted, got[0].State)
	})
}

func TestArticleRepository_TitleFoldsUnicodeCase(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	repo := store.Repos.Article
	owner := store.CreateUser(t, model.RoleWriter)

	for _, title := range []string{"Élan Guide", "Über Go", "ASCII only"} {
		a := &model.Article{Title: title, Body: "body", Visibility: model.VisibilityPublic, State: model.ContentStateAccepted, OwnerID: owner.ID}
		require.NoError(t, repo.Save(ctx, a))
	}

	tests := []struct {
		name  string
		term  string
		title string
	}{
		{"原样大小写", "Élan", "Élan Guide"},
		{"小写", "élan", "Élan Guide"},
		{"大写", "ÜBER", "Über Go"},
		{"ASCII", "ascii ONLY", "ASCII only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindAll(ctx, repository.ArticleFilter{TitleContains: tt.term})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, tt.title, found[0].Title)

			n, err := repo.Count(ctx, repository.ArticleFilter{TitleContains: tt.term})
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}

	t.Run("内存匹配后再截断", func(t *testing.T) {
		found, err := repo.FindAll(ctx, repository.ArticleFilter{TitleContains: "g", Limit: 1})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Über Go", found[0].Title, "按创建时间倒序取第一条")
	})
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	owner := store.CreateUser(t, model.RoleWriter)
	article := store.CreateArticle(t, owner, model.ContentStateAccepted, model.VisibilityPublic)

	first := store.CreateComment(t, owner, article, model.ContentStateAccepted)
	store.CreateComment(t, owner, article, model.ContentStatePending)

	comments, err := store.Repos.Comment.FindAll(ctx, repository.CommentFilter{ArticleID: ptr(article.ID), OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)

	n, err := store.Repos.Comment.Count(ctx, repository.CommentFilter{ArticleID: ptr(article.ID), State: ptr(model.ContentStateAccepted)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	limited, err := store.Repos.Comment.FindAll(ctx, repository.CommentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestModerationRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	repo := store.Repos.Moderation
	modA := store.CreateUser(t, model.RoleModerator)
	modB := store.CreateUser(t, model.RoleModerator)
	writer := store.CreateUser(t, model.RoleWriter)
	article := store.CreateArticle(t, writer, model.ContentStatePending, model.VisibilityPublic)

	add := func(actionType model.ActionType, moderator uint, target model.ModerationTarget) {
		rec, err := model.NewModerationRecord(actionType, "理由", moderator, target)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, rec))
		require.NotZero(t, rec.ID)
	}
	add(model.ActionTypeArticleRefusal, modA.ID, model.TargetingArticle(article.ID))
	add(model.ActionTypeUserReport, modA.ID, model.TargetingUser(writer.ID))
	add(model.ActionTypeUserReport, modB.ID, model.TargetingUser(writer.ID))

	t.Run("记录不可重复写入", func(t *testing.T) {
		rec, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Error(t, repo.Create(ctx, rec))
	})

	t.Run("按目标查询", func(t *testing.T) {
		records, err := repo.FindAll(ctx, repository.ModerationFilter{TargetUserID: ptr(writer.ID)})
		require.NoError(t, err)
		assert.Len(t, records, 2)

		records, err = repo.FindAll(ctx, repository.ModerationFilter{TargetArticleID: ptr(article.ID)})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.ActionTypeArticleRefusal, records[0].ActionType)
		require.NotNil(t, records[0].Target.ArticleID)
		assert.Nil(t, records[0].Target.UserID)
	})

	t.Run("分组计数", func(t *testing.T) {
		byType, err := repo.CountByActionType(ctx, repository.ModerationFilter{})
		require.NoError(t, err)
		assert.Equal(t, map[model.ActionType]int64{
			model.ActionTypeArticleRefusal: 1,
			model.ActionTypeUserReport:     2,
		}, byType)

		byModerator, err := repo.CountByModerator(ctx, repository.ModerationFilter{})
		require.NoError(t, err)
		assert.Equal(t, []repository.ModeratorCount{
			{ModeratorID: modA.ID, Count: 2},
			{ModeratorID: modB.ID, Count: 1},
		}, byModerator)
	})

	t.Run("时间范围为闭区间", func(t *testing.T) {
		now := time.Now().UTC()
		n, err := repo.Count(ctx, repository.ModerationFilter{Period: repository.TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = repo.Count(ctx, repository.ModerationFilter{Period: repository.TimeRange{From: now.Add(time.Hour)}})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestTransactionManager(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	writer := store.CreateUser(t, model.RoleWriter)
	article := store.CreateArticle(t, writer, model.ContentStateAccepted, model.VisibilityPublic)

	t.Run("出错时回滚", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Tx.Do(ctx, func(repos repository.Repositories) error {
			require.NoError(t, repos.Article.UpdateState(ctx, article.ID, model.ContentStateErased))
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := store.Repos.Article.FindByID(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ContentStateAccepted, got.State)
	})

	t.Run("panic 时回滚并继续抛出", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = store.Tx.Do(ctx, func(repos repository.Repositories) error {
				_ = repos.User.SetBanned(ctx, writer.ID, true)
				panic("boom")
			})
		})

		got, err := store.Repos.User.FindByID(ctx, writer.ID)
		require.NoError(t, err)
		assert.False(t, got.IsBanned)
	})

	t.Run("成功时提交", func(t *testing.T) {
		err := store.Tx.Do(ctx, func(repos repository.Repositories) error {
			return repos.Article.UpdateState(ctx, article.ID, model.ContentStateRefused)
		})
		require.NoError(t, err)

		got, err := store.Repos.Article.FindByID(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ContentStateRefused, got.State)
	})
}
