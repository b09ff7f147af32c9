package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/testutil"
	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

type fixture struct {
	svc       *Service
	store     *testutil.Store
	admin     *model.UserAccount
	moderator *model.UserAccount
	writer    *model.UserAccount
	article   *model.Article
	comment   *model.Comment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	f := &fixture{
		svc:       NewService(store.Repos.Moderation, store.Repos.User, store.Repos.Article, store.Repos.Comment, testutil.DiscardLogger()),
		store:     store,
		admin:     store.CreateUser(t, model.RoleAdministrator),
		moderator: store.CreateUser(t, model.RoleModerator),
		writer:    store.CreateUser(t, model.RoleWriter),
	}
	f.article = store.CreateArticle(t, f.writer, model.ContentStateAccepted, model.VisibilityPublic)
	f.comment = store.CreateComment(t, f.writer, f.article, model.ContentStateAccepted)
	return f
}

// record 直接写入一条指定时间的审核记录
func (f *fixture) record(t *testing.T, actionType model.ActionType, moderator *model.UserAccount, target model.ModerationTarget, at time.Time) *model.ModerationRecord {
	t.Helper()
	r, err := model.NewModerationRecord(actionType, "测试记录", moderator.ID, target)
	require.NoError(t, err)
	r.CreatedAt = at
	require.NoError(t, f.store.Repos.Moderation.Create(context.Background(), r))
	return r
}

func at(value string) time.Time {
	t, err := time.ParseInLocation(ReportTimeLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHistoryAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-01-01 10:00:00"))

	records, err := f.svc.History(ctx, model.ActorOf(f.moderator.ID), repository.ModerationFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.svc.History(ctx, model.ActorOf(f.writer.ID), repository.ModerationFilter{})
	assert.ErrorIs(t, err, constant.ErrForbidden)

	_, err = f.svc.History(ctx, model.Anonymous(), repository.ModerationFilter{})
	assert.ErrorIs(t, err, constant.ErrForbidden)

	assert.NoError(t, f.svc.AuthorizeHistory(ctx, model.ActorOf(f.moderator.ID)))
	assert.NoError(t, f.svc.AuthorizeHistory(ctx, model.ActorOf(f.admin.ID)))
	assert.ErrorIs(t, f.svc.AuthorizeHistory(ctx, model.ActorOf(f.writer.ID)), constant.ErrForbidden)
	assert.ErrorIs(t, f.svc.AuthorizeHistory(ctx, model.Anonymous()), constant.ErrForbidden)
}

func TestPerTargetHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := model.ActorOf(f.moderator.ID)

	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-01-01 10:00:00"))
	f.record(t, model.ActionTypeArticleRefusal, f.admin, model.TargetingArticle(f.article.ID), at("2026-01-02 10:00:00"))
	f.record(t, model.ActionTypeCommentRefusal, f.moderator, model.TargetingComment(f.comment.ID), at("2026-01-03 10:00:00"))
	f.record(t, model.ActionTypeUserReport, f.moderator, model.TargetingUser(f.writer.ID), at("2026-01-04 10:00:00"))
	f.record(t, model.ActionTypeAccountBan, f.admin, model.TargetingUser(f.writer.ID), at("2026-01-05 10:00:00"))

	articleHistory, err := f.svc.ArticleHistory(ctx, mod, f.article.ID)
	require.NoError(t, err)
	require.Len(t, articleHistory, 2)
	assert.Equal(t, f.admin.ID, articleHistory[0].ModeratorID, "按时间倒序")

	commentHistory, err := f.svc.CommentHistory(ctx, mod, f.comment.ID)
	require.NoError(t, err)
	assert.Len(t, commentHistory, 1)

	userHistory, err := f.svc.UserHistory(ctx, mod, f.writer.ID)
	require.NoError(t, err)
	require.Len(t, userHistory, 2)
	assert.Equal(t, model.ActionTypeAccountBan, userHistory[0].ActionType)
	assert.Equal(t, model.ActionTypeUserReport, userHistory[1].ActionType)

	_, err = f.svc.ArticleHistory(ctx, mod, 9999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
	_, err = f.svc.CommentHistory(ctx, mod, 9999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
	_, err = f.svc.UserHistory(ctx, mod, 9999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestOpenReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spammer := f.store.CreateUser(t, model.RoleWriter)

	f.record(t, model.ActionTypeUserReport, f.moderator, model.TargetingUser(f.writer.ID), at("2026-01-01 10:00:00"))
	f.record(t, model.ActionTypeUserReport, f.moderator, model.TargetingUser(spammer.ID), at("2026-01-02 10:00:00"))
	f.record(t, model.ActionTypeUserReport, f.admin, model.TargetingUser(f.writer.ID), at("2026-01-03 10:00:00"))
	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-01-04 10:00:00"))
	f.record(t, model.ActionTypeAccountBan, f.admin, model.TargetingUser(spammer.ID), at("2026-01-05 10:00:00"))
	require.NoError(t, f.store.Repos.User.SetBanned(ctx, spammer.ID, true))

	open, err := f.svc.OpenReports(ctx, model.ActorOf(f.moderator.ID))
	require.NoError(t, err)
	require.Len(t, open, 2, "已封禁账户的举报和其他类型的记录都不算待处理")
	for _, r := range open {
		assert.Equal(t, model.ActionTypeUserReport, r.ActionType)
		require.NotNil(t, r.Target.UserID)
		assert.Equal(t, f.writer.ID, *r.Target.UserID)
	}
	assert.Equal(t, f.admin.ID, open[0].ModeratorID, "按时间倒序")

	require.NoError(t, f.store.Repos.User.SetBanned(ctx, f.writer.ID, true))
	open, err = f.svc.OpenReports(ctx, model.ActorOf(f.admin.ID))
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = f.svc.OpenReports(ctx, model.ActorOf(spammer.ID))
	assert.ErrorIs(t, err, constant.ErrAccountBanned)
	_, err = f.svc.OpenReports(ctx, model.Anonymous())
	assert.ErrorIs(t, err, constant.ErrForbidden)
}

func TestRecentActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := at("2026-02-01 00:00:00")
	for i := 0; i < 12; i++ {
		f.record(t, model.ActionTypeUserReport, f.moderator, model.TargetingUser(f.writer.ID), base.Add(time.Duration(i)*time.Hour))
	}

	recent, err := f.svc.RecentActions(ctx, model.ActorOf(f.moderator.ID), 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.True(t, recent[0].CreatedAt.Equal(base.Add(11*time.Hour)))

	recent, err = f.svc.RecentActions(ctx, model.ActorOf(f.moderator.ID), 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-01-01 10:00:00"))
	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-01-01 11:00:00"))
	f.record(t, model.ActionTypeUserReport, f.admin, model.TargetingUser(f.writer.ID), at("2026-01-01 12:00:00"))
	f.store.CreateArticle(t, f.writer, model.ContentStatePending, model.VisibilityPublic)
	f.store.CreateComment(t, f.writer, f.article, model.ContentStatePending)
	f.store.CreateComment(t, f.writer, f.article, model.ContentStatePending)

	stats, err := f.svc.Statistics(ctx, model.ActorOf(f.admin.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByType[model.ActionTypeArticleRefusal])
	assert.Equal(t, int64(1), stats.ByType[model.ActionTypeUserReport])
	count, ok := stats.ByType[model.ActionTypeAccountBan]
	assert.True(t, ok, "没有记录的类型也应出现")
	assert.Zero(t, count)
	assert.Equal(t, int64(1), stats.PendingArticles)
	assert.Equal(t, int64(2), stats.PendingComments)

	_, err = f.svc.Statistics(ctx, model.ActorOf(f.moderator.ID))
	assert.ErrorIs(t, err, constant.ErrForbidden, "审核员不能查看统计")

	modStats, err := f.svc.ModeratorStatistics(ctx, model.ActorOf(f.admin.ID), f.moderator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), modStats.Total)
	assert.Equal(t, f.moderator.Nickname, modStats.Nickname)
	assert.Zero(t, modStats.ByType[model.ActionTypeUserReport])

	_, err = f.svc.ModeratorStatistics(ctx, model.ActorOf(f.admin.ID), 9999)
	assert.ErrorIs(t, err, constant.ErrNotFound)
}

func TestGenerateReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := model.ActorOf(f.admin.ID)

	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-03-01 11:59:59"))
	f.record(t, model.ActionTypeArticleRefusal, f.moderator, model.TargetingArticle(f.article.ID), at("2026-03-01 12:00:00"))
	f.record(t, model.ActionTypeCommentRefusal, f.moderator, model.TargetingComment(f.comment.ID), at("2026-03-01 12:30:00"))
	f.record(t, model.ActionTypeAccountBan, f.admin, model.TargetingUser(f.writer.ID), at("2026-03-01 13:00:00"))
	f.record(t, model.ActionTypeUserReport, f.admin, model.TargetingUser(f.writer.ID), at("2026-03-01 13:00:01"))

	report, err := f.svc.GenerateReport(ctx, admin, "2026-03-01 12:00:00", "2026-03-01 13:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Total, "区间两端都包含在内")
	assert.Equal(t, int64(1), report.ByType[model.ActionTypeArticleRefusal])
	assert.Equal(t, int64(1), report.ByType[model.ActionTypeCommentRefusal])
	assert.Equal(t, int64(1), report.ByType[model.ActionTypeAccountBan])
	assert.Zero(t, report.ByType[model.ActionTypeUserReport])

	require.Len(t, report.ByModerator, 2)
	assert.Equal(t, f.moderator.ID, report.ByModerator[0].ModeratorID)
	assert.Equal(t, int64(2), report.ByModerator[0].Count)
	assert.Equal(t, f.moderator.Nickname, report.ByModerator[0].Nickname)
	assert.Equal(t, f.admin.ID, report.ByModerator[1].ModeratorID)

	same, err := f.svc.GenerateReport(ctx, admin, "2026-03-01 12:00:00", "2026-03-01 12:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.Total)

	invalid := []struct {
		name, start, end string
	}{
		{"开始时间格式错误", "2026/03/01", "2026-03-01 13:00:00"},
		{"结束时间格式错误", "2026-03-01 12:00:00", "2026-03-01T13:00:00Z"},
		{"开始晚于结束", "2026-03-02 00:00:00", "2026-03-01 00:00:00"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GenerateReport(ctx, admin, tt.start, tt.end)
			assert.ErrorIs(t, err, constant.ErrValidation)
		})
	}

	_, err = f.svc.GenerateReport(ctx, model.ActorOf(f.moderator.ID), "2026-03-01 12:00:00", "2026-03-01 13:00:00")
	assert.ErrorIs(t, err, constant.ErrForbidden)
}
