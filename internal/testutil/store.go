// Package testutil 为各层测试提供基于 SQLite 临时文件的真实存储和常用数据。
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/internal/infra/persistence/database"
	"github.com/inkwell-cms/inkwell/internal/infra/persistence/gormrepo"
	"github.com/inkwell-cms/inkwell/pkg/domain/model"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

// Store 聚合测试用的数据库连接、仓储和事务管理器
type Store struct {
	DB    *gorm.DB
	Repos repository.Repositories
	Tx    repository.TransactionManager
}

// DiscardLogger 返回丢弃全部输出的日志器
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewStore 在 t.TempDir() 下创建一个已迁移的 SQLite 数据库
func NewStore(t testing.TB) *Store {
	t.Helper()

	db, err := database.Open(database.Options{
		Type:   "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Logger: DiscardLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, gormrepo.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &Store{
		DB:    db,
		Repos: gormrepo.NewRepositories(db),
		Tx:    gormrepo.NewTransactionManager(db),
	}
}

var seq atomic.Int64

// CreateUser 直接写入一个已审核通过的账户，昵称自动去重
func (s *Store) CreateUser(t testing.TB, role model.UserRole) *model.UserAccount {
	t.Helper()
	n := seq.Add(1)
	u := model.NewUserAccount(fmt.Sprintf("user%d@example.com", n), "not-a-real-hash", fmt.Sprintf("user_%d", n))
	u.Role = role
	u.State = model.AccountStateValidated
	require.NoError(t, s.Repos.User.Save(context.Background(), u))
	return u
}

// CreateArticle 直接写入一篇指定状态的文章
func (s *Store) CreateArticle(t testing.TB, owner *model.UserAccount, state model.ContentState, visibility model.Visibility) *model.Article {
	t.Helper()
	n := seq.Add(1)
	a := &model.Article{
		Title:      fmt.Sprintf("文章 %d", n),
		Body:       "正文内容",
		Visibility: visibility,
		State:      state,
		OwnerID:    owner.ID,
	}
	require.NoError(t, s.Repos.Article.Save(context.Background(), a))
	return a
}

// CreateComment 直接写入一条指定状态的评论
func (s *Store) CreateComment(t testing.TB, owner *model.UserAccount, article *model.Article, state model.ContentState) *model.Comment {
	t.Helper()
	c := &model.Comment{
		Body:      "一条评论",
		State:     state,
		OwnerID:   owner.ID,
		ArticleID: article.ID,
	}
	require.NoError(t, s.Repos.Comment.Save(context.Background(), c))
	return c
}
