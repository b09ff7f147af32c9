/*
 * @Description: 基于 gorm 事务的 TransactionManager
 * @Author: inkwell
 * @Date: 2026-03-10 09:33:27
 * @LastEditTime: 2026-03-10 09:33:27
 * @LastEditors: inkwell
 */
package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

// NewRepositories 用同一个连接（或事务）构造全部仓储
func NewRepositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		User:       NewUserRepository(db),
		Article:    NewArticleRepository(db),
		Comment:    NewCommentRepository(db),
		Moderation: NewModerationRepository(db),
	}
}

// gormTransactionManager 是基于 gorm 的事务管理器实现。
type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Do 实现了 TransactionManager 接口。
// fn 收到的仓储全部绑定在同一个事务上；fn 返回错误或 panic 时 gorm 会回滚，panic 会继续向上抛出。
func (tm *gormTransactionManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
