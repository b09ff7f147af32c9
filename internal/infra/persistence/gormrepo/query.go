/*
 * @Description: 查询条件的公共拼装函数
 * @Author: inkwell
 * @Date: 2026-03-06 15:10:02
 * @LastEditTime: 2026-10-13 17:20:14
 * @LastEditors: inkwell
 */
package gormrepo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/constant"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
)

// likeEscaper 使用 '!' 作为转义符，三种数据库的 ESCAPE 语法一致
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// whereContains 追加大小写不敏感的子串匹配条件。
// sqlite 的 LOWER 和 LIKE 只折叠 ASCII，此时不加条件并返回 true，由调用方用 foldContains 在内存中过滤。
func whereContains(q *gorm.DB, column, term string) (*gorm.DB, bool) {
	switch q.Dialector.Name() {
	case "postgres":
		return q.Where(column+" ILIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(term)+"%"), false
	case "mysql":
		return q.Where("LOWER("+column+") LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(term))+"%"), false
	default:
		return q, true
	}
}

// foldContains 按 Unicode 规则做大小写不敏感的子串判断
func foldContains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

func orderByCreated(q *gorm.DB, oldestFirst bool) *gorm.DB {
	if oldestFirst {
		return q.Order("created_at ASC").Order("id ASC")
	}
	return q.Order("created_at DESC").Order("id DESC")
}

func wherePeriod(q *gorm.DB, period repository.TimeRange) *gorm.DB {
	if !period.From.IsZero() {
		q = q.Where("created_at >= ?", period.From.UTC())
	}
	if !period.To.IsZero() {
		q = q.Where("created_at <= ?", period.To.UTC())
	}
	return q
}

// translateWriteError 把唯一约束冲突转换为业务错误，其余错误原样返回
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constant.ErrDuplicate
	}
	return err
}
