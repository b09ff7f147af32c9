package repository

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery 包含了所有列表查询都通用的分页参数。
// 任何需要分页的查询选项结构体都可以嵌入它。
type PageQuery struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

// Normalize 返回修正后的页码与每页数量
func (q PageQuery) Normalize() (page, size int) {
	page, size = q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset 返回修正后的偏移量
func (q PageQuery) Offset() int {
	page, size := q.Normalize()
	return (page - 1) * size
}

// PageResult 包含了所有分页查询返回的通用结构。
// T 代表返回的实体类型，可以是 model.Article, model.Comment 等。
type PageResult[T any] struct {
	Items []*T  `json:"items"`
	Total int64 `json:"total"`
}

// Paginate 对已经在内存中过滤好的结果做分页
func Paginate[T any](items []*T, q PageQuery) *PageResult[T] {
	page, size := q.Normalize()
	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return &PageResult[T]{Items: items[start:end], Total: int64(total)}
}

// TimeRange 是闭区间时间范围，零值表示不限
type TimeRange struct {
	From time.Time
	To   time.Time
}
