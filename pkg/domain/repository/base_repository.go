package repository

import (
	"context"
)

// BaseRepository 定义了所有仓储层都应具备的最基础操作。
// 业务数据从不物理删除，因此这里没有 Delete。
type BaseRepository[T any] interface {
	// FindByID 根据主键ID查找实体，不存在时返回 (nil, nil)。
	FindByID(ctx context.Context, id uint) (*T, error)

	// Save 按 ID 是否为零决定插入或更新，成功后回填 ID 和时间戳。
	Save(ctx context.Context, entity *T) error
}
