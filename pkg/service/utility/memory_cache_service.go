/*
 * @Description: 内存缓存实现
 * @Author: inkwell
 * @Date: 2026-03-11 20:55:40
 * @LastEditTime: 2026-03-11 20:55:40
 * @LastEditors: inkwell
 */
package utility

import (
	"context"
	"sync"
	"time"
)

// cacheItem 缓存项结构，expiration 为零值表示永不过期
type cacheItem struct {
	value      string
	expiration time.Time
}

func (item cacheItem) isExpired(now time.Time) bool {
	return !item.expiration.IsZero() && now.After(item.expiration)
}

// memoryCacheService 是 Redis 不可用时的进程内实现。
// 过期项在读取时惰性删除，写入时顺带清理，不启动后台协程。
type memoryCacheService struct {
	mu    sync.Mutex
	data  map[string]cacheItem
	now   func() time.Time
	sweep int
}

// NewMemoryCacheService 创建内存缓存服务实例
func NewMemoryCacheService() CacheService {
	return &memoryCacheService{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// 每写入这么多次做一次全量过期清理
const sweepEvery = 256

func (s *memoryCacheService) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := cacheItem{value: value}
	if expiration > 0 {
		item.expiration = now.Add(expiration)
	}
	s.data[key] = item

	s.sweep++
	if s.sweep >= sweepEvery {
		s.sweep = 0
		for k, v := range s.data {
			if v.isExpired(now) {
				delete(s.data, k)
			}
		}
	}
	return nil
}

func (s *memoryCacheService) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok {
		return "", nil
	}
	if item.isExpired(s.now()) {
		delete(s.data, key)
		return "", nil
	}
	return item.value, nil
}

func (s *memoryCacheService) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if ok && item.isExpired(s.now()) {
		delete(s.data, key)
		return false, nil
	}
	return ok, nil
}

func (s *memoryCacheService) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}
