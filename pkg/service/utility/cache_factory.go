/*
 * @Description: 缓存服务工厂，Redis 不可用时回退到内存缓存
 * @Author: inkwell
 * @Date: 2026-03-11 21:10:26
 * @LastEditTime: 2026-03-11 21:10:26
 * @LastEditors: inkwell
 */
package utility

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// NewCacheServiceWithFallback 创建带有自动降级功能的缓存服务，redisClient 为 nil 时使用内存实现
func NewCacheServiceWithFallback(redisClient *redis.Client, logger *slog.Logger) CacheService {
	if redisClient == nil {
		logger.Info("🔄 使用内存缓存服务")
		return NewMemoryCacheService()
	}
	logger.Info("✅ 使用 Redis 缓存服务")
	return NewRedisCacheService(redisClient)
}

// CacheServiceType 缓存服务类型
type CacheServiceType string

const (
	CacheTypeRedis  CacheServiceType = "redis"
	CacheTypeMemory CacheServiceType = "memory"
)

// GetCacheServiceType 获取当前使用的缓存类型，用于启动日志
func GetCacheServiceType(svc CacheService) CacheServiceType {
	if _, ok := svc.(*redisCacheService); ok {
		return CacheTypeRedis
	}
	return CacheTypeMemory
}
