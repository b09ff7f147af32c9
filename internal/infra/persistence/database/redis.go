/*
 * @Description: Redis 客户端初始化
 * @Author: inkwell
 * @Date: 2026-03-02 11:45:12
 * @LastEditTime: 2026-03-02 11:45:12
 * @LastEditors: inkwell
 */
package database

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-cms/inkwell/pkg/config"
)

// NewRedisClient 返回 Redis 客户端，未配置或连接失败时返回 nil，由上层降级到内存实现
func NewRedisClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	addr := cfg.GetString(config.KeyRedisAddr)
	if addr == "" {
		logger.Warn("⚠️ Redis 地址未配置，已注销令牌将保存在内存中")
		return nil
	}

	db := cfg.GetInt(config.KeyRedisDB)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.GetString(config.KeyRedisPassword),
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("⚠️ 连接 Redis 失败，将使用内存实现", "addr", addr, "db", db, "error", err)
		_ = rdb.Close()
		return nil
	}

	logger.Info("✅ 成功连接到 Redis", "addr", addr, "db", db)
	return rdb
}
