/*
 * @Description: 数据库连接初始化
 * @Author: inkwell
 * @Date: 2026-03-02 11:30:00
 * @LastEditTime: 2026-07-14 22:41:57
 * @LastEditors: inkwell
 */

// Package database 负责创建 gorm 连接（支持 sqlite / mysql / postgres）和 Redis 客户端。
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/pkg/config"
)

// Options 描述一次数据库连接所需的全部参数
type Options struct {
	Type         string // sqlite / mysql / postgres
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	Path         string // sqlite 文件路径
	MaxOpenConns int
	Debug        bool
	Logger       *slog.Logger
}

// OptionsFromConfig 从配置中读取连接参数
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Type:         cfg.GetString(config.KeyDBType),
		Host:         cfg.GetString(config.KeyDBHost),
		Port:         cfg.GetString(config.KeyDBPort),
		User:         cfg.GetString(config.KeyDBUser),
		Password:     cfg.GetString(config.KeyDBPassword),
		Name:         cfg.GetString(config.KeyDBName),
		Path:         cfg.GetString(config.KeyDBPath),
		MaxOpenConns: cfg.GetInt(config.KeyDBMaxOpenConns),
		Debug:        cfg.GetBool(config.KeyDBDebug),
		Logger:       logger,
	}
}

// dialector 根据数据库类型构造 gorm 方言，sqlite 只允许单连接
func (o Options) dialector() (gorm.Dialector, int, error) {
	openConns := o.MaxOpenConns
	if openConns <= 0 {
		openConns = 20
	}

	switch strings.ToLower(o.Type) {
	case "mysql", "mariadb":
		if o.User == "" || o.Host == "" || o.Port == "" || o.Name == "" {
			return nil, 0, fmt.Errorf("MySQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			o.User, o.Password, o.Host, o.Port, o.Name)
		return mysql.Open(dsn), openConns, nil
	case "postgres", "postgresql":
		if o.User == "" || o.Host == "" || o.Port == "" || o.Name == "" {
			return nil, 0, fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			o.Host, o.Port, o.User, o.Password, o.Name)
		return postgres.Open(dsn), openConns, nil
	case "", "sqlite", "sqlite3":
		path := o.Path
		if path == "" {
			path = filepath.Join("data", "inkwell.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, 0, fmt.Errorf("无法创建 SQLite 数据目录: %w", err)
		}
		dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", path)
		return sqlite.Open(dsn), 1, nil
	}
	return nil, 0, fmt.Errorf("不支持的数据库类型: %s (支持: mysql/mariadb, postgres, sqlite)", o.Type)
}

// Open 创建 gorm 连接并设置连接池。唯一约束冲突会被翻译成 gorm.ErrDuplicatedKey。
func Open(o Options) (*gorm.DB, error) {
	dial, openConns, err := o.dialector()
	if err != nil {
		return nil, err
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logOpts := []slogGorm.Option{slogGorm.WithLogger(logger)}
	if o.Debug {
		logOpts = append(logOpts, slogGorm.WithTraceAll())
	}

	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 slogGorm.New(logOpts...),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败 (类型: %s): %w", o.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(openConns)
	sqlDB.SetMaxOpenConns(openConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("无法 Ping 通数据库: %w", err)
	}

	logger.Info("✅ 数据库连接池创建成功", "type", o.Type, "max_open_conns", openConns)
	return db, nil
}

// NewGormDB 根据配置创建数据库连接
func NewGormDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	return Open(OptionsFromConfig(cfg, logger))
}
