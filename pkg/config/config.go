/*
 * @Description: 配置加载
 * @Author: inkwell
 * @Date: 2026-03-02 09:58:36
 * @LastEditTime: 2026-09-21 15:47:02
 * @LastEditors: inkwell
 */

// Package config 统一配置管理：data/conf.ini 提供默认值，环境变量覆盖。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

const (
	DefaultFilePath = "data/conf.ini"
	EnvPrefix       = "INKWELL"
)

const (
	KeyServerPort   = "System.Port"
	KeyServerDebug  = "System.Debug"
	KeyServerIDSeed = "System.IDSeed"
	KeyLogJSON      = "System.LogJSON"

	KeyDBType         = "Database.Type"
	KeyDBHost         = "Database.Host"
	KeyDBPort         = "Database.Port"
	KeyDBUser         = "Database.User"
	KeyDBPassword     = "Database.Password"
	KeyDBName         = "Database.Name"
	KeyDBPath         = "Database.Path"
	KeyDBMaxOpenConns = "Database.MaxOpenConns"
	KeyDBDebug        = "Database.Debug"

	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyJWTSecret     = "JWT.Secret"
	KeyJWTAccessTTL  = "JWT.AccessTTL"
	KeyJWTRefreshTTL = "JWT.RefreshTTL"
)

// 定义所有已知的配置键，只有这些键会从环境变量中读取
var allKeys = []string{
	KeyServerPort, KeyServerDebug, KeyServerIDSeed, KeyLogJSON,
	KeyDBType, KeyDBHost, KeyDBPort, KeyDBUser, KeyDBPassword, KeyDBName, KeyDBPath, KeyDBMaxOpenConns, KeyDBDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyJWTSecret, KeyJWTAccessTTL, KeyJWTRefreshTTL,
}

// 内部默认值，在配置文件和环境变量都缺省时生效
var defaults = map[string]any{
	KeyServerPort:     8091,
	KeyServerDebug:    false,
	KeyLogJSON:        false,
	KeyDBType:         "sqlite",
	KeyDBPath:         "data/inkwell.db",
	KeyDBMaxOpenConns: 20,
	KeyRedisDB:        0,
	KeyJWTAccessTTL:   "15m",
	KeyJWTRefreshTTL:  "720h",
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认路径加载配置
func NewConfig() (*Config, error) {
	return Load(DefaultFilePath)
}

// Load 手动加载配置：先读 ini 文件，再用环境变量覆盖。
// 文件不存在时会写出一份默认配置。
func Load(filePath string) (*Config, error) {
	vp := viper.New()
	for k, v := range defaults {
		vp.SetDefault(k, v)
	}

	// --- 步骤 1: 使用 go-ini 从文件加载配置 ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("解析配置文件 '%s' 失败: %w", filePath, err)
		}
		slog.Info("未找到配置文件，将创建默认配置文件", "path", filePath)
		if err := createDefaultConfigFile(filePath); err != nil {
			slog.Warn("⚠️ 创建默认配置文件失败，将仅依赖环境变量或内部默认值", "error", err)
		} else if iniCfg, err = ini.Load(filePath); err != nil {
			slog.Warn("⚠️ 重新加载配置文件失败", "error", err)
			iniCfg = nil
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值视为未配置，保留默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		slog.Debug("已从配置文件加载配置", "path", filePath)
	}

	// --- 步骤 2: 检查并覆盖环境变量，例如 INKWELL_DATABASE_HOST ---
	envReplacer := strings.NewReplacer(".", "_")
	for _, key := range allKeys {
		envVarName := fmt.Sprintf("%s_%s", EnvPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			slog.Info("发现环境变量，已覆盖配置", "env", envVarName, "key", key)
		}
	}

	return &Config{vp: vp}, nil
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// GetDuration 读取形如 "15m"、"720h" 的时长
func (c *Config) GetDuration(key string) time.Duration {
	return c.vp.GetDuration(key)
}

// Set 覆盖单个配置项，供命令行参数使用
func (c *Config) Set(key string, value any) {
	c.vp.Set(key, value)
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	// 默认使用 SQLite，JWT 密钥必须由部署者填写
	defaultConfig := `[System]
Port = 8091
Debug = false
LogJSON = false

[Database]
Type = sqlite
Path = data/inkwell.db
Debug = false

# 留空 Addr 时，已注销令牌记录在进程内存中
[Redis]
Addr =
Password =
DB = 0

[JWT]
Secret =
AccessTTL = 15m
RefreshTTL = 720h
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
