// Package version 提供构建版本信息，优先使用 ldflags 注入的值，其次读取 Go 构建信息。
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// 这些变量将在构建时通过 ldflags 注入
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo 包含构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// vcsSetting 从构建信息中读取 vcs.* 设置
func vcsSetting(info *debug.BuildInfo, key string) string {
	if info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Get 汇总当前二进制的版本信息
func Get() BuildInfo {
	info, _ := debug.ReadBuildInfo()
	b := BuildInfo{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}

	if b.Version == "dev" && info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	if b.Commit == "unknown" {
		if rev := vcsSetting(info, "vcs.revision"); rev != "" {
			b.Commit = rev[:min(7, len(rev))]
		}
	}
	if b.Date == "unknown" {
		if t := vcsSetting(info, "vcs.time"); t != "" {
			b.Date = t
		}
	}
	return b
}

// String 返回形如 "v1.0.0, commit abc1234, built at ..." 的版本字符串
func (b BuildInfo) String() string {
	parts := []string{b.Version}
	if b.Commit != "unknown" {
		parts = append(parts, fmt.Sprintf("commit %s", b.Commit))
	}
	if b.Date != "unknown" {
		parts = append(parts, fmt.Sprintf("built at %s", b.Date))
	}
	return strings.Join(parts, ", ")
}
