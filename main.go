/*
 * @Description: 命令行入口，注册 serve、migrate、admin 子命令
 * @Author: inkwell
 * @Date: 2026-03-02 09:40:05
 * @LastEditTime: 2026-08-30 11:27:46
 * @LastEditors: inkwell
 */
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inkwell-cms/inkwell/cmd/server"
	"github.com/inkwell-cms/inkwell/internal/pkg/version"
	"github.com/inkwell-cms/inkwell/pkg/config"
)

// @title           Inkwell API
// @version         1.0
// @description     Inkwell 内容审核平台接口文档

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 在请求头中添加 Bearer Token，格式为: Bearer {token}
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "inkwell",
		Short:        "Inkwell 内容审核平台",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFilePath, "配置文件路径，不存在时自动生成")

	cmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		createAdminCmd(&configPath),
		versionCmd(),
	)
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := server.NewApp(*configPath)
			if err != nil {
				return fmt.Errorf("应用初始化失败: %w", err)
			}
			defer cleanup()

			app.PrintBanner()
			return app.Run(cmd.Context())
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新数据库表结构",
		RunE: func(_ *cobra.Command, _ []string) error {
			core, cleanup, err := server.NewCore(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			core.Logger.Info("✅ 数据库迁移完成")
			return nil
		},
	}
}

func createAdminCmd(configPath *string) *cobra.Command {
	var email, password, nickname string

	c := &cobra.Command{
		Use:   "create-admin",
		Short: "创建一个已通过审核的管理员账户",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, cleanup, err := server.NewCore(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := core.UserService().CreateAdministrator(cmd.Context(), email, password, nickname)
			if err != nil {
				return fmt.Errorf("创建管理员失败: %w", err)
			}
			core.Logger.Info("✅ 管理员已创建", "user_id", u.ID, "email", u.Email)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "管理员邮箱")
	c.Flags().StringVar(&password, "password", "", "管理员密码")
	c.Flags().StringVar(&nickname, "nickname", "", "管理员昵称")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("nickname")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
