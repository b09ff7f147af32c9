/*
 * @Description: 应用组装：加载配置、初始化存储与服务、启动 HTTP 服务
 * @Author: inkwell
 * @Date: 2026-03-02 10:12:40
 * @LastEditTime: 2026-09-21 16:03:11
 * @LastEditors: inkwell
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	"github.com/inkwell-cms/inkwell/internal/infra/persistence/database"
	"github.com/inkwell-cms/inkwell/internal/infra/persistence/gormrepo"
	"github.com/inkwell-cms/inkwell/internal/infra/router"
	"github.com/inkwell-cms/inkwell/internal/pkg/logger"
	"github.com/inkwell-cms/inkwell/internal/pkg/version"
	"github.com/inkwell-cms/inkwell/pkg/config"
	"github.com/inkwell-cms/inkwell/pkg/domain/repository"
	article_handler "github.com/inkwell-cms/inkwell/pkg/handler/article"
	auth_handler "github.com/inkwell-cms/inkwell/pkg/handler/auth"
	comment_handler "github.com/inkwell-cms/inkwell/pkg/handler/comment"
	moderation_handler "github.com/inkwell-cms/inkwell/pkg/handler/moderation"
	user_handler "github.com/inkwell-cms/inkwell/pkg/handler/user"
	version_handler "github.com/inkwell-cms/inkwell/pkg/handler/version"
	"github.com/inkwell-cms/inkwell/pkg/idgen"
	"github.com/inkwell-cms/inkwell/pkg/response"
	article_service "github.com/inkwell-cms/inkwell/pkg/service/article"
	"github.com/inkwell-cms/inkwell/pkg/service/auth"
	comment_service "github.com/inkwell-cms/inkwell/pkg/service/comment"
	moderation_service "github.com/inkwell-cms/inkwell/pkg/service/moderation"
	"github.com/inkwell-cms/inkwell/pkg/service/user"
	"github.com/inkwell-cms/inkwell/pkg/service/utility"
)

// Core 是命令行子命令共用的基础组件：配置、日志和已迁移的数据库
type Core struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Repos  repository.Repositories
	TxMgr  repository.TransactionManager
}

// NewCore 加载配置、初始化日志并连接数据库，表结构会自动迁移
func NewCore(configPath string) (*Core, func(), error) {
	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	debug := cfg.GetBool(config.KeyServerDebug)
	log := logger.Setup(logger.Config{Debug: debug, JSON: cfg.GetBool(config.KeyLogJSON)})

	// --- Phase 2: 初始化数据库 ---
	db, err := database.NewGormDB(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接失败: %w", err)
	}
	cleanup := func() {
		log.Info("执行清理操作：关闭数据库连接...")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := gormrepo.AutoMigrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return &Core{
		Config: cfg,
		Logger: log,
		DB:     db,
		Repos:  gormrepo.NewRepositories(db),
		TxMgr:  gormrepo.NewTransactionManager(db),
	}, cleanup, nil
}

// UserService 供 create-admin 等命令直接使用
func (c *Core) UserService() user.UserService {
	return user.NewUserService(c.Repos.User, c.TxMgr, c.Logger)
}

// App 结构体，用于封装应用的所有核心组件
type App struct {
	*Core
	engine      *gin.Engine
	server      *http.Server
	redisClient *redis.Client
	cacheSvc    utility.CacheService
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp(configPath string) (*App, func(), error) {
	core, coreCleanup, err := NewCore(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, log := core.Config, core.Logger
	debug := cfg.GetBool(config.KeyServerDebug)
	response.SetDebug(debug)

	// --- Phase 3: 缓存与公共 ID ---
	// Redis 不可用时自动降级到内存缓存
	redisClient := database.NewRedisClient(context.Background(), cfg, log)
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient, log)

	idSeed := cfg.GetString(config.KeyServerIDSeed)
	if idSeed == "" {
		log.Warn("⚠️ 未配置 System.IDSeed，公共ID使用默认字母表")
	}
	encoder, err := idgen.New(idSeed)
	if err != nil {
		coreCleanup()
		return nil, nil, err
	}

	// --- Phase 4: 初始化业务服务 ---
	repos := core.Repos
	userSvc := user.NewUserService(repos.User, core.TxMgr, log)
	tokenSvc, err := auth.NewTokenService(repos.User, cacheSvc, encoder, cfg, log)
	if err != nil {
		coreCleanup()
		return nil, nil, err
	}
	authSvc := auth.NewAuthService(userSvc, tokenSvc, log)
	articleSvc := article_service.NewService(repos.Article, repos.User, core.TxMgr, log)
	commentSvc := comment_service.NewService(repos.Comment, repos.Article, repos.User, core.TxMgr, log)
	moderationSvc := moderation_service.NewService(repos.Moderation, repos.User, repos.Article, repos.Comment, log)

	// --- Phase 5: 初始化接入层 ---
	mw := middleware.NewMiddleware(tokenSvc, log)

	appRouter := router.NewRouter(
		auth_handler.NewAuthHandler(authSvc, encoder),
		user_handler.NewUserHandler(userSvc, encoder),
		article_handler.NewHandler(articleSvc, commentSvc, encoder),
		comment_handler.NewHandler(commentSvc, encoder),
		moderation_handler.NewHandler(moderationSvc, encoder),
		version_handler.NewHandler(),
		mw,
	)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics(), middleware.Cors())
	appRouter.Setup(engine)

	app := &App{
		Core:        core,
		engine:      engine,
		redisClient: redisClient,
		cacheSvc:    cacheSvc,
	}

	cleanup := func() {
		if redisClient != nil {
			log.Info("关闭 Redis 连接...")
			_ = redisClient.Close()
		}
		coreCleanup()
	}
	return app, cleanup, nil
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

// PrintBanner 打印启动信息
func (a *App) PrintBanner() {
	a.Logger.Info("--------------------------------------------------------")
	a.Logger.Info(" Inkwell 内容审核平台", "version", version.Get().String())
	a.Logger.Info(" 缓存实现", "type", utility.GetCacheServiceType(a.cacheSvc))
	a.Logger.Info("--------------------------------------------------------")
}

// Run 启动 HTTP 服务，直到 ctx 被取消后优雅退出
func (a *App) Run(ctx context.Context) error {
	port := a.Config.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("应用程序启动成功", "port", port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("正在关闭 HTTP 服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	return nil
}
