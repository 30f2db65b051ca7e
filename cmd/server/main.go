package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/api/handler"
	"tutorbook/notifications/internal/api/middleware"
	"tutorbook/notifications/internal/api/router"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/repository"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/internal/transport"
	"tutorbook/notifications/pkg/database"
	"tutorbook/notifications/pkg/jwt"
	applogger "tutorbook/notifications/pkg/logger"
	"tutorbook/notifications/pkg/redis"
)

func main() {
	// 1. 加载配置（.env 可选）
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("TUTORBOOK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if _, err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		revoked service.RevocationStore
		limiter middleware.WindowLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，凭证吊销与分布式限流将降级", zap.Error(err))
	} else {
		defer rdb.Close()
		revoked, limiter = rdb, rdb
	}

	// 5. 通知通道
	repo := repository.NewRepository(db)
	senders, err := transport.NewSenders(context.Background(), cfg, repo.PushSubscription, logger)
	if err != nil {
		logger.Fatal("初始化通知通道失败", zap.Error(err))
	}
	formatter, err := notify.NewFormatter(cfg.App.Name, cfg.App.URL)
	if err != nil {
		logger.Fatal("加载通知模板失败", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(senders, logger)

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, repo, jwtMgr, revoked, formatter, dispatcher, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, svc.Auth, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	// 批量提醒逐条发送短信，写超时放宽
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
