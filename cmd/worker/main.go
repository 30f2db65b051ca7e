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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/event"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/repository"
	"tutorbook/notifications/internal/service"
	"tutorbook/notifications/internal/transport"
	"tutorbook/notifications/pkg/database"
	applogger "tutorbook/notifications/pkg/logger"
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
	logger, err := applogger.NewLogger(&cfg.Log, "worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("触发器进程启动中...",
		zap.String("source", cfg.Events.Source),
		zap.String("quarantine", cfg.Events.Quarantine),
	)

	// 3. 连接数据库（迁移由 server 负责）
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	// 4. 通知通道与触发器
	repo := repository.NewRepository(db)
	senders, err := transport.NewSenders(ctx, cfg, repo.PushSubscription, logger)
	if err != nil {
		logger.Fatal("初始化通知通道失败", zap.Error(err))
	}
	formatter, err := notify.NewFormatter(cfg.App.Name, cfg.App.URL)
	if err != nil {
		logger.Fatal("加载通知模板失败", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(senders, logger)
	triggers := service.NewTriggerService(repo, formatter, dispatcher, cfg.App.AdminPhone, logger)
	if cfg.App.AdminPhone == "" {
		logger.Warn("未配置 app.admin_phone，反馈通知将被丢弃")
	}

	// 5. 事件来源与隔离区
	source, err := event.NewSource(ctx, &cfg.Events)
	if err != nil {
		logger.Fatal("初始化事件来源失败", zap.Error(err))
	}
	defer source.Close()

	quarantine, err := event.NewQuarantine(ctx, &cfg.Events, logger)
	if err != nil {
		logger.Fatal("初始化隔离区失败", zap.Error(err))
	}
	defer quarantine.Close()

	consumer := event.NewConsumer(source, event.NewTriggerRouter(triggers, logger), quarantine, logger)

	// 6. 指标端点
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	metricsSrv := &http.Server{
		Addr:              cfg.Events.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 7. 运行直至收到关闭信号
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("指标服务已启动", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("指标服务异常: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("触发器进程异常退出", zap.Error(err))
	}
	logger.Info("触发器进程已关闭")
}
