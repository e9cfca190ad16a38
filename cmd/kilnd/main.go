package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"kiln-plugin/internal/config"
	"kiln-plugin/internal/dispatch"
	"kiln-plugin/internal/kilnplugin"
	"kiln-plugin/internal/observability/metrics"
	"kiln-plugin/internal/settings"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

// main 是 Kiln 插件守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("kilnd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("KILN_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "kiln.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
	}); err != nil {
		return err
	}
	defer logger.Sync()
	daemonLog := logger.Named("kilnd")

	sources, err := settings.FromConfig(ctx, cfg.Settings, logger.Named("settings"))
	if err != nil {
		return err
	}
	defer sources.Close()

	manager := plugin.NewManager(
		plugin.WithPolicy(cfg.Policy),
		plugin.WithLogger(logger.Named("plugin")),
		plugin.WithObserver(metrics.ObserveAction),
	)
	if err := manager.Register(kilnplugin.New(kilnplugin.OptionsFromConfig(cfg.Upstream, logger.Named("kiln-plugin")))); err != nil {
		return err
	}
	for _, action := range manager.Actions() {
		if err := action.Validate(ctx, sources); err != nil {
			daemonLog.Warn("action is not usable with the current settings", slog.String("action", action.Name()), slog.Any("error", err))
		}
	}

	transport, err := dispatch.Open(ctx, cfg.Dispatch)
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			daemonLog.Error("关闭调用队列失败", slog.Any("error", err))
		}
	}()

	if cfg.Metrics.Address != "" {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Metrics.Address); err != nil && !errors.Is(err, context.Canceled) {
				daemonLog.Error("指标服务异常退出", slog.Any("error", err))
			}
		}()
	}

	if transport.Driver == "memory" {
		daemonLog.Warn("memory dispatch driver only serves in-process requests")
		go drainReplies(ctx, transport.Replies, daemonLog)
	}

	worker := dispatch.NewWorker(manager, sources, transport.Requests, transport.Replies,
		dispatch.WithWorkerCount(cfg.Dispatch.Workers),
		dispatch.WithWorkerLogger(logger.Named("dispatch")),
	)
	daemonLog.Info("kilnd started",
		slog.String("dispatch", transport.Driver),
		slog.Int("workers", cfg.Dispatch.Workers),
		slog.Any("settings_sources", sources.Names()))

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	daemonLog.Info("kilnd stopped")
	return nil
}

// drainReplies 在没有外部消费者时把回复写入日志。
func drainReplies(ctx context.Context, replies dispatch.Consumer, daemonLog *slog.Logger) {
	_ = replies.Consume(ctx, 1, func(_ context.Context, body []byte) error {
		daemonLog.Info("invocation reply", slog.String("reply", string(body)))
		return nil
	})
}
