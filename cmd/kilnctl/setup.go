package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"kiln-plugin/internal/config"
	"kiln-plugin/internal/kilnplugin"
	"kiln-plugin/internal/observability/metrics"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

// loadConfig 读取 --config 指定的文件，未指定时使用默认配置，并应用 --set 覆盖。
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := strings.TrimSpace(ctx.String(configFlag.Name)); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	overrides, err := parseOverrides(ctx.StringSlice(setFlag.Name))
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if cfg.Settings.Overrides == nil {
			cfg.Settings.Overrides = make(map[string]string, len(overrides))
		}
		for k, v := range overrides {
			cfg.Settings.Overrides[k] = v
		}
	}

	if err := logger.Init(logger.Config{
		Level:       ctx.String(logLevelFlag.Name),
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.Outputs,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected KEY=VALUE", pair)
		}
		out[key] = value
	}
	return out, nil
}

func newManager(ctx *cli.Context) (*plugin.Manager, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return newManagerFromConfig(cfg)
}

func newManagerFromConfig(cfg *config.Config) (*plugin.Manager, error) {
	manager := plugin.NewManager(
		plugin.WithPolicy(cfg.Policy),
		plugin.WithLogger(logger.Named("plugin")),
		plugin.WithObserver(metrics.ObserveAction),
	)
	if err := manager.Register(kilnplugin.New(kilnplugin.OptionsFromConfig(cfg.Upstream, logger.Named("kiln-plugin")))); err != nil {
		return nil, err
	}
	return manager, nil
}

func contextWithTimeout(ctx *cli.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx.Context)
	}
	return context.WithTimeout(ctx.Context, timeout)
}
