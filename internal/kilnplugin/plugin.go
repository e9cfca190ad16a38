// Package kilnplugin 把动作、客户端和配置组装成宿主可以注册的插件。
package kilnplugin

import (
	"log/slog"
	"net/http"
	"time"

	"kiln-plugin/internal/actions"
	"kiln-plugin/internal/config"
	"kiln-plugin/internal/cookie"
	"kiln-plugin/internal/kiln"
	"kiln-plugin/internal/upstream"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

const (
	// ID 是插件在宿主中的标识。
	ID          = "kiln"
	description = "Kiln plugin for Eliza"
	// Version 是插件版本。
	Version = "0.1.0"
)

// Options 控制上游访问方式。零值即为默认配置。
type Options struct {
	KilnBaseURL   string
	CookieBaseURL string
	// Timeout 是单次上游请求的超时。
	Timeout time.Duration
	// Concurrency 限制质押统计并发请求数。
	Concurrency int
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// OptionsFromConfig 从守护进程配置构建插件选项。
func OptionsFromConfig(cfg config.UpstreamConfig, log *slog.Logger) Options {
	return Options{
		KilnBaseURL:   cfg.KilnBaseURL,
		CookieBaseURL: cfg.CookieBaseURL,
		Timeout:       cfg.Timeout(),
		Concurrency:   cfg.Concurrency,
		Logger:        log,
	}
}

// Plugin 是 Kiln 插件的实现。
type Plugin struct {
	actions []plugin.Action
}

// New 创建插件，所有动作共享同一个 HTTP 客户端。
func New(opts Options) *Plugin {
	log := opts.Logger
	if log == nil {
		log = logger.Named("kiln-plugin")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(opts.Timeout)
	}

	deps := actions.Dependencies{
		Kiln: func(apiKey string) actions.StakingSource {
			return kiln.NewClient(kiln.Config{
				APIKey:      apiKey,
				BaseURL:     opts.KilnBaseURL,
				Concurrency: opts.Concurrency,
				HTTPClient:  httpClient,
				Logger:      log.With(slog.String("component", "kiln")),
			})
		},
		Cookie: func(apiKey string) actions.TrendingSource {
			return cookie.NewClient(cookie.Config{
				APIKey:     apiKey,
				BaseURL:    opts.CookieBaseURL,
				HTTPClient: httpClient,
				Logger:     log.With(slog.String("component", "cookie")),
			})
		},
		Logger: log.With(slog.String("component", "actions")),
	}
	return &Plugin{actions: actions.All(deps)}
}

// Info 实现 plugin.Plugin。
func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		ID:          ID,
		Name:        ID,
		Description: description,
		Version:     Version,
		Settings:    config.SettingsSchema(),
	}
}

// Actions 实现 plugin.Plugin。
func (p *Plugin) Actions() []plugin.Action {
	return append([]plugin.Action(nil), p.actions...)
}
