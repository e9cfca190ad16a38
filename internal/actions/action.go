// Package actions 实现插件暴露给宿主的三个动作。
//
// 每次调用依次经过 校验 -> 查询 -> 渲染 -> 回调。校验失败直接返回给宿主；
// 查询或渲染失败转换为带 error 字段的回调内容。
package actions

import (
	"context"
	"log/slog"

	"kiln-plugin/internal/cookie"
	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/kiln"
	"kiln-plugin/internal/vault"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

// StakingSource 提供各链的质押统计。
type StakingSource interface {
	GetStakingStatistics(ctx context.Context) ([]kiln.NetworkStats, error)
}

// TrendingSource 提供热门 Agent 列表。
type TrendingSource interface {
	GetTradingAgents(ctx context.Context) (*cookie.AgentsResponse, error)
}

// Dependencies 汇总动作依赖的外部组件。凭证在每次调用时重新读取，因此客户端通过工厂按需创建。
type Dependencies struct {
	Kiln   func(apiKey string) StakingSource
	Cookie func(apiKey string) TrendingSource
	Vaults func() []vault.Vault
	Logger *slog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = logger.Named("actions")
	}
	if d.Kiln == nil {
		log := d.Logger
		d.Kiln = func(apiKey string) StakingSource {
			return kiln.NewClient(kiln.Config{APIKey: apiKey, Logger: log})
		}
	}
	if d.Cookie == nil {
		log := d.Logger
		d.Cookie = func(apiKey string) TrendingSource {
			return cookie.NewClient(cookie.Config{APIKey: apiKey, Logger: log})
		}
	}
	if d.Vaults == nil {
		d.Vaults = vault.List
	}
	return d
}

// All 返回插件的全部动作。
func All(deps Dependencies) []plugin.Action {
	deps = deps.withDefaults()
	return []plugin.Action{
		NewStakingStatistics(deps),
		NewVaults(deps),
		NewTrendingAgents(deps),
	}
}

// descriptor 保存动作的静态描述信息。
type descriptor struct {
	name         string
	description  string
	similes      []string
	examples     [][]plugin.Example
	capabilities []plugin.Capability
}

func (d descriptor) Name() string        { return d.name }
func (d descriptor) Description() string { return d.description }

func (d descriptor) Similes() []string {
	return append([]string(nil), d.similes...)
}

func (d descriptor) Examples() [][]plugin.Example {
	out := make([][]plugin.Example, 0, len(d.examples))
	for _, conversation := range d.examples {
		out = append(out, append([]plugin.Example(nil), conversation...))
	}
	return out
}

func (d descriptor) Capabilities() []plugin.Capability {
	return append([]plugin.Capability(nil), d.capabilities...)
}

func invocationLogger(ctx context.Context, log *slog.Logger, action string) *slog.Logger {
	return log.With(slog.String("action", action), slog.String("invocation_id", plugin.InvocationID(ctx)))
}

// deliver 回调成功结果，cb 为空时什么都不做。
func deliver(cb plugin.Callback, text string) error {
	if cb == nil {
		return nil
	}
	return cb(plugin.Content{Text: text})
}

// deliverError 把失败转换成带 error 字段的回调内容。
func deliverError(cb plugin.Callback, prefix string, err error) error {
	if cb == nil {
		return nil
	}
	msg := xerrors.MessageOf(err)
	return cb(plugin.Content{
		Text:    prefix + msg,
		Content: &plugin.ErrorContent{Error: msg},
	})
}
