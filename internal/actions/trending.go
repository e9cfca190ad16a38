package actions

import (
	"context"
	"log/slog"

	"kiln-plugin/internal/config"
	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/format"
	"kiln-plugin/pkg/plugin"
)

// TrendingAgentsName 是热门 Agent 动作的名称。
const TrendingAgentsName = "COOKIE_GET_TRENDING"

const trendingErrorPrefix = "Error fetching Trending Agents: "

// TrendingAgents 查询近七天热门的 AI Agent。
type TrendingAgents struct {
	descriptor
	deps Dependencies
}

// NewTrendingAgents 创建热门 Agent 动作。
func NewTrendingAgents(deps Dependencies) *TrendingAgents {
	return &TrendingAgents{
		descriptor: descriptor{
			name:         TrendingAgentsName,
			description:  "Get trending AI agents",
			similes:      []string{"TWITTER_AGENT", "BEST_AI_AGENT"},
			examples:     trendingExamples,
			capabilities: []plugin.Capability{plugin.CapabilityNetwork},
		},
		deps: deps.withDefaults(),
	}
}

// Validate 检查 Cookie 凭证。
func (a *TrendingAgents) Validate(_ context.Context, rt plugin.Runtime) error {
	_, err := config.ValidateCookieConfig(rt)
	return err
}

// Handle 实现 plugin.Action。响应缺少 ok.data 时不回调，直接返回 SHAPE 错误。
func (a *TrendingAgents) Handle(ctx context.Context, rt plugin.Runtime, _ plugin.Message, cb plugin.Callback) (bool, error) {
	cfg, err := config.ValidateCookieConfig(rt)
	if err != nil {
		return false, err
	}
	log := invocationLogger(ctx, a.deps.Logger, a.name)

	resp, err := a.deps.Cookie(cfg.APIKey).GetTradingAgents(ctx)
	if err == nil && (resp == nil || resp.OK == nil || resp.OK.Data == nil) {
		err = xerrors.New(xerrors.CodeShape, "trending agents response is missing ok.data")
	}
	switch {
	case xerrors.HasCode(err, xerrors.CodeShape):
		log.Warn("trending agents response has an unexpected shape", slog.Any("error", err))
		return false, err
	case err != nil:
		log.Error("failed to fetch trending agents", slog.Any("error", err))
		return false, deliverError(cb, trendingErrorPrefix, err)
	}
	log.Info("trending agents fetched", slog.Int("agents", len(resp.OK.Data)))

	if err := deliver(cb, format.TrendingAgents(resp.OK.Data)); err != nil {
		return false, err
	}
	return true, nil
}
