package actions

import (
	"context"
	"log/slog"

	"kiln-plugin/internal/config"
	"kiln-plugin/internal/format"
	"kiln-plugin/pkg/plugin"
)

// StakingStatisticsName 是质押统计动作的名称。
const StakingStatisticsName = "KILN_GET_STAKING_STATISTICS"

const stakingErrorPrefix = "Error fetching Staking Statistics: "

// StakingStatistics 查询各链的验证者数量和年化收益。
type StakingStatistics struct {
	descriptor
	deps Dependencies
}

// NewStakingStatistics 创建质押统计动作。
func NewStakingStatistics(deps Dependencies) *StakingStatistics {
	return &StakingStatistics{
		descriptor: descriptor{
			name:         StakingStatisticsName,
			description:  "Get statistics about staking revenue on different blockchains",
			similes:      []string{"STAKING_STATISTICS", "STAKING", "APY", "ANNUAL_PERCENTAGE_YIELD"},
			examples:     stakingExamples,
			capabilities: []plugin.Capability{plugin.CapabilityNetwork},
		},
		deps: deps.withDefaults(),
	}
}

// Validate 检查 Kiln 凭证。
func (a *StakingStatistics) Validate(_ context.Context, rt plugin.Runtime) error {
	_, err := config.ValidateKilnConfig(rt)
	return err
}

// Handle 实现 plugin.Action。
func (a *StakingStatistics) Handle(ctx context.Context, rt plugin.Runtime, _ plugin.Message, cb plugin.Callback) (bool, error) {
	cfg, err := config.ValidateKilnConfig(rt)
	if err != nil {
		return false, err
	}
	log := invocationLogger(ctx, a.deps.Logger, a.name)

	stats, err := a.deps.Kiln(cfg.APIKey).GetStakingStatistics(ctx)
	if err != nil {
		log.Error("failed to fetch staking statistics", slog.Any("error", err))
		return false, deliverError(cb, stakingErrorPrefix, err)
	}
	log.Info("staking statistics fetched", slog.Int("chains", len(stats)))

	if err := deliver(cb, format.StakingStatistics(stats)); err != nil {
		return false, err
	}
	return true, nil
}
