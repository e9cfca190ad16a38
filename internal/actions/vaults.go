package actions

import (
	"context"
	"log/slog"

	"kiln-plugin/internal/config"
	"kiln-plugin/internal/format"
	"kiln-plugin/internal/vault"
	"kiln-plugin/pkg/plugin"
)

// VaultsName 是金库列表动作的名称。
const VaultsName = "KILN_GET_VAULT"

const vaultsErrorPrefix = "Error displaying Kiln's vaults: "

// Vaults 返回固定的金库地址列表，不访问网络。
type Vaults struct {
	descriptor
	deps Dependencies
}

// NewVaults 创建金库列表动作。
func NewVaults(deps Dependencies) *Vaults {
	return &Vaults{
		descriptor: descriptor{
			name:        VaultsName,
			description: "Get all Kiln's vaults",
			similes:     []string{"VAULT", "KILN STAKING SOLUTIONS", "ERC-4626"},
			examples:    vaultExamples,
		},
		deps: deps.withDefaults(),
	}
}

// Validate 检查 Kiln 凭证。
func (a *Vaults) Validate(_ context.Context, rt plugin.Runtime) error {
	_, err := config.ValidateKilnConfig(rt)
	return err
}

// Handle 实现 plugin.Action。
func (a *Vaults) Handle(ctx context.Context, rt plugin.Runtime, _ plugin.Message, cb plugin.Callback) (bool, error) {
	if _, err := config.ValidateKilnConfig(rt); err != nil {
		return false, err
	}
	log := invocationLogger(ctx, a.deps.Logger, a.name)

	list := a.deps.Vaults()
	if err := vault.ValidateAll(list); err != nil {
		log.Error("vault listing is invalid", slog.Any("error", err))
		return false, deliverError(cb, vaultsErrorPrefix, err)
	}

	if err := deliver(cb, format.Vaults(list)); err != nil {
		return false, err
	}
	return true, nil
}
