package actions

import "kiln-plugin/pkg/plugin"

const (
	userPlaceholder  = "{{user1}}"
	agentPlaceholder = "{{agent}}"
)

func askFor(action, question string) []plugin.Example {
	return []plugin.Example{
		{User: userPlaceholder, Text: question},
		{User: agentPlaceholder, Text: "", Action: action},
	}
}

var stakingExamples = [][]plugin.Example{
	askFor(StakingStatisticsName, "I wonder what are the most profitable staking options today?"),
	askFor(StakingStatisticsName, "Can you give information about the APY of various blockchains?"),
}

var vaultExamples = [][]plugin.Example{
	askFor(VaultsName, "What are Kiln's Vaults addresses?"),
	askFor(VaultsName, "How can i use Kiln's staking solutions?"),
	{
		{User: userPlaceholder, Text: "Pick one vault and transfer my funds."},
		{User: agentPlaceholder, Text: "Sure!"},
	},
}

var trendingExamples = [][]plugin.Example{
	askFor(TrendingAgentsName, "Who are the best AI Agent at the moment?"),
	askFor(TrendingAgentsName, "On which twitter agent should I invest?"),
}
