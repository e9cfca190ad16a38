// Package format 把上游数据渲染成返回给对话宿主的文本。
// 行分隔符统一为 \r\n。
package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"kiln-plugin/internal/cookie"
	"kiln-plugin/internal/kiln"
	"kiln-plugin/internal/vault"
)

const (
	lineBreak = "\r\n"
	// NotAvailable 是缺失数值的占位文本。
	NotAvailable = "N/A"

	stakingHeader   = "Here are statistics about staking on different chains :" + lineBreak
	noStakingData   = "No staking statistics are currently available."
	trendingHeader  = "Here are actual trending ai agents:" + lineBreak
	vaultsHeader    = "Here is a list of Kiln's Vaults :" + lineBreak + " "
	agentsSeparator = lineBreak + lineBreak
)

// StakingStatistics 渲染每条链的验证者数量和年化收益。结果为空时仍输出标题。
func StakingStatistics(stats []kiln.NetworkStats) string {
	if len(stats) == 0 {
		return stakingHeader + noStakingData
	}
	blocks := make([]string, 0, len(stats))
	for _, s := range stats {
		blocks = append(blocks, StakingBlock(s))
	}
	return stakingHeader + strings.Join(blocks, lineBreak)
}

// StakingBlock 渲染单条链。
func StakingBlock(s kiln.NetworkStats) string {
	return strings.ToUpper(s.Chain) + " :" + lineBreak +
		" - " + strconv.FormatFloat(s.Data.NbValidators, 'f', -1, 64) + " validators." + lineBreak +
		" - " + Fixed2(s.Data.NetworkGrossAPY) + "% of gross APY"
}

// TrendingAgents 渲染热门 Agent 列表，Agent 之间以空行分隔。
func TrendingAgents(agents []cookie.AgentRecord) string {
	blocks := make([]string, 0, len(agents))
	for _, agent := range agents {
		blocks = append(blocks, AgentBlock(agent))
	}
	return trendingHeader + strings.Join(blocks, agentsSeparator)
}

// AgentBlock 渲染单个 Agent 的指标。
func AgentBlock(agent cookie.AgentRecord) string {
	metrics := strings.Join([]string{
		"[MarketCap]=>" + Number(agent.MarketCap),
		"[Price]=>" + Number(agent.Price) + "$",
		"[Liquidity]=>" + Number(agent.Liquidity),
	}, " | ")

	return strings.Join([]string{
		"AI Agent Name : " + display(agent.AgentName) + " => @" + display(agent.TwitterHandle()),
		metrics,
		"Volume last 24 hours : " + Number(agent.Volume24Hours),
		"~Impression Count : " + Number(agent.Impressions()),
		"~Engagements Count : " + Number(agent.AverageEngagementsCount),
		"[Followers]=>" + display(agent.FollowersCount),
	}, lineBreak)
}

// Number 以两位小数输出数值，非数字时返回 N/A。
func Number(m cookie.Metric) string {
	v, ok := m.Number()
	if !ok {
		return NotAvailable
	}
	return Fixed2(v)
}

var hundred = big.NewFloat(100)

// Fixed2 以两位小数输出 v。按 v 的精确二进制值舍入，恰好位于中点时远离零进位，
// 因此 0.125 输出 0.13，而 1.005（实际略小于 1.005）输出 1.00。负数保留负号，包括 -0.00。
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	scaled := new(big.Float).SetPrec(256).SetFloat64(v)
	scaled.Mul(scaled, hundred)
	cents, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetInt(cents))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		cents.Add(cents, big.NewInt(1))
	}
	digits := cents.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// Vaults 渲染金库列表。
func Vaults(list []vault.Vault) string {
	lines := make([]string, 0, len(list))
	for _, v := range list {
		lines = append(lines, "- "+v.Protocol+" => "+v.Asset+" : "+v.Address)
	}
	return vaultsHeader + strings.Join(lines, lineBreak)
}

// display 按宿主模板的习惯展示任意 JSON 值，空值替换为 N/A。
func display(m cookie.Metric) string {
	if text, ok := m.Display(); ok {
		return text
	}
	return NotAvailable
}
