package format

import (
	"encoding/json"
	"strings"
	"testing"

	"kiln-plugin/internal/cookie"
	"kiln-plugin/internal/kiln"
	"kiln-plugin/internal/vault"
)

func TestStakingStatistics(t *testing.T) {
	stats := []kiln.NetworkStats{
		{Chain: "eth", Data: kiln.StatsData{NbValidators: 100, NetworkGrossAPY: 4.567}},
		{Chain: "sol", Data: kiln.StatsData{NbValidators: 1234, NetworkGrossAPY: 7}},
	}
	want := "Here are statistics about staking on different chains :\r\n" +
		"ETH :\r\n - 100 validators.\r\n - 4.57% of gross APY\r\n" +
		"SOL :\r\n - 1234 validators.\r\n - 7.00% of gross APY"
	if got := StakingStatistics(stats); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestStakingStatisticsFifteenChains(t *testing.T) {
	var stats []kiln.NetworkStats
	for _, symbol := range kiln.Symbols()[:15] {
		stats = append(stats, kiln.NetworkStats{Chain: symbol, Data: kiln.StatsData{NbValidators: 100, NetworkGrossAPY: 4.567}})
	}
	out := StakingStatistics(stats)
	for _, symbol := range kiln.Symbols()[:15] {
		block := strings.ToUpper(symbol) + " :\r\n - 100 validators.\r\n - 4.57% of gross APY"
		if !strings.Contains(out, block) {
			t.Fatalf("missing block for %s", symbol)
		}
	}
	if strings.Count(out, "validators.") != 15 {
		t.Fatalf("expected 15 blocks")
	}
}

func TestStakingStatisticsEmpty(t *testing.T) {
	got := StakingStatistics(nil)
	if got != "Here are statistics about staking on different chains :\r\nNo staking statistics are currently available." {
		t.Fatalf("unexpected empty output %q", got)
	}
}

func TestTrendingAgents(t *testing.T) {
	var agents []cookie.AgentRecord
	payload := `[
	  {"agentName":"aixbt","twitterUsernames":["aixbt_agent","other"],"marketCap":1000.456,"price":0.5,
	   "liquidity":20,"volume24Hours":3.14159,"averageImpressionsCount":12.345,"averageEngagementsCount":6,
	   "followersCount":450000},
	  {"price":null,"followersCount":0}
	]`
	if err := json.Unmarshal([]byte(payload), &agents); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := "Here are actual trending ai agents:\r\n" +
		"AI Agent Name : aixbt => @aixbt_agent\r\n" +
		"[MarketCap]=>1000.46 | [Price]=>0.50$ | [Liquidity]=>20.00\r\n" +
		"Volume last 24 hours : 3.14\r\n" +
		"~Impression Count : 12.35\r\n" +
		"~Engagements Count : 6.00\r\n" +
		"[Followers]=>450000" +
		"\r\n\r\n" +
		"AI Agent Name : N/A => @N/A\r\n" +
		"[MarketCap]=>N/A | [Price]=>N/A$ | [Liquidity]=>N/A\r\n" +
		"Volume last 24 hours : N/A\r\n" +
		"~Impression Count : N/A\r\n" +
		"~Engagements Count : N/A\r\n" +
		"[Followers]=>N/A"
	if got := TrendingAgents(agents); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestTrendingAgentsEmpty(t *testing.T) {
	if got := TrendingAgents(nil); got != "Here are actual trending ai agents:\r\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNumberFallback(t *testing.T) {
	cases := map[string]string{
		`null`:    "N/A",
		`"1.5"`:   "N/A",
		`true`:    "N/A",
		`{}`:      "N/A",
		`[1]`:     "N/A",
		`1.005e2`: "100.50",
		`0`:       "0.00",
		`-2.345`:  "-2.35",
		`0.125`:   "0.13",
		`2.625`:   "2.63",
		`4.125`:   "4.13",
		`1.375`:   "1.38",
		`-0.125`:  "-0.13",
		`1.005`:   "1.00",
		`0.015`:   "0.01",
	}
	for raw, want := range cases {
		var m cookie.Metric
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got := Number(m); got != want {
			t.Fatalf("Number(%s) = %q, want %q", raw, got, want)
		}
	}
	if Number(cookie.Metric{}) != "N/A" {
		t.Fatalf("absent metric should render N/A")
	}
}

func TestFixed2(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.125, "0.13"},
		{2.625, "2.63"},
		{0.005, "0.01"},
		{0.004, "0.00"},
		{-0.001, "-0.00"},
		{99.995, "100.00"},
		{123456789.5, "123456789.50"},
		{1e-9, "0.00"},
	}
	for _, c := range cases {
		if got := Fixed2(c.in); got != c.want {
			t.Fatalf("Fixed2(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStakingBlockRoundsTiesUp(t *testing.T) {
	got := StakingBlock(kiln.NetworkStats{Chain: "dot", Data: kiln.StatsData{NbValidators: 297, NetworkGrossAPY: 4.125}})
	if got != "DOT :\r\n - 297 validators.\r\n - 4.13% of gross APY" {
		t.Fatalf("unexpected block %q", got)
	}
}

func TestAgentBlockDisplaysLooseValues(t *testing.T) {
	cases := map[string][]string{
		`{"agentName":42,"twitterUsernames":"solo"}`: {"AI Agent Name : 42 => @N/A\r\n"},
		`{"agentName":"","twitterUsernames":[""]}`:   {"AI Agent Name : N/A => @N/A\r\n"},
		`{"followersCount":true}`:                    {"[Followers]=>true"},
		`{"followersCount":false}`:                   {"[Followers]=>N/A"},
		`{"followersCount":"12k"}`:                   {"[Followers]=>12k"},
		`{"followersCount":{"total":3}}`:             {"[Followers]=>[object Object]"},
		`{"followersCount":[1,2]}`:                   {"[Followers]=>1,2"},
		`{"followersCount":0,"agentName":0}`:         {"[Followers]=>N/A", "AI Agent Name : N/A"},
	}
	for raw, wants := range cases {
		var agent cookie.AgentRecord
		if err := json.Unmarshal([]byte(raw), &agent); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		block := AgentBlock(agent)
		for _, want := range wants {
			if !strings.Contains(block, want) {
				t.Fatalf("%s: expected %q in %q", raw, want, block)
			}
		}
	}
}

func TestPriceFieldPosition(t *testing.T) {
	for _, raw := range []string{`{}`, `{"price":null}`, `{"price":"cheap"}`} {
		var agent cookie.AgentRecord
		if err := json.Unmarshal([]byte(raw), &agent); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.Contains(AgentBlock(agent), "[Price]=>N/A$") {
			t.Fatalf("price sentinel missing for %s", raw)
		}
	}
	agent := cookie.AgentRecord{Price: cookie.NumberMetric(2)}
	if !strings.Contains(AgentBlock(agent), "[Price]=>2.00$") {
		t.Fatalf("numeric price should have two decimals")
	}
}

func TestVaults(t *testing.T) {
	want := "Here is a list of Kiln's Vaults :\r\n " +
		"- Aave v3 => USDC : 0xdea01fc5289af2c440ca65582e3c44767c0fcf08\r\n" +
		"- Aave v3 => USDC : 0x9b80443f910832a6eed6cef5b95bd9d1dae424b5\r\n" +
		"- Aave v3 => USDC : 0x682cfc8a3d956fba2c40791ec8d5a49e13baafbd\r\n" +
		"- Aave v3 => USDC : 0x85fbdc49b2e7b9e07468733873c8f199fc44259f\r\n" +
		"- Compound v3 => USDC : 0xf3a9A790f84B2E0301069BE589fc976Cf3eB5661"
	if got := Vaults(vault.List()); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}
