package cookie

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AgentsResponse 是 agentsPaged 接口的响应。
type AgentsResponse struct {
	OK *AgentsPage `json:"ok"`
}

// AgentsPage 是一页 Agent 数据。
type AgentsPage struct {
	Data        []AgentRecord `json:"data"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalCount  int           `json:"totalCount"`
}

// AgentRecord 描述单个 Agent 的指标。所有字段都可能缺失或类型不符，解码时一律容忍。
type AgentRecord struct {
	AgentName               Metric    `json:"agentName"`
	TwitterUsernames        Usernames `json:"twitterUsernames"`
	MarketCap               Metric    `json:"marketCap"`
	Price                   Metric    `json:"price"`
	Liquidity               Metric    `json:"liquidity"`
	Volume24Hours           Metric    `json:"volume24Hours"`
	AverageImpressionsCount Metric    `json:"averageImpressionsCount"`
	AverageImpressionCount  Metric    `json:"averageImpressionCount"`
	AverageEngagementsCount Metric    `json:"averageEngagementsCount"`
	FollowersCount          Metric    `json:"followersCount"`
}

// TwitterHandle 返回第一个 Twitter 用户名，不存在时返回零值。
func (a AgentRecord) TwitterHandle() Metric {
	if len(a.TwitterUsernames) == 0 {
		return Metric{}
	}
	return a.TwitterUsernames[0]
}

// Usernames 是 twitterUsernames 字段。值不是数组时视为缺失。
type Usernames []Metric

// UnmarshalJSON 实现 json.Unmarshaler。
func (u *Usernames) UnmarshalJSON(data []byte) error {
	*u = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var items []Metric
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil
	}
	*u = items
	return nil
}

// Impressions 优先使用 averageImpressionsCount，旧字段 averageImpressionCount 作为回退。
func (a AgentRecord) Impressions() Metric {
	if a.AverageImpressionsCount.Present() {
		return a.AverageImpressionsCount
	}
	return a.AverageImpressionCount
}

// Metric 保留原始 JSON 值，只有 JSON 数字才被视为数值。
type Metric struct {
	raw    json.RawMessage
	number float64
	valid  bool
}

// TextMetric 构造一个字符串值。
func TextMetric(s string) Metric {
	raw, _ := json.Marshal(s)
	return Metric{raw: raw}
}

// NumberMetric 构造一个数值指标。
func NumberMetric(v float64) Metric {
	return Metric{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64)), number: v, valid: true}
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (m *Metric) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*m = Metric{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	m.raw = append(json.RawMessage(nil), trimmed...)
	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') {
		if err := json.Unmarshal(trimmed, &m.number); err == nil {
			m.valid = true
		}
	}
	return nil
}

// MarshalJSON 实现 json.Marshaler。
func (m Metric) MarshalJSON() ([]byte, error) {
	if len(m.raw) == 0 {
		return []byte("null"), nil
	}
	return m.raw, nil
}

// Present 判断字段是否存在且不为 null。
func (m Metric) Present() bool {
	return len(m.raw) > 0
}

// Number 返回数值；非数字时 ok 为 false。
func (m Metric) Number() (float64, bool) {
	return m.number, m.valid
}

// Text 返回原样展示用的文本：数字按最短形式输出，字符串去掉引号，其余类型返回空。
func (m Metric) Text() string {
	if m.valid {
		return strconv.FormatFloat(m.number, 'f', -1, 64)
	}
	var s string
	if len(m.raw) > 0 && m.raw[0] == '"' && json.Unmarshal(m.raw, &s) == nil {
		return s
	}
	return ""
}

// Display 返回值嵌入展示文本时的形式。null、false、0、空字符串或缺失时 ok 为 false，
// 由调用方替换为占位符；对象与数组总是有值，数组元素以逗号连接。
func (m Metric) Display() (string, bool) {
	if len(m.raw) == 0 {
		return "", false
	}
	var v any
	if err := json.Unmarshal(m.raw, &v); err != nil {
		return string(m.raw), true
	}
	switch t := v.(type) {
	case nil:
		return "", false
	case bool:
		if !t {
			return "", false
		}
		return "true", true
	case float64:
		return displayNumber(t), t != 0
	case string:
		return t, t != ""
	default:
		return displayValue(v), true
	}
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return displayNumber(t)
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = displayValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// displayNumber 以最短形式输出数字，|v| >= 1e21 或 < 1e-6 时使用指数形式，例如 1e+21、1.5e-7。
func displayNumber(v float64) string {
	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}
