package kiln

import (
	"regexp"
	"strings"
)

// DefaultBaseURL 是 Kiln API 的默认地址。
const DefaultBaseURL = "https://api.kiln.fi"

// symbols 是需要查询的链，顺序即聚合结果的顺序。
var symbols = []string{
	"eth", "ada", "tia", "atom", "dydx", "fet", "inj", "kava", "ksm",
	"egld", "near", "osmo", "dot", "pol", "sol", "xtz", "zeta",
}

var chainPattern = regexp.MustCompile(`/v1/([^/]+)/network-stats`)

// Symbols 返回支持的链符号列表副本。
func Symbols() []string {
	return append([]string(nil), symbols...)
}

// EndpointURL 拼接单条链的 network-stats 地址。
func EndpointURL(baseURL, symbol string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/" + symbol + "/network-stats"
}

// Endpoints 返回 baseURL 下全部链的 network-stats 地址，baseURL 为空时使用默认地址。
func Endpoints(baseURL string) []string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	urls := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		urls = append(urls, EndpointURL(baseURL, symbol))
	}
	return urls
}

// ExtractChain 从地址中解析链符号，不匹配时返回空字符串。
func ExtractChain(url string) string {
	matches := chainPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
