package cookie

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/upstream"
	"kiln-plugin/pkg/logger"
)

const (
	// DefaultBaseURL 是 Cookie API 的默认地址。
	DefaultBaseURL = "https://api.cookie.fun"
	trendingPath   = "/v2/agents/agentsPaged?interval=_7Days&page=1&pageSize=5"
	// TrendingURL 固定查询第一页的 5 个 Agent，统计区间为 7 天。
	TrendingURL = DefaultBaseURL + trendingPath

	providerName = "cookie"
)

// Config 描述访问 Cookie API 所需的信息。
type Config struct {
	APIKey string
	// BaseURL 替换默认主机，查询参数保持不变。
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client 查询热门 Agent。
type Client struct {
	apiKey    string
	url       string
	requester upstream.Requester
	logger    *slog.Logger
}

// NewClient 根据配置创建客户端。
func NewClient(cfg Config) *Client {
	url := TrendingURL
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		url = strings.TrimRight(base, "/") + trendingPath
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(cfg.Timeout)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("cookie")
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		url:       url,
		requester: upstream.Requester{Provider: providerName, Client: httpClient},
		logger:    log,
	}
}

// URL 返回实际请求的地址。
func (c *Client) URL() string {
	return c.url
}

// GetTradingAgents 查询热门 Agent 列表。响应缺少 ok.data 时返回 SHAPE 错误。
func (c *Client) GetTradingAgents(ctx context.Context) (*AgentsResponse, error) {
	if c.apiKey == "" {
		return nil, xerrors.New(xerrors.CodeConfiguration, "API key is required")
	}

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)

	var resp AgentsResponse
	if err := c.requester.GetJSON(ctx, c.url, header, &resp); err != nil {
		c.logger.Warn("failed to fetch trending agents", slog.Any("error", err))
		return nil, err
	}
	if resp.OK == nil || resp.OK.Data == nil {
		return nil, xerrors.New(xerrors.CodeShape, "trending agents response is missing ok.data",
			xerrors.WithMetadata("url", c.url))
	}
	c.logger.Debug("trending agents fetched", slog.Int("count", len(resp.OK.Data)))
	return &resp, nil
}
