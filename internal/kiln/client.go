package kiln

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/upstream"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
	"kiln-plugin/pkg/settle"
)

const providerName = "kiln"

// Config 描述访问 Kiln API 所需的信息。
type Config struct {
	APIKey string
	// BaseURL 替换默认的 https://api.kiln.fi，路径保持不变。
	BaseURL string
	// Endpoints 覆盖完整的地址列表，优先于 BaseURL。
	Endpoints []string
	// Timeout 是单次请求的超时。
	Timeout time.Duration
	// Concurrency 限制同时进行的请求数，<= 0 表示与地址数量相同。
	Concurrency int
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client 查询 Kiln 的 network-stats 接口。
type Client struct {
	apiKey      string
	endpoints   []string
	concurrency int
	requester   upstream.Requester
	logger      *slog.Logger
}

// NewClient 根据配置创建客户端。空的 APIKey 在调用入口处才会报错。
func NewClient(cfg Config) *Client {
	endpoints := append([]string(nil), cfg.Endpoints...)
	if len(endpoints) == 0 {
		endpoints = Endpoints(cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(cfg.Timeout)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("kiln")
	}
	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		endpoints:   endpoints,
		concurrency: cfg.Concurrency,
		requester:   upstream.Requester{Provider: providerName, Client: httpClient},
		logger:      log,
	}
}

// Endpoints 返回客户端查询的地址列表副本。
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// FetchNetworkStats 查询单条链的统计数据，并附加从地址解析出的链符号。
func (c *Client) FetchNetworkStats(ctx context.Context, url string) (NetworkStats, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var envelope statsEnvelope
	if err := c.requester.GetJSON(ctx, url, header, &envelope); err != nil {
		return NetworkStats{}, err
	}
	if envelope.Data == nil || envelope.Data.NbValidators == nil || envelope.Data.NetworkGrossAPY == nil {
		return NetworkStats{}, xerrors.New(xerrors.CodeShape,
			fmt.Sprintf("network stats response for %s is missing data", url),
			xerrors.WithMetadata("url", url))
	}
	return NetworkStats{
		Chain: ExtractChain(url),
		Data: StatsData{
			NbValidators:    *envelope.Data.NbValidators,
			NetworkGrossAPY: *envelope.Data.NetworkGrossAPY,
		},
	}, nil
}

// GetStakingStatistics 并发查询所有链，等待全部请求结束后按地址顺序返回成功的结果。
// 单条链失败只记录日志并丢弃；全部失败时返回空列表而不是错误。
func (c *Client) GetStakingStatistics(ctx context.Context) ([]NetworkStats, error) {
	if c.apiKey == "" {
		return nil, xerrors.New(xerrors.CodeConfiguration, "API key is required")
	}

	limit := c.concurrency
	if limit <= 0 {
		limit = len(c.endpoints)
	}
	outcomes := settle.All(ctx, len(c.endpoints), limit, func(ctx context.Context, i int) (NetworkStats, error) {
		return c.FetchNetworkStats(ctx, c.endpoints[i])
	})

	stats, failures := settle.Partition(outcomes)
	for _, failure := range failures {
		c.logger.Warn("failed to fetch network stats",
			slog.String("invocation_id", plugin.InvocationID(ctx)),
			slog.String("url", c.endpoints[failure.Index]),
			slog.Any("error", failure.Err))
	}
	c.logger.Debug("staking statistics collected",
		slog.Int("succeeded", len(stats)),
		slog.Int("failed", len(failures)))
	return stats, nil
}
