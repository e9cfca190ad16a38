// Package upstream holds the HTTP plumbing shared by the third-party API clients:
// authenticated GET requests, error body decoding and request metrics.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/internal/observability/metrics"
)

// DefaultTimeout 是单次请求的默认超时。
const DefaultTimeout = 15 * time.Second

const maxBodySize = 1 << 20

// NewHTTPClient 返回带超时的 HTTP 客户端，timeout <= 0 时使用默认值。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Requester 针对单个上游服务发起 GET 请求。
type Requester struct {
	Provider string
	Client   *http.Client
}

// GetJSON 发起 GET 请求并把 2xx 响应解码到 out。
// 非 2xx 响应优先使用响应体中的 message 字段，否则使用服务端返回的状态描述。
// 无法解码的 2xx 响应体同样视为上游错误。
func (r Requester) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeUpstream, err, "build request", xerrors.WithMetadata("url", url))
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")

	client := r.Client
	if client == nil {
		client = NewHTTPClient(0)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(r.Provider, 0, time.Since(start))
		return xerrors.Wrap(xerrors.CodeUpstream, err, fmt.Sprintf("%s request failed", r.Provider),
			xerrors.WithMetadata("url", url))
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(r.Provider, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return xerrors.Wrap(xerrors.CodeUpstream, err, fmt.Sprintf("read %s response", r.Provider),
			xerrors.WithMetadata("url", url))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return xerrors.New(xerrors.CodeUpstream, errorMessage(resp, body),
			xerrors.WithMetadata("url", url),
			xerrors.WithMetadata("status", strconv.Itoa(resp.StatusCode)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return xerrors.Wrap(xerrors.CodeUpstream, err, fmt.Sprintf("decode %s response", r.Provider),
			xerrors.WithMetadata("url", url))
	}
	return nil
}

func errorMessage(resp *http.Response, body []byte) string {
	var decoded struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if msg := strings.TrimSpace(decoded.Message); msg != "" {
			return msg
		}
	}
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); reason != "" {
		return reason
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
