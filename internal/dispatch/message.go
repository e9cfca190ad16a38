package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Request 是一条动作调用请求。
type Request struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// Reply 是动作执行结果。Error 在软失败或调用失败时非空。
type Reply struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DecodeRequest 解析并校验请求，缺少 ID 时生成一个。
func DecodeRequest(body []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("解析调用请求失败: %w", err)
	}
	req.Action = strings.TrimSpace(req.Action)
	if req.Action == "" {
		return Request{}, fmt.Errorf("调用请求缺少 action")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req, nil
}

// Submit 为请求分配 ID（若缺失）并投递到 producer，返回请求 ID。
func Submit(ctx context.Context, producer Producer, req Request) (string, error) {
	if strings.TrimSpace(req.Action) == "" {
		return "", fmt.Errorf("调用请求缺少 action")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("编码调用请求失败: %w", err)
	}
	if err := producer.Publish(ctx, body); err != nil {
		return "", err
	}
	return req.ID, nil
}
