package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiln-plugin/internal/config"
)

// Transport 是一对请求队列与回复队列。
type Transport struct {
	Driver   string
	Requests Queue
	Replies  Queue
}

// Open 根据配置创建请求与回复队列。
func Open(ctx context.Context, cfg config.DispatchConfig) (*Transport, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		return &Transport{
			Driver:   "memory",
			Requests: NewMemoryQueue(cfg.Memory.Size),
			Replies:  NewMemoryQueue(cfg.Memory.Size),
		}, nil
	case "redis":
		redisCfg := RedisQueueConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Queue:     cfg.Redis.Queue,
			BlockWait: cfg.Redis.BlockWait(),
		}
		requests, err := NewRedisQueue(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		redisCfg.Queue = cfg.Redis.ReplyQueue
		replies, err := NewRedisQueue(ctx, redisCfg)
		if err != nil {
			requests.Close()
			return nil, err
		}
		return &Transport{Driver: driver, Requests: requests, Replies: replies}, nil
	case "rabbitmq":
		rabbitCfg := RabbitMQConfig{
			URL:      cfg.RabbitMQ.URL,
			Queue:    cfg.RabbitMQ.Queue,
			Prefetch: cfg.RabbitMQ.Prefetch,
			Durable:  cfg.RabbitMQ.Durable,
		}
		requests, err := NewRabbitMQQueue(rabbitCfg)
		if err != nil {
			return nil, err
		}
		rabbitCfg.Queue = cfg.RabbitMQ.ReplyQueue
		replies, err := NewRabbitMQQueue(rabbitCfg)
		if err != nil {
			requests.Close()
			return nil, err
		}
		return &Transport{Driver: driver, Requests: requests, Replies: replies}, nil
	default:
		return nil, fmt.Errorf("未知的队列驱动 %q", cfg.Driver)
	}
}

// Close 关闭两个队列。
func (t *Transport) Close() error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.Requests != nil {
		errs = append(errs, t.Requests.Close())
	}
	if t.Replies != nil {
		errs = append(errs, t.Replies.Close())
	}
	return errors.Join(errs...)
}
