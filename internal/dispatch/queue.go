// Package dispatch 通过消息队列接收动作调用请求，并把结果发布到回复队列。
// 支持进程内 channel、Redis list 与 RabbitMQ 三种实现。
package dispatch

import (
	"context"
)

// Handler 处理一条队列消息。
type Handler func(ctx context.Context, body []byte) error

// Producer 负责向队列投递消息。
type Producer interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

// Consumer 负责从队列中消费消息。
type Consumer interface {
	Consume(ctx context.Context, workerCount int, handler Handler) error
	Close() error
}

// Queue 同时具备生产者与消费者能力。
type Queue interface {
	Producer
	Consumer
}
