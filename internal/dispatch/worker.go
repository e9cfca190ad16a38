package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

// Invoker 执行一次动作调用，*plugin.Manager 实现了它。
type Invoker interface {
	Invoke(ctx context.Context, name string, rt plugin.Runtime, msg plugin.Message, cb plugin.Callback) (plugin.Outcome, error)
}

// Worker 从请求队列消费调用请求，执行后把 Reply 发布到回复队列。
type Worker struct {
	invoker     Invoker
	runtime     plugin.Runtime
	requests    Consumer
	replies     Producer
	workerCount int
	logger      *slog.Logger
}

// WorkerOption 定义可选配置。
type WorkerOption func(*Worker)

// WithWorkerLogger 指定日志输出。
func WithWorkerLogger(log *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if log != nil {
			w.logger = log
		}
	}
}

// WithWorkerCount 设置消费协程数量。
func WithWorkerCount(workers int) WorkerOption {
	return func(w *Worker) {
		if workers > 0 {
			w.workerCount = workers
		}
	}
}

// NewWorker 构造 Worker。
func NewWorker(invoker Invoker, rt plugin.Runtime, requests Consumer, replies Producer, opts ...WorkerOption) *Worker {
	w := &Worker{
		invoker:     invoker,
		runtime:     rt,
		requests:    requests,
		replies:     replies,
		workerCount: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.logger == nil {
		w.logger = logger.Named("dispatch")
	}
	return w
}

// Start 启动消费循环，直到 ctx 结束或队列出错。
func (w *Worker) Start(ctx context.Context) error {
	if w.requests == nil || w.invoker == nil {
		return xerrors.New(xerrors.CodeQueueFailure, "worker 未初始化")
	}
	return w.requests.Consume(ctx, w.workerCount, w.Handle)
}

// Handle 处理单条请求消息。格式错误的消息被丢弃，只有回复发布失败才返回错误。
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	req, err := DecodeRequest(body)
	if err != nil {
		w.logger.Warn("丢弃无效的调用请求", slog.Any("error", err))
		return nil
	}
	ctx = plugin.WithInvocationID(ctx, req.ID)

	reply := w.invoke(ctx, req)
	w.logger.Info("调用完成",
		slog.String("invocation_id", req.ID),
		slog.String("action", reply.Action),
		slog.Bool("ok", reply.OK))

	if w.replies == nil {
		return nil
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, "编码调用结果失败")
	}
	if err := w.replies.Publish(ctx, payload); err != nil {
		return xerrors.Wrap(xerrors.CodeQueueFailure, err, fmt.Sprintf("发布调用结果 %s 失败", req.ID))
	}
	return nil
}

func (w *Worker) invoke(ctx context.Context, req Request) Reply {
	reply := Reply{ID: req.ID, Action: req.Action}
	outcome, err := w.invoker.Invoke(ctx, req.Action, w.runtime, plugin.Message{UserID: req.UserID, Text: req.Text}, nil)
	if outcome.Action != "" {
		reply.Action = outcome.Action
	}
	if err != nil {
		reply.Error = xerrors.MessageOf(err)
		return reply
	}
	reply.OK = outcome.OK
	reply.Text = outcome.Content.Text
	switch {
	case outcome.Content.Failed():
		reply.Error = outcome.Content.Content.Error
	case outcome.Err != nil:
		reply.Error = xerrors.MessageOf(outcome.Err)
	}
	return reply
}
