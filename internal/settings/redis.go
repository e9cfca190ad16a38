package settings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"kiln-plugin/internal/config"
)

const defaultLookupTimeout = 2 * time.Second

// HashGetter 是 Redis 中查询 hash 字段所需的最小接口，*redis.Client 实现了它。
type HashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

// Redis 从一个 hash 中读取配置，字段名即配置键。
type Redis struct {
	client  HashGetter
	key     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedis 创建基于 Redis hash 的配置来源。
func NewRedis(client HashGetter, key string, timeout time.Duration, log *slog.Logger) *Redis {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Redis{client: client, key: key, timeout: timeout, logger: log}
}

// DialRedis 根据配置创建 Redis 客户端。
func DialRedis(cfg config.RedisSettingsConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// GetSetting 实现 plugin.Runtime。
func (r *Redis) GetSetting(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		r.logger.Debug("redis settings lookup failed",
			slog.String("hash", r.key), slog.String("field", key), slog.Any("error", err))
		return "", false
	}
	return v, true
}
