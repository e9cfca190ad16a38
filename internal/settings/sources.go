package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"kiln-plugin/internal/config"
	"kiln-plugin/pkg/plugin"
)

// Sources 是按配置组装好的配置来源链，持有需要关闭的连接。
type Sources struct {
	chain   Chain
	names   []string
	closers []io.Closer
}

// FromConfig 按 Overrides → Env → File → Redis → MySQL 的顺序组装来源。
// 未配置的来源会被跳过；任一来源初始化失败时关闭已打开的连接并返回错误。
func FromConfig(ctx context.Context, cfg config.SettingsConfig, log *slog.Logger) (*Sources, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Sources{}

	if len(cfg.Overrides) > 0 {
		s.add("overrides", Static(cfg.Overrides))
	}

	env, err := NewEnv(cfg.EnvFiles...)
	if err != nil {
		return nil, err
	}
	s.add("env", env)

	if strings.TrimSpace(cfg.File) != "" {
		file, err := LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		s.add("file", file)
	}

	if strings.TrimSpace(cfg.Redis.Address) != "" {
		client := DialRedis(cfg.Redis)
		s.closers = append(s.closers, client)
		if err := client.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("连接 Redis 失败: %w", err)
		}
		s.add("redis", NewRedis(client, cfg.Redis.Key, cfg.Redis.Timeout(), log))
	}

	if strings.TrimSpace(cfg.MySQL.DSN) != "" {
		store, err := OpenMySQL(ctx, cfg.MySQL, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, store)
		s.add("mysql", store)
	}

	log.Info("settings sources ready", slog.Any("sources", s.names))
	return s, nil
}

func (s *Sources) add(name string, source plugin.Runtime) {
	s.chain = append(s.chain, source)
	s.names = append(s.names, name)
}

// Names 返回已启用来源的名称，按查询顺序排列。
func (s *Sources) Names() []string {
	return append([]string(nil), s.names...)
}

// GetSetting 实现 plugin.Runtime。
func (s *Sources) GetSetting(key string) (string, bool) {
	return s.chain.GetSetting(key)
}

// Close 关闭所有连接。
func (s *Sources) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
