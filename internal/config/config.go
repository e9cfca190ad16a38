package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kiln-plugin/pkg/plugin"
)

// Config 描述 kilnd / kilnctl 启动阶段需要加载的配置。
type Config struct {
	Logging  LoggingConfig          `yaml:"logging"`
	Settings SettingsConfig         `yaml:"settings"`
	Upstream UpstreamConfig         `yaml:"upstream"`
	Dispatch DispatchConfig         `yaml:"dispatch"`
	Metrics  MetricsConfig          `yaml:"metrics"`
	Policy   plugin.IsolationPolicy `yaml:"policy"`
}

// LoggingConfig 控制日志级别、格式与输出位置。
type LoggingConfig struct {
	Level   string   `yaml:"level"`
	Format  string   `yaml:"format"`
	Outputs []string `yaml:"outputs"`
}

// SettingsConfig 描述插件读取密钥的来源，按 Overrides → Env → File → Redis → MySQL 的顺序查找。
type SettingsConfig struct {
	EnvFiles  []string            `yaml:"env_files"`
	File      string              `yaml:"file"`
	Redis     RedisSettingsConfig `yaml:"redis"`
	MySQL     MySQLSettingsConfig `yaml:"mysql"`
	Overrides map[string]string   `yaml:"overrides"`
}

// RedisSettingsConfig 描述存放密钥的 Redis hash。
type RedisSettingsConfig struct {
	Address        string `yaml:"address"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	Key            string `yaml:"key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// MySQLSettingsConfig 描述存放密钥的 MySQL 表。
type MySQLSettingsConfig struct {
	DSN            string `yaml:"dsn"`
	Table          string `yaml:"table"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	EnsureSchema   bool   `yaml:"ensure_schema"`
}

// UpstreamConfig 控制对 Kiln 与 Cookie API 的访问方式。
type UpstreamConfig struct {
	KilnBaseURL    string `yaml:"kiln_base_url"`
	CookieBaseURL  string `yaml:"cookie_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Concurrency    int    `yaml:"concurrency"`
}

// DispatchConfig 描述守护进程消费调用请求的队列。
type DispatchConfig struct {
	Driver   string                 `yaml:"driver"`
	Workers  int                    `yaml:"workers"`
	Memory   MemoryDispatchConfig   `yaml:"memory"`
	Redis    RedisDispatchConfig    `yaml:"redis"`
	RabbitMQ RabbitMQDispatchConfig `yaml:"rabbitmq"`
}

// MemoryDispatchConfig 配置进程内队列。
type MemoryDispatchConfig struct {
	Size int `yaml:"size"`
}

// RedisDispatchConfig 配置基于 Redis list 的请求与回复队列。
type RedisDispatchConfig struct {
	Address          string `yaml:"address"`
	Password         string `yaml:"password"`
	DB               int    `yaml:"db"`
	Queue            string `yaml:"queue"`
	ReplyQueue       string `yaml:"reply_queue"`
	BlockWaitSeconds int    `yaml:"block_wait_seconds"`
}

// RabbitMQDispatchConfig 配置 RabbitMQ 请求与回复队列。
type RabbitMQDispatchConfig struct {
	URL        string `yaml:"url"`
	Queue      string `yaml:"queue"`
	ReplyQueue string `yaml:"reply_queue"`
	Prefetch   int    `yaml:"prefetch"`
	Durable    bool   `yaml:"durable"`
}

// MetricsConfig 控制 Prometheus 指标端点，Address 为空时不启动。
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Timeout 返回单次上游请求的超时时间。
func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout 返回单次 Redis 查询的超时时间。
func (c RedisSettingsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout 返回单次 MySQL 查询的超时时间。
func (c MySQLSettingsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BlockWait 返回 BRPOP 的阻塞时长。
func (c RedisDispatchConfig) BlockWait() time.Duration {
	return time.Duration(c.BlockWaitSeconds) * time.Second
}

// Default 返回未提供配置文件时使用的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Load 解析指定路径的 YAML 配置文件。
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config path is empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置默认值，相对路径以配置文件所在目录为基准。
func (c *Config) applyDefaults(baseDir string) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	for i, file := range c.Settings.EnvFiles {
		c.Settings.EnvFiles[i] = resolve(baseDir, file)
	}
	c.Settings.File = resolve(baseDir, c.Settings.File)
	if c.Settings.Redis.Key == "" {
		c.Settings.Redis.Key = "kiln:settings"
	}
	if c.Settings.Redis.TimeoutSeconds <= 0 {
		c.Settings.Redis.TimeoutSeconds = 2
	}
	if c.Settings.MySQL.Table == "" {
		c.Settings.MySQL.Table = "plugin_settings"
	}
	if c.Settings.MySQL.TimeoutSeconds <= 0 {
		c.Settings.MySQL.TimeoutSeconds = 2
	}

	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = 15
	}

	if c.Dispatch.Driver == "" {
		c.Dispatch.Driver = "memory"
	}
	if c.Dispatch.Workers <= 0 {
		c.Dispatch.Workers = 2
	}
	if c.Dispatch.Memory.Size <= 0 {
		c.Dispatch.Memory.Size = 64
	}
	if c.Dispatch.Redis.Queue == "" {
		c.Dispatch.Redis.Queue = "kiln:invocations"
	}
	if c.Dispatch.Redis.ReplyQueue == "" {
		c.Dispatch.Redis.ReplyQueue = "kiln:replies"
	}
	if c.Dispatch.Redis.BlockWaitSeconds <= 0 {
		c.Dispatch.Redis.BlockWaitSeconds = 5
	}
	if c.Dispatch.RabbitMQ.Queue == "" {
		c.Dispatch.RabbitMQ.Queue = "kiln.invocations"
	}
	if c.Dispatch.RabbitMQ.ReplyQueue == "" {
		c.Dispatch.RabbitMQ.ReplyQueue = "kiln.replies"
	}
}

func resolve(baseDir, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
