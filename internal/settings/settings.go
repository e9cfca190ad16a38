package settings

import (
	"strings"

	"kiln-plugin/pkg/plugin"
)

// Static 是内存中的配置，常用于测试与命令行覆盖。
type Static map[string]string

// GetSetting 实现 plugin.Runtime。
func (s Static) GetSetting(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Chain 依次查询多个来源。
type Chain []plugin.Runtime

// GetSetting 返回第一个非空值。所有来源都只给出空值时返回空字符串且 present 为 true，
// 以便校验器区分“缺失”和“为空”。
func (c Chain) GetSetting(key string) (string, bool) {
	present := false
	for _, source := range c {
		if source == nil {
			continue
		}
		v, ok := source.GetSetting(key)
		if !ok {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return v, true
		}
		present = true
	}
	return "", present
}
