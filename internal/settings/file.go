package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File 是从 YAML 文件加载的扁平键值配置。
type File struct {
	values map[string]string
}

// LoadFile 解析 YAML 文件，顶层必须是字符串键值映射。
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile 解析 YAML 内容。
func ParseFile(data []byte) (*File, error) {
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &File{values: values}, nil
}

// GetSetting 实现 plugin.Runtime。
func (f *File) GetSetting(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}
