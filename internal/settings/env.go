package settings

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Env 先读取进程环境变量，再回退到 .env 文件中的值。
type Env struct {
	lookup func(string) (string, bool)
	files  map[string]string
}

// NewEnv 读取给定的 .env 文件，不修改进程环境。多个文件中同名键以先出现的为准。
func NewEnv(files ...string) (*Env, error) {
	values := make(map[string]string)
	for _, file := range files {
		if file == "" {
			continue
		}
		parsed, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("读取 env 文件 %s 失败: %w", file, err)
		}
		for k, v := range parsed {
			if _, exists := values[k]; !exists {
				values[k] = v
			}
		}
	}
	return &Env{lookup: os.LookupEnv, files: values}, nil
}

// GetSetting 实现 plugin.Runtime。
func (e *Env) GetSetting(key string) (string, bool) {
	if e.lookup != nil {
		if v, ok := e.lookup(key); ok {
			return v, true
		}
	}
	v, ok := e.files[key]
	return v, ok
}
