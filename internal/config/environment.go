package config

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	xerrors "kiln-plugin/internal/errors"
	"kiln-plugin/pkg/plugin"
)

const (
	// KilnAPIKey 是 Kiln API 凭证的配置键。
	KilnAPIKey = "KILN_API_KEY"
	// CookieAPIKey 是 Cookie API 凭证的配置键。
	CookieAPIKey = "COOKIE_API_KEY"
)

// Field 描述单个配置项的约束。
type Field struct {
	Key       string
	Message   string
	MinLength int
}

// Schema 是一组需要同时满足的配置约束。
type Schema struct {
	Name   string
	Fields []Field
}

var (
	// KilnSchema 约束 Kiln 相关动作所需的配置。
	KilnSchema = Schema{
		Name:   "Kiln",
		Fields: []Field{{Key: KilnAPIKey, Message: "Kiln API key is required", MinLength: 1}},
	}
	// CookieSchema 约束 Cookie 相关动作所需的配置。
	CookieSchema = Schema{
		Name:   "Cookie",
		Fields: []Field{{Key: CookieAPIKey, Message: "Cookie API key is required", MinLength: 1}},
	}
)

// KilnConfig 是校验通过后的 Kiln 配置。
type KilnConfig struct {
	APIKey string
}

// CookieConfig 是校验通过后的 Cookie 配置。
type CookieConfig struct {
	APIKey string
}

// Validate 每次都从 runtime 重新读取配置，并一次性汇总所有违反的约束。
// 返回值不会被记录到日志中。
func (s Schema) Validate(rt plugin.Runtime) (map[string]string, error) {
	values := make(map[string]string, len(s.Fields))
	var violations []string
	for _, field := range s.Fields {
		var (
			raw     string
			present bool
		)
		if rt != nil {
			raw, present = rt.GetSetting(field.Key)
		}
		value := strings.TrimSpace(raw)
		switch {
		case !present:
			violations = append(violations, fmt.Sprintf("%s: Required", field.Key))
		case len(value) < field.MinLength:
			violations = append(violations, fmt.Sprintf("%s: %s", field.Key, field.Message))
		default:
			values[field.Key] = value
		}
	}
	if len(violations) > 0 {
		return nil, xerrors.New(xerrors.CodeConfiguration,
			fmt.Sprintf("%s API configuration validation failed:\n%s", s.Name, strings.Join(violations, "\n")),
			xerrors.WithMetadata("schema", s.Name))
	}
	return values, nil
}

// ValidateKilnConfig 校验并返回 Kiln 配置。
func ValidateKilnConfig(rt plugin.Runtime) (KilnConfig, error) {
	values, err := KilnSchema.Validate(rt)
	if err != nil {
		return KilnConfig{}, err
	}
	return KilnConfig{APIKey: values[KilnAPIKey]}, nil
}

// ValidateCookieConfig 校验并返回 Cookie 配置。
func ValidateCookieConfig(rt plugin.Runtime) (CookieConfig, error) {
	values, err := CookieSchema.Validate(rt)
	if err != nil {
		return CookieConfig{}, err
	}
	return CookieConfig{APIKey: values[CookieAPIKey]}, nil
}

// PluginSettings 描述插件从宿主读取的全部配置项，用于生成 JSON Schema。
type PluginSettings struct {
	KilnAPIKey   string `json:"KILN_API_KEY" jsonschema:"title=Kiln API key,description=Bearer token for the Kiln network-stats API,minLength=1"`
	CookieAPIKey string `json:"COOKIE_API_KEY" jsonschema:"title=Cookie API key,description=x-api-key for the Cookie trending agents API,minLength=1"`
}

// SettingsSchema 返回插件配置项的 JSON Schema。
func SettingsSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return reflector.Reflect(&PluginSettings{})
}
