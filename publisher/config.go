package publisher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultGenerationTimeout = 60 * time.Second

// Config 是服务与命令行共用的配置，支持 JSON 与 YAML。
type Config struct {
	ServerAddr string     `json:"server_addr,omitempty" yaml:"server_addr,omitempty"`
	LLM        *LLMConfig `json:"llm,omitempty" yaml:"llm,omitempty"`
	// GenerationTimeoutSeconds bounds one model call; zero means 60.
	GenerationTimeoutSeconds int `json:"generation_timeout_seconds,omitempty" yaml:"generation_timeout_seconds,omitempty"`
	// StrictLayout makes an unmapped layout tier an error instead of a fallback.
	StrictLayout bool `json:"strict_layout,omitempty" yaml:"strict_layout,omitempty"`
	Verbose      bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LLMConfig 生成模块的模型配置。
type LLMConfig struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// DefaultConfig runs the offline mock generator on :8080.
func DefaultConfig() Config {
	return Config{
		ServerAddr: ":8080",
		LLM:        &LLMConfig{Provider: "mock"},
	}
}

// LoadConfig reads config from disk; .yaml/.yml files are parsed as YAML,
// everything else as JSON. An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.GenerationTimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("generation_timeout_seconds must not be negative")
	}
	return cfg, nil
}

// GenerationTimeout returns the per-call model timeout.
func (c Config) GenerationTimeout() time.Duration {
	if c.GenerationTimeoutSeconds <= 0 {
		return defaultGenerationTimeout
	}
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

// ResolvedAPIKey prefers the inline key and falls back to the named env var.
func (l *LLMConfig) ResolvedAPIKey() string {
	if l == nil {
		return ""
	}
	if l.APIKey != "" {
		return l.APIKey
	}
	if l.APIKeyEnv != "" {
		return os.Getenv(l.APIKeyEnv)
	}
	return ""
}
