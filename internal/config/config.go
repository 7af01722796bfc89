package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config 是 folio 命令行的配置。命令行参数优先于配置文件。
type Config struct {
	LogLevel          string  `yaml:"log_level,omitempty"`     // trace, debug, info, warn, error
	LogFormat         string  `yaml:"log_format,omitempty"`    // text, json
	OutputFormat      string  `yaml:"output_format,omitempty"` // table, json
	OmitHeaderAtBreak bool    `yaml:"omit_header_at_break,omitempty"`
	OmitFooterAtBreak bool    `yaml:"omit_footer_at_break,omitempty"`
	Preview           Preview `yaml:"preview,omitempty"`
}

// Preview 配置 preview 子命令的 PDF 几何（mm）与标签字体。
type Preview struct {
	ColumnWidth float64 `yaml:"column_width,omitempty"`
	Margin      float64 `yaml:"margin,omitempty"`
	Font        string  `yaml:"font,omitempty"`
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户目录失败: %w", err)
	}
	return filepath.Join(home, ".config", "folio"), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from the given path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置 %s 无效: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "", "table", "json":
	default:
		return fmt.Errorf("未知输出格式 %q", c.OutputFormat)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("未知日志格式 %q", c.LogFormat)
	}
	if c.Preview.ColumnWidth < 0 {
		return fmt.Errorf("preview.column_width 不能为负")
	}
	return nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置失败: %w", err)
	}
	return nil
}
