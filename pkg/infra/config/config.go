// 指示: miu200521358
// Package config は環境変数とCLIフラグから実行設定を解決する。
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config は実行設定を表す。
type Config struct {
	DBPath        string `env:"MU_RETARGET_DB" envDefault:"mu_rig_retarget.db"`
	Locale        string `env:"MU_RETARGET_LOCALE" envDefault:"ja"`
	LogLevel      string `env:"MU_RETARGET_LOG_LEVEL" envDefault:"info"`
	PreviewDir    string `env:"MU_RETARGET_PREVIEW_DIR"`
	PreviewFormat string `env:"MU_RETARGET_PREVIEW_FORMAT" envDefault:"webp"`
	PreviewSize   int    `env:"MU_RETARGET_PREVIEW_SIZE" envDefault:"256"`
}

// Flags はCLIフラグで上書きする値を表す。空値は上書きしない。
type Flags struct {
	DBPath     string
	PreviewDir string
	Locale     string
}

// Load は環境変数から設定を読み込む。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の解析に失敗しました: %w", err)
	}
	return cfg, nil
}

// Resolve はフラグで指定された値を優先して設定を確定する。
func (c *Config) Resolve(flags Flags) {
	if value := strings.TrimSpace(flags.DBPath); value != "" {
		c.DBPath = value
	}
	if value := strings.TrimSpace(flags.PreviewDir); value != "" {
		c.PreviewDir = value
	}
	if value := strings.TrimSpace(flags.Locale); value != "" {
		c.Locale = value
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	c.PreviewFormat = strings.ToLower(strings.TrimSpace(c.PreviewFormat))
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
}

// PreviewEnabled はプレビュー出力先が指定されているか判定する。
func (c Config) PreviewEnabled() bool {
	return strings.TrimSpace(c.PreviewDir) != ""
}
