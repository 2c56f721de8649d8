// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for the ranking model call.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds the whole ranking call; on expiry the request falls
	// back to the heuristic instead of hanging (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SelectorConfig holds settings for the relevance selector.
type SelectorConfig struct {
	AIConfig `yaml:",inline"`

	// DisableFallback turns the heuristic path off so ranking outages
	// surface as upstream errors instead of degraded selections.
	DisableFallback bool `json:"disable_fallback" yaml:"disable_fallback"`
}

// RenderConfig holds settings for the placeholder engine and its inputs.
type RenderConfig struct {
	// TemplatePath is the .pptx template file.
	TemplatePath string `json:"template_path" yaml:"template_path"`

	// CatalogPath is the case-study source file (.json or .xlsx).
	CatalogPath string `json:"catalog_path" yaml:"catalog_path"`

	// AssetsDir is the directory of logo assets (.svg, .png, .jpg).
	AssetsDir string `json:"assets_dir" yaml:"assets_dir"`

	// OutputDir is where the CLI writes generated decks.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// TokenTablePath optionally overrides the embedded token table.
	TokenTablePath string `json:"token_table_path,omitempty" yaml:"token_table_path,omitempty"`
}

// ServerConfig holds settings for the HTTP boundary.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling. The write
	// timeout must cover a full generation including the ranking call.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// HistoryConfig holds settings for the generation log.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Config groups all component configurations.
type Config struct {
	Selector SelectorConfig `json:"selector" yaml:"selector"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	History  HistoryConfig  `json:"history" yaml:"history"`
}
