// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/casedeck/internal/assets"
	"github.com/pdiddy/casedeck/internal/catalog"
	"github.com/pdiddy/casedeck/internal/deck"
	"github.com/pdiddy/casedeck/internal/pptx"
	"github.com/pdiddy/casedeck/internal/selector"
	"github.com/pdiddy/casedeck/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

// loadConfig merges viper config/env with per-command flag overrides. A
// flag that was not set on the command line defers to the config file.
func loadConfig(cmd *cobra.Command) types.Config {
	viper.SetDefault("selector.model", defaultModel)
	viper.SetDefault("render.template", "templates/case-studies.pptx")
	viper.SetDefault("render.catalog", "data/case_studies.json")
	viper.SetDefault("render.assets_dir", "assets/logos")
	viper.SetDefault("render.output_dir", "output")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 2*time.Minute)
	viper.SetDefault("history.path", "casedeck-history.db")

	cfg := types.Config{
		Selector: types.SelectorConfig{
			AIConfig: types.AIConfig{
				Model:   viper.GetString("selector.model"),
				APIKey:  viper.GetString("selector.api_key"),
				Timeout: viper.GetDuration("selector.timeout"),
			},
			DisableFallback: viper.GetBool("selector.disable_fallback"),
		},
		Render: types.RenderConfig{
			TemplatePath:   viper.GetString("render.template"),
			CatalogPath:    viper.GetString("render.catalog"),
			AssetsDir:      viper.GetString("render.assets_dir"),
			OutputDir:      viper.GetString("render.output_dir"),
			TokenTablePath: viper.GetString("render.token_table"),
		},
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		History: types.HistoryConfig{
			Path: viper.GetString("history.path"),
		},
	}

	flagOverride(cmd, "template", &cfg.Render.TemplatePath)
	flagOverride(cmd, "catalog", &cfg.Render.CatalogPath)
	flagOverride(cmd, "assets-dir", &cfg.Render.AssetsDir)
	flagOverride(cmd, "output-dir", &cfg.Render.OutputDir)
	flagOverride(cmd, "token-table", &cfg.Render.TokenTablePath)
	flagOverride(cmd, "model", &cfg.Selector.Model)
	flagOverride(cmd, "api-key", &cfg.Selector.APIKey)
	flagOverride(cmd, "addr", &cfg.Server.Addr)

	cfg.Selector.APIKey = secretDefault("anthropic-api-key", cfg.Selector.APIKey)
	return cfg
}

func flagOverride(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

// buildGenerator assembles the full generation pipeline from config:
// catalog, ranker, selector, logo store, template, and token table.
func buildGenerator(cfg types.Config) (*deck.Generator, error) {
	store, err := catalog.Load(cfg.Render.CatalogPath)
	if err != nil {
		return nil, err
	}

	var ranker selector.Ranker
	if cfg.Selector.APIKey != "" {
		ranker = &selector.ClaudeRanker{
			APIKey: cfg.Selector.APIKey,
			Model:  cfg.Selector.Model,
		}
	}
	sel := selector.New(ranker, store, cfg.Selector)

	logos, err := assets.NewStore(cfg.Render.AssetsDir, assets.SVGConverter{})
	if err != nil {
		return nil, err
	}

	tmpl, err := pptx.OpenTemplate(cfg.Render.TemplatePath)
	if err != nil {
		return nil, err
	}

	tokens, err := deck.LoadTokenTable(cfg.Render.TokenTablePath)
	if err != nil {
		return nil, err
	}

	return deck.New(tmpl, sel, logos, tokens), nil
}
