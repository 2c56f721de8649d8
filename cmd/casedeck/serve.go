// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/casedeck/internal/history"
	"github.com/pdiddy/casedeck/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the deck-generation HTTP API",
	Long: `Serve exposes generation over HTTP: POST /api/generate accepts a company
profile and presentation type and responds with the finished .pptx as an
attachment. GET /health reports liveness. The server drains in-flight
requests on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	var recorder server.Recorder
	if cfg.History.Path != "" {
		hist, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Warn("history unavailable", zap.Error(err))
		} else {
			defer hist.Close()
			recorder = hist
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(gen, recorder, log, cfg.Server)
	return srv.ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("template", "", "path to the .pptx template")
	serveCmd.Flags().String("catalog", "", "path to the case-study catalog (.json or .xlsx)")
	serveCmd.Flags().String("assets-dir", "", "directory of logo assets")
	serveCmd.Flags().String("token-table", "", "YAML token table override")
	serveCmd.Flags().String("model", "", "ranking model identifier")
	serveCmd.Flags().String("api-key", "", "ranking API key (default: .secrets/anthropic-api-key)")

	rootCmd.AddCommand(serveCmd)
}
