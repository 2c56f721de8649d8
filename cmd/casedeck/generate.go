// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casedeck/internal/deck"
	"github.com/pdiddy/casedeck/internal/history"
	"github.com/pdiddy/casedeck/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a case-study deck for a company",
	Long: `Generate ranks the case-study catalog against the given company profile,
selects the four most relevant entries, and writes a filled .pptx deck to
the output directory.

Without an API key the selection uses the keyword-overlap heuristic
instead of the ranking model.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("company-name")
	description, _ := cmd.Flags().GetString("company-description")
	ptypeInt, _ := cmd.Flags().GetInt("type")

	cfg := loadConfig(cmd)
	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	profile := types.CompanyProfile{Name: name, Description: description}
	ptype := types.PresentationType(ptypeInt)

	res, err := gen.Generate(context.Background(), profile, ptype, os.Stdout)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Render.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(cfg.Render.OutputDir, res.Filename)
	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("writing deck: %w", err)
	}

	recordGeneration(cfg, profile, ptype, res)

	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

// recordGeneration appends to the history log; failures only warn.
func recordGeneration(cfg types.Config, profile types.CompanyProfile, ptype types.PresentationType, res *deck.Result) {
	if cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	err = store.Record(context.Background(), history.Entry{
		CompanyName: profile.Name,
		Type:        ptype,
		CaseIDs:     res.Selection.IDs,
		Source:      res.Selection.Source,
		Filename:    res.Filename,
		CreatedAt:   res.GeneratedAt,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history write failed: %v\n", err)
	}
}

func init() {
	generateCmd.Flags().String("company-name", "", "target company name (required)")
	generateCmd.Flags().String("company-description", "", "target company description (required)")
	generateCmd.Flags().Int("type", 0, "presentation type: 0 (all slides), 1, 2, or 4")
	generateCmd.Flags().String("template", "", "path to the .pptx template")
	generateCmd.Flags().String("catalog", "", "path to the case-study catalog (.json or .xlsx)")
	generateCmd.Flags().String("assets-dir", "", "directory of logo assets")
	generateCmd.Flags().String("output-dir", "", "directory for generated decks")
	generateCmd.Flags().String("token-table", "", "YAML token table override")
	generateCmd.Flags().String("model", "", "ranking model identifier")
	generateCmd.Flags().String("api-key", "", "ranking API key (default: .secrets/anthropic-api-key)")
	generateCmd.MarkFlagRequired("company-name")
	generateCmd.MarkFlagRequired("company-description")

	rootCmd.AddCommand(generateCmd)
}
