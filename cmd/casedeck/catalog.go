// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casedeck/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the case-study catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the catalog and report whether it is usable",
	Long: `Validate loads the configured catalog file and runs the same checks the
generator applies at startup: distinct non-empty ids, known sectors, and
one to four metrics per entry.`,
	RunE: runCatalogValidate,
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	store, err := catalog.Load(cfg.Render.CatalogPath)
	if err != nil {
		return err
	}

	fmt.Printf("OK: %d case studies in %s\n", store.Len(), cfg.Render.CatalogPath)
	return nil
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	store, err := catalog.Load(cfg.Render.CatalogPath)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.All())
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-14s  %-40s  %s\n",
		"ID", "Organization", "Sector", "Title", "Metrics")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))
	for _, cs := range store.All() {
		title := cs.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		org := cs.Organization
		if len(org) > 24 {
			org = org[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-24s  %-14s  %-40s  %d\n",
			cs.ID, org, cs.Sector, title, len(cs.Metrics))
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", store.Len())
	return nil
}

func init() {
	catalogCmd.PersistentFlags().String("catalog", "", "path to the case-study catalog (.json or .xlsx)")
	catalogListCmd.Flags().Bool("json", false, "output entries as JSON")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
