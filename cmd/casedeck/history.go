// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casedeck/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent deck generations",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	cfg := loadConfig(cmd)

	if cfg.History.Path == "" {
		return fmt.Errorf("history is disabled: set history.path in casedeck.yaml")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No generations recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-24s  %-4s  %-8s  %s\n",
		"When", "Company", "Type", "Source", "Cases")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, e := range entries {
		company := e.CompanyName
		if len(company) > 24 {
			company = company[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-24s  %-4d  %-8s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			company, int(e.Type), e.Source, strings.Join(e.CaseIDs, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d generations\n", len(entries))
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum entries to show")

	rootCmd.AddCommand(historyCmd)
}
