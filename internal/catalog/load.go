// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/casedeck/pkg/types"
)

// sourceDocument is the JSON catalog file shape.
type sourceDocument struct {
	CaseStudies []types.CaseStudy `json:"case_studies"`
}

// Load reads the catalog source file and returns a validated Store. The
// format is chosen by extension: .json or .xlsx.
func Load(path string) (*Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, &types.ConfigError{Reason: fmt.Sprintf("unsupported catalog format %q", filepath.Ext(path))}
	}
}

func loadJSON(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("reading catalog: %v", err)}
	}
	var doc sourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("parsing catalog %s: %v", filepath.Base(path), err)}
	}
	return New(doc.CaseStudies)
}

// loadXLSX reads the first sheet. Row 1 is a header; columns are matched
// by name so column order in the workbook does not matter. Metric pairs
// use metric_1_value/metric_1_label through metric_4_*.
func loadXLSX(path string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("opening workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &types.ConfigError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &types.ConfigError{Reason: fmt.Sprintf("reading sheet %s: %v", sheets[0], err)}
	}
	if len(rows) < 2 {
		return nil, &types.ConfigError{Reason: "workbook has no data rows"}
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []types.CaseStudy
	for _, row := range rows[1:] {
		if len(row) == 0 || cell(row, "id") == "" {
			continue
		}
		cs := types.CaseStudy{
			ID:           cell(row, "id"),
			Organization: cell(row, "organization"),
			Title:        cell(row, "title"),
			Sector:       types.Sector(strings.ToLower(cell(row, "sector"))),
			Challenge:    cell(row, "challenge"),
			Solution:     cell(row, "solution"),
			Impact:       cell(row, "impact"),
			LogoRef:      cell(row, "logo"),
			Summary:      cell(row, "summary"),
		}
		for n := 1; n <= 4; n++ {
			value := cell(row, fmt.Sprintf("metric_%d_value", n))
			label := cell(row, fmt.Sprintf("metric_%d_label", n))
			if value == "" && label == "" {
				continue
			}
			cs.Metrics = append(cs.Metrics, types.Metric{Value: value, Label: label})
		}
		records = append(records, cs)
	}

	return New(records)
}
