// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/casedeck/pkg/types"
)

// testCases builds n valid catalog entries.
func testCases(n int) []types.CaseStudy {
	sectors := []types.Sector{
		types.SectorHealthcare, types.SectorLogistics,
		types.SectorMedia, types.SectorFinancial,
	}
	out := make([]types.CaseStudy, n)
	for i := range out {
		out[i] = types.CaseStudy{
			ID:           fmt.Sprintf("cs-%03d", i+1),
			Organization: fmt.Sprintf("Org %d", i+1),
			Title:        fmt.Sprintf("Engagement %d", i+1),
			Sector:       sectors[i%len(sectors)],
			Challenge:    "Legacy processes slowed operations.",
			Solution:     "Automated the workflow end to end.",
			Impact:       "Cut handling time substantially.",
			Metrics:      []types.Metric{{Value: "320", Label: "Hours Saved"}},
			Summary:      fmt.Sprintf("Org %d automation engagement", i+1),
		}
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		s, err := New(testCases(5))
		require.NoError(t, err)
		assert.Equal(t, 5, s.Len())

		cs, ok := s.Get("cs-003")
		require.True(t, ok)
		assert.Equal(t, "Org 3", cs.Organization)
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := New(nil)
		var cfgErr *types.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("fewer than four entries", func(t *testing.T) {
		_, err := New(testCases(3))
		var cfgErr *types.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "at least 4")
	})

	t.Run("duplicate id", func(t *testing.T) {
		cases := testCases(5)
		cases[4].ID = cases[0].ID
		_, err := New(cases)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate id")
	})

	t.Run("unknown sector", func(t *testing.T) {
		cases := testCases(4)
		cases[2].Sector = "aerospace"
		_, err := New(cases)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sector")
	})

	t.Run("metric count out of range", func(t *testing.T) {
		cases := testCases(4)
		cases[1].Metrics = nil
		_, err := New(cases)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics")
	})
}

func TestStoreImmutability(t *testing.T) {
	s, err := New(testCases(4))
	require.NoError(t, err)

	all := s.All()
	all[0].Organization = "Mutated"

	fresh, ok := s.Get("cs-001")
	require.True(t, ok)
	assert.Equal(t, "Org 1", fresh.Organization)
}

func TestResolve(t *testing.T) {
	s, err := New(testCases(6))
	require.NoError(t, err)

	cases, err := s.Resolve([]string{"cs-004", "cs-001"})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Org 4", cases[0].Organization)
	assert.Equal(t, "Org 1", cases[1].Organization)

	_, err = s.Resolve([]string{"cs-004", "missing"})
	assert.Error(t, err)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	doc := sourceDocument{CaseStudies: testCases(4)}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
}

func TestLoadXLSXMatchesJSON(t *testing.T) {
	dir := t.TempDir()
	cases := testCases(4)

	jsonPath := filepath.Join(dir, "catalog.json")
	data, err := json.Marshal(sourceDocument{CaseStudies: cases})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(jsonPath, data, 0o644))

	xlsxPath := filepath.Join(dir, "catalog.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	header := []interface{}{
		"id", "organization", "title", "sector", "challenge", "solution",
		"impact", "metric_1_value", "metric_1_label", "logo", "summary",
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, cs := range cases {
		row := []interface{}{
			cs.ID, cs.Organization, cs.Title, string(cs.Sector), cs.Challenge,
			cs.Solution, cs.Impact, cs.Metrics[0].Value, cs.Metrics[0].Label,
			cs.LogoRef, cs.Summary,
		}
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row))
	}
	require.NoError(t, f.SaveAs(xlsxPath))

	fromJSON, err := Load(jsonPath)
	require.NoError(t, err)
	fromXLSX, err := Load(xlsxPath)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.All(), fromXLSX.All())
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("catalog.csv")
	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
