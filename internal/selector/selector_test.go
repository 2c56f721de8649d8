// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/casedeck/internal/catalog"
	"github.com/pdiddy/casedeck/pkg/types"
)

// mockRanker returns queued responses in order and records every prompt.
type mockRanker struct {
	responses []RankResponse
	err       error
	prompts   []string
}

func (m *mockRanker) Rank(_ context.Context, prompt string) (RankResponse, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return RankResponse{}, m.err
	}
	if len(m.responses) == 0 {
		return RankResponse{}, nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	cases := []types.CaseStudy{
		{
			ID: "med-01", Organization: "Sword Health", Sector: types.SectorHealthcare,
			Summary: "digital physical therapy platform for chronic pain patients",
			Metrics: []types.Metric{{Value: "70", Label: "Recovery Rate"}},
		},
		{
			ID: "log-01", Organization: "Portir", Sector: types.SectorLogistics,
			Summary: "fleet routing automation for last mile delivery",
			Metrics: []types.Metric{{Value: "-80%", Label: "Fuel Costs"}},
		},
		{
			ID: "med-02", Organization: "Vet AI", Sector: types.SectorHealthcare,
			Summary: "triage assistant for veterinary clinics and pet owners",
			Metrics: []types.Metric{{Value: "40K", Label: "Consultations"}},
		},
		{
			ID: "fin-01", Organization: "Lince Capital", Sector: types.SectorFinancial,
			Summary: "investment portfolio reporting automation",
			Metrics: []types.Metric{{Value: "125", Label: "Hours Saved"}},
		},
		{
			ID: "ret-01", Organization: "Radio Popular", Sector: types.SectorRetail,
			Summary: "inventory forecasting for electronics retail chain",
			Metrics: []types.Metric{{Value: "x2.5", Label: "Forecast Accuracy"}},
		},
	}
	store, err := catalog.New(cases)
	require.NoError(t, err)
	return store
}

func testProfile() types.CompanyProfile {
	return types.CompanyProfile{
		Name:        "MedTech Solutions",
		Description: "A healthcare technology company building patient monitoring software for hospitals and clinics across Europe.",
	}
}

func TestSelectPrimaryPath(t *testing.T) {
	store := testStore(t)
	ranker := &mockRanker{responses: []RankResponse{
		{IDs: []string{"med-01", "med-02", "fin-01", "log-01"}},
	}}
	s := New(ranker, store, types.SelectorConfig{})

	result, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"med-01", "med-02", "fin-01", "log-01"}, result.IDs)
	assert.Equal(t, types.SourceModel, result.Source)
	require.Len(t, result.Cases, 4)
	assert.Equal(t, "Sword Health", result.Cases[0].Organization)
	assert.Len(t, ranker.prompts, 1)
}

func TestSelectRetriesOnceThenFallsBack(t *testing.T) {
	tests := []struct {
		name string
		bad  RankResponse
	}{
		{"three ids", RankResponse{IDs: []string{"med-01", "med-02", "fin-01"}}},
		{"unknown id", RankResponse{IDs: []string{"med-01", "med-02", "fin-01", "nope"}}},
		{"duplicate id", RankResponse{IDs: []string{"med-01", "med-01", "fin-01", "log-01"}}},
		{"empty response", RankResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testStore(t)
			ranker := &mockRanker{responses: []RankResponse{tt.bad, tt.bad}}
			s := New(ranker, store, types.SelectorConfig{})

			result, err := s.Select(context.Background(), testProfile(), io.Discard)
			require.NoError(t, err)
			assert.Equal(t, types.SourceFallback, result.Source)
			assert.Len(t, result.IDs, 4)

			// Exactly one retry, with a stricter instruction appended.
			require.Len(t, ranker.prompts, 2)
			assert.NotContains(t, ranker.prompts[0], "previous answer")
			assert.Contains(t, ranker.prompts[1], "previous answer")
		})
	}
}

func TestSelectRetrySucceeds(t *testing.T) {
	store := testStore(t)
	ranker := &mockRanker{responses: []RankResponse{
		{IDs: []string{"med-01"}},
		{IDs: []string{"med-02", "med-01", "fin-01", "ret-01"}},
	}}
	s := New(ranker, store, types.SelectorConfig{})

	result, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, types.SourceModel, result.Source)
	assert.Equal(t, []string{"med-02", "med-01", "fin-01", "ret-01"}, result.IDs)
}

func TestSelectTransportErrorFallsBack(t *testing.T) {
	store := testStore(t)
	ranker := &mockRanker{err: fmt.Errorf("connection refused")}
	s := New(ranker, store, types.SelectorConfig{})

	result, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, types.SourceFallback, result.Source)
	// Transport failures skip the format retry.
	assert.Len(t, ranker.prompts, 1)
}

func TestSelectFallbackDisabled(t *testing.T) {
	store := testStore(t)
	ranker := &mockRanker{err: fmt.Errorf("connection refused")}
	s := New(ranker, store, types.SelectorConfig{DisableFallback: true})

	_, err := s.Select(context.Background(), testProfile(), io.Discard)
	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestSelectNilRankerUsesFallback(t *testing.T) {
	store := testStore(t)
	s := New(nil, store, types.SelectorConfig{})

	result, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, types.SourceFallback, result.Source)
	assert.Len(t, result.IDs, 4)
}

func TestFallbackDeterministic(t *testing.T) {
	store := testStore(t)
	s := New(nil, store, types.SelectorConfig{})

	first, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	second, err := s.Select(context.Background(), testProfile(), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, first.IDs, second.IDs)
}

func TestFallbackPrefersSectorMatches(t *testing.T) {
	store := testStore(t)
	ids := rankByOverlap(testProfile().Description, store.All())

	require.Len(t, ids, 4)
	// Both healthcare entries score the sector bonus plus summary overlap
	// and must outrank everything else for a healthcare profile.
	assert.Contains(t, ids[:2], "med-01")
	assert.Contains(t, ids[:2], "med-02")

	// Distinctness holds on the fallback path too.
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestFallbackTiesKeepCatalogOrder(t *testing.T) {
	cases := make([]types.CaseStudy, 5)
	for i := range cases {
		cases[i] = types.CaseStudy{
			ID:           fmt.Sprintf("tie-%d", i),
			Organization: fmt.Sprintf("Org %d", i),
			Sector:       types.SectorTechnology,
			Summary:      "identical summary text",
			Metrics:      []types.Metric{{Value: "1", Label: "One"}},
		}
	}
	store, err := catalog.New(cases)
	require.NoError(t, err)

	ids := rankByOverlap("a description mentioning nothing relevant at all", store.All())
	assert.Equal(t, []string{"tie-0", "tie-1", "tie-2", "tie-3"}, ids)
}

func TestBuildPromptContents(t *testing.T) {
	store := testStore(t)
	prompt, err := buildPrompt(testProfile(), store.All())
	require.NoError(t, err)

	assert.Contains(t, prompt, "MedTech Solutions")
	assert.Contains(t, prompt, "ID: med-01")
	assert.Contains(t, prompt, "Sword Health")
	assert.Contains(t, prompt, "Recovery Rate")
	assert.Contains(t, prompt, "industry alignment")
	// Logo references never reach the model.
	assert.False(t, strings.Contains(prompt, "logo"), "prompt must not mention logos")
}
