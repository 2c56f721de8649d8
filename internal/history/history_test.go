// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/casedeck/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "casedeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.Record(ctx, Entry{
			CompanyName: "MedTech Solutions",
			Type:        types.PresentationFour,
			CaseIDs:     []string{"a", "b", "c", "d"},
			Source:      types.SourceModel,
			Filename:    "medtech_solutions_4-cases.pptx",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.Equal(t, "MedTech Solutions", got[0].CompanyName)
	assert.Equal(t, types.PresentationFour, got[0].Type)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got[0].CaseIDs)
	assert.Equal(t, types.SourceModel, got[0].Source)
	assert.Equal(t, base.Add(2*time.Minute), got[0].CreatedAt)
}

func TestRecentDefaultsLimit(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casedeck.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Entry{
		CompanyName: "Acme",
		Type:        types.PresentationAll,
		CaseIDs:     []string{"w", "x", "y", "z"},
		Source:      types.SourceFallback,
		Filename:    "acme_all-slides.pptx",
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.SourceFallback, got[0].Source)
}
