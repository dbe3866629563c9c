package mlmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactFileName(t *testing.T) {
	assert.Equal(t, "model_competitorA.json", ArtifactFileName("competitorA"))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_competitorA.json"), []byte(linearArtifactJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_competitorB.json"), []byte(`{"broken`), 0o644))

	registry := LoadAll(dir, []string{"competitorA", "competitorB", "competitorC"})

	t.Run("LoadedCompetitors", func(t *testing.T) {
		assert.Equal(t, []string{"competitorA"}, registry.Competitors())
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("FailuresAreRecordedPerCompetitor", func(t *testing.T) {
		failures := registry.Failures()
		require.Len(t, failures, 2)
		assert.Equal(t, "competitorB", failures[0].Competitor)
		assert.Error(t, failures[0].Err)
		assert.Equal(t, "competitorC", failures[1].Competitor)
	})

	t.Run("ModelLookup", func(t *testing.T) {
		m, err := registry.Model("competitorA")
		require.NoError(t, err)
		assert.Equal(t, []string{"year", "month"}, m.Features())
	})

	t.Run("FailedAndUnknownCompetitorsAreTheSameMiss", func(t *testing.T) {
		for _, name := range []string{"competitorB", "competitorC", "nobody"} {
			_, err := registry.Model(name)
			require.ErrorIs(t, err, ErrModelNotFound, name)
			assert.Contains(t, err.Error(), name)
		}
	})
}

func TestLoadAllEmptyDir(t *testing.T) {
	registry := LoadAll(t.TempDir(), []string{"competitorA"})
	assert.Zero(t, registry.Len())
	assert.Empty(t, registry.Competitors())
	assert.Len(t, registry.Failures(), 1)
}
