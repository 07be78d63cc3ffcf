package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/internal/transform"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	kind, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, transform.Affine, kind)

	p := cfg.Params(kind)
	assert.Equal(t, 2.0, p.Threshold)
	assert.Equal(t, 0.995, p.Confidence)
	assert.Equal(t, 1000, p.MaxIterations)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "align.yaml")
	doc := `
model: rigid
threshold: 0.75
min_inliers: 20
seed: 1234
workers: 4
mls:
  base: affine
  alpha: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	kind, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, transform.Rigid, kind)
	assert.Equal(t, 0.75, cfg.Threshold)
	assert.Equal(t, 20, cfg.MinInliers)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "affine", cfg.MLS.Base)

	// Unset keys keep their defaults.
	assert.Equal(t, 0.995, cfg.Confidence)
	assert.Equal(t, 1000, cfg.MaxIterations)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestKindRejectsUnknownModel(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Model = "projective"
	_, err := cfg.Kind()
	assert.Error(t, err)
}
