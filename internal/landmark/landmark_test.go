package landmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/internal/match"
	"slice-align/internal/transform"
	"slice-align/pkg/geometry"
)

func TestLandmarkRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pairs.json")
	matches := []match.PointMatch{
		match.New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 1)),
		match.NewWeighted(geometry.NewPoint2D(10, 20), geometry.NewPoint2D(11, 22), 0.5),
	}

	require.NoError(t, Save(path, "section 4 to section 5", matches))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(matches, loaded))
}

func TestLoadDefaultsWeight(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pairs.json")
	doc := `{"pairs":[{"source":{"x":1,"y":2},"target":{"x":3,"y":4}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 1.0, loaded[0].Weight)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("empty pairs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"pairs":[]}`), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestTransformRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transform.json")

	model := &transform.AffineModel{}
	want := geometry.AffineTransform{A: 1.1, B: 0.1, TX: 5, C: -0.2, D: 0.9, TY: -3}
	model.SetAffine(want)

	require.NoError(t, SaveTransform(path, transform.Affine, model))

	kind, got, err := LoadTransform(path)
	require.NoError(t, err)
	assert.Equal(t, transform.Affine, kind)
	assert.Equal(t, want, got)
}

func TestSaveTransformRejectsLocalModels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transform.json")
	mls := transform.NewMLS(transform.Similarity, 1)
	err := SaveTransform(path, transform.MovingLeastSquares, mls)
	assert.Error(t, err)
}
