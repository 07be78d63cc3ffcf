package cli

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slice-align/internal/landmark"
	"slice-align/internal/match"
	"slice-align/internal/transform"
	"slice-align/pkg/geometry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd(testLogger())
	cmd.SetArgs([]string{"version"})
	assert.NoError(t, cmd.Execute())
}

func TestFitCommandEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pairsPath := filepath.Join(dir, "pairs.json")
	outPath := filepath.Join(dir, "transform.json")

	truth := geometry.Rotation(0.05).Compose(geometry.Translation(8, -3))
	var matches []match.PointMatch
	for i := 0; i < 10; i++ {
		src := geometry.NewPoint2D(float64(i*13%97), float64(i*29%83))
		matches = append(matches, match.New(src, truth.Apply(src)))
	}
	// One gross outlier the consensus search must reject.
	matches = append(matches, match.New(geometry.NewPoint2D(50, 50), geometry.NewPoint2D(900, 900)))
	require.NoError(t, landmark.Save(pairsPath, "", matches))

	cmd := NewRootCmd(testLogger())
	cmd.SetArgs([]string{
		"fit",
		"--pairs", pairsPath,
		"--out", outPath,
		"--model", "rigid",
		"--threshold", "0.5",
		"--seed", "3",
	})
	require.NoError(t, cmd.Execute())

	kind, got, err := landmark.LoadTransform(outPath)
	require.NoError(t, err)
	assert.Equal(t, transform.Rigid, kind)

	probe := geometry.NewPoint2D(40, 40)
	want := truth.Apply(probe)
	assert.InDelta(t, want.X, got.Apply(probe).X, 1e-6)
	assert.InDelta(t, want.Y, got.Apply(probe).Y, 1e-6)
}

func TestFitCommandRejectsMLS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pairsPath := filepath.Join(dir, "pairs.json")
	require.NoError(t, landmark.Save(pairsPath, "", []match.PointMatch{
		match.New(geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 1)),
		match.New(geometry.NewPoint2D(1, 0), geometry.NewPoint2D(2, 1)),
	}))

	cmd := NewRootCmd(testLogger())
	cmd.SetArgs([]string{"fit", "--pairs", pairsPath, "--model", "mls"})
	assert.Error(t, cmd.Execute())
}

func TestFitCommandMissingPairs(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd(testLogger())
	cmd.SetArgs([]string{"fit"})
	assert.Error(t, cmd.Execute())
}
