package landmark

import (
	"encoding/json"
	"fmt"
	"os"

	"slice-align/internal/transform"
	"slice-align/pkg/geometry"
)

// TransformFile is the persisted form of a fitted global transform. Local
// models (moving least squares) are not persisted; they are defined by their
// control landmarks, which Save above already covers.
type TransformFile struct {
	Model  string        `json:"model"`
	Matrix [2][3]float64 `json:"matrix"`
}

// SaveTransform writes a fitted global model to path.
func SaveTransform(path string, kind transform.Kind, model transform.Model) error {
	lin, ok := model.(transform.Linear)
	if !ok {
		return fmt.Errorf("save transform: %s has no global matrix form", kind)
	}

	f := TransformFile{Model: kind.String(), Matrix: lin.AsAffine().ToMatrix()}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("save transform: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("save transform: %w", err)
	}
	return nil
}

// LoadTransform reads a persisted transform back as an affine matrix plus
// its declared kind.
func LoadTransform(path string) (transform.Kind, geometry.AffineTransform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, geometry.AffineTransform{}, fmt.Errorf("load transform: %w", err)
	}

	var f TransformFile
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, geometry.AffineTransform{}, fmt.Errorf("load transform %s: %w", path, err)
	}
	kind, err := transform.ParseKind(f.Model)
	if err != nil {
		return 0, geometry.AffineTransform{}, fmt.Errorf("load transform %s: %w", path, err)
	}
	if kind == transform.MovingLeastSquares {
		return 0, geometry.AffineTransform{}, fmt.Errorf("load transform %s: mls transforms are defined by their landmarks", path)
	}
	return kind, geometry.FromMatrix(f.Matrix), nil
}
