// Package landmark loads and saves point-correspondence files for the CLI.
// The fitting core itself owns no file format; this is the caller-side
// serialization the estimator's contract leaves to its consumers.
package landmark

import (
	"encoding/json"
	"fmt"
	"os"

	"slice-align/internal/match"
	"slice-align/pkg/geometry"
)

// Pair is one correspondence record. A zero or omitted weight means the
// default weight of 1.
type Pair struct {
	Source geometry.Point2D `json:"source"`
	Target geometry.Point2D `json:"target"`
	Weight float64          `json:"weight,omitempty"`
}

// File is the on-disk landmark document.
type File struct {
	// Comment is free-form provenance (which sections, who clicked, etc.).
	Comment string `json:"comment,omitempty"`
	Pairs   []Pair `json:"pairs"`
}

// Load reads a landmark file and returns its matches.
func Load(path string) ([]match.PointMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load landmarks: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load landmarks %s: %w", path, err)
	}
	if len(f.Pairs) == 0 {
		return nil, fmt.Errorf("load landmarks %s: no pairs", path)
	}

	matches := make([]match.PointMatch, len(f.Pairs))
	for i, p := range f.Pairs {
		w := p.Weight
		if w == 0 {
			w = 1
		}
		matches[i] = match.NewWeighted(p.Source, p.Target, w)
	}
	return matches, nil
}

// Save writes matches to a landmark file. Unit weights are omitted from the
// output to keep hand-edited files short.
func Save(path, comment string, matches []match.PointMatch) error {
	f := File{Comment: comment, Pairs: make([]Pair, len(matches))}
	for i, m := range matches {
		p := Pair{Source: m.Source, Target: m.Target}
		if m.Weight != 1 {
			p.Weight = m.Weight
		}
		f.Pairs[i] = p
	}

	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("save landmarks: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("save landmarks: %w", err)
	}
	return nil
}
