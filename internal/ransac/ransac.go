// Package ransac implements the outlier-robust transform estimator: a
// randomized consensus search that repeatedly fits a model to minimal random
// subsets of the point matches, scores each candidate by its inlier support,
// and refits the best candidate on its full consensus set.
package ransac

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"slice-align/internal/match"
	"slice-align/internal/transform"
)

// ErrNotEnoughInliers indicates the search terminated without a candidate
// reaching the configured minimum inlier count.
var ErrNotEnoughInliers = errors.New("not enough inliers")

const (
	defaultConfidence    = 0.995
	defaultMaxIterations = 1000
	defaultMinIterations = 10
	defaultFitRetries    = 3

	// trialChunk is the number of trials scheduled between re-evaluations
	// of the adaptive iteration bound. It is fixed so the set of executed
	// trials, and therefore the result, does not depend on Workers.
	trialChunk = 32
)

// Params configures a consensus search.
type Params struct {
	// Kind selects the model to estimate. MovingLeastSquares is rejected:
	// an interpolating transform makes every sample a perfect candidate, so
	// consensus scoring is meaningless for it.
	Kind transform.Kind

	// Threshold is the inlier residual bound tau, in target-space units.
	Threshold float64

	// MinInliers is the smallest consensus set accepted as a success.
	// Values below the model minimum are raised to it.
	MinInliers int

	// Confidence is the target probability of having drawn at least one
	// all-inlier sample; it drives the adaptive iteration bound.
	// Defaults to 0.995.
	Confidence float64

	// MaxIterations caps the number of trials. Defaults to 1000.
	MaxIterations int

	// MinIterations floors the number of trials regardless of how early
	// the adaptive bound is met. Defaults to 10.
	MinIterations int

	// FitRetries bounds how often a single trial may redraw its sample
	// after a degenerate fit. Defaults to 3.
	FitRetries int

	// Seed fixes the random sequence. Trial i draws from its own generator
	// seeded with Seed+i, so results are reproducible for any Workers.
	Seed int64

	// Workers is the number of goroutines scoring trials. Values below 1
	// run sequentially.
	Workers int
}

func (p Params) withDefaults() Params {
	if p.Confidence <= 0 || p.Confidence >= 1 {
		p.Confidence = defaultConfidence
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = defaultMaxIterations
	}
	if p.MinIterations <= 0 {
		p.MinIterations = defaultMinIterations
	}
	if p.MinIterations > p.MaxIterations {
		p.MinIterations = p.MaxIterations
	}
	if p.FitRetries < 0 {
		p.FitRetries = defaultFitRetries
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	if min := p.Kind.MinMatches(); p.MinInliers < min {
		p.MinInliers = min
	}
	return p
}

// Result is the outcome of a successful consensus search.
type Result struct {
	// Model is the model refit on the full consensus set.
	Model transform.Model

	// Inliers is the consensus set of the best candidate.
	Inliers []match.PointMatch

	// InlierIndices are the positions of the inliers in the input slice,
	// ascending.
	InlierIndices []int

	// Cost is the root-mean-square residual of the inliers under Model.
	Cost float64

	// Iterations is the number of trials scheduled before termination.
	Iterations int
}

// candidate is one scored trial. Ordering: more inliers wins, ties broken by
// lower inlier residual sum, then by lower trial index. The trial index
// tie-break makes the parallel reduction identical to a sequential scan.
type candidate struct {
	trial    int
	model    transform.Model
	inliers  []int
	residSum float64
}

func better(a, b *candidate) bool {
	if b == nil {
		return a != nil
	}
	if a == nil {
		return false
	}
	if len(a.inliers) != len(b.inliers) {
		return len(a.inliers) > len(b.inliers)
	}
	if a.residSum != b.residSum {
		return a.residSum < b.residSum
	}
	return a.trial < b.trial
}

// Run searches for the model of p.Kind best supported by the matches.
// Identical seed and input ordering produce identical results. Cancelling
// ctx stops the search early; if at least one candidate was accepted by
// then, the best one so far is refit and returned instead of an error.
func Run(ctx context.Context, matches []match.PointMatch, p Params) (*Result, error) {
	p = p.withDefaults()
	if p.Kind == transform.MovingLeastSquares {
		return nil, fmt.Errorf("ransac: consensus search over an interpolating model is not meaningful")
	}
	if p.Threshold <= 0 {
		return nil, fmt.Errorf("ransac: threshold must be positive, got %g", p.Threshold)
	}

	sampleSize := p.Kind.MinMatches()
	if len(matches) < sampleSize {
		return nil, fmt.Errorf("ransac: %w: have %d, need %d",
			transform.ErrInsufficientData, len(matches), sampleSize)
	}
	if len(matches) < p.MinInliers {
		return nil, fmt.Errorf("ransac: %w: %d matches cannot reach %d inliers",
			transform.ErrInsufficientData, len(matches), p.MinInliers)
	}

	var best *candidate
	needed := p.MaxIterations
	done := 0

	for done < needed && ctx.Err() == nil {
		chunk := needed - done
		if chunk > trialChunk {
			chunk = trialChunk
		}

		for _, c := range runChunk(ctx, matches, p, sampleSize, done, chunk) {
			if better(c, best) {
				best = c
			}
		}
		done += chunk

		if best != nil {
			ratio := float64(len(best.inliers)) / float64(len(matches))
			if n := requiredIterations(p.Confidence, ratio, sampleSize); n < needed {
				needed = n
			}
			if needed < p.MinIterations {
				needed = p.MinIterations
			}
		}
	}

	if best == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("ransac: %w: no well-conditioned sample in %d trials",
			ErrNotEnoughInliers, done)
	}
	if len(best.inliers) < p.MinInliers && ctx.Err() == nil {
		// A cancelled search hands back whatever it found; a completed one
		// must meet the configured minimum.
		return nil, fmt.Errorf("ransac: %w: best candidate has %d of %d required",
			ErrNotEnoughInliers, len(best.inliers), p.MinInliers)
	}

	return refit(matches, p, best, done)
}

// runChunk scores trials [first, first+count) and returns their candidates
// in trial order. Trials run across p.Workers goroutines; each writes only
// its own slot, so no locking is needed beyond the final join.
func runChunk(ctx context.Context, matches []match.PointMatch, p Params, sampleSize, first, count int) []*candidate {
	out := make([]*candidate, count)

	if p.Workers == 1 {
		for i := 0; i < count; i++ {
			if ctx.Err() != nil {
				break
			}
			out[i] = runTrial(matches, p, sampleSize, first+i)
		}
		return out
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				out[i] = runTrial(matches, p, sampleSize, first+i)
			}
		}()
	}
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}
		next <- i
	}
	close(next)
	wg.Wait()
	return out
}

// runTrial draws a minimal sample, fits a candidate model, and scores it over
// all matches. Degenerate samples are redrawn up to p.FitRetries times; a
// trial that never fits returns nil.
func runTrial(matches []match.PointMatch, p Params, sampleSize, trial int) *candidate {
	rng := rand.New(rand.NewSource(p.Seed + int64(trial)))

	for attempt := 0; attempt <= p.FitRetries; attempt++ {
		indices := rng.Perm(len(matches))[:sampleSize]
		model := p.Kind.New()
		if err := model.Fit(match.Select(matches, indices)); err != nil {
			if errors.Is(err, transform.ErrIllConditioned) {
				continue
			}
			return nil
		}

		c := &candidate{trial: trial, model: model}
		for i, m := range matches {
			if r := m.Residual(model); r <= p.Threshold {
				c.inliers = append(c.inliers, i)
				c.residSum += r
			}
		}
		return c
	}
	return nil
}

// refit re-estimates the model on the full consensus set. If the
// over-determined refit itself degenerates, the sample-fit candidate model is
// kept, which is still a valid (if less refined) estimate.
func refit(matches []match.PointMatch, p Params, best *candidate, iterations int) (*Result, error) {
	inliers := match.Select(matches, best.inliers)

	model := p.Kind.New()
	if err := model.Fit(inliers); err != nil {
		model = best.model
	}

	var sumSq float64
	for _, m := range inliers {
		r := m.Residual(model)
		sumSq += r * r
	}

	return &Result{
		Model:         model,
		Inliers:       inliers,
		InlierIndices: append([]int(nil), best.inliers...),
		Cost:          math.Sqrt(sumSq / float64(len(inliers))),
		Iterations:    iterations,
	}, nil
}

// requiredIterations is the standard RANSAC convergence bound: the number of
// trials N such that, with inlier ratio r and sample size k, the probability
// of at least one all-inlier sample reaches the confidence c:
//
//	N = ln(1-c) / ln(1-r^k)
func requiredIterations(confidence, ratio float64, sampleSize int) int {
	if ratio <= 0 {
		return math.MaxInt32
	}
	if ratio >= 1 {
		return 1
	}
	pGood := math.Pow(ratio, float64(sampleSize))
	if pGood >= 1 {
		return 1
	}
	n := math.Log(1-confidence) / math.Log(1-pGood)
	if math.IsNaN(n) || math.IsInf(n, 0) || n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(n))
}
