package rangefinder

import (
	"context"

	"github.com/firegrid/hydrant-reach/internal/overlay"
	"github.com/firegrid/hydrant-reach/internal/parallel"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

type extractPair struct {
	a, b roadnet.Extract
}

// pairExtracts generates each unordered pair of distinct points exactly
// once (i<j, no reversed repeats).
func pairExtracts(points []*AnalyzedPoint) []extractPair {
	var pairs []extractPair
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			pairs = append(pairs, extractPair{a: points[i].Extract, b: points[j].Extract})
		}
	}
	return pairs
}

// IntersectAll computes the pairwise geometric intersections of all
// points' extracts in parallel and concatenates the non-empty results.
// With fewer than two points there are no pairs and the result is empty.
func IntersectAll(ctx context.Context, engine overlay.Engine, workers int, points []*AnalyzedPoint) roadnet.Extract {
	pairs := pairExtracts(points)
	if len(pairs) == 0 {
		return nil
	}

	results, _ := parallel.Map(ctx, workers, pairs,
		func(_ context.Context, p extractPair) (roadnet.Extract, error) {
			return engine.Intersect(p.a, p.b), nil
		})

	var combined roadnet.Extract
	for _, ex := range results {
		combined = append(combined, ex...)
	}
	return combined
}
