package rangefinder

import (
	"context"
	"log/slog"

	"github.com/firegrid/hydrant-reach/internal/parallel"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

// BuildAll analyzes every input point concurrently, bounded by workers.
// A failing point is logged and omitted; it never aborts its siblings.
// Survivors come back in input order, which keeps color assignment
// deterministic downstream.
func BuildAll(ctx context.Context, provider roadnet.Provider, workers int, points []InputPoint) []*AnalyzedPoint {
	if len(points) == 0 {
		return nil
	}

	results, errs := parallel.Map(ctx, workers, points,
		func(ctx context.Context, pt InputPoint) (*AnalyzedPoint, error) {
			return Analyze(ctx, provider, pt)
		})

	survivors := make([]*AnalyzedPoint, 0, len(points))
	for i, ap := range results {
		if errs[i] != nil {
			slog.Warn("point analysis failed, omitting point",
				"coordinates", points[i].Coord.String(),
				"mode", points[i].Mode,
				"error", errs[i])
			continue
		}
		survivors = append(survivors, ap)
	}
	return survivors
}
