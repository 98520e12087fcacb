package rangefinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/firegrid/hydrant-reach/internal/geo"
	"github.com/firegrid/hydrant-reach/internal/overlay"
	"github.com/firegrid/hydrant-reach/internal/parallel"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

var (
	// ErrNoSurvivors: zero points survived the build phase. The run
	// yields an empty result; callers decide whether that is an error.
	ErrNoSurvivors = errors.New("no valid output map could be generated")

	// ErrElevationUnavailable: the elevation pass failed or timed out.
	// The base result is unaffected and still returned.
	ErrElevationUnavailable = errors.New("elevation could not be computed, please try without elevation")
)

// layerChunks splits an extract for parallel GeoJSON conversion.
const layerChunks = 4

// ElevationSource resolves elevations for a batch of coordinates in a
// single call.
type ElevationSource interface {
	BatchLookup(ctx context.Context, coords []geo.Coordinate) ([]float64, error)
}

// Merger orchestrates one full run: parallel point build, pairwise
// intersection, colored layer assembly, markers and segments, optional
// elevation annotation.
type Merger struct {
	provider   roadnet.Provider
	engine     overlay.Engine
	elevations ElevationSource
	workers    int
}

func NewMerger(provider roadnet.Provider, engine overlay.Engine, elevations ElevationSource, workers int) *Merger {
	if workers < 1 {
		workers = 1
	}
	return &Merger{
		provider:   provider,
		engine:     engine,
		elevations: elevations,
		workers:    workers,
	}
}

// Run executes the pipeline for one request. Phases run strictly in
// order with a join between each: build, intersect, assemble, elevation.
// On elevation failure the assembled result is returned together with
// ErrElevationUnavailable; on zero survivors an empty result is returned
// with ErrNoSurvivors.
func (m *Merger) Run(ctx context.Context, points []InputPoint, withElevation bool) (*MergedResult, error) {
	analyzed := BuildAll(ctx, m.provider, m.workers, points)
	if len(analyzed) == 0 {
		return &MergedResult{}, ErrNoSurvivors
	}
	slog.Debug("points built", "requested", len(points), "survived", len(analyzed))

	// One color per point plus one reserved for the overlap layer.
	colors := Colors(len(analyzed) + 1)

	res := &MergedResult{
		Center: extractCenter(analyzed[0].Extract, analyzed[0].Input.Coord),
		Points: analyzed,
	}

	for i, ap := range analyzed {
		res.Layers = append(res.Layers, Layer{
			Color:    colors[i],
			Features: m.extractToFeatures(ctx, ap.Extract),
		})
	}

	if len(analyzed) > 1 {
		combined := IntersectAll(ctx, m.engine, m.workers, analyzed)
		if len(combined) > 0 {
			res.Layers = append(res.Layers, Layer{
				Color:    colors[len(analyzed)],
				Features: m.extractToFeatures(ctx, combined),
			})
		}
	}

	var elevErr error
	if withElevation {
		if elevErr = m.annotateElevations(ctx, analyzed); elevErr != nil {
			slog.Warn("elevation pass failed", "error", elevErr)
		}
	}

	m.assembleMarkers(res, analyzed, colors)

	if elevErr != nil {
		return res, fmt.Errorf("%w: %v", ErrElevationUnavailable, elevErr)
	}
	return res, nil
}

// extractToFeatures converts an extract to a GeoJSON feature collection.
// Large extracts are converted in fixed chunks processed concurrently and
// recombined in order; output is identical to sequential conversion.
func (m *Merger) extractToFeatures(ctx context.Context, ex roadnet.Extract) *geojson.FeatureCollection {
	chunks := splitExtract(ex, layerChunks)

	parts, _ := parallel.Map(ctx, m.workers, chunks,
		func(_ context.Context, chunk roadnet.Extract) ([]*geojson.Feature, error) {
			features := make([]*geojson.Feature, 0, len(chunk))
			for _, line := range chunk {
				features = append(features, geojson.NewFeature(line))
			}
			return features, nil
		})

	fc := geojson.NewFeatureCollection()
	for _, part := range parts {
		fc.Features = append(fc.Features, part...)
	}
	return fc
}

func splitExtract(ex roadnet.Extract, n int) []roadnet.Extract {
	if len(ex) == 0 {
		return nil
	}
	if n > len(ex) {
		n = len(ex)
	}
	chunks := make([]roadnet.Extract, 0, n)
	size := (len(ex) + n - 1) / n
	for start := 0; start < len(ex); start += size {
		end := start + size
		if end > len(ex) {
			end = len(ex)
		}
		chunks = append(chunks, ex[start:end])
	}
	return chunks
}

// annotateElevations looks up every point's elevation in one batched
// call and stores the results on the analyzed points.
func (m *Merger) annotateElevations(ctx context.Context, analyzed []*AnalyzedPoint) error {
	if m.elevations == nil {
		return errors.New("no elevation source configured")
	}

	coords := make([]geo.Coordinate, len(analyzed))
	for i, ap := range analyzed {
		coords[i] = ap.Input.Coord
	}

	elevs, err := m.elevations.BatchLookup(ctx, coords)
	if err != nil {
		return err
	}
	if len(elevs) != len(analyzed) {
		return fmt.Errorf("elevation count mismatch: want %d, got %d", len(analyzed), len(elevs))
	}

	for i, ap := range analyzed {
		ap.Elevation = elevs[i]
		ap.HasElevation = true
	}
	return nil
}

// assembleMarkers builds the point markers, origin markers and the
// N·(N-1)/2 connecting segments between point coordinates.
func (m *Merger) assembleMarkers(res *MergedResult, analyzed []*AnalyzedPoint, colors []string) {
	for i, ap := range analyzed {
		res.Markers = append(res.Markers, Marker{
			Coord:   ap.Input.Coord,
			Kind:    ap.Input.Kind,
			Color:   colors[i],
			Tooltip: pointTooltip(ap),
		})
		res.Origins = append(res.Origins, OriginMarker{
			Coord:     ap.Origin.Coord,
			FillColor: colors[i],
		})

		for _, next := range analyzed[i+1:] {
			seg := Segment{From: ap.Input.Coord, To: next.Input.Coord}
			if ap.HasElevation && next.HasElevation {
				// Arrow points toward the lower endpoint.
				if next.Elevation > ap.Elevation {
					seg.Arrow = ArrowReverse
				} else {
					seg.Arrow = ArrowForward
				}
			}
			res.Segments = append(res.Segments, seg)
		}
	}
}

func pointTooltip(ap *AnalyzedPoint) string {
	s := fmt.Sprintf("Point: %s\nHose length: %.0fm\nMode: %s\nType: %s",
		ap.Input.Coord, ap.Input.Radius, ap.Input.Mode, ap.Input.Kind)
	if ap.HasElevation {
		s += fmt.Sprintf("\nElevation: %.0fm", ap.Elevation)
	}
	return s
}

// extractCenter is the mean of the extract's vertices; used to center
// the rendered map.
func extractCenter(ex roadnet.Extract, fallback geo.Coordinate) geo.Coordinate {
	var sum orb.Point
	count := 0
	for _, line := range ex {
		for _, p := range line {
			sum[0] += p[0]
			sum[1] += p[1]
			count++
		}
	}
	if count == 0 {
		return fallback
	}
	return geo.FromPoint(orb.Point{sum[0] / float64(count), sum[1] / float64(count)})
}
