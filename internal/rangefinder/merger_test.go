package rangefinder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/goleak"

	"github.com/firegrid/hydrant-reach/internal/geo"
	"github.com/firegrid/hydrant-reach/internal/overlay"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubElevations returns fixed elevations per call, or a canned error.
type stubElevations struct {
	elevs []float64
	err   error
}

func (s *stubElevations) BatchLookup(_ context.Context, coords []geo.Coordinate) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.elevs) != len(coords) {
		return nil, fmt.Errorf("fixture has %d elevations for %d coords", len(s.elevs), len(coords))
	}
	return s.elevs, nil
}

func newTestMerger(provider roadnet.Provider, engine overlay.Engine, elevs ElevationSource) *Merger {
	return NewMerger(provider, engine, elevs, 3)
}

func TestMerger_SinglePoint(t *testing.T) {
	m := newTestMerger(&stubProvider{}, &countingEngine{}, nil)

	res, err := m.Run(context.Background(), testPoints(1), false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Layers) != 1 {
		t.Errorf("expected 1 layer, got %d", len(res.Layers))
	}
	if len(res.Segments) != 0 {
		t.Errorf("expected no segments for a single point, got %d", len(res.Segments))
	}
	if len(res.Markers) != 1 || len(res.Origins) != 1 {
		t.Errorf("expected 1 marker and 1 origin, got %d/%d", len(res.Markers), len(res.Origins))
	}
	if res.Empty() {
		t.Error("result with one survivor reported empty")
	}
}

func TestMerger_FourPoints(t *testing.T) {
	e := &countingEngine{}
	m := newTestMerger(&stubProvider{}, e, nil)

	res, err := m.Run(context.Background(), testPoints(4), false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Four point layers plus the combined overlap layer.
	if len(res.Layers) != 5 {
		t.Fatalf("expected 5 layers, got %d", len(res.Layers))
	}
	colors := Colors(5)
	for i, layer := range res.Layers {
		if layer.Color != colors[i] {
			t.Errorf("layer %d: expected color %s, got %s", i, colors[i], layer.Color)
		}
	}

	if len(res.Segments) != 6 {
		t.Errorf("expected C(4,2)=6 segments, got %d", len(res.Segments))
	}
	for _, seg := range res.Segments {
		if seg.Arrow != ArrowNone {
			t.Errorf("expected no arrow without elevations, got %q", seg.Arrow)
		}
	}
	if len(res.Markers) != 4 {
		t.Errorf("expected 4 markers, got %d", len(res.Markers))
	}
}

func TestMerger_PartialFailure(t *testing.T) {
	pts := testPoints(3)
	p := &stubProvider{fail: map[geo.Coordinate]error{pts[1].Coord: roadnet.ErrNoNetwork}}
	m := newTestMerger(p, &countingEngine{}, nil)

	res, err := m.Run(context.Background(), pts, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Points) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(res.Points))
	}
	// Counts derive from survivors, not from the request.
	if len(res.Segments) != 1 {
		t.Errorf("expected 1 segment between 2 survivors, got %d", len(res.Segments))
	}
	// 2 point layers + overlap layer.
	if len(res.Layers) != 3 {
		t.Errorf("expected 3 layers, got %d", len(res.Layers))
	}
}

func TestMerger_NoSurvivors(t *testing.T) {
	pts := testPoints(2)
	p := &stubProvider{fail: map[geo.Coordinate]error{
		pts[0].Coord: roadnet.ErrNoNetwork,
		pts[1].Coord: roadnet.ErrNoNetwork,
	}}
	m := newTestMerger(p, &countingEngine{}, nil)

	res, err := m.Run(context.Background(), pts, false)
	if !errors.Is(err, ErrNoSurvivors) {
		t.Fatalf("expected ErrNoSurvivors, got %v", err)
	}
	if !res.Empty() {
		t.Error("expected an empty result")
	}
}

func TestMerger_ElevationArrows(t *testing.T) {
	elevs := &stubElevations{elevs: []float64{510, 480}}
	m := newTestMerger(&stubProvider{}, &countingEngine{}, elevs)

	res, err := m.Run(context.Background(), testPoints(2), true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	// First point is higher; downhill points toward To.
	if res.Segments[0].Arrow != ArrowForward {
		t.Errorf("expected forward arrow, got %q", res.Segments[0].Arrow)
	}
	for _, mk := range res.Markers {
		if !strings.Contains(mk.Tooltip, "Elevation:") {
			t.Errorf("tooltip missing elevation: %q", mk.Tooltip)
		}
	}
}

func TestMerger_ElevationArrowReverse(t *testing.T) {
	elevs := &stubElevations{elevs: []float64{480, 510}}
	m := newTestMerger(&stubProvider{}, &countingEngine{}, elevs)

	res, err := m.Run(context.Background(), testPoints(2), true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Segments[0].Arrow != ArrowReverse {
		t.Errorf("expected reverse arrow, got %q", res.Segments[0].Arrow)
	}
}

func TestMerger_ElevationFailureKeepsBaseResult(t *testing.T) {
	elevs := &stubElevations{err: context.DeadlineExceeded}
	m := newTestMerger(&stubProvider{}, &countingEngine{}, elevs)

	res, err := m.Run(context.Background(), testPoints(2), true)
	if !errors.Is(err, ErrElevationUnavailable) {
		t.Fatalf("expected ErrElevationUnavailable, got %v", err)
	}

	// The base result is intact and usable.
	if len(res.Layers) != 3 || len(res.Segments) != 1 {
		t.Errorf("base result damaged: %d layers, %d segments", len(res.Layers), len(res.Segments))
	}
	if res.Segments[0].Arrow != ArrowNone {
		t.Errorf("expected no arrow after failed elevation pass, got %q", res.Segments[0].Arrow)
	}
}

func TestMerger_NoElevationSource(t *testing.T) {
	m := newTestMerger(&stubProvider{}, &countingEngine{}, nil)

	_, err := m.Run(context.Background(), testPoints(1), true)
	if !errors.Is(err, ErrElevationUnavailable) {
		t.Errorf("expected ErrElevationUnavailable without a source, got %v", err)
	}
}

func TestMerger_Idempotent(t *testing.T) {
	m := newTestMerger(&stubProvider{}, &countingEngine{}, nil)

	first, err := m.Run(context.Background(), testPoints(3), false)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := m.Run(context.Background(), testPoints(3), false)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first.Layers) != len(second.Layers) || len(first.Segments) != len(second.Segments) {
		t.Error("repeated runs produced different shapes")
	}
	for i := range first.Layers {
		if first.Layers[i].Color != second.Layers[i].Color {
			t.Errorf("layer %d color differs between runs", i)
		}
	}
	if first.Center != second.Center {
		t.Error("center differs between runs")
	}
}

func TestExtractToFeatures_ChunkedMatchesSequential(t *testing.T) {
	m := newTestMerger(&stubProvider{}, &countingEngine{}, nil)

	var ex roadnet.Extract
	for i := 0; i < 11; i++ {
		ex = append(ex, orb.LineString{
			{11.5 + float64(i)*0.001, 48.15},
			{11.5 + float64(i+1)*0.001, 48.15},
		})
	}

	fc := m.extractToFeatures(context.Background(), ex)
	if len(fc.Features) != len(ex) {
		t.Fatalf("expected %d features, got %d", len(ex), len(fc.Features))
	}
	for i, f := range fc.Features {
		line, ok := f.Geometry.(orb.LineString)
		if !ok {
			t.Fatalf("feature %d is not a LineString", i)
		}
		if line[0] != ex[i][0] || line[1] != ex[i][1] {
			t.Errorf("feature %d out of order", i)
		}
	}
}

func TestSplitExtract(t *testing.T) {
	ex := make(roadnet.Extract, 10)
	chunks := splitExtract(ex, 4)

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != len(ex) {
		t.Errorf("chunks cover %d of %d lines", total, len(ex))
	}
	if len(chunks) > 4 {
		t.Errorf("expected at most 4 chunks, got %d", len(chunks))
	}

	if got := splitExtract(nil, 4); got != nil {
		t.Errorf("expected nil chunks for empty extract, got %d", len(got))
	}
	if got := splitExtract(make(roadnet.Extract, 2), 4); len(got) != 2 {
		t.Errorf("expected 2 single-line chunks, got %d", len(got))
	}
}
