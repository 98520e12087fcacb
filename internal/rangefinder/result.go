package rangefinder

import (
	"github.com/paulmach/orb/geojson"

	"github.com/firegrid/hydrant-reach/internal/geo"
)

// Layer is one colored geometry layer of the merged map.
type Layer struct {
	Color    string
	Features *geojson.FeatureCollection
}

// Marker is the display marker for one analyzed point.
type Marker struct {
	Coord   geo.Coordinate
	Kind    PointKind
	Color   string
	Tooltip string
}

// OriginMarker is the small neutral dot at a point's snapped network
// origin, filled with the point's layer color.
type OriginMarker struct {
	Coord     geo.Coordinate
	FillColor string
}

type SegmentArrow string

const (
	ArrowNone    SegmentArrow = ""
	ArrowForward SegmentArrow = "forward" // downhill toward To
	ArrowReverse SegmentArrow = "reverse" // downhill toward From
)

// Segment connects two analyzed points' coordinates. Arrow carries the
// downhill direction when elevations were computed.
type Segment struct {
	From  geo.Coordinate
	To    geo.Coordinate
	Arrow SegmentArrow
}

// MergedResult is the assembled output of one run: colored regions,
// markers and connecting segments, ready for rendering.
type MergedResult struct {
	Center   geo.Coordinate
	Layers   []Layer
	Markers  []Marker
	Origins  []OriginMarker
	Segments []Segment

	// Points are the surviving analyzed points, in input order.
	Points []*AnalyzedPoint
}

// Empty reports whether the run produced nothing to draw.
func (r *MergedResult) Empty() bool {
	return r == nil || len(r.Points) == 0
}
