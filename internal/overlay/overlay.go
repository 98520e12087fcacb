// Package overlay computes the geometric intersection of two geometry
// extracts: the street segments both networks can reach.
package overlay

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

// Engine computes the intersection of two edge extracts. The result may
// be empty.
type Engine interface {
	Intersect(a, b roadnet.Extract) roadnet.Extract
}

// SegmentEngine intersects extracts segment-wise: a segment is part of
// the overlap when it appears in both extracts, regardless of direction.
// Street networks fetched for nearby points share identical segment
// geometry, so equality (snapped to ~1cm) is the right notion of overlap.
type SegmentEngine struct{}

func NewSegmentEngine() *SegmentEngine {
	return &SegmentEngine{}
}

// snapGrid quantizes degrees to ~1e-7, about a centimeter at the equator.
const snapGrid = 1e7

type segmentKey struct {
	ax, ay, bx, by int64
}

func snap(v float64) int64 {
	return int64(math.Round(v * snapGrid))
}

// key normalizes a segment so direction does not matter.
func key(a, b orb.Point) segmentKey {
	k := segmentKey{snap(a[0]), snap(a[1]), snap(b[0]), snap(b[1])}
	if k.ax > k.bx || (k.ax == k.bx && k.ay > k.by) {
		k.ax, k.ay, k.bx, k.by = k.bx, k.by, k.ax, k.ay
	}
	return k
}

func (e *SegmentEngine) Intersect(a, b roadnet.Extract) roadnet.Extract {
	seen := make(map[segmentKey]struct{})
	for _, line := range a {
		for i := 0; i+1 < len(line); i++ {
			seen[key(line[i], line[i+1])] = struct{}{}
		}
	}

	var out roadnet.Extract
	emitted := make(map[segmentKey]struct{})
	for _, line := range b {
		for i := 0; i+1 < len(line); i++ {
			k := key(line[i], line[i+1])
			if _, ok := seen[k]; !ok {
				continue
			}
			if _, dup := emitted[k]; dup {
				continue
			}
			emitted[k] = struct{}{}
			out = append(out, orb.LineString{line[i], line[i+1]})
		}
	}
	return out
}
