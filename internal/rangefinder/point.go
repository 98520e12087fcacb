// Package rangefinder computes, for a set of input points, the street
// network reachable within each point's hose length and merges the
// per-point regions into one combined, colored result.
package rangefinder

import (
	"context"
	"errors"
	"fmt"

	"github.com/firegrid/hydrant-reach/internal/geo"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

var (
	// ErrUnreachableNetwork: the provider could not build a graph for a
	// point. Per-point; siblings keep going.
	ErrUnreachableNetwork = errors.New("no valid network graph for point")

	// ErrNoPath: a node of the radius extract has no path from the
	// origin (fragmented network). Per-point as well.
	ErrNoPath = errors.New("no valid path found")
)

type PointKind string

const (
	KindHydrant PointKind = "hydrant"
	KindFire    PointKind = "fire"
)

func ParseKind(s string) (PointKind, error) {
	switch s {
	case "hydrant":
		return KindHydrant, nil
	case "fire":
		return KindFire, nil
	default:
		return "", fmt.Errorf("unknown point type %q", s)
	}
}

// InputPoint is one validated request point. Immutable once accepted.
type InputPoint struct {
	Coord  geo.Coordinate
	Radius float64 // hose length, meters
	Mode   roadnet.TravelMode
	Kind   PointKind
}

// OriginNode is the network node nearest an input coordinate; it seeds
// the shortest-path computation.
type OriginNode struct {
	ID    roadnet.NodeID
	Coord geo.Coordinate
}

// NodeDistance is one reachable node with its network distance from the
// origin.
type NodeDistance struct {
	Node     roadnet.NodeID
	Coord    geo.Coordinate
	Distance float64
}

// AnalyzedPoint is the outcome of analyzing one input point. Treated as
// immutable once returned.
type AnalyzedPoint struct {
	Input   InputPoint
	Graph   *roadnet.Graph
	Origin  OriginNode
	Extract roadnet.Extract
	// Reach lists every reachable node ordered by node ID. Distances
	// never exceed Input.Radius; the origin is the unique zero.
	Reach []NodeDistance

	// Elevation is filled by the optional elevation pass.
	Elevation    float64
	HasElevation bool
}

// Analyze builds the reachability graph for one point, snaps its origin
// and computes shortest-path distances to every node.
func Analyze(ctx context.Context, provider roadnet.Provider, pt InputPoint) (*AnalyzedPoint, error) {
	g, err := provider.Graph(ctx, pt.Coord, pt.Radius, pt.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: coordinates %s, hose length %.0f, mode %s: %v",
			ErrUnreachableNetwork, pt.Coord, pt.Radius, pt.Mode, err)
	}

	origin, ok := g.NearestNode(pt.Coord)
	if !ok {
		return nil, fmt.Errorf("%w: coordinates %s, hose length %.0f, mode %s",
			ErrUnreachableNetwork, pt.Coord, pt.Radius, pt.Mode)
	}

	dist := g.ShortestPathsFrom(origin.ID)

	reach := make([]NodeDistance, 0, g.NodeCount())
	for _, id := range g.NodeIDs() {
		d, reached := dist[id]
		if !reached {
			// Should not happen inside a radius extract, but network
			// fragmentation can produce it.
			return nil, fmt.Errorf("%w: node %d unreachable from origin %d", ErrNoPath, id, origin.ID)
		}
		n, _ := g.Node(id)
		reach = append(reach, NodeDistance{Node: id, Coord: n.Coord, Distance: d})
	}

	return &AnalyzedPoint{
		Input:   pt,
		Graph:   g,
		Origin:  OriginNode{ID: origin.ID, Coord: origin.Coord},
		Extract: g.Extract(),
		Reach:   reach,
	}, nil
}
