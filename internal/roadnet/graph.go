// Package roadnet models the routable street network around a point and
// the provider that fetches it.
package roadnet

import (
	"container/heap"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/firegrid/hydrant-reach/internal/geo"
)

// NodeID is the network-provider-assigned node identifier (OSM node ID
// for the Overpass provider). Opaque to callers.
type NodeID int64

type Node struct {
	ID    NodeID
	Coord geo.Coordinate
}

// Edge is one street segment. Length is meters along the segment.
type Edge struct {
	From     NodeID
	To       NodeID
	Length   float64
	Geometry orb.LineString
}

// Extract is the geometry-only view of a graph: edge linework with no
// metadata. Merging and intersection work on extracts to keep the
// redundant per-edge attributes out of that processing.
type Extract []orb.LineString

// Graph is an undirected routable street graph.
type Graph struct {
	nodes map[NodeID]Node
	adj   map[NodeID][]int // edge indices
	edges []Edge
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		adj:   make(map[NodeID][]int),
	}
}

func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge connects two already-added nodes. Edges with an unknown
// endpoint are dropped silently; Overpass way extracts routinely refer
// to nodes clipped off by the bounding box.
func (g *Graph) AddEdge(e Edge) {
	if _, ok := g.nodes[e.From]; !ok {
		return
	}
	if _, ok := g.nodes[e.To]; !ok {
		return
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.adj[e.From] = append(g.adj[e.From], idx)
	g.adj[e.To] = append(g.adj[e.To], idx)
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in ascending order. Map iteration is
// randomized, so every walk over the node set goes through here to keep
// runs deterministic.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Graph) Edges() []Edge {
	return g.edges
}

// Extract returns the geometry-only edge linework.
func (g *Graph) Extract() Extract {
	ex := make(Extract, 0, len(g.edges))
	for _, e := range g.edges {
		ex = append(ex, e.Geometry)
	}
	return ex
}

// NearestNode snaps a coordinate to the closest graph node by
// great-circle distance. Ties break toward the lowest node ID.
func (g *Graph) NearestNode(c geo.Coordinate) (Node, bool) {
	best := Node{}
	bestDist := math.Inf(1)
	found := false
	for _, id := range g.NodeIDs() {
		n := g.nodes[id]
		d := geo.DistanceMeters(c, n.Coord)
		if d < bestDist {
			best, bestDist, found = n, d, true
		}
	}
	return best, found
}

// ShortestPathsFrom computes single-source shortest-path distances by
// edge length (Dijkstra; lengths are non-negative). Nodes disconnected
// from origin are absent from the result.
func (g *Graph) ShortestPathsFrom(origin NodeID) map[NodeID]float64 {
	dist := make(map[NodeID]float64, len(g.nodes))
	if _, ok := g.nodes[origin]; !ok {
		return dist
	}

	pq := &nodeQueue{{id: origin, dist: 0}}
	dist[origin] = 0

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeItem)
		if cur.dist > dist[cur.id] {
			continue // stale entry
		}
		for _, ei := range g.adj[cur.id] {
			e := g.edges[ei]
			next := e.To
			if next == cur.id {
				next = e.From
			}
			nd := cur.dist + e.Length
			if old, seen := dist[next]; !seen || nd < old {
				dist[next] = nd
				heap.Push(pq, nodeItem{id: next, dist: nd})
			}
		}
	}

	return dist
}

// TruncateBeyond keeps only the part of the graph within radius meters of
// origin by network distance, mirroring a "network" distance extract.
// Edges survive when both endpoints survive.
func (g *Graph) TruncateBeyond(origin NodeID, radius float64) *Graph {
	dist := g.ShortestPathsFrom(origin)

	out := NewGraph()
	for id, d := range dist {
		if d <= radius {
			out.AddNode(g.nodes[id])
		}
	}
	for _, e := range g.edges {
		out.AddEdge(e)
	}
	return out
}

type nodeItem struct {
	id   NodeID
	dist float64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)        { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
