package roadnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/firegrid/hydrant-reach/internal/geo"
)

// ErrNoNetwork reports that no routable network exists for the given
// coordinate, radius and mode (coordinate over water, mode unsupported
// there, and so on).
var ErrNoNetwork = errors.New("no routable network for the given parameters")

// Provider resolves (coordinate, radius, mode) to a routable graph whose
// nodes all lie within radius meters of the coordinate by network
// distance.
type Provider interface {
	Graph(ctx context.Context, center geo.Coordinate, radiusMeters float64, mode TravelMode) (*Graph, error)
}

// OverpassProvider fetches street networks from an Overpass API endpoint.
type OverpassProvider struct {
	url    string
	client *http.Client
}

func NewOverpassProvider(apiURL string, timeout time.Duration) *OverpassProvider {
	return &OverpassProvider{
		url: apiURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type  string  `json:"type"`
	ID    int64   `json:"id"`
	Lat   float64 `json:"lat,omitempty"`
	Lon   float64 `json:"lon,omitempty"`
	Nodes []int64 `json:"nodes,omitempty"`
}

// Graph queries ways within the bounding box around center, assembles the
// routable graph and truncates it to radius by network distance from the
// node nearest the center.
func (p *OverpassProvider) Graph(ctx context.Context, center geo.Coordinate, radiusMeters float64, mode TravelMode) (*Graph, error) {
	query := buildQuery(center, radiusMeters, mode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url,
		strings.NewReader(url.Values{"data": {query}}.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	full := assembleGraph(data.Elements)
	if full.NodeCount() == 0 {
		return nil, fmt.Errorf("%w: %s radius %.0fm mode %s", ErrNoNetwork, center, radiusMeters, mode)
	}

	snap, ok := full.NearestNode(center)
	if !ok {
		return nil, fmt.Errorf("%w: %s radius %.0fm mode %s", ErrNoNetwork, center, radiusMeters, mode)
	}

	g := full.TruncateBeyond(snap.ID, radiusMeters)
	if g.NodeCount() == 0 || g.EdgeCount() == 0 {
		return nil, fmt.Errorf("%w: %s radius %.0fm mode %s", ErrNoNetwork, center, radiusMeters, mode)
	}
	return g, nil
}

func buildQuery(center geo.Coordinate, radiusMeters float64, mode TravelMode) string {
	b := orbgeo.NewBoundAroundPoint(center.Point(), radiusMeters)
	bbox := fmt.Sprintf("(%f,%f,%f,%f)", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
	return fmt.Sprintf("[out:json][timeout:25];(way%s%s;>;);out body;", mode.highwayFilter(), bbox)
}

// assembleGraph turns Overpass node and way elements into a graph: one
// edge per consecutive node pair of each way, weighted by great-circle
// length.
func assembleGraph(elements []overpassElement) *Graph {
	g := NewGraph()

	for _, el := range elements {
		if el.Type == "node" {
			g.AddNode(Node{
				ID:    NodeID(el.ID),
				Coord: geo.Coordinate{Lat: el.Lat, Lon: el.Lon},
			})
		}
	}

	for _, el := range elements {
		if el.Type != "way" {
			continue
		}
		for i := 0; i+1 < len(el.Nodes); i++ {
			from, okA := g.Node(NodeID(el.Nodes[i]))
			to, okB := g.Node(NodeID(el.Nodes[i+1]))
			if !okA || !okB {
				continue
			}
			line := orb.LineString{from.Coord.Point(), to.Coord.Point()}
			g.AddEdge(Edge{
				From:     from.ID,
				To:       to.ID,
				Length:   geo.DistanceMeters(from.Coord, to.Coord),
				Geometry: line,
			})
		}
	}

	return g
}
