package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/firegrid/hydrant-reach/internal/config"
	"github.com/firegrid/hydrant-reach/internal/geo"
	"github.com/firegrid/hydrant-reach/internal/rangefinder"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

// rangeRequest is the submitted payload. Point keys are the 1-based
// input order; scalar values arrive as strings from the form front end.
type rangeRequest struct {
	Elevation any                 `json:"elevation"`
	Points    map[string]rawPoint `json:"points"`
}

type rawPoint struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Length    string `json:"length"`
	Mode      string `json:"mode"`
	PointType string `json:"pointType"`
}

// parseRequest decodes and validates a payload into ordered input
// points, enforcing the upstream validation contract: point count,
// hose-length bounds and the maximum gap between consecutive points.
func parseRequest(body []byte, limits config.LimitsConfig) ([]rangefinder.InputPoint, bool, error) {
	var req rangeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false, fmt.Errorf("invalid request payload: %w", err)
	}

	if len(req.Points) == 0 {
		return nil, false, fmt.Errorf("no data was given")
	}
	if len(req.Points) > limits.MaxPoints {
		return nil, false, fmt.Errorf("more than %d hydrants were given", limits.MaxPoints)
	}

	points := make([]rangefinder.InputPoint, 0, len(req.Points))
	for _, key := range orderedKeys(req.Points) {
		pt, err := parsePoint(req.Points[key])
		if err != nil {
			return nil, false, fmt.Errorf("point %s: %w", key, err)
		}
		points = append(points, pt)
	}

	for _, pt := range points {
		if pt.Radius < limits.HoseMinMeters || pt.Radius > limits.HoseMaxMeters {
			return nil, false, fmt.Errorf("hose length is out of the range [%.0f, %.0f]",
				limits.HoseMinMeters, limits.HoseMaxMeters)
		}
	}

	// Each point must be close enough to the previously chosen one.
	for i := 1; i < len(points); i++ {
		if geo.DistanceMeters(points[i-1].Coord, points[i].Coord) > limits.MaxPairDistanceM {
			return nil, false, fmt.Errorf("at least one of the given hydrants is out of the range")
		}
	}

	return points, wantsElevation(req.Elevation), nil
}

func parsePoint(raw rawPoint) (rangefinder.InputPoint, error) {
	var pt rangefinder.InputPoint

	lat, err := strconv.ParseFloat(raw.Latitude, 64)
	if err != nil {
		return pt, fmt.Errorf("invalid latitude %q", raw.Latitude)
	}
	lon, err := strconv.ParseFloat(raw.Longitude, 64)
	if err != nil {
		return pt, fmt.Errorf("invalid longitude %q", raw.Longitude)
	}
	pt.Coord = geo.Coordinate{Lat: lat, Lon: lon}
	if !pt.Coord.Valid() {
		return pt, fmt.Errorf("coordinates %s out of bounds", pt.Coord)
	}

	pt.Radius, err = strconv.ParseFloat(raw.Length, 64)
	if err != nil || pt.Radius <= 0 {
		return pt, fmt.Errorf("invalid hose length %q", raw.Length)
	}

	pt.Mode, err = roadnet.ParseMode(raw.Mode)
	if err != nil {
		return pt, err
	}

	pt.Kind, err = rangefinder.ParseKind(raw.PointType)
	if err != nil {
		return pt, err
	}

	return pt, nil
}

// orderedKeys sorts point keys numerically so input order survives the
// map representation; non-numeric keys sort after numeric ones.
func orderedKeys(points map[string]rawPoint) []string {
	keys := make([]string, 0, len(points))
	for k := range points {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		if aErr == nil {
			return true
		}
		if bErr == nil {
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// wantsElevation accepts both a JSON bool and the form-encoded "true".
func wantsElevation(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}
