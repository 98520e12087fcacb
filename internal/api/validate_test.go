package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/firegrid/hydrant-reach/internal/config"
	"github.com/firegrid/hydrant-reach/internal/rangefinder"
	"github.com/firegrid/hydrant-reach/internal/roadnet"
)

var testLimits = config.LimitsConfig{
	MaxPoints:        10,
	HoseMinMeters:    120,
	HoseMaxMeters:    5000,
	MaxPairDistanceM: 25000,
}

func pointJSON(lat, lon float64, length string) string {
	return fmt.Sprintf(`{
		"latitude": "%f",
		"longitude": "%f",
		"length": %q,
		"mode": "Driving",
		"pointType": "hydrant"
	}`, lat, lon, length)
}

func requestJSON(elevation string, points ...string) []byte {
	numbered := make([]string, len(points))
	for i, p := range points {
		numbered[i] = fmt.Sprintf("%q: %s", fmt.Sprint(i+1), p)
	}
	return []byte(fmt.Sprintf(`{"elevation": %s, "points": {%s}}`,
		elevation, strings.Join(numbered, ",")))
}

func TestParseRequest_Valid(t *testing.T) {
	body := requestJSON("true",
		pointJSON(48.15, 11.50, "500"),
		pointJSON(48.16, 11.51, "800"),
	)

	points, elev, err := parseRequest(body, testLimits)
	if err != nil {
		t.Fatalf("parseRequest failed: %v", err)
	}
	if !elev {
		t.Error("expected elevation requested")
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Radius != 500 || points[1].Radius != 800 {
		t.Errorf("hose lengths out of order: %v, %v", points[0].Radius, points[1].Radius)
	}
	if points[0].Mode != roadnet.ModeDrive {
		t.Errorf("expected drive mode, got %s", points[0].Mode)
	}
	if points[0].Kind != rangefinder.KindHydrant {
		t.Errorf("expected hydrant kind, got %s", points[0].Kind)
	}
}

func TestParseRequest_Empty(t *testing.T) {
	_, _, err := parseRequest([]byte(`{"elevation": false, "points": {}}`), testLimits)
	if err == nil || err.Error() != "no data was given" {
		t.Errorf("expected 'no data was given', got %v", err)
	}
}

func TestParseRequest_TooManyPoints(t *testing.T) {
	points := make([]string, 11)
	for i := range points {
		points[i] = pointJSON(48.15, 11.50+float64(i)*0.001, "500")
	}

	_, _, err := parseRequest(requestJSON("false", points...), testLimits)
	if err == nil || err.Error() != "more than 10 hydrants were given" {
		t.Errorf("expected too-many-points error, got %v", err)
	}
}

func TestParseRequest_HoseLengthOutOfRange(t *testing.T) {
	for _, length := range []string{"7000", "50"} {
		body := requestJSON("false", pointJSON(48.15, 11.50, length))
		_, _, err := parseRequest(body, testLimits)
		if err == nil || err.Error() != "hose length is out of the range [120, 5000]" {
			t.Errorf("length %s: expected range error, got %v", length, err)
		}
	}
}

func TestParseRequest_PointsTooFarApart(t *testing.T) {
	// Roughly 55km apart, well past the 25km gap limit.
	body := requestJSON("false",
		pointJSON(48.15, 11.50, "500"),
		pointJSON(48.65, 11.50, "500"),
	)

	_, _, err := parseRequest(body, testLimits)
	if err == nil || err.Error() != "at least one of the given hydrants is out of the range" {
		t.Errorf("expected gap error, got %v", err)
	}
}

func TestParseRequest_InputOrderPreserved(t *testing.T) {
	// Keys out of lexicographic order: "10" sorts before "2" as a string
	// but after it numerically.
	body := []byte(fmt.Sprintf(`{"elevation": false, "points": {
		"10": %s,
		"2": %s,
		"1": %s
	}}`,
		pointJSON(48.15, 11.60, "300"),
		pointJSON(48.15, 11.55, "400"),
		pointJSON(48.15, 11.50, "500"),
	))

	points, _, err := parseRequest(body, testLimits)
	if err != nil {
		t.Fatalf("parseRequest failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Radius != 500 || points[1].Radius != 400 || points[2].Radius != 300 {
		t.Errorf("points not in numeric key order: %v, %v, %v",
			points[0].Radius, points[1].Radius, points[2].Radius)
	}
}

func TestParseRequest_InvalidPayload(t *testing.T) {
	cases := map[string][]byte{
		"malformed json":  []byte(`{"points": `),
		"bad latitude":    requestJSON("false", `{"latitude": "abc", "longitude": "11.5", "length": "500", "mode": "Driving", "pointType": "hydrant"}`),
		"out of bounds":   requestJSON("false", `{"latitude": "95.0", "longitude": "11.5", "length": "500", "mode": "Driving", "pointType": "hydrant"}`),
		"negative length": requestJSON("false", `{"latitude": "48.15", "longitude": "11.5", "length": "-10", "mode": "Driving", "pointType": "hydrant"}`),
		"unknown mode":    requestJSON("false", `{"latitude": "48.15", "longitude": "11.5", "length": "500", "mode": "teleport", "pointType": "hydrant"}`),
		"unknown kind":    requestJSON("false", `{"latitude": "48.15", "longitude": "11.5", "length": "500", "mode": "Driving", "pointType": "tree"}`),
	}
	for name, body := range cases {
		if _, _, err := parseRequest(body, testLimits); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestWantsElevation(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"false", false},
		{nil, false},
		{1.0, false},
	}
	for _, tc := range cases {
		if got := wantsElevation(tc.in); got != tc.want {
			t.Errorf("wantsElevation(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
