package geo

import (
	"math"
	"testing"
)

func TestCoordinate_Valid(t *testing.T) {
	cases := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{Lat: 48.15, Lon: 11.5}, true},
		{Coordinate{Lat: -90, Lon: 180}, true},
		{Coordinate{Lat: 90.1, Lon: 0}, false},
		{Coordinate{Lat: 0, Lon: -180.5}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Errorf("%s.Valid(): expected %v, got %v", tc.c, tc.want, got)
		}
	}
}

func TestPointRoundTrip(t *testing.T) {
	c := Coordinate{Lat: 48.15, Lon: 11.5}
	p := c.Point()
	// orb points are lon-first.
	if p[0] != c.Lon || p[1] != c.Lat {
		t.Errorf("Point() not lon-first: %v", p)
	}
	if got := FromPoint(p); got != c {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestDistanceMeters(t *testing.T) {
	// One degree of latitude is about 111km.
	a := Coordinate{Lat: 48.0, Lon: 11.5}
	b := Coordinate{Lat: 49.0, Lon: 11.5}

	d := DistanceMeters(a, b)
	if math.Abs(d-111195) > 500 {
		t.Errorf("expected ~111km, got %vm", d)
	}
	if DistanceMeters(a, a) != 0 {
		t.Error("expected zero distance to self")
	}
}
