// Package render turns a merged range result into a self-contained
// interactive map artifact (Leaflet HTML).
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/paulmach/orb/geojson"

	"github.com/firegrid/hydrant-reach/internal/rangefinder"
)

// Leaflet renders merged results into standalone HTML documents.
type Leaflet struct {
	tmpl *template.Template
}

func NewLeaflet() *Leaflet {
	return &Leaflet{
		tmpl: template.Must(template.New("map").Parse(mapTemplate)),
	}
}

type layerView struct {
	Color    string                     `json:"color"`
	Features *geojson.FeatureCollection `json:"features"`
}

type markerView struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Kind    string  `json:"kind"`
	Color   string  `json:"color"`
	Tooltip string  `json:"tooltip"`
}

type originView struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Fill string  `json:"fill"`
}

type segmentView struct {
	From  [2]float64 `json:"from"`
	To    [2]float64 `json:"to"`
	Arrow string     `json:"arrow"`
}

type mapView struct {
	Center   [2]float64    `json:"center"`
	Layers   []layerView   `json:"layers"`
	Markers  []markerView  `json:"markers"`
	Origins  []originView  `json:"origins"`
	Segments []segmentView `json:"segments"`
}

// Render produces the HTML artifact for a merged result.
func (l *Leaflet) Render(res *rangefinder.MergedResult) ([]byte, error) {
	view := mapView{
		Center: [2]float64{res.Center.Lat, res.Center.Lon},
	}
	for _, layer := range res.Layers {
		view.Layers = append(view.Layers, layerView{Color: layer.Color, Features: layer.Features})
	}
	for _, m := range res.Markers {
		view.Markers = append(view.Markers, markerView{
			Lat:     m.Coord.Lat,
			Lon:     m.Coord.Lon,
			Kind:    string(m.Kind),
			Color:   m.Color,
			Tooltip: m.Tooltip,
		})
	}
	for _, o := range res.Origins {
		view.Origins = append(view.Origins, originView{Lat: o.Coord.Lat, Lon: o.Coord.Lon, Fill: o.FillColor})
	}
	for _, s := range res.Segments {
		view.Segments = append(view.Segments, segmentView{
			From:  [2]float64{s.From.Lat, s.From.Lon},
			To:    [2]float64{s.To.Lat, s.To.Lon},
			Arrow: string(s.Arrow),
		})
	}

	payload, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("error marshaling map view: %w", err)
	}

	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, template.JS(payload)); err != nil {
		return nil, fmt.Errorf("error executing map template: %w", err)
	}
	return buf.Bytes(), nil
}

const mapTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Hose reach map</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; width: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var view = {{.}};

var base = {
  "OpenStreetMap": L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors"
  }),
  "Positron": L.tileLayer("https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors &copy; CARTO"
  }),
  "Dark Matter": L.tileLayer("https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors &copy; CARTO"
  })
};

var map = L.map("map", { center: view.center, zoom: 14, layers: [base["OpenStreetMap"]] });
L.control.layers(base).addTo(map);

view.layers.forEach(function (layer) {
  L.geoJSON(layer.features, {
    style: { color: layer.color, fillColor: layer.color, weight: 3, opacity: 0.5, fillOpacity: 0.5 }
  }).addTo(map);
});

view.markers.forEach(function (m) {
  var glyph = m.kind === "fire" ? "🔥" : "🚰";
  var icon = L.divIcon({
    className: "",
    html: '<div style="background:' + m.color + ';border-radius:4px;padding:2px;font-size:18px">' + glyph + "</div>",
    iconSize: [26, 26]
  });
  L.marker([m.lat, m.lon], { icon: icon })
    .bindPopup(m.tooltip.replace(/\n/g, "<br>"))
    .addTo(map);
});

view.origins.forEach(function (o) {
  L.circleMarker([o.lat, o.lon], {
    radius: 3, color: "white", weight: 1, fillColor: o.fill, fillOpacity: 1
  }).addTo(map);
});

view.segments.forEach(function (s) {
  L.polyline([s.from, s.to], { color: "black", weight: 0.5 }).addTo(map);
  if (s.arrow) {
    var mid = [(s.from[0] + s.to[0]) / 2, (s.from[1] + s.to[1]) / 2];
    var glyph = s.arrow === "reverse" ? "⇽" : "⇾";
    L.marker(mid, {
      icon: L.divIcon({ className: "", html: '<div style="font-size:24px">' + glyph + "</div>" })
    }).addTo(map);
  }
});
</script>
</body>
</html>
`
