// Package elevation looks up terrain elevation for coordinate batches.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/firegrid/hydrant-reach/internal/geo"
)

// Client queries an open-elevation compatible API. One run issues a
// single batched request bounded by the configured deadline; on timeout
// the lookup is cancelled and reported, never retried.
type Client struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		url:     apiURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// BatchLookup resolves the elevation in meters for every coordinate, in
// input order.
func (c *Client) BatchLookup(ctx context.Context, coords []geo.Coordinate) ([]float64, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The API takes all locations in one query string: lat,lon|lat,lon|...
	locs := make([]string, len(coords))
	for i, co := range coords {
		locs[i] = fmt.Sprintf("%f,%f", co.Lat, co.Lon)
	}
	query := url.Values{"locations": {strings.Join(locs, "|")}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	if len(data.Results) != len(coords) {
		return nil, fmt.Errorf("expected %d elevations, got %d", len(coords), len(data.Results))
	}

	elevs := make([]float64, len(coords))
	for i, r := range data.Results {
		elevs[i] = r.Elevation
	}
	return elevs, nil
}
