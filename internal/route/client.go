package route

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Route is a drivable path between two coordinates. Points are [lng, lat]
// pairs as OSRM returns them.
type Route struct {
	Points    [][2]float64 `json:"points"`
	DistanceM float64      `json:"distance_m"`
	DurationS float64      `json:"duration_s"`
}

// Client fetches routes from an OSRM-compatible routing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// FetchRoute asks the routing service for a driving route between origin and
// destination, both (lat, lng). A slow or failing service is an error, never
// a hang past the client timeout.
func (c *Client) FetchRoute(ctx context.Context, originLat, originLng, destLat, destLng float64) (*Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, originLng, originLat, destLng, destLat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build route request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("routing service error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse route response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("no route found (code %q)", parsed.Code)
	}

	best := parsed.Routes[0]
	return &Route{
		Points:    best.Geometry.Coordinates,
		DistanceM: best.Distance,
		DurationS: best.Duration,
	}, nil
}
