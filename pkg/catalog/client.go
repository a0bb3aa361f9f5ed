package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	dataPath = "/data"

	// DefaultClientTimeout bounds a catalog fetch.
	DefaultClientTimeout = 10 * time.Second
)

// Client reads the collection from a running catalog server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient gets one with
// DefaultClientTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultClientTimeout}
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// All fetches GET /data and fills each track's audio path from its name.
func (c *Client) All(ctx context.Context) ([]track.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dataPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var tracks []track.Track

	err = json.NewDecoder(resp.Body).Decode(&tracks)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return track.WithAudioPaths(tracks), nil
}
