package transportrest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/departures-rss/pkg/config"
	"golang.org/x/exp/slices"
)

const userAgent = "departures-rss/1.0"

// Client talks to a transport.rest style HAFAS API for a single configured stop
type Client struct {
	baseURL  string
	stopID   string
	language string

	httpClient    *http.Client
	stopoverCache StopoverCache
}

type Option func(*Client)

// WithStopoverCache caches the full stopover list of each trip
func WithStopoverCache(cache StopoverCache) Option {
	return func(c *Client) {
		c.stopoverCache = cache
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(cfg *config.Config, opts ...Option) *Client {
	client := &Client{
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		stopID:   cfg.StopID,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *Client) StopID() string {
	return c.stopID
}

// Departures returns at most results departures from the configured stop within the next durationMinutes
func (c *Client) Departures(ctx context.Context, results int, durationMinutes int) ([]Departure, error) {
	query := url.Values{}
	query.Set("results", strconv.Itoa(results))
	query.Set("duration", strconv.Itoa(durationMinutes))
	query.Set("language", c.language)
	query.Set("pretty", "false")

	var response departuresResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/stops/%s/departures", url.PathEscape(c.stopID)), query, &response); err != nil {
		return nil, err
	}

	departures := response.Departures
	if departures == nil {
		departures = []Departure{}
	}
	if len(departures) > results {
		departures = departures[:results]
	}

	return departures, nil
}

// TripStopovers returns every stopover of the trip in route order
func (c *Client) TripStopovers(ctx context.Context, tripID string) ([]Stopover, error) {
	if c.stopoverCache != nil {
		if stopovers, ok := c.stopoverCache.Get(ctx, tripID); ok {
			return stopovers, nil
		}
	}

	query := url.Values{}
	query.Set("stopovers", "true")

	var response tripResponse
	if err := c.getJSON(ctx, "/trips/"+url.PathEscape(tripID), query, &response); err != nil {
		return nil, err
	}

	stopovers := response.Trip.Stopovers
	if stopovers == nil {
		stopovers = []Stopover{}
	}

	if c.stopoverCache != nil {
		c.stopoverCache.Set(ctx, tripID, stopovers)
	}

	return stopovers, nil
}

// Stopovers returns the stopovers of the trip that come after currentStopID
func (c *Client) Stopovers(ctx context.Context, tripID string, currentStopID string) ([]Stopover, error) {
	stopovers, err := c.TripStopovers(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return StopoversAfter(stopovers, currentStopID, c.stopID), nil
}

// StopoversAfter returns the stopovers following the first one at either currentStopID or configuredStopID.
// The second id covers departures whose stop id differs from the configured station id.
// Nothing is returned when neither stop is on the trip.
func StopoversAfter(stopovers []Stopover, currentStopID string, configuredStopID string) []Stopover {
	index := slices.IndexFunc(stopovers, func(stopover Stopover) bool {
		return stopover.Stop.ID == currentStopID || stopover.Stop.ID == configuredStopID
	})
	if index == -1 {
		return []Stopover{}
	}

	return stopovers[index+1:]
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &TransportError{URL: requestURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("url", requestURL).
		Int("status", resp.StatusCode).
		Str("latency", time.Since(startTime).String()).
		Msg("Transit API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: requestURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// Timeouts while reading the body surface here rather than from Do
		return &TransportError{URL: requestURL, Err: err}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &DecodeError{URL: requestURL, Err: err}
	}

	return nil
}
