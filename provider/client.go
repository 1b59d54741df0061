// Package provider is a thin client for the external racing-data API. It
// fetches racecards, horse results and distance analysis; retry policy, if
// any, belongs to callers.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// HTTPError is a non-2xx provider response, carrying the status and body
// for diagnostics.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
}

// Client calls the racing-data provider with basic-auth credentials. All
// calls are bounded by the caller's context; the client itself never
// retries.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewClient builds a Client with a transport tuned for outbound API calls.
func NewClient(baseURL, username, password string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Transport: transport},
	}
}

// Racecards fetches the full card for a date (YYYY-MM-DD).
func (c *Client) Racecards(ctx context.Context, date string) ([]Racecard, error) {
	var payload struct {
		Racecards []Racecard `json:"racecards"`
	}
	q := url.Values{"date": {date}}
	if err := c.get(ctx, "/v1/racecards/pro", q, &payload); err != nil {
		return nil, err
	}
	return payload.Racecards, nil
}

// HorseResults fetches a horse's historical results, each with the race's
// full runner list nested.
func (c *Client) HorseResults(ctx context.Context, horseID string) ([]ResultRace, error) {
	var payload struct {
		Results []ResultRace `json:"results"`
	}
	path := "/v1/horses/" + url.PathEscape(horseID) + "/results"
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// HorseDistanceTimes fetches a horse's distance/time analysis.
func (c *Client) HorseDistanceTimes(ctx context.Context, horseID string) (*DistanceAnalysis, error) {
	payload := new(DistanceAnalysis)
	path := "/v1/horses/" + url.PathEscape(horseID) + "/analysis/distance-times"
	if err := c.get(ctx, path, nil, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Keep the timeout distinguishable from provider errors for
		// callers checking errors.Is(err, context.DeadlineExceeded).
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("provider request timed out: %w", context.DeadlineExceeded)
		}
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
