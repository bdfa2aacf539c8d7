// Package client submits finished games to the result API and reads the
// leaderboard back. It never returns errors to the game: failures are logged
// and reported as false or empty results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"number_rush/internal/domain"
	"number_rush/internal/logger"
)

const defaultTimeout = 5 * time.Second

type ResultClient struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api/v1". A nil httpClient uses a 5s timeout.
func New(baseURL string, httpClient *http.Client) *ResultClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &ResultClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Submit stores g and reports whether the server accepted it.
func (c *ResultClient) Submit(ctx context.Context, g domain.GameResult) bool {
	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if err := c.post(ctx, "/game-results", g, &resp); err != nil {
		logger.WithContext(ctx).Error("submit result failed", "difficulty", g.Difficulty, "rule", g.Rule, "error", err)
		return false
	}
	return resp.Success
}

// SubmitAsync runs Submit in the background. The channel receives exactly
// one value.
func (c *ResultClient) SubmitAsync(ctx context.Context, g domain.GameResult) <-chan bool {
	out := make(chan bool, 1)
	go func() {
		out <- c.Submit(ctx, g)
	}()
	return out
}

// Rank returns up to limit fastest results of a class, or an empty slice
// on any failure.
func (c *ResultClient) Rank(ctx context.Context, d domain.Difficulty, r domain.Rule, limit int) []domain.GameResult {
	q := url.Values{}
	q.Set("difficulty", string(d))
	q.Set("rule", string(r))
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/game-results?"+q.Encode(), nil)
	if err != nil {
		logger.WithContext(ctx).Error("rank request failed", "error", err)
		return []domain.GameResult{}
	}

	var results []domain.GameResult
	if err := c.do(req, &results); err != nil {
		logger.WithContext(ctx).Error("rank request failed", "difficulty", d, "rule", r, "error", err)
		return []domain.GameResult{}
	}
	if results == nil {
		results = []domain.GameResult{}
	}
	return results
}

// Complete stores g and returns its percentile in its class.
func (c *ResultClient) Complete(ctx context.Context, g domain.GameResult) (float64, bool) {
	var resp struct {
		ID         string  `json:"id"`
		Percentage float64 `json:"percentage"`
	}
	if err := c.post(ctx, "/game-completion", g, &resp); err != nil {
		logger.WithContext(ctx).Error("completion request failed", "difficulty", g.Difficulty, "rule", g.Rule, "error", err)
		return 0, false
	}
	return resp.Percentage, true
}

func (c *ResultClient) post(ctx context.Context, path string, g domain.GameResult, out any) error {
	body, err := json.Marshal(domain.SubmissionFromResult(g))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *ResultClient) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, res.StatusCode, e.Error)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
