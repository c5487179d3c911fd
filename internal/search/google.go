package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	googleCSEURL = "https://www.googleapis.com/customsearch/v1"
	// The Custom Search API returns at most ten items per request.
	googleCSEMaxNum = 10
)

// GoogleCSE implements Provider using the Google Custom Search JSON API.
type GoogleCSE struct {
	APIKey         string
	SearchEngineID string
	// Endpoint overrides the API URL; empty uses the public endpoint.
	Endpoint   string
	HTTPClient *http.Client
}

func (g *GoogleCSE) Name() string { return "google" }

func (g *GoogleCSE) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if g.APIKey == "" || g.SearchEngineID == "" {
		return nil, errors.New("google custom search requires api key and engine id")
	}
	if limit <= 0 {
		limit = 10
	}
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = googleCSEURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("google endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", g.APIKey)
	q.Set("cx", g.SearchEngineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(min(limit, googleCSEMaxNum)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	hc := g.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google status: %d", resp.StatusCode)
	}
	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("google decode: %w", err)
	}
	out := make([]Result, 0, len(gr.Items))
	for _, it := range gr.Items {
		if it.Link == "" || it.Title == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.Link),
			Snippet: strings.TrimSpace(it.Snippet),
			Source:  g.Name(),
		})
		if len(out) >= limit {
			break
		}
	}
	return rank(out), nil
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}
