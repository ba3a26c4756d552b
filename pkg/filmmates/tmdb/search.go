package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Search looks up movies by title. page < 1 means the first page.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.fetchPage(ctx, "/search/movie", params, page)
}

// Popular returns the catalog's current popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	return c.fetchPage(ctx, "/movie/popular", url.Values{}, page)
}

func (c *Client) fetchPage(ctx context.Context, path string, params url.Values, page int) (*Page, error) {
	if !c.Configured() {
		return nil, ErrUnconfigured
	}
	if page < 1 {
		page = 1
	}

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	params.Set("page", strconv.Itoa(page))

	c.logger.Debug("tmdb request", "path", path, "page", page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("tmdb request failed", "path", path, "status", resp.StatusCode)
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	var body pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := &Page{
		Results:      make([]Movie, len(body.Results)),
		Page:         body.Page,
		TotalPages:   body.TotalPages,
		TotalResults: body.TotalResults,
	}
	for i, r := range body.Results {
		result.Results[i] = r.toMovie()
	}

	c.logger.Debug("tmdb results", "path", path, "count", len(result.Results))
	return result, nil
}
