// Package storefront queries the public store search API to resolve game
// names to app ids.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public storefront endpoint.
const DefaultBaseURL = "https://store.steampowered.com"

const searchCount = 20

// Item is one search hit.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client queries the storefront. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Search looks term up in the store catalog and returns up to 20 matches.
func (c *Client) Search(ctx context.Context, term string) ([]Item, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("l", "english")
	q.Set("cc", "US")
	q.Set("count", fmt.Sprintf("%d", searchCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/storesearch/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store search: unexpected status %s", resp.Status)
	}

	var body struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("store search: decode response: %w", err)
	}
	return body.Items, nil
}
