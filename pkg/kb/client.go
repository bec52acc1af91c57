package kb

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

	"github.com/nullticket/helpdesk/pkg/errs"
)

// Article is the read-only projection of a knowledge-base article returned
// by the backend's search endpoint.
type Article struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary,omitempty"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// HasTag reports whether the article carries the given tag.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Client queries the external knowledge-base backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

const defaultSearchLimit = 10

// Search runs a keyword search against the knowledge base and returns the
// ranked article summaries.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/kb/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building knowledge base request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Network("knowledge base search failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, errs.Upstream(resp.StatusCode, "knowledge base search failed: "+strings.TrimSpace(string(body)))
	}

	var articles []Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, errs.InvalidResponse("knowledge base returned malformed search results")
	}
	return articles, nil
}
