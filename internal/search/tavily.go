// Package search implements the web search gateway on top of the Tavily search API,
// restricted to the EU5 wikis.
package search

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/zeebo/blake3"

	"eu5advisor/internal/cache"
	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

const (
	// DefaultEndpoint is the Tavily search endpoint.
	DefaultEndpoint = "https://api.tavily.com/search"
	// DefaultMaxResults applies when the caller asks for zero or fewer results.
	DefaultMaxResults = 3
	// DefaultDepth is the Tavily search depth used when none is configured.
	DefaultDepth = "basic"

	keyPrefix  = "tvly-"
	wikiDomain = "eu5.paradoxwikis.com"
)

// Domains are the only sites searched.
var Domains = []string{wikiDomain, "europauniversalisv.wiki"}

// Client searches the EU5 wikis. It is safe for concurrent use.
type Client struct {
	apiKey     string
	depth      string
	endpoint   string
	httpClient *http.Client
	cache      *cache.LRU[string, []advisortypes.SearchResult]
	logger     *log.Logger
	warnOnce   sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the Tavily endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithDepth sets the Tavily search depth ("basic" or "advanced").
func WithDepth(depth string) Option {
	return func(c *Client) {
		if depth != "" {
			c.depth = depth
		}
	}
}

// WithCache stores successful searches in results.
func WithCache(results *cache.LRU[string, []advisortypes.SearchResult]) Option {
	return func(c *Client) { c.cache = results }
}

// New creates a search client. An empty key leaves web search disabled.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		depth:      DefaultDepth,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.NewStyledLogger("Search"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether a usable API key is set.
func (c *Client) IsConfigured() bool {
	return strings.HasPrefix(c.apiKey, keyPrefix)
}

type request struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains"`
}

type hit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type response struct {
	Results []hit `json:"results"`
}

// Search runs query against the EU5 wikis and returns at most maxResults hits with
// wiki pages first. Without a usable key it returns no results and no error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]advisortypes.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	query = NormalizeQuery(query)

	if c.apiKey == "" {
		c.warnOnce.Do(func() {
			c.logger.Warn("TAVILY_API_KEY not set, web search disabled")
		})
		return []advisortypes.SearchResult{}, nil
	}
	if !c.IsConfigured() {
		c.logger.Warn("TAVILY_API_KEY does not look like a Tavily key", "expected_prefix", keyPrefix)
		return []advisortypes.SearchResult{}, nil
	}

	key := cacheKey(query, maxResults, c.depth)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			c.logger.Debug("search cache hit", "query", query)
			return cached, nil
		}
	}

	results, err := c.do(ctx, request{
		Query:          query,
		SearchDepth:    c.depth,
		MaxResults:     maxResults,
		IncludeDomains: Domains,
	})
	if err != nil {
		return nil, err
	}

	results = prioritize(results, maxResults)
	if c.cache != nil && len(results) > 0 {
		c.cache.Set(key, results)
	}
	c.logger.Debug("search completed", "query", query, "results", len(results))
	return results, nil
}

func (c *Client) do(ctx context.Context, payload request) ([]advisortypes.SearchResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var decoded response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	return lo.Map(decoded.Results, func(r hit, _ int) advisortypes.SearchResult {
		return advisortypes.SearchResult{Title: r.Title, URL: r.URL, Snippet: strings.TrimSpace(r.Content)}
	}), nil
}

// NormalizeQuery prefixes "EU5 " unless the query already names the game.
func NormalizeQuery(query string) string {
	lower := strings.ToLower(query)
	if strings.Contains(lower, "eu5") || strings.Contains(lower, "europa universalis") {
		return query
	}
	return "EU5 " + query
}

// prioritize moves wiki pages ahead of other hits, keeping relative order, and caps the list.
func prioritize(results []advisortypes.SearchResult, maxResults int) []advisortypes.SearchResult {
	wiki, other := lo.FilterReject(results, func(r advisortypes.SearchResult, _ int) bool {
		return strings.Contains(r.URL, wikiDomain)
	})
	ordered := append(wiki, other...)
	if len(ordered) > maxResults {
		ordered = ordered[:maxResults]
	}
	return ordered
}

func cacheKey(query string, maxResults int, depth string) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", query, maxResults, depth)))
	return "search:" + hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
