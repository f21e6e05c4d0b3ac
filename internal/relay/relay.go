package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockScope/internal/metrics"
)

// Provider is one pass-through URL rewriting service. Build turns a target
// URL into the proxied URL; JSONWrapped marks providers that nest the real
// body under a "contents" field.
type Provider struct {
	Name        string
	Build       func(target string) string
	JSONWrapped bool
}

// DefaultProviders returns the relay chain in priority order.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name: "allorigins-json",
			Build: func(target string) string {
				return fmt.Sprintf("https://api.allorigins.win/get?url=%s&disableCache=%d",
					url.QueryEscape(target), time.Now().UnixMilli())
			},
			JSONWrapped: true,
		},
		{
			Name: "corsproxy",
			Build: func(target string) string {
				return "https://corsproxy.io/?" + url.QueryEscape(target)
			},
		},
		{
			Name: "thingproxy",
			Build: func(target string) string {
				return "https://thingproxy.freeboard.io/fetch/" + target
			},
		},
		{
			Name: "allorigins-raw",
			Build: func(target string) string {
				return fmt.Sprintf("https://api.allorigins.win/raw?url=%s&disableCache=%d",
					url.QueryEscape(target), time.Now().UnixMilli())
			},
		},
	}
}

// AttemptTimeout bounds each individual relay attempt.
const AttemptTimeout = 20 * time.Second

// Client fetches a target URL through an ordered relay chain. Providers are
// tried strictly in sequence; the first one returning a non-empty parseable
// body wins.
type Client struct {
	HTTP      *http.Client
	Providers []Provider
	Metrics   *metrics.Metrics
}

// NewClient creates a relay client over the given providers.
func NewClient(providers []Provider) *Client {
	return &Client{
		HTTP:      &http.Client{},
		Providers: providers,
	}
}

// Fetch GETs the target through each provider in order and returns the first
// successfully parsed JSON document. Empty bodies, non-2xx statuses and
// unrepairable parse failures all fall through to the next provider; only
// exhaustion of the whole chain surfaces an error.
func (c *Client) Fetch(ctx context.Context, target string) (interface{}, error) {
	var lastErr error
	for _, p := range c.Providers {
		if c.Metrics != nil {
			c.Metrics.RelayAttempts.WithLabelValues(p.Name).Inc()
		}
		doc, err := c.attempt(ctx, p, target)
		if err == nil {
			return doc, nil
		}
		if c.Metrics != nil {
			c.Metrics.RelayFailures.WithLabelValues(p.Name).Inc()
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no relay providers configured")
	}
	return nil, fmt.Errorf("all relay providers failed: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, p Provider, target string) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Build(target), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", p.Name, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: status %d", p.Name, resp.StatusCode)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, fmt.Errorf("%s: empty response", p.Name)
	}

	if p.JSONWrapped {
		var wrapper struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("%s: unwrap contents: %w", p.Name, err)
		}
		text = wrapper.Contents
	}

	doc, err := parseLoose(text)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", p.Name, err)
	}
	return doc, nil
}

// parseLoose parses a JSON document, retrying once with naive quote
// normalization for upstreams that emit single-quoted pseudo-JSON.
func parseLoose(text string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		fixed := strings.TrimSpace(strings.ReplaceAll(text, "'", `"`))
		if err2 := json.Unmarshal([]byte(fixed), &doc); err2 != nil {
			return nil, err
		}
	}
	return doc, nil
}
