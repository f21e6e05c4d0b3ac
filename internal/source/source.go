package source

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/model"
	"StockScope/internal/relay"
)

const (
	// DefaultPrimaryBase is the record-oriented mobile chart endpoint.
	DefaultPrimaryBase = "https://m.stock.naver.com/front-api/external/chart/domestic/info"
	// DefaultFallbackBase is the legacy row-array endpoint. It is often more
	// stable for obscure tickers when the primary API is flaky via relays.
	DefaultFallbackBase = "https://api.finance.naver.com/siseJson.naver"
)

// dateHeaderLabel is the date-column label the fallback endpoint prepends as
// a header row.
const dateHeaderLabel = "날짜"

// Client retrieves daily OHLCV rows from the upstream market-data endpoints
// through a relay chain. The primary endpoint is tried through every relay
// first; only when the whole chain is exhausted is the fallback endpoint
// attempted through the same chain.
type Client struct {
	Relay        *relay.Client
	PrimaryBase  string
	FallbackBase string
}

// NewClient creates a source client with the default endpoint bases.
func NewClient(rc *relay.Client) *Client {
	return &Client{
		Relay:        rc,
		PrimaryBase:  DefaultPrimaryBase,
		FallbackBase: DefaultFallbackBase,
	}
}

// FetchDaily returns up to count daily rows ending at startDate, oldest
// first. A successfully parsed but empty payload returns an empty slice and
// no error; callers decide how to report that.
func (c *Client) FetchDaily(ctx context.Context, symbol, startDate string, count int) ([]model.PricePoint, error) {
	primary := fmt.Sprintf("%s?symbol=%s&requestType=2&count=%d&startTime=%s&timeframe=day&_=%d",
		c.PrimaryBase, symbol, count, startDate, time.Now().UnixMilli())

	doc, err := c.Relay.Fetch(ctx, primary)
	if err != nil {
		log.Printf("[WARN] primary endpoint failed for %s, trying fallback: %v", symbol, err)
		fallback := fmt.Sprintf("%s?symbol=%s&requestType=1&startTime=%s&count=%d&timeframe=day&_=%d",
			c.FallbackBase, symbol, startDate, count, time.Now().UnixMilli())
		doc, err = c.Relay.Fetch(ctx, fallback)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
	}

	return parseRows(doc), nil
}

// parseRows normalizes either endpoint's payload into price points. Both
// resolve to an ordered list of [date, open, high, low, close, volume, ...]
// rows; a leading header row is stripped. Anything that is not a row array
// yields zero points.
func parseRows(doc interface{}) []model.PricePoint {
	rows, ok := doc.([]interface{})
	if !ok {
		return nil
	}
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}

	points := make([]model.PricePoint, 0, len(rows))
	for _, r := range rows {
		cells, ok := r.([]interface{})
		if !ok || len(cells) < 6 {
			continue
		}
		p := model.PricePoint{
			Date:   strings.TrimSpace(cellString(cells[0])),
			Open:   parseNumber(cells[1]),
			High:   parseNumber(cells[2]),
			Low:    parseNumber(cells[3]),
			Close:  parseNumber(cells[4]),
			Volume: int64(parseNumber(cells[5])),
		}
		if len(cells) > 6 {
			p.ForeignRate = parseNumber(cells[6])
		}
		points = append(points, p)
	}
	return points
}

// isHeaderRow detects a label row: either the literal date-column label in
// the first cell or a non-numeric second cell. The numeric check tolerates
// thousands separators so a comma-formatted data row is never stripped.
func isHeaderRow(row interface{}) bool {
	cells, ok := row.([]interface{})
	if !ok || len(cells) < 2 {
		return false
	}
	if strings.TrimSpace(cellString(cells[0])) == dateHeaderLabel {
		return true
	}
	if s, ok := cells[1].(string); ok {
		cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			return true
		}
	}
	return false
}

func cellString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseNumber tolerates native numbers and strings with thousands
// separators. Unparsable values default to 0; a bad cell never fails the
// row.
func parseNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
