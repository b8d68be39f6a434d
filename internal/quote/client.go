package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SymbolMapping maps common tickers to CoinGecko IDs. Unknown symbols are
// passed through lower-cased, which covers assets addressed by their
// CoinGecko ID directly.
var SymbolMapping = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XLM":  "stellar",
	"USDC": "usd-coin",
	"AU":   "gold",
}

// Client fetches spot prices from the CoinGecko API.
type Client struct {
	baseURL    string
	currency   string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewClient creates a CoinGecko API client quoting in the given fiat
// currency (lower-cased ISO code, e.g. "eur").
func NewClient(baseURL, currency string, delay time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		currency:   strings.ToLower(currency),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

func coinID(symbol string) string {
	if id, ok := SymbolMapping[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// FetchPrices fetches prices for the given symbols.
// Returns a map of symbol -> price in the client's currency; symbols the API
// does not know are absent from the result, not an error.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ids := make([]string, 0, len(symbols))
	seen := map[string]bool{}
	for _, s := range symbols {
		id := coinID(s)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, strings.Join(ids, ","), c.currency)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	// Parse: {"bitcoin":{"eur":45000},"ethereum":{"eur":2500},...}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	result := make(map[string]decimal.Decimal, len(symbols))
	for _, s := range symbols {
		prices, ok := raw[coinID(s)]
		if !ok {
			continue
		}
		price, ok := prices[c.currency]
		if !ok {
			continue
		}
		result[s] = price
	}
	return result, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries+1; attempt++ {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CoinGecko request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		lastErr = fmt.Errorf("CoinGecko returned status %d: %s", resp.StatusCode, string(body))
		// 429 and 5xx are retryable, anything else is not
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("CoinGecko request failed after %d retries: %w", c.maxRetries, lastErr)
}
