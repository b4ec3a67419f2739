// Package coingecko implements the price source and asset lister ports on top
// of the public CoinGecko REST API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/gridwatch/internal/domain"
)

// Client is the REST client for the CoinGecko API. All requests are
// unauthenticated GETs; an optional demo API key is sent as a header when set.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a CoinGecko client.
//
// baseURL is the API root, e.g. "https://api.coingecko.com". apiKey may be
// empty; when set it is passed via the x-cg-demo-api-key header.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CurrentPrice returns the current price of assetID quoted in vsCurrency.
// A response that lacks the asset or the currency key maps to
// domain.ErrPriceUnavailable, as does any non-2xx status.
func (c *Client) CurrentPrice(ctx context.Context, assetID, vsCurrency string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("ids", assetID)
	params.Set("vs_currencies", vsCurrency)

	path := "/api/v3/simple/price?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("coingecko: get price %s: %w: %v", assetID, domain.ErrPriceUnavailable, err)
	}

	// Shaped like {"bitcoin":{"usd":64123.12}}. Decoded through json.Number
	// so the decimal value survives without a float round trip.
	var priceInfo map[string]map[string]json.Number
	if err := json.Unmarshal(body, &priceInfo); err != nil {
		return decimal.Decimal{}, fmt.Errorf("coingecko: decode price response: %w", err)
	}

	raw, ok := priceInfo[assetID][vsCurrency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no %s price for %s", domain.ErrPriceUnavailable, vsCurrency, assetID)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("coingecko: parse price %q: %w", raw.String(), err)
	}
	return price, nil
}

// ListAssets returns the full coin catalog (/coins/list).
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	body, err := c.doGet(ctx, "/api/v3/coins/list")
	if err != nil {
		return nil, fmt.Errorf("coingecko: list coins: %w", err)
	}

	var assets []domain.Asset
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("coingecko: decode coin list: %w", err)
	}

	return assets, nil
}

// doGet sends a GET request to the CoinGecko API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx responses to sentinel errors where possible.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// Compile-time interface checks.
var (
	_ domain.PriceSource = (*Client)(nil)
	_ domain.AssetLister = (*Client)(nil)
)
