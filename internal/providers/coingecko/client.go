// Package coingecko adapts the market-data provider's HTTP API into typed
// records. Raw provider JSON never leaves this package.
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tokenscope/tokenscope/internal/cache"
	"github.com/tokenscope/tokenscope/internal/httpx"
)

// Client talks to the CoinGecko API through the shared transport.
type Client struct {
	baseURL  string
	apiKey   string
	http     *httpx.Client
	cache    cache.Cache
	cacheTTL time.Duration
}

// Config configures the adapter.
type Config struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
}

// New creates a client. A nil cache disables caching.
func New(cfg Config, hc *httpx.Client, c cache.Cache) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     hc,
		cache:    c,
		cacheTTL: cfg.CacheTTL,
	}
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

// Search queries the free-text search endpoint. Results arrive in the
// provider's relevance order; cached briefly since identical tickers are
// asked for constantly.
func (c *Client) Search(ctx context.Context, query string) ([]SearchCoin, error) {
	key := "cg:search:" + strings.ToLower(query)
	if c.cache != nil {
		var cached []SearchCoin
		if cache.GetJSON(c.cache, key, &cached) {
			return cached, nil
		}
	}

	u := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(query))
	var resp searchResponse
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("coingecko search %q: %w", query, err)
	}

	if c.cache != nil && c.cacheTTL > 0 {
		cache.SetJSON(c.cache, key, resp.Coins, c.cacheTTL)
	}
	return resp.Coins, nil
}

// CoinDetail fetches the full coin record by coin id, including the
// ordered per-chain contract listings.
func (c *Client) CoinDetail(ctx context.Context, id string) (*CoinDetail, error) {
	key := "cg:coin:" + id
	if c.cache != nil {
		var cached CoinDetail
		if cache.GetJSON(c.cache, key, &cached) {
			return &cached, nil
		}
	}

	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false&sparkline=false",
		c.baseURL, url.PathEscape(id))
	var raw coinDetailJSON
	if err := c.http.GetJSON(ctx, u, c.headers(), &raw); err != nil {
		return nil, fmt.Errorf("coingecko coin %q: %w", id, err)
	}

	detail := &CoinDetail{
		ID:        raw.ID,
		Name:      raw.Name,
		Symbol:    raw.Symbol,
		Platforms: raw.Platforms,
		Market:    raw.MarketData.snapshot(),
	}
	if c.cache != nil && c.cacheTTL > 0 {
		cache.SetJSON(c.cache, key, detail, c.cacheTTL)
	}
	return detail, nil
}

// ContractLookup fetches coin metadata by (platform, contract address).
// Unindexed contracts come back as httpx 404s; callers treat those as
// not-found, not as transport failures.
func (c *Client) ContractLookup(ctx context.Context, platform, address string) (*ContractInfo, error) {
	u := fmt.Sprintf("%s/coins/%s/contract/%s",
		c.baseURL, url.PathEscape(platform), url.PathEscape(address))
	var raw contractInfoJSON
	if err := c.http.GetJSON(ctx, u, c.headers(), &raw); err != nil {
		return nil, fmt.Errorf("coingecko contract %s/%s: %w", platform, address, err)
	}
	return &ContractInfo{
		ID:     raw.ID,
		Name:   raw.Name,
		Symbol: raw.Symbol,
		Market: raw.MarketData.snapshot(),
	}, nil
}

// SimplePrice fetches the fast price quote for a coin id (native assets).
func (c *Client) SimplePrice(ctx context.Context, id string) (*SimpleQuote, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_market_cap=true&include_24hr_vol=true&include_24hr_change=true",
		c.baseURL, url.QueryEscape(id))
	resp := map[string]SimpleQuote{}
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("coingecko simple price %q: %w", id, err)
	}
	quote, ok := resp[id]
	if !ok {
		return nil, fmt.Errorf("coingecko simple price %q: no data", id)
	}
	return &quote, nil
}

// SimpleTokenPrice fetches the fast quote for one contract on a platform.
// The response is keyed by lower-cased address.
func (c *Client) SimpleTokenPrice(ctx context.Context, platform, address string) (*SimpleQuote, error) {
	u := fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd&include_market_cap=true&include_24hr_vol=true&include_24hr_change=true",
		c.baseURL, url.PathEscape(platform), url.QueryEscape(address))
	resp := map[string]SimpleQuote{}
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("coingecko token price %s/%s: %w", platform, address, err)
	}
	for addr, quote := range resp {
		if strings.EqualFold(addr, address) {
			q := quote
			return &q, nil
		}
	}
	return nil, fmt.Errorf("coingecko token price %s/%s: no data", platform, address)
}
