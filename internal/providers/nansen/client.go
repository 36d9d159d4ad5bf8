// Package nansen adapts the on-chain analytics provider's HTTP API into
// typed records. Raw provider JSON never leaves this package; flow rows
// are converted to the canonical six-segment form at this boundary.
package nansen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tokenscope/tokenscope/internal/httpx"
	"github.com/tokenscope/tokenscope/internal/token"
)

// Client talks to the analytics API through the shared transport.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
}

// Config configures the adapter.
type Config struct {
	BaseURL string
	APIKey  string
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.nansen.ai/api/v1"
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}
}

func (c *Client) headers() map[string]string {
	h := map[string]string{}
	if c.apiKey != "" {
		h["apiKey"] = c.apiKey
	}
	return h
}

// TokenMetadata fetches name, symbol, market figures, holder count, and
// deployment date for one (chain, address).
func (c *Client) TokenMetadata(ctx context.Context, chain token.ChainID, address string) (*TokenInfo, error) {
	body := map[string]string{
		"chain":        string(chain),
		"tokenAddress": address,
	}
	var raw tokenInfoJSON
	if err := c.http.PostJSON(ctx, c.baseURL+"/token/metadata", c.headers(), body, &raw); err != nil {
		return nil, fmt.Errorf("nansen metadata %s/%s: %w", chain, address, err)
	}
	return raw.toInfo(), nil
}

// FlowIntelligence fetches cohort flows over the timeframe ("1d", "7d",
// ...) and returns the canonical six segments.
func (c *Client) FlowIntelligence(ctx context.Context, chain token.ChainID, address, timeframe string) ([]token.FlowSegment, error) {
	body := map[string]string{
		"chain":        string(chain),
		"tokenAddress": address,
		"timeframe":    timeframe,
	}
	var rows []flowRowJSON
	if err := c.http.PostJSON(ctx, c.baseURL+"/token/flow-intelligence", c.headers(), body, &rows); err != nil {
		return nil, fmt.Errorf("nansen flows %s/%s: %w", chain, address, err)
	}
	return canonicalFlows(rows), nil
}

// SmartMoneyTrades fetches the smart-money trader list for one side of the
// book over [from, to). Rows may include zero-volume noise; the report
// builder filters it.
func (c *Client) SmartMoneyTrades(ctx context.Context, chain token.ChainID, address string, side TradeSide, from, to time.Time) ([]Trade, error) {
	body := map[string]string{
		"chain":        string(chain),
		"tokenAddress": address,
		"side":         string(side),
		"from":         from.UTC().Format("2006-01-02"),
		"to":           to.UTC().Format("2006-01-02"),
	}
	var rows []Trade
	if err := c.http.PostJSON(ctx, c.baseURL+"/token/smart-money-trades", c.headers(), body, &rows); err != nil {
		return nil, fmt.Errorf("nansen trades %s/%s %s: %w", chain, address, side, err)
	}
	return rows, nil
}

// ScreenerSearch queries the token screener by ticker, optionally filtered
// to one chain. Used as the fallback resolver for freshly launched assets;
// the server returns candidates sorted by volume descending.
func (c *Client) ScreenerSearch(ctx context.Context, symbol string, chain *token.ChainID) ([]ScreenerToken, error) {
	body := map[string]string{"symbol": strings.ToUpper(symbol)}
	if chain != nil {
		body["chain"] = string(*chain)
	}
	var rows []ScreenerToken
	if err := c.http.PostJSON(ctx, c.baseURL+"/token/screener", c.headers(), body, &rows); err != nil {
		return nil, fmt.Errorf("nansen screener %q: %w", symbol, err)
	}
	return rows, nil
}

// DeepLink builds the token-god-mode URL for a report.
func DeepLink(chain token.ChainID, address string) string {
	return fmt.Sprintf("https://app.nansen.ai/token-god-mode?chain=%s&tokenAddress=%s", chain, address)
}
