package nansen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenscope/tokenscope/internal/httpx"
	"github.com/tokenscope/tokenscope/internal/token"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc := httpx.New(httpx.Config{
		Provider:    "nansen-test",
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
	})
	return New(Config{BaseURL: srv.URL, APIKey: "test-key"}, hc)
}

func TestTokenMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/metadata", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apiKey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ethereum", body["chain"])

		w.Write([]byte(`{
			"name":"Pepe","symbol":"pepe",
			"price_usd":0.0000012,"market_cap_usd":500000000,
			"liquidity_usd":25000000,"holder_count":250000,
			"deployed_at":"2023-04-14T00:00:00Z"
		}`))
	}))

	info, err := client.TokenMetadata(context.Background(), token.ChainEthereum, "0xpepe")
	require.NoError(t, err)

	assert.Equal(t, "Pepe", info.Name)
	require.NotNil(t, info.PriceUSD)
	assert.InDelta(t, 0.0000012, *info.PriceUSD, 1e-9)
	assert.Nil(t, info.FDVUSD, "missing fields stay nil")
	require.NotNil(t, info.HolderCount)
	assert.Equal(t, 250000, *info.HolderCount)
	require.NotNil(t, info.DeployedAt)
	assert.Equal(t, 2023, info.DeployedAt.Year())
}

func TestParseDeployedAt(t *testing.T) {
	assert.Nil(t, parseDeployedAt(""))
	assert.Nil(t, parseDeployedAt("not a date"))
	assert.NotNil(t, parseDeployedAt("2023-04-14"))
	assert.NotNil(t, parseDeployedAt("2023-04-14T12:30:00Z"))
}

func TestFlowIntelligence_CanonicalSegments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"segment":"whale","net_flow_usd":1200000,"avg_flow_usd":40000,"wallet_count":30},
			{"segment":"exchange","net_flow_usd":-800000,"avg_flow_usd":-20000,"wallet_count":40},
			{"segment":"fresh_wallet","net_flow_usd":0,"avg_flow_usd":0,"wallet_count":0}
		]`))
	}))

	flows, err := client.FlowIntelligence(context.Background(), token.ChainEthereum, "0xpepe", "1d")
	require.NoError(t, err)

	// Always all six, in canonical order.
	require.Len(t, flows, len(token.SegmentOrder))
	for i, name := range token.SegmentOrder {
		assert.Equal(t, name, flows[i].Name)
	}

	whales := flows[1]
	assert.Equal(t, token.SegmentWhales, whales.Name)
	assert.True(t, whales.Present)
	assert.Equal(t, 1200000.0, whales.NetFlowUSD)
	assert.Equal(t, 30, whales.WalletCount)

	// Zero/zero row is the no-data sentinel, not a real zero signal.
	fresh := flows[5]
	assert.Equal(t, token.SegmentFreshWallets, fresh.Name)
	assert.False(t, fresh.Present)

	// Segments the upstream never mentioned are absent too.
	assert.False(t, flows[0].Present, "smart traders had no row")
}

func TestSmartMoneyTrades(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buy", body["side"])
		assert.NotEmpty(t, body["from"])

		w.Write([]byte(`[
			{"address":"0xaaa","label":"Wintermute","volume_usd":900000},
			{"address":"0xbbb","label":"","volume_usd":0}
		]`))
	}))

	now := time.Now()
	trades, err := client.SmartMoneyTrades(context.Background(), token.ChainEthereum, "0xpepe", SideBuy, now.AddDate(0, 0, -1), now)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "Wintermute", trades[0].Label)
	assert.Zero(t, trades[1].VolumeUSD, "zero-volume noise is passed through for the builder to filter")
}

func TestScreenerSearch_ChainFilter(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "WIF", body["symbol"], "screener queries upper-cased symbols")
		assert.Equal(t, "solana", body["chain"])

		w.Write([]byte(`[{"symbol":"WIF","chain":"solana","address":"EKpQ","volume_usd":1000000}]`))
	}))

	sol := token.ChainSolana
	rows, err := client.ScreenerSearch(context.Background(), "wif", &sol)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "solana", rows[0].Chain)
}

func TestDeepLink(t *testing.T) {
	link := DeepLink(token.ChainEthereum, "0xpepe")
	assert.Contains(t, link, "chain=ethereum")
	assert.Contains(t, link, "tokenAddress=0xpepe")
}
