package nansen

import (
	"strings"
	"time"

	"github.com/tokenscope/tokenscope/internal/token"
)

// TokenInfo is the analytics provider's token metadata record. Nil fields
// mean the provider returned no figure.
type TokenInfo struct {
	Name         string
	Symbol       string
	PriceUSD     *float64
	MarketCapUSD *float64
	FDVUSD       *float64
	Volume24hUSD *float64
	LiquidityUSD *float64
	HolderCount  *int
	DeployedAt   *time.Time
}

type tokenInfoJSON struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	PriceUSD     *float64 `json:"price_usd"`
	MarketCapUSD *float64 `json:"market_cap_usd"`
	FDVUSD       *float64 `json:"fdv_usd"`
	Volume24hUSD *float64 `json:"volume_24h_usd"`
	LiquidityUSD *float64 `json:"liquidity_usd"`
	HolderCount  *int     `json:"holder_count"`
	DeployedAt   string   `json:"deployed_at"`
}

// parseDeployedAt accepts the two timestamp layouts the provider has been
// seen emitting; anything else leaves the field nil.
func parseDeployedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

func (j tokenInfoJSON) toInfo() *TokenInfo {
	return &TokenInfo{
		Name:         j.Name,
		Symbol:       j.Symbol,
		PriceUSD:     j.PriceUSD,
		MarketCapUSD: j.MarketCapUSD,
		FDVUSD:       j.FDVUSD,
		Volume24hUSD: j.Volume24hUSD,
		LiquidityUSD: j.LiquidityUSD,
		HolderCount:  j.HolderCount,
		DeployedAt:   parseDeployedAt(j.DeployedAt),
	}
}

// flowRowJSON is one raw flow-intelligence row. The upstream encodes "no
// data" as a zero-wallet, zero-net row; the adapter converts that to an
// Absent segment so nothing downstream re-derives it.
type flowRowJSON struct {
	Segment     string  `json:"segment"`
	NetFlowUSD  float64 `json:"net_flow_usd"`
	AvgFlowUSD  float64 `json:"avg_flow_usd"`
	WalletCount int     `json:"wallet_count"`
}

// segmentNames maps upstream segment keys to the canonical names.
var segmentNames = map[string]token.SegmentName{
	"smart_trader":   token.SegmentSmartTraders,
	"whale":          token.SegmentWhales,
	"public_figure":  token.SegmentPublicFigures,
	"exchange":       token.SegmentExchanges,
	"top_pnl_trader": token.SegmentTopPnL,
	"fresh_wallet":   token.SegmentFreshWallets,
}

// canonicalFlows converts raw rows into the fixed six-segment slice, in
// canonical order, with Absent placeholders for missing or sentinel rows.
func canonicalFlows(rows []flowRowJSON) []token.FlowSegment {
	byName := make(map[token.SegmentName]flowRowJSON, len(rows))
	for _, row := range rows {
		if name, ok := segmentNames[strings.ToLower(row.Segment)]; ok {
			byName[name] = row
		}
	}

	out := make([]token.FlowSegment, 0, len(token.SegmentOrder))
	for _, name := range token.SegmentOrder {
		seg := token.FlowSegment{Name: name}
		if row, ok := byName[name]; ok {
			// Zero wallets and zero net is the upstream "no data" sentinel.
			if row.WalletCount != 0 || row.NetFlowUSD != 0 {
				seg.Present = true
				seg.NetFlowUSD = row.NetFlowUSD
				seg.AvgFlowUSD = row.AvgFlowUSD
				seg.WalletCount = row.WalletCount
			}
		}
		out = append(out, seg)
	}
	return out
}

// TradeSide selects the buy or sell leaderboard.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Trade is one smart-money trader row: aggregate volume with a best-effort
// address-book label.
type Trade struct {
	Address   string  `json:"address"`
	Label     string  `json:"label"`
	VolumeUSD float64 `json:"volume_usd"`
}

// ScreenerToken is one candidate from the token screener, the secondary
// resolver for assets the market-data provider has not indexed yet.
type ScreenerToken struct {
	Symbol    string  `json:"symbol"`
	Chain     string  `json:"chain"`
	Address   string  `json:"address"`
	VolumeUSD float64 `json:"volume_usd"`
}
