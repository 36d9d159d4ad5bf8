package token

import (
	"fmt"
	"strings"
)

// ChainID is a canonical chain identifier ("ethereum", "solana", ...).
// The full alias table lives in internal/chains.
type ChainID string

const (
	ChainEthereum  ChainID = "ethereum"
	ChainSolana    ChainID = "solana"
	ChainBase      ChainID = "base"
	ChainBSC       ChainID = "bsc"
	ChainArbitrum  ChainID = "arbitrum"
	ChainPolygon   ChainID = "polygon"
	ChainAvalanche ChainID = "avalanche"
	ChainOptimism  ChainID = "optimism"
	ChainTron      ChainID = "tron"
)

// ParsedInput is the classified form of one raw user query.
type ParsedInput struct {
	Query             string
	IsContractAddress bool
	ChainHint         *ChainID
	InferredChain     *ChainID
}

// ResolvedToken identifies one token uniquely by (Chain, Address).
// CoinGeckoID is set only for native assets that the market-data provider
// indexes by coin id instead of a contract address.
type ResolvedToken struct {
	Name        string
	Symbol      string
	Chain       ChainID
	Address     string
	CoinGeckoID string
}

// Placeholder values the resolver falls back to when no provider recognizes
// an address. The report builder patches these once live metadata arrives.
const (
	PlaceholderName   = "Unknown Token"
	PlaceholderSymbol = "???"
)

// SegmentName is one of the six fixed wallet cohorts.
type SegmentName string

const (
	SegmentSmartTraders  SegmentName = "Smart Traders"
	SegmentWhales        SegmentName = "Whales"
	SegmentPublicFigures SegmentName = "Public Figures"
	SegmentExchanges     SegmentName = "Exchanges"
	SegmentTopPnL        SegmentName = "Top PnL Traders"
	SegmentFreshWallets  SegmentName = "Fresh Wallets"
)

// SegmentOrder is the canonical render order. Reports always carry all six
// segments in this order, with Present=false standing in for missing data.
var SegmentOrder = []SegmentName{
	SegmentSmartTraders,
	SegmentWhales,
	SegmentPublicFigures,
	SegmentExchanges,
	SegmentTopPnL,
	SegmentFreshWallets,
}

// FlowSegment is the aggregate net USD movement of one wallet cohort.
// Present=false means the upstream had no data for the cohort; consumers
// must not read it as a genuine zero-flow signal.
type FlowSegment struct {
	Name        SegmentName
	Present     bool
	NetFlowUSD  float64
	AvgFlowUSD  float64
	WalletCount int
}

// TopTrader is one entry of a smart-money buy or sell leaderboard.
type TopTrader struct {
	Address   string
	Label     string
	VolumeUSD float64
}

// DisplayLabel returns the address-book label when known, else the
// shortened address.
func (t TopTrader) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return ShortAddress(t.Address)
}

// SmartMoneySection aggregates smart-money buy/sell activity over the
// report window.
type SmartMoneySection struct {
	BoughtUSD   float64
	SoldUSD     float64
	NetUSD      float64
	BuyerCount  int
	SellerCount int
	TopBuyers   []TopTrader
	TopSellers  []TopTrader
}

// Provenance records which upstream providers actually supplied the market
// figures in a report.
type Provenance string

const (
	SourceNansen    Provenance = "nansen"
	SourceCoinGecko Provenance = "coingecko"
	SourceBoth      Provenance = "both"
	SourceNone      Provenance = "none"
)

// TokenReport is the aggregate produced for one resolved token. Any pointer
// field may be nil when its source failed or returned nothing; consumers
// render partial data and never error on a missing field.
type TokenReport struct {
	Token          ResolvedToken
	PriceUSD       *float64
	MarketCapUSD   *float64
	FDVUSD         *float64
	PriceChange24h *float64
	Volume24hUSD   *float64
	LiquidityUSD   *float64
	AgeDays        *int
	HolderCount    *int
	Flows          []FlowSegment
	SmartMoney     *SmartMoneySection
	DeepLink       string
	DataSource     Provenance
}

// Segment returns the named flow segment, or nil when the report carries no
// flow data at all.
func (r *TokenReport) Segment(name SegmentName) *FlowSegment {
	for i := range r.Flows {
		if r.Flows[i].Name == name {
			return &r.Flows[i]
		}
	}
	return nil
}

// ScanResult pairs one watchlist token with its report and interest score.
type ScanResult struct {
	Token   ResolvedToken
	Report  *TokenReport
	Score   int
	Signals []string
}

// ShortAddress shortens an on-chain address to "first6...last4" for display.
// Inputs too short to shorten come back unchanged.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return fmt.Sprintf("%s...%s", addr[:6], addr[len(addr)-4:])
}

// NativeAsset describes an asset with no uniform contract representation,
// indexed by the market-data provider under a coin id instead.
type NativeAsset struct {
	Name        string
	CoinGeckoID string
	Chains      []ChainID
}

// nativeAssets covers the majors users ask about by bare ticker. BTC maps
// to its wrapped Ethereum representation since analytics providers track
// the ERC-20.
var nativeAssets = map[string]NativeAsset{
	"ETH":   {Name: "Ethereum", CoinGeckoID: "ethereum", Chains: []ChainID{ChainEthereum, ChainBase, ChainArbitrum, ChainOptimism}},
	"SOL":   {Name: "Solana", CoinGeckoID: "solana", Chains: []ChainID{ChainSolana}},
	"BNB":   {Name: "BNB", CoinGeckoID: "binancecoin", Chains: []ChainID{ChainBSC}},
	"BTC":   {Name: "Bitcoin", CoinGeckoID: "bitcoin", Chains: []ChainID{ChainEthereum}},
	"AVAX":  {Name: "Avalanche", CoinGeckoID: "avalanche-2", Chains: []ChainID{ChainAvalanche}},
	"MATIC": {Name: "Polygon", CoinGeckoID: "matic-network", Chains: []ChainID{ChainPolygon}},
	"POL":   {Name: "Polygon", CoinGeckoID: "matic-network", Chains: []ChainID{ChainPolygon}},
	"TRX":   {Name: "TRON", CoinGeckoID: "tron", Chains: []ChainID{ChainTron}},
}

// LookupNative returns the native-asset entry for a ticker, if any.
func LookupNative(symbol string) (NativeAsset, bool) {
	asset, ok := nativeAssets[strings.ToUpper(symbol)]
	return asset, ok
}

// OnChain reports whether the native asset has a presence on the chain.
func (a NativeAsset) OnChain(chain ChainID) bool {
	for _, c := range a.Chains {
		if c == chain {
			return true
		}
	}
	return false
}
