// Package report builds the unified token report: three to four upstream
// calls issued concurrently, joined with all-outcomes-observed semantics,
// then merged under source-priority rules. Build never fails; every
// upstream rejection degrades its fields to nil instead.
package report

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tokenscope/tokenscope/internal/chains"
	"github.com/tokenscope/tokenscope/internal/metrics"
	"github.com/tokenscope/tokenscope/internal/providers/coingecko"
	"github.com/tokenscope/tokenscope/internal/providers/nansen"
	"github.com/tokenscope/tokenscope/internal/token"
)

// AnalyticsAPI is the slice of the analytics provider the builder uses.
type AnalyticsAPI interface {
	TokenMetadata(ctx context.Context, chain token.ChainID, address string) (*nansen.TokenInfo, error)
	FlowIntelligence(ctx context.Context, chain token.ChainID, address, timeframe string) ([]token.FlowSegment, error)
	SmartMoneyTrades(ctx context.Context, chain token.ChainID, address string, side nansen.TradeSide, from, to time.Time) ([]nansen.Trade, error)
}

// MarketAPI is the slice of the market-data provider the builder uses.
type MarketAPI interface {
	SimplePrice(ctx context.Context, id string) (*coingecko.SimpleQuote, error)
	SimpleTokenPrice(ctx context.Context, platform, address string) (*coingecko.SimpleQuote, error)
	ContractLookup(ctx context.Context, platform, address string) (*coingecko.ContractInfo, error)
}

// Builder aggregates upstream data into token reports.
type Builder struct {
	analytics AnalyticsAPI
	market    MarketAPI
	timeframe string        // flow-intelligence window
	window    time.Duration // smart-money trade lookback
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithTimeframe sets the flow-intelligence window ("1d", "7d").
func WithTimeframe(tf string) Option {
	return func(b *Builder) { b.timeframe = tf }
}

// New creates a builder with a 1-day flow window and 24h trade lookback.
func New(analytics AnalyticsAPI, market MarketAPI, opts ...Option) *Builder {
	b := &Builder{
		analytics: analytics,
		market:    market,
		timeframe: "1d",
		window:    24 * time.Hour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the report for one resolved token. It never returns an
// error: individual upstream failures leave their fields nil and the
// remaining legs unaffected.
func (b *Builder) Build(ctx context.Context, tok *token.ResolvedToken) *token.TokenReport {
	var (
		wg sync.WaitGroup

		meta    *nansen.TokenInfo
		flows   []token.FlowSegment
		buys    []nansen.Trade
		sells   []nansen.Trade
		buysOK  bool
		sellsOK bool
		quote   *coingecko.SimpleQuote
		detail  *coingecko.ContractInfo
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		m, err := b.analytics.TokenMetadata(ctx, tok.Chain, tok.Address)
		if err != nil {
			log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("analytics metadata unavailable")
			return
		}
		meta = m
	}()

	go func() {
		defer wg.Done()
		f, err := b.analytics.FlowIntelligence(ctx, tok.Chain, tok.Address, b.timeframe)
		if err != nil {
			log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("flow intelligence unavailable")
			return
		}
		flows = f
	}()

	go func() {
		defer wg.Done()
		to := b.now()
		from := to.Add(-b.window)
		var err error
		if buys, err = b.analytics.SmartMoneyTrades(ctx, tok.Chain, tok.Address, nansen.SideBuy, from, to); err != nil {
			log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("smart-money buys unavailable")
		} else {
			buysOK = true
		}
		if sells, err = b.analytics.SmartMoneyTrades(ctx, tok.Chain, tok.Address, nansen.SideSell, from, to); err != nil {
			log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("smart-money sells unavailable")
		} else {
			sellsOK = true
		}
	}()

	go func() {
		defer wg.Done()
		quote, detail = b.fetchMarket(ctx, tok)
	}()

	wg.Wait()

	r := &token.TokenReport{Token: *tok, Flows: flows}

	b.patchIdentity(r, meta)
	b.mergeMarket(r, meta, quote, detail)

	if buysOK || sellsOK {
		r.SmartMoney = smartMoneySection(buys, sells)
	}
	if meta != nil {
		r.AgeDays = ageDays(b.now(), meta.DeployedAt)
		r.HolderCount = meta.HolderCount
		r.LiquidityUSD = meta.LiquidityUSD
	}
	if r.Token.Address != "" {
		r.DeepLink = nansen.DeepLink(r.Token.Chain, r.Token.Address)
	}

	metrics.RecordReport(string(r.DataSource))
	return r
}

// fetchMarket runs the market-data leg: the fast simple endpoint first, the
// slower contract detail only as fallback when the fast one yields nothing.
func (b *Builder) fetchMarket(ctx context.Context, tok *token.ResolvedToken) (*coingecko.SimpleQuote, *coingecko.ContractInfo) {
	if tok.CoinGeckoID != "" {
		quote, err := b.market.SimplePrice(ctx, tok.CoinGeckoID)
		if err != nil {
			log.Debug().Err(err).Str("coin", tok.CoinGeckoID).Msg("simple price unavailable")
			return nil, nil
		}
		return quote, nil
	}

	platform, ok := chains.CoinGeckoPlatform(tok.Chain)
	if !ok {
		return nil, nil
	}

	quote, err := b.market.SimpleTokenPrice(ctx, platform, tok.Address)
	if err == nil && quote.PriceUSD != nil {
		return quote, nil
	}
	if err != nil {
		log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("simple token price unavailable")
	}

	detail, err := b.market.ContractLookup(ctx, platform, tok.Address)
	if err != nil {
		log.Debug().Err(err).Str("symbol", tok.Symbol).Msg("contract lookup unavailable")
		return quote, nil
	}
	return quote, detail
}

// patchIdentity adopts live analytics identity over resolver guesses: a
// proper name replaces placeholders, and the provider's symbol always wins.
func (b *Builder) patchIdentity(r *token.TokenReport, meta *nansen.TokenInfo) {
	if meta == nil {
		return
	}
	if meta.Name != "" && isPlaceholderName(r.Token.Name, r.Token.Symbol) {
		r.Token.Name = meta.Name
	}
	if meta.Symbol != "" {
		r.Token.Symbol = strings.ToUpper(meta.Symbol)
	}
}

func isPlaceholderName(name, symbol string) bool {
	return name == token.PlaceholderName || name == "" || strings.EqualFold(name, symbol)
}

// mergeMarket applies the source-priority rules: analytics figures first
// with market-data fallback, except the 24h change which always comes from
// the market-data provider.
func (b *Builder) mergeMarket(r *token.TokenReport, meta *nansen.TokenInfo, quote *coingecko.SimpleQuote, detail *coingecko.ContractInfo) {
	var cgPrice, cgCap, cgVol, cgChange, cgFDV *float64
	if quote != nil {
		cgPrice, cgCap, cgVol, cgChange = quote.PriceUSD, quote.MarketCapUSD, quote.Volume24hUSD, quote.Change24h
	}
	if detail != nil {
		if cgPrice == nil {
			cgPrice = detail.Market.PriceUSD
		}
		if cgCap == nil {
			cgCap = detail.Market.MarketCapUSD
		}
		if cgVol == nil {
			cgVol = detail.Market.Volume24hUSD
		}
		if cgChange == nil {
			cgChange = detail.Market.Change24h
		}
		cgFDV = detail.Market.FDVUSD
	}

	if meta != nil {
		r.PriceUSD = coalesce(meta.PriceUSD, cgPrice)
		r.MarketCapUSD = coalesce(meta.MarketCapUSD, cgCap)
		r.FDVUSD = coalesce(meta.FDVUSD, cgFDV)
		r.Volume24hUSD = coalesce(meta.Volume24hUSD, cgVol)
	} else {
		r.PriceUSD = cgPrice
		r.MarketCapUSD = cgCap
		r.FDVUSD = cgFDV
		r.Volume24hUSD = cgVol
	}
	// The analytics provider does not supply this reliably.
	r.PriceChange24h = cgChange

	nansenUsable := meta != nil && (meta.PriceUSD != nil || meta.MarketCapUSD != nil)
	cgUsable := cgPrice != nil || cgCap != nil
	switch {
	case nansenUsable && cgUsable:
		r.DataSource = token.SourceBoth
	case nansenUsable:
		r.DataSource = token.SourceNansen
	case cgUsable:
		r.DataSource = token.SourceCoinGecko
	default:
		r.DataSource = token.SourceNone
	}
}

func coalesce(primary, fallback *float64) *float64 {
	if primary != nil {
		return primary
	}
	return fallback
}

// ageDays is the whole-day age of the token, nil without a deployment date.
func ageDays(now time.Time, deployedAt *time.Time) *int {
	if deployedAt == nil {
		return nil
	}
	days := int(now.Sub(*deployedAt).Hours() / 24)
	if days < 0 {
		return nil
	}
	return &days
}

// smartMoneySection aggregates the raw trader lists. Zero-volume rows are
// list noise: they are excluded from sums, counts, and leaderboards.
func smartMoneySection(buys, sells []nansen.Trade) *token.SmartMoneySection {
	buyers := positiveVolume(buys)
	sellers := positiveVolume(sells)

	section := &token.SmartMoneySection{
		BuyerCount:  len(buyers),
		SellerCount: len(sellers),
		TopBuyers:   topTraders(buyers),
		TopSellers:  topTraders(sellers),
	}
	for _, tr := range buyers {
		section.BoughtUSD += tr.VolumeUSD
	}
	for _, tr := range sellers {
		section.SoldUSD += tr.VolumeUSD
	}
	section.NetUSD = section.BoughtUSD - section.SoldUSD
	return section
}

func positiveVolume(trades []nansen.Trade) []nansen.Trade {
	out := make([]nansen.Trade, 0, len(trades))
	for _, tr := range trades {
		if tr.VolumeUSD > 0 {
			out = append(out, tr)
		}
	}
	return out
}

func topTraders(trades []nansen.Trade) []token.TopTrader {
	sorted := make([]nansen.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VolumeUSD > sorted[j].VolumeUSD
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	out := make([]token.TopTrader, 0, len(sorted))
	for _, tr := range sorted {
		label := tr.Label
		if label == "" {
			label = token.ShortAddress(tr.Address)
		}
		out = append(out, token.TopTrader{
			Address:   tr.Address,
			Label:     label,
			VolumeUSD: tr.VolumeUSD,
		})
	}
	return out
}
