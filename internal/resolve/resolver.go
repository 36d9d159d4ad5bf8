// Package resolve turns a parsed query into a concrete (chain, address)
// token identity, using the market-data provider's search and contract
// endpoints with the analytics screener as a second layer for assets too
// new to be indexed.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tokenscope/tokenscope/internal/chains"
	"github.com/tokenscope/tokenscope/internal/httpx"
	"github.com/tokenscope/tokenscope/internal/providers/coingecko"
	"github.com/tokenscope/tokenscope/internal/providers/nansen"
	"github.com/tokenscope/tokenscope/internal/token"
)

// ErrNotFound means no provider could place the subject on any supported
// chain. The message carries actionable advice for the end user.
var ErrNotFound = errors.New("token not found")

// ErrNoChainPresence means a chain hint was supplied but the token has no
// listing there.
var ErrNoChainPresence = errors.New("token has no presence on the requested chain")

// MarketAPI is the slice of the market-data provider the resolver uses.
type MarketAPI interface {
	Search(ctx context.Context, query string) ([]coingecko.SearchCoin, error)
	CoinDetail(ctx context.Context, id string) (*coingecko.CoinDetail, error)
	ContractLookup(ctx context.Context, platform, address string) (*coingecko.ContractInfo, error)
}

// ScreenerAPI is the analytics provider's fallback resolver surface.
type ScreenerAPI interface {
	ScreenerSearch(ctx context.Context, symbol string, chain *token.ChainID) ([]nansen.ScreenerToken, error)
}

// Resolver resolves parsed inputs to token identities.
type Resolver struct {
	market   MarketAPI
	screener ScreenerAPI
}

// New creates a resolver. screener may be nil, disabling the second layer.
func New(market MarketAPI, screener ScreenerAPI) *Resolver {
	return &Resolver{market: market, screener: screener}
}

// Resolve turns a parsed input into a token identity. Address inputs never
// hard-fail: the analytics provider downstream may recognize an address the
// market-data provider does not, so unresolved addresses degrade to a
// placeholder identity instead. Symbol inputs fail with ErrNotFound or
// ErrNoChainPresence.
func (r *Resolver) Resolve(ctx context.Context, in *token.ParsedInput) (*token.ResolvedToken, error) {
	if in == nil || in.Query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	if in.IsContractAddress {
		return r.byAddress(ctx, in), nil
	}
	return r.bySymbol(ctx, in)
}

func (r *Resolver) byAddress(ctx context.Context, in *token.ParsedInput) *token.ResolvedToken {
	candidates := addressCandidates(in)

	for _, chain := range candidates {
		platform, ok := chains.CoinGeckoPlatform(chain)
		if !ok {
			continue
		}
		info, err := r.market.ContractLookup(ctx, platform, in.Query)
		if err != nil {
			if !httpx.IsNotFound(err) {
				log.Debug().Err(err).Str("chain", string(chain)).Msg("contract lookup failed")
			}
			continue
		}
		return &token.ResolvedToken{
			Name:    info.Name,
			Symbol:  strings.ToUpper(info.Symbol),
			Chain:   chain,
			Address: in.Query,
		}
	}

	// Degraded identity: the analytics provider may still know this
	// address, so the pipeline continues with placeholders.
	log.Debug().Str("address", in.Query).Msg("address unrecognized by market data, degrading")
	return &token.ResolvedToken{
		Name:    token.PlaceholderName,
		Symbol:  token.PlaceholderSymbol,
		Chain:   candidates[0],
		Address: in.Query,
	}
}

// addressCandidates orders the chains to probe for an address: an explicit
// hint wins, then the chain implied by the address format, then the fixed
// EVM priority list.
func addressCandidates(in *token.ParsedInput) []token.ChainID {
	if in.ChainHint != nil {
		return []token.ChainID{*in.ChainHint}
	}
	if in.InferredChain != nil {
		return []token.ChainID{*in.InferredChain}
	}
	return chains.AddressPriority
}

func (r *Resolver) bySymbol(ctx context.Context, in *token.ParsedInput) (*token.ResolvedToken, error) {
	coins, err := r.market.Search(ctx, in.Query)
	if err != nil {
		log.Debug().Err(err).Str("query", in.Query).Msg("market search failed")
	}
	if len(coins) == 0 {
		return r.viaScreener(ctx, in)
	}

	candidates := rankCandidates(coins, in.Query)

	for _, cand := range candidates {
		if resolved := r.tryNative(cand, in.ChainHint); resolved != nil {
			return resolved, nil
		}
		if resolved := r.tryPlatforms(ctx, cand, in.ChainHint); resolved != nil {
			return resolved, nil
		}
	}

	if in.ChainHint != nil {
		return nil, fmt.Errorf("%w: %q on %s; try the contract address directly",
			ErrNoChainPresence, in.Query, *in.ChainHint)
	}
	return nil, fmt.Errorf("%w: no contract address found for %q; try the contract address directly",
		ErrNotFound, in.Query)
}

// rankCandidates filters to exact ticker matches (falling back to the first
// five fuzzy results) and orders them by market-cap rank ascending, nils
// last. The sort is stable so the provider's relevance order breaks ties.
func rankCandidates(coins []coingecko.SearchCoin, query string) []coingecko.SearchCoin {
	var exact []coingecko.SearchCoin
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, query) {
			exact = append(exact, c)
		}
	}
	if len(exact) == 0 {
		exact = coins
		if len(exact) > 5 {
			exact = exact[:5]
		}
	}

	ranked := make([]coingecko.SearchCoin, len(exact))
	copy(ranked, exact)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].MarketCapRank, ranked[j].MarketCapRank
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return *ri < *rj
	})
	return ranked
}

// tryNative resolves assets with no uniform contract representation via the
// static native table. Returns nil when the candidate is not a native asset
// or the hinted chain does not carry it.
func (r *Resolver) tryNative(cand coingecko.SearchCoin, hint *token.ChainID) *token.ResolvedToken {
	native, ok := token.LookupNative(cand.Symbol)
	if !ok || native.CoinGeckoID != cand.ID {
		return nil
	}
	chain := native.Chains[0]
	if hint != nil {
		if !native.OnChain(*hint) {
			return nil
		}
		chain = *hint
	}
	return &token.ResolvedToken{
		Name:        native.Name,
		Symbol:      strings.ToUpper(cand.Symbol),
		Chain:       chain,
		CoinGeckoID: native.CoinGeckoID,
	}
}

// tryPlatforms fetches the candidate's full detail and picks a contract
// address: with a hint only that platform is acceptable; without one the
// provider's own listing order decides, first recognized platform wins.
func (r *Resolver) tryPlatforms(ctx context.Context, cand coingecko.SearchCoin, hint *token.ChainID) *token.ResolvedToken {
	detail, err := r.market.CoinDetail(ctx, cand.ID)
	if err != nil {
		log.Debug().Err(err).Str("coin", cand.ID).Msg("coin detail failed")
		return nil
	}

	if hint != nil {
		platform, ok := chains.CoinGeckoPlatform(*hint)
		if !ok {
			return nil
		}
		for _, pa := range detail.Platforms {
			if pa.Platform == platform {
				return resolvedFromDetail(detail, *hint, pa.Address)
			}
		}
		return nil
	}

	for _, pa := range detail.Platforms {
		if chain, ok := chains.FromCoinGeckoPlatform(pa.Platform); ok {
			return resolvedFromDetail(detail, chain, pa.Address)
		}
	}
	return nil
}

func resolvedFromDetail(detail *coingecko.CoinDetail, chain token.ChainID, address string) *token.ResolvedToken {
	return &token.ResolvedToken{
		Name:        detail.Name,
		Symbol:      strings.ToUpper(detail.Symbol),
		Chain:       chain,
		Address:     address,
		CoinGeckoID: detail.ID,
	}
}

// viaScreener is the second resolution layer: the analytics provider's
// token screener covers launches the market-data provider has not indexed
// yet. The screener supplies chain and address but no human name, so the
// name is provisionally the upper-cased symbol until the report builder
// patches it from live metadata.
func (r *Resolver) viaScreener(ctx context.Context, in *token.ParsedInput) (*token.ResolvedToken, error) {
	if r.screener == nil {
		return nil, fmt.Errorf("%w: %q matched nothing; try the contract address directly", ErrNotFound, in.Query)
	}

	rows, err := r.screener.ScreenerSearch(ctx, in.Query, in.ChainHint)
	if err != nil {
		log.Debug().Err(err).Str("query", in.Query).Msg("screener fallback failed")
	}
	for _, row := range rows {
		chain := token.ChainID(strings.ToLower(row.Chain))
		if !chains.Supported(chain) {
			continue
		}
		if in.ChainHint != nil && chain != *in.ChainHint {
			continue
		}
		symbol := strings.ToUpper(row.Symbol)
		log.Debug().Str("symbol", symbol).Str("chain", string(chain)).Msg("resolved via screener fallback")
		return &token.ResolvedToken{
			Name:    symbol, // patched later from analytics metadata
			Symbol:  symbol,
			Chain:   chain,
			Address: row.Address,
		}, nil
	}

	if in.ChainHint != nil {
		return nil, fmt.Errorf("%w: %q on %s; try the contract address directly",
			ErrNoChainPresence, in.Query, *in.ChainHint)
	}
	return nil, fmt.Errorf("%w: %q matched nothing; try the contract address directly", ErrNotFound, in.Query)
}
