package chains

import (
	"strings"

	"github.com/tokenscope/tokenscope/internal/token"
)

// aliases maps user-typed chain names and symbols to canonical chain ids.
// Lookups are case-insensitive and tolerate a leading "$".
var aliases = map[string]token.ChainID{
	"ethereum":  token.ChainEthereum,
	"eth":       token.ChainEthereum,
	"mainnet":   token.ChainEthereum,
	"erc20":     token.ChainEthereum,
	"solana":    token.ChainSolana,
	"sol":       token.ChainSolana,
	"base":      token.ChainBase,
	"bsc":       token.ChainBSC,
	"bnb":       token.ChainBSC,
	"binance":   token.ChainBSC,
	"bep20":     token.ChainBSC,
	"arbitrum":  token.ChainArbitrum,
	"arb":       token.ChainArbitrum,
	"polygon":   token.ChainPolygon,
	"matic":     token.ChainPolygon,
	"poly":      token.ChainPolygon,
	"avalanche": token.ChainAvalanche,
	"avax":      token.ChainAvalanche,
	"optimism":  token.ChainOptimism,
	"op":        token.ChainOptimism,
	"tron":      token.ChainTron,
	"trx":       token.ChainTron,
}

// coingeckoPlatforms maps canonical chain ids to the market-data provider's
// asset-platform identifiers.
var coingeckoPlatforms = map[token.ChainID]string{
	token.ChainEthereum:  "ethereum",
	token.ChainSolana:    "solana",
	token.ChainBase:      "base",
	token.ChainBSC:       "binance-smart-chain",
	token.ChainArbitrum:  "arbitrum-one",
	token.ChainPolygon:   "polygon-pos",
	token.ChainAvalanche: "avalanche",
	token.ChainOptimism:  "optimistic-ethereum",
	token.ChainTron:      "tron",
}

// AddressPriority is the probe order for bare EVM addresses with no chain
// hint: most liquid and most commonly pasted chains first.
var AddressPriority = []token.ChainID{
	token.ChainEthereum,
	token.ChainBase,
	token.ChainBSC,
	token.ChainArbitrum,
	token.ChainPolygon,
	token.ChainAvalanche,
	token.ChainOptimism,
}

// LookupAlias resolves a user-typed chain name to a canonical id.
func LookupAlias(name string) (token.ChainID, bool) {
	key := strings.ToLower(strings.TrimPrefix(name, "$"))
	id, ok := aliases[key]
	return id, ok
}

// CoinGeckoPlatform returns the market-data provider's platform id for a
// chain.
func CoinGeckoPlatform(chain token.ChainID) (string, bool) {
	p, ok := coingeckoPlatforms[chain]
	return p, ok
}

// FromCoinGeckoPlatform maps a provider platform id back to a canonical
// chain id.
func FromCoinGeckoPlatform(platform string) (token.ChainID, bool) {
	for chain, p := range coingeckoPlatforms {
		if p == platform {
			return chain, true
		}
	}
	return "", false
}

// Supported reports whether the chain is in the fixed alias table.
func Supported(chain token.ChainID) bool {
	_, ok := coingeckoPlatforms[chain]
	return ok
}
