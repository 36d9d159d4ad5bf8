package coingecko

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchCoin is one candidate from the /search endpoint. MarketCapRank is
// nil for unranked listings; candidate ordering treats nil as last.
type SearchCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
}

type searchResponse struct {
	Coins []SearchCoin `json:"coins"`
}

// PlatformAddress is one (platform, contract address) listing of a coin.
type PlatformAddress struct {
	Platform string
	Address  string
}

// PlatformList preserves the provider's own JSON object ordering, which
// puts the primary listing first. A plain Go map would lose it.
type PlatformList []PlatformAddress

// MarshalJSON writes the ordered object form back out, so cached details
// round-trip through UnmarshalJSON without losing the listing order.
func (p PlatformList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pa := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(pa.Platform)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(pa.Address)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *PlatformList) UnmarshalJSON(data []byte) error {
	*p = nil
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // "platforms": null
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("platforms: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var addr string
		if json.Unmarshal(raw, &addr) != nil {
			continue // null or non-string value
		}
		if key == "" || addr == "" {
			continue
		}
		*p = append(*p, PlatformAddress{Platform: key, Address: addr})
	}
	return nil
}

// usdValue decodes CoinGecko's per-currency objects ({"usd": 1.23}),
// keeping absence distinct from zero.
type usdValue struct {
	USD *float64 `json:"usd"`
}

// MarketSnapshot is the subset of market data the report builder consumes.
// Nil fields mean the provider had no figure.
type MarketSnapshot struct {
	PriceUSD     *float64
	MarketCapUSD *float64
	FDVUSD       *float64
	Volume24hUSD *float64
	Change24h    *float64
}

type marketDataJSON struct {
	CurrentPrice  usdValue `json:"current_price"`
	MarketCap     usdValue `json:"market_cap"`
	FDV           usdValue `json:"fully_diluted_valuation"`
	TotalVolume   usdValue `json:"total_volume"`
	PriceChange24 *float64 `json:"price_change_percentage_24h"`
}

func (m marketDataJSON) snapshot() MarketSnapshot {
	return MarketSnapshot{
		PriceUSD:     m.CurrentPrice.USD,
		MarketCapUSD: m.MarketCap.USD,
		FDVUSD:       m.FDV.USD,
		Volume24hUSD: m.TotalVolume.USD,
		Change24h:    m.PriceChange24,
	}
}

// CoinDetail is the full coin record: identity, per-chain listings, and a
// market snapshot.
type CoinDetail struct {
	ID        string
	Name      string
	Symbol    string
	Platforms PlatformList
	Market    MarketSnapshot
}

type coinDetailJSON struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	Platforms  PlatformList   `json:"platforms"`
	MarketData marketDataJSON `json:"market_data"`
}

// ContractInfo is the result of a lookup-by-contract call.
type ContractInfo struct {
	ID     string
	Name   string
	Symbol string
	Market MarketSnapshot
}

type contractInfoJSON struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	MarketData marketDataJSON `json:"market_data"`
}

// SimpleQuote is the fast /simple endpoints' row: price, cap, volume, and
// 24h change. FDV is not served there; callers needing it fall back to the
// detailed endpoints.
type SimpleQuote struct {
	PriceUSD     *float64 `json:"usd"`
	MarketCapUSD *float64 `json:"usd_market_cap"`
	Volume24hUSD *float64 `json:"usd_24h_vol"`
	Change24h    *float64 `json:"usd_24h_change"`
}
