package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x6982...1933", ShortAddress("0x6982508145454ce325ddbe47a25d4ec3d2311933"))
	assert.Equal(t, "0xabc", ShortAddress("0xabc"), "short inputs pass through")
	assert.Equal(t, "", ShortAddress(""))
}

func TestDisplayLabel(t *testing.T) {
	labeled := TopTrader{Address: "0x6982508145454ce325ddbe47a25d4ec3d2311933", Label: "Wintermute"}
	assert.Equal(t, "Wintermute", labeled.DisplayLabel())

	anon := TopTrader{Address: "0x6982508145454ce325ddbe47a25d4ec3d2311933"}
	assert.Equal(t, "0x6982...1933", anon.DisplayLabel())
}

func TestLookupNative(t *testing.T) {
	eth, ok := LookupNative("eth")
	assert.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "ethereum", eth.CoinGeckoID)
	assert.True(t, eth.OnChain(ChainBase))
	assert.False(t, eth.OnChain(ChainSolana))

	btc, ok := LookupNative("BTC")
	assert.True(t, ok)
	assert.True(t, btc.OnChain(ChainEthereum), "BTC resolves to its wrapped ERC-20")

	_, ok = LookupNative("PEPE")
	assert.False(t, ok)
}

func TestSegmentLookup(t *testing.T) {
	r := &TokenReport{Flows: []FlowSegment{
		{Name: SegmentWhales, Present: true, NetFlowUSD: 100},
	}}
	seg := r.Segment(SegmentWhales)
	assert.NotNil(t, seg)
	assert.Equal(t, 100.0, seg.NetFlowUSD)

	assert.Nil(t, r.Segment(SegmentExchanges))
	assert.Nil(t, (&TokenReport{}).Segment(SegmentWhales))
}
