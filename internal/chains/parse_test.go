package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenscope/tokenscope/internal/token"
)

func TestParse_SymbolQueries(t *testing.T) {
	bare := Parse("PEPE")
	dollar := Parse("$PEPE")
	require.NotNil(t, bare)
	require.NotNil(t, dollar)

	assert.Equal(t, "PEPE", bare.Query)
	assert.Equal(t, bare.Query, dollar.Query, "leading $ must not change the query")
	assert.False(t, bare.IsContractAddress)
	assert.Nil(t, bare.ChainHint)

	lower := Parse("pepe")
	require.NotNil(t, lower)
	assert.Equal(t, "PEPE", lower.Query, "symbols are upper-cased")
}

func TestParse_ChainHint(t *testing.T) {
	in := Parse("$pepe SOL")
	require.NotNil(t, in)
	require.NotNil(t, in.ChainHint)
	assert.Equal(t, token.ChainSolana, *in.ChainHint)

	// First recognized alias wins, scanning left to right.
	in = Parse("PEPE eth sol")
	require.NotNil(t, in)
	require.NotNil(t, in.ChainHint)
	assert.Equal(t, token.ChainEthereum, *in.ChainHint)

	// Unrecognized trailing words are ignored.
	in = Parse("PEPE please")
	require.NotNil(t, in)
	assert.Nil(t, in.ChainHint)
}

func TestParse_BlankInput(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("   \t "))
	assert.Nil(t, Parse("$"))
}

func TestParse_AddressClassification(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		isAddr   bool
		inferred *token.ChainID
	}{
		{
			name:   "evm address",
			raw:    "0x6982508145454Ce325dDbE47a25d4ec3d2311933",
			isAddr: true,
			// EVM is ambiguous across chains: no inference.
			inferred: nil,
		},
		{
			name:     "tron address",
			raw:      "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
			isAddr:   true,
			inferred: chainPtr(token.ChainTron),
		},
		{
			name:     "solana address",
			raw:      "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
			isAddr:   true,
			inferred: chainPtr(token.ChainSolana),
		},
		{
			name:   "short base58 run is a symbol",
			raw:    "bonk",
			isAddr: false,
		},
		{
			name:   "hex but wrong length is a symbol",
			raw:    "0x6982508145454Ce325dDbE47a25d4ec3d23119",
			isAddr: false,
		},
		{
			// Accepted ambiguity: long base58 ticker-like strings classify
			// as Solana addresses. Do not "fix" by tightening the check.
			name:     "32 char base58 string classifies as solana",
			raw:      "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			isAddr:   true,
			inferred: chainPtr(token.ChainSolana),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Parse(tt.raw)
			require.NotNil(t, in)
			assert.Equal(t, tt.isAddr, in.IsContractAddress)
			if tt.isAddr {
				assert.Equal(t, tt.raw, in.Query, "addresses keep their original case")
			}
			if tt.inferred == nil {
				assert.Nil(t, in.InferredChain)
			} else {
				require.NotNil(t, in.InferredChain)
				assert.Equal(t, *tt.inferred, *in.InferredChain)
			}
		})
	}
}

func TestParse_AddressWithHint(t *testing.T) {
	in := Parse("0x6982508145454Ce325dDbE47a25d4ec3d2311933 base")
	require.NotNil(t, in)
	assert.True(t, in.IsContractAddress)
	require.NotNil(t, in.ChainHint)
	assert.Equal(t, token.ChainBase, *in.ChainHint)
	assert.Nil(t, in.InferredChain)
}

func TestLooksLikeTokenQuery_EmbeddedMatches(t *testing.T) {
	accepted := []string{
		"check out $PEPE today",
		"anyone looked at 0x6982508145454Ce325dDbE47a25d4ec3d2311933 yet",
		"ca is DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263 on sol",
		"wdyt about TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		"$pepe",
		"PEPE",
	}
	for _, text := range accepted {
		assert.True(t, LooksLikeTokenQuery(text), "should accept: %q", text)
	}

	rejected := []string{
		"",
		"   ",
		"$",
		" \t $  ",
	}
	for _, text := range rejected {
		assert.False(t, LooksLikeTokenQuery(text), "should reject: %q", text)
	}
}

// The loose predicate must accept every input Parse extracts a query from,
// for ALL inputs, not just well-formed ones: widening Parse without
// widening the predicate would make passive scanners silently drop
// messages. The corpus deliberately mixes clean queries with garbage
// Parse still classifies (numerics, punctuation, underscores, unicode).
func TestLooksLikeTokenQuery_SupersetOfParse(t *testing.T) {
	corpus := []string{
		"PEPE",
		"$PEPE",
		"pepe sol",
		"$wif solana",
		"0x6982508145454Ce325dDbE47a25d4ec3d2311933",
		"0x6982508145454Ce325dDbE47a25d4ec3d2311933 base",
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		"BONK eth",
		"42 is the answer",
		"what's up",
		"x.y.z token",
		"_foo",
		"...",
		"-pepe",
		"état du marché",
		"🚀 to the moon",
		"$",
		"",
		"   \t ",
	}
	for _, raw := range corpus {
		if Parse(raw) != nil {
			assert.True(t, LooksLikeTokenQuery(raw), "superset law violated for %q", raw)
		}
	}
}

// Parse accepts any non-blank subject, so the predicate accepts any
// non-blank text even without an embedded tag or address.
func TestLooksLikeTokenQuery_AcceptsWhateverParseClassifies(t *testing.T) {
	for _, raw := range []string{"42 is the answer", "what's up", "_foo", "x.y.z token"} {
		require.NotNil(t, Parse(raw))
		assert.True(t, LooksLikeTokenQuery(raw), "should accept: %q", raw)
	}
}

func TestLookupAlias(t *testing.T) {
	tests := []struct {
		in   string
		want token.ChainID
		ok   bool
	}{
		{"eth", token.ChainEthereum, true},
		{"ETH", token.ChainEthereum, true},
		{"$sol", token.ChainSolana, true},
		{"bep20", token.ChainBSC, true},
		{"matic", token.ChainPolygon, true},
		{"dogechain", "", false},
	}
	for _, tt := range tests {
		got, ok := LookupAlias(tt.in)
		assert.Equal(t, tt.ok, ok, "alias %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestPlatformRoundTrip(t *testing.T) {
	for _, chain := range AddressPriority {
		platform, ok := CoinGeckoPlatform(chain)
		require.True(t, ok, "priority chain %s must map to a platform", chain)

		back, ok := FromCoinGeckoPlatform(platform)
		require.True(t, ok)
		assert.Equal(t, chain, back)
	}
}

func chainPtr(c token.ChainID) *token.ChainID { return &c }
