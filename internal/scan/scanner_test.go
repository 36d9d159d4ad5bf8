package scan

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenscope/tokenscope/internal/token"
)

// scriptedBuilder returns canned reports keyed by symbol and records call
// order and timing.
type scriptedBuilder struct {
	mu      sync.Mutex
	reports map[string]*token.TokenReport
	calls   []string
	stamps  []time.Time
}

func (b *scriptedBuilder) Build(_ context.Context, tok *token.ResolvedToken) *token.TokenReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, tok.Symbol)
	b.stamps = append(b.stamps, time.Now())
	return b.reports[tok.Symbol]
}

func tokenFor(symbol string) token.ResolvedToken {
	return token.ResolvedToken{
		Name: symbol, Symbol: symbol,
		Chain: token.ChainEthereum, Address: "0x" + symbol,
	}
}

// reportWithNet yields known score tiers: $1M+ nets score 30, $500K 15.
func reportWithNet(symbol string, net float64) *token.TokenReport {
	return &token.TokenReport{
		Token:      tokenFor(symbol),
		SmartMoney: &token.SmartMoneySection{NetUSD: net, BuyerCount: 1, SellerCount: 1},
	}
}

func TestScan_FilterAndSort(t *testing.T) {
	// Five tokens scoring [10, 45, 30, 60, 29]-ish through score tiers:
	// here: 0, 50, 30, 60, 15 — the filter keeps >= 30, sorted desc.
	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		"A": {Token: tokenFor("A")}, // 0
		"B": { // 30 net + 20 ratio = 50
			Token: tokenFor("B"),
			SmartMoney: &token.SmartMoneySection{
				NetUSD: 2e6, BuyerCount: 9, SellerCount: 3,
			},
		},
		"C": reportWithNet("C", 1e6),  // 30
		"D": { // 30 net + 20 ratio + 10 price = 60
			Token: tokenFor("D"),
			SmartMoney: &token.SmartMoneySection{
				NetUSD: 3e6, BuyerCount: 12, SellerCount: 1,
			},
			PriceChange24h: f64(14),
		},
		"E": reportWithNet("E", 6e5), // 15
	}}

	s := New(builder, WithDelay(0))
	results := s.Scan(context.Background(), []token.ResolvedToken{
		tokenFor("A"), tokenFor("B"), tokenFor("C"), tokenFor("D"), tokenFor("E"),
	})

	require.Len(t, results, 3)
	assert.Equal(t, "D", results[0].Token.Symbol)
	assert.Equal(t, "B", results[1].Token.Symbol)
	assert.Equal(t, "C", results[2].Token.Symbol)
	assert.Equal(t, []int{60, 50, 30}, []int{results[0].Score, results[1].Score, results[2].Score})
}

func TestScan_StableTieBreakKeepsWatchlistOrder(t *testing.T) {
	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		"X": reportWithNet("X", 1e6),
		"Y": reportWithNet("Y", 1e6),
		"Z": reportWithNet("Z", 1e6),
	}}

	s := New(builder, WithDelay(0))
	results := s.Scan(context.Background(), []token.ResolvedToken{
		tokenFor("X"), tokenFor("Y"), tokenFor("Z"),
	})

	require.Len(t, results, 3)
	assert.Equal(t, "X", results[0].Token.Symbol)
	assert.Equal(t, "Y", results[1].Token.Symbol)
	assert.Equal(t, "Z", results[2].Token.Symbol)
}

func TestScan_SkipsFailedTokens(t *testing.T) {
	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		// "GONE" has no entry: Build returns nil.
		"OK": reportWithNet("OK", 2e6),
	}}

	s := New(builder, WithDelay(0))
	results := s.Scan(context.Background(), []token.ResolvedToken{
		tokenFor("GONE"), tokenFor("OK"),
	})

	require.Len(t, results, 1)
	assert.Equal(t, "OK", results[0].Token.Symbol)
	assert.Equal(t, []string{"GONE", "OK"}, builder.calls, "a failed token never aborts the pass")
}

func TestScan_SequentialWithDelay(t *testing.T) {
	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		"A": reportWithNet("A", 1e6),
		"B": reportWithNet("B", 1e6),
	}}

	s := New(builder, WithDelay(30*time.Millisecond))
	s.Scan(context.Background(), []token.ResolvedToken{tokenFor("A"), tokenFor("B")})

	require.Len(t, builder.stamps, 2)
	gap := builder.stamps[1].Sub(builder.stamps[0])
	assert.GreaterOrEqual(t, gap, 25*time.Millisecond, "tokens are rate-gated, not fired together")
}

func TestScan_CancellationReturnsPartialResults(t *testing.T) {
	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		"A": reportWithNet("A", 1e6),
		"B": reportWithNet("B", 1e6),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(builder, WithDelay(time.Hour)) // delay long enough to hit cancel

	done := make(chan []token.ScanResult, 1)
	go func() { done <- s.Scan(ctx, []token.ResolvedToken{tokenFor("A"), tokenFor("B")}) }()

	// Give the first build time to land, then cancel during the delay.
	time.Sleep(50 * time.Millisecond)
	cancel()

	results := <-done
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Token.Symbol)
	assert.Equal(t, []string{"A"}, builder.calls)
}

func TestScan_EmptyWatchlist(t *testing.T) {
	s := New(&scriptedBuilder{}, WithDelay(0))
	assert.Empty(t, s.Scan(context.Background(), nil))
}

func TestScan_LogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	builder := &scriptedBuilder{reports: map[string]*token.TokenReport{
		"A": reportWithNet("A", 1e6),
		// "GONE" has no entry, producing a warn line.
	}}
	s := New(builder, WithDelay(0))
	s.Scan(context.Background(), []token.ResolvedToken{tokenFor("A"), tokenFor("GONE")})

	assert.Contains(t, buf.String(), `"request_id"`)
}

func f64(v float64) *float64 { return &v }
