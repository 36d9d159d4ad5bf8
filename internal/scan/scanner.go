// Package scan runs the watchlist pass. Reports are built strictly one
// token at a time with a fixed courtesy delay in between, keeping the
// pass inside upstream rate limits.
package scan

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tokenscope/tokenscope/internal/metrics"
	"github.com/tokenscope/tokenscope/internal/score"
	"github.com/tokenscope/tokenscope/internal/token"
)

// DefaultMinScore is the interest threshold below which scan results are
// dropped.
const DefaultMinScore = 30

// ReportBuilder builds one report; it degrades instead of failing.
type ReportBuilder interface {
	Build(ctx context.Context, tok *token.ResolvedToken) *token.TokenReport
}

// Scanner scores a fixed token list and returns the noteworthy subset.
type Scanner struct {
	builder  ReportBuilder
	delay    time.Duration
	minScore int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDelay sets the inter-token delay.
func WithDelay(d time.Duration) Option {
	return func(s *Scanner) { s.delay = d }
}

// WithMinScore sets the interest threshold.
func WithMinScore(min int) Option {
	return func(s *Scanner) { s.minScore = min }
}

// New creates a scanner with a 5s delay and the default threshold.
func New(builder ReportBuilder, opts ...Option) *Scanner {
	s := &Scanner{
		builder:  builder,
		delay:    5 * time.Second,
		minScore: DefaultMinScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan builds and scores every token sequentially. A token that produces
// no report is logged and skipped; cancellation returns the results
// gathered so far. Results are filtered to the threshold and sorted by
// score descending, original watchlist order breaking ties.
func (s *Scanner) Scan(ctx context.Context, tokens []token.ResolvedToken) []token.ScanResult {
	// Every pass gets its own request id so its log lines correlate.
	logger := log.With().Str("request_id", uuid.NewString()).Logger()

	var results []token.ScanResult

	for i := range tokens {
		if i > 0 && s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				logger.Warn().Err(ctx.Err()).Msg("watchlist scan interrupted")
				return finalize(results, s.minScore)
			}
		}

		tok := tokens[i]
		r := s.builder.Build(ctx, &tok)
		if r == nil {
			logger.Warn().Str("symbol", tok.Symbol).Msg("no report for watchlist token, skipping")
			continue
		}

		sc := score.Score(r)
		logger.Debug().
			Str("symbol", r.Token.Symbol).
			Int("score", sc.Score).
			Strs("signals", sc.Signals).
			Msg("watchlist token scored")

		results = append(results, token.ScanResult{
			Token:   r.Token,
			Report:  r,
			Score:   sc.Score,
			Signals: sc.Signals,
		})
	}

	metrics.RecordScan()
	return finalize(results, s.minScore)
}

func finalize(results []token.ScanResult, minScore int) []token.ScanResult {
	kept := results[:0]
	for _, r := range results {
		if r.Score >= minScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
