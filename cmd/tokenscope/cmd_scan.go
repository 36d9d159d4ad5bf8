package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tokenscope/tokenscope/internal/chains"
	"github.com/tokenscope/tokenscope/internal/scan"
	"github.com/tokenscope/tokenscope/internal/token"
)

var (
	scanMinScore int
	scanDelay    time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one watchlist pass and print tokens above the interest threshold",
	Long: `Run a single pass over the configured watchlist: build a report for each
token, score it, and print the tokens whose score clears the threshold,
highest first. Tokens are processed one at a time with a courtesy delay to
stay inside upstream rate budgets.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanMinScore, "min-score", -1, "Interest threshold (config value if unset)")
	scanCmd.Flags().DurationVar(&scanDelay, "delay", -1, "Inter-token delay (config value if unset)")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	if len(a.cfg.Scan.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty: add scan.watchlist entries to the config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := resolveWatchlist(ctx, a)
	if err != nil {
		return err
	}

	minScore := a.cfg.Scan.MinScore
	if scanMinScore >= 0 {
		minScore = scanMinScore
	}
	delay := a.cfg.Scan.Delay()
	if scanDelay >= 0 {
		delay = scanDelay
	}

	scanner := scan.New(a.builder, scan.WithDelay(delay), scan.WithMinScore(minScore))
	results := scanner.Scan(ctx, tokens)

	if len(results) == 0 {
		fmt.Println("no tokens above threshold")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-8s %3d  %s\n", r.Token.Symbol, r.Score, strings.Join(r.Signals, "; "))
	}
	return nil
}

// resolveWatchlist turns config entries into resolved tokens. Address
// entries bypass resolution: the report builder patches their identity from
// analytics metadata. A symbol that fails to resolve is logged and skipped,
// never fatal to the pass.
func resolveWatchlist(ctx context.Context, a *app) ([]token.ResolvedToken, error) {
	var tokens []token.ResolvedToken
	for _, entry := range a.cfg.Scan.Watchlist {
		if entry.Address != "" {
			chain, ok := chains.LookupAlias(entry.Chain)
			if !ok {
				return nil, fmt.Errorf("watchlist entry %q: unknown chain %q", entry.Address, entry.Chain)
			}
			tokens = append(tokens, token.ResolvedToken{
				Name:    token.PlaceholderName,
				Symbol:  strings.ToUpper(entry.Symbol),
				Chain:   chain,
				Address: entry.Address,
			})
			continue
		}

		parsed := chains.Parse(entry.Symbol)
		if parsed == nil {
			log.Warn().Str("symbol", entry.Symbol).Msg("blank watchlist entry, skipping")
			continue
		}
		tok, err := a.resolver.Resolve(ctx, parsed)
		if err != nil {
			log.Warn().Err(err).Str("symbol", entry.Symbol).Msg("watchlist entry did not resolve, skipping")
			continue
		}
		tokens = append(tokens, *tok)
	}
	return tokens, nil
}
