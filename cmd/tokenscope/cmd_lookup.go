package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tokenscope/tokenscope/internal/chains"
	"github.com/tokenscope/tokenscope/internal/render"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Resolve a token query and print its report",
	Long: `Resolve a free-form token query and print the assembled report.

The query can be a symbol ($PEPE or PEPE), a contract address (EVM, Solana,
or Tron), and may carry a chain hint as an extra word:

  tokenscope lookup PEPE
  tokenscope lookup '$WIF solana'
  tokenscope lookup 0x6982508145454ce325ddbe47a25d4ec3d2311933`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Emit the report as JSON instead of text")
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	reqID := uuid.NewString()
	logger := log.With().Str("request_id", reqID).Str("query", query).Logger()

	parsed := chains.Parse(query)
	if parsed == nil {
		return fmt.Errorf("empty query")
	}

	tok, err := a.resolver.Resolve(cmd.Context(), parsed)
	if err != nil {
		logger.Warn().Err(err).Msg("resolution failed")
		return err
	}
	logger.Info().
		Str("symbol", tok.Symbol).
		Str("chain", string(tok.Chain)).
		Msg("token resolved")

	r := a.builder.Build(cmd.Context(), tok)

	if lookupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Print(render.Text(r))
	return nil
}
