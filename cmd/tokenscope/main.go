package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tokenscope/tokenscope/internal/cache"
	"github.com/tokenscope/tokenscope/internal/config"
	"github.com/tokenscope/tokenscope/internal/httpx"
	"github.com/tokenscope/tokenscope/internal/providers/coingecko"
	"github.com/tokenscope/tokenscope/internal/providers/nansen"
	"github.com/tokenscope/tokenscope/internal/report"
	"github.com/tokenscope/tokenscope/internal/resolve"
)

var (
	configPath string
	logLevel   string
)

// rootCmd is the base command for the tokenscope CLI.
var rootCmd = &cobra.Command{
	Use:   "tokenscope",
	Short: "Token intelligence reports from on-chain analytics and market data",
	Long: `tokenscope resolves free-form token queries (symbols, $tags, contract
addresses) and assembles reports combining smart-money flows, top trader
activity, and market data. It also runs a scheduled watchlist scan that
surfaces tokens crossing an interest threshold.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (built-in defaults if empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")

	// Accept --log_level alongside --log-level.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		})
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// app is the wired pipeline shared by the subcommands.
type app struct {
	cfg        *config.Config
	nansenHTTP *httpx.Client
	cgHTTP     *httpx.Client
	analytics  *nansen.Client
	market     *coingecko.Client
	resolver   *resolve.Resolver
	builder    *report.Builder
}

func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	nansenHTTP := httpx.New(httpx.Config{
		Provider:       "nansen",
		Timeout:        cfg.HTTP.Timeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffBase:    cfg.HTTP.BackoffBase(),
		BackoffMax:     cfg.HTTP.BackoffMax(),
		MaxConcurrency: cfg.HTTP.MaxConcurrency,
		RPS:            cfg.Providers.Nansen.RPS,
		Burst:          cfg.Providers.Nansen.Burst,
	})
	cgHTTP := httpx.New(httpx.Config{
		Provider:       "coingecko",
		Timeout:        cfg.HTTP.Timeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffBase:    cfg.HTTP.BackoffBase(),
		BackoffMax:     cfg.HTTP.BackoffMax(),
		MaxConcurrency: cfg.HTTP.MaxConcurrency,
		RPS:            cfg.Providers.CoinGecko.RPS,
		Burst:          cfg.Providers.CoinGecko.Burst,
	})

	analytics := nansen.New(nansen.Config{
		BaseURL: cfg.Providers.Nansen.BaseURL,
		APIKey:  cfg.Providers.Nansen.APIKey(),
	}, nansenHTTP)
	market := coingecko.New(coingecko.Config{
		BaseURL:  cfg.Providers.CoinGecko.BaseURL,
		APIKey:   cfg.Providers.CoinGecko.APIKey(),
		CacheTTL: time.Duration(cfg.Providers.CoinGecko.CacheTTL) * time.Second,
	}, cgHTTP, cache.NewAuto())

	return &app{
		cfg:        cfg,
		nansenHTTP: nansenHTTP,
		cgHTTP:     cgHTTP,
		analytics:  analytics,
		market:     market,
		resolver:   resolve.New(market, analytics),
		builder:    report.New(analytics, market),
	}, nil
}
