// Package render formats token reports as plain text for the CLI. Rich
// front-end renderers (HTML chat, embeds, threads) live with their
// platforms; the report's field set is the entire contract they get.
package render

import (
	"fmt"
	"strings"

	"github.com/tokenscope/tokenscope/internal/token"
)

// Text renders a report for terminal output. Every field is optional:
// missing data is elided, never an error.
func Text(r *token.TokenReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s) on %s\n", r.Token.Name, r.Token.Symbol, r.Token.Chain)
	if r.Token.Address != "" {
		fmt.Fprintf(&b, "  %s\n", r.Token.Address)
	}

	writeMarket(&b, r)
	writeFlows(&b, r.Flows)
	writeSmartMoney(&b, r.SmartMoney)

	if r.DeepLink != "" {
		fmt.Fprintf(&b, "\n%s\n", r.DeepLink)
	}
	fmt.Fprintf(&b, "source: %s\n", r.DataSource)
	return b.String()
}

func writeMarket(b *strings.Builder, r *token.TokenReport) {
	lines := []struct {
		label string
		text  string
	}{
		{"price", price(r.PriceUSD)},
		{"24h", percent(r.PriceChange24h)},
		{"mcap", usd(r.MarketCapUSD)},
		{"fdv", usd(r.FDVUSD)},
		{"volume 24h", usd(r.Volume24hUSD)},
		{"liquidity", usd(r.LiquidityUSD)},
		{"age", days(r.AgeDays)},
		{"holders", count(r.HolderCount)},
	}

	var any bool
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		if !any {
			b.WriteString("\nmarket\n")
			any = true
		}
		fmt.Fprintf(b, "  %-12s %s\n", l.label, l.text)
	}
}

func writeFlows(b *strings.Builder, flows []token.FlowSegment) {
	var any bool
	for _, seg := range flows {
		if !seg.Present {
			continue
		}
		if !any {
			b.WriteString("\nflows (24h)\n")
			any = true
		}
		fmt.Fprintf(b, "  %-16s %s net, %d wallets\n",
			seg.Name, signedUSD(seg.NetFlowUSD), seg.WalletCount)
	}
}

func writeSmartMoney(b *strings.Builder, sm *token.SmartMoneySection) {
	if sm == nil {
		return
	}
	b.WriteString("\nsmart money (24h)\n")
	fmt.Fprintf(b, "  bought %s by %d, sold %s by %d (net %s)\n",
		compactUSD(sm.BoughtUSD), sm.BuyerCount,
		compactUSD(sm.SoldUSD), sm.SellerCount,
		signedUSD(sm.NetUSD))

	for _, t := range sm.TopBuyers {
		fmt.Fprintf(b, "  + %s %s\n", compactUSD(t.VolumeUSD), t.DisplayLabel())
	}
	for _, t := range sm.TopSellers {
		fmt.Fprintf(b, "  - %s %s\n", compactUSD(t.VolumeUSD), t.DisplayLabel())
	}
}

func price(v *float64) string {
	if v == nil {
		return ""
	}
	if *v < 0.01 {
		return fmt.Sprintf("$%.8f", *v)
	}
	return fmt.Sprintf("$%.4f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

func usd(v *float64) string {
	if v == nil {
		return ""
	}
	return compactUSD(*v)
}

// compactUSD renders dollar amounts the way traders read them: $1.2B,
// $34.5M, $678K.
func compactUSD(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func signedUSD(v float64) string {
	if v >= 0 {
		return "+" + compactUSD(v)
	}
	return "-" + compactUSD(-v)
}

func days(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%dd", *v)
}

func count(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
