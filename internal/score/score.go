// Package score ranks token reports by "interestingness": an additive
// point system over smart-money activity, cohort flows, and price action.
// Scoring is pure and deterministic; the report is never mutated.
package score

import (
	"fmt"
	"math"

	"github.com/tokenscope/tokenscope/internal/token"
)

// Point weights per signal. Signals stack; there is no early exit.
const (
	pointsSMNetLarge   = 30 // |smart-money net| >= $1M
	pointsSMNetMedium  = 15 // |smart-money net| in [$500K, $1M)
	pointsBuySellRatio = 20 // buyer:seller count ratio >= 3:1 either way
	pointsSegmentRatio = 25 // Smart Traders / Whales net >= 3x avg
	pointsExchangeOut  = 15 // Exchanges outflow >= 3x avg
	pointsWhaleMove    = 20 // |Whales net| >= $5M
	pointsPriceMove    = 10 // |24h change| >= 10%
)

const (
	smNetLargeUSD    = 1_000_000
	smNetMediumUSD   = 500_000
	ratioThreshold   = 3.0
	segmentMinUSD    = 100_000
	whaleMoveUSD     = 5_000_000
	priceMovePercent = 10.0
)

// Result is a report's interest score with its human-readable signals.
type Result struct {
	Score   int
	Signals []string
}

// Score evaluates one report. Reports with no analytics data score zero.
func Score(r *token.TokenReport) Result {
	var res Result

	scoreSmartMoney(r.SmartMoney, &res)
	scoreFlows(r.Flows, &res)
	scorePrice(r.PriceChange24h, &res)

	return res
}

func scoreSmartMoney(sm *token.SmartMoneySection, res *Result) {
	if sm == nil {
		return
	}

	abs := math.Abs(sm.NetUSD)
	direction := "buying"
	if sm.NetUSD < 0 {
		direction = "selling"
	}
	switch {
	case abs >= smNetLargeUSD:
		res.add(pointsSMNetLarge, fmt.Sprintf("SM net %s %s", direction, millions(abs)))
	case abs >= smNetMediumUSD:
		res.add(pointsSMNetMedium, fmt.Sprintf("SM net %s %s", direction, thousands(abs)))
	}

	// Lopsided participation, independent of the net-volume signal.
	if ratio, buyers := countRatio(sm.BuyerCount, sm.SellerCount); ratio >= ratioThreshold {
		if buyers {
			res.add(pointsBuySellRatio, fmt.Sprintf("%d:1 buy/sell ratio", int(math.Round(ratio))))
		} else {
			res.add(pointsBuySellRatio, fmt.Sprintf("1:%d buy/sell ratio", int(math.Round(ratio))))
		}
	}
}

// countRatio returns the dominant-side ratio and whether buyers dominate.
// A side with zero wallets counts as one to keep the ratio finite.
func countRatio(buyers, sellers int) (float64, bool) {
	if buyers == 0 && sellers == 0 {
		return 0, false
	}
	b, s := float64(buyers), float64(sellers)
	if b < 1 {
		b = 1
	}
	if s < 1 {
		s = 1
	}
	if b >= s {
		return b / s, true
	}
	return s / b, false
}

func scoreFlows(flows []token.FlowSegment, res *Result) {
	for _, seg := range flows {
		// Absent segments and degenerate rows never produce ratio signals:
		// zero wallets / zero average is "no data", not an infinite ratio.
		if !seg.Present || seg.AvgFlowUSD == 0 || seg.WalletCount == 0 {
			continue
		}

		absNet := math.Abs(seg.NetFlowUSD)
		ratio := math.Abs(seg.NetFlowUSD / seg.AvgFlowUSD)

		switch seg.Name {
		case token.SegmentSmartTraders, token.SegmentWhales:
			if ratio >= ratioThreshold && absNet >= segmentMinUSD {
				direction := "inflow"
				if seg.NetFlowUSD < 0 {
					direction = "outflow"
				}
				res.add(pointsSegmentRatio, fmt.Sprintf("%s %dx avg %s",
					seg.Name, int(math.Round(ratio)), direction))
			}
		case token.SegmentExchanges:
			// Only tokens leaving exchanges are noteworthy.
			if seg.NetFlowUSD < 0 && ratio >= ratioThreshold && absNet >= segmentMinUSD {
				res.add(pointsExchangeOut, fmt.Sprintf("Exchange outflow %dx avg",
					int(math.Round(ratio))))
			}
		}

		if seg.Name == token.SegmentWhales && absNet >= whaleMoveUSD {
			direction := "accumulation"
			if seg.NetFlowUSD < 0 {
				direction = "distribution"
			}
			res.add(pointsWhaleMove, fmt.Sprintf("Whale %s %s", direction, millions(absNet)))
		}
	}
}

func scorePrice(change *float64, res *Result) {
	if change == nil {
		return
	}
	abs := math.Abs(*change)
	if abs >= priceMovePercent {
		direction := "up"
		if *change < 0 {
			direction = "down"
		}
		res.add(pointsPriceMove, fmt.Sprintf("Price %s %.1f%%", direction, abs))
	}
}

func (r *Result) add(points int, signal string) {
	r.Score += points
	r.Signals = append(r.Signals, signal)
}

func millions(usd float64) string {
	return fmt.Sprintf("$%.1fM", usd/1e6)
}

func thousands(usd float64) string {
	return fmt.Sprintf("$%dK", int(usd/1e3))
}
