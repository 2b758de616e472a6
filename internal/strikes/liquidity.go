package strikes

import (
	"fmt"
	"math"

	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// LiquidityFilters defines the thresholds a contract must clear to be a
// candidate. A rejection is a structured record, never an error: callers can
// always explain "why no candidates".
type LiquidityFilters struct {
	MinOpenInterest   int64   `json:"min_open_interest"`
	MaxAbsoluteSpread float64 `json:"max_absolute_spread"`
	MaxRelativeSpread float64 `json:"max_relative_spread"` // fraction of mid
}

// DefaultLiquidityFilters returns thresholds suitable for liquid equity
// option chains.
func DefaultLiquidityFilters() LiquidityFilters {
	return LiquidityFilters{
		MinOpenInterest:   50,
		MaxAbsoluteSpread: 0.50,
		MaxRelativeSpread: 0.10,
	}
}

// RejectionReason is a machine-readable exclusion cause.
type RejectionReason string

const (
	RejectZeroBid         RejectionReason = "zero_bid"
	RejectLowOpenInterest RejectionReason = "low_open_interest"
	RejectWideSpread      RejectionReason = "wide_spread"
	RejectOutsideBand     RejectionReason = "outside_profile_band"
	RejectNoQuote         RejectionReason = "no_quote"
)

// Rejection records one excluded contract and why.
type Rejection struct {
	Strike float64         `json:"strike"`
	Reason RejectionReason `json:"reason"`
	Detail string          `json:"detail"`
}

// Check runs a contract through the liquidity gates. A nil return means the
// contract passed. A spread is rejected only when it exceeds BOTH the
// absolute and the relative threshold.
func (f LiquidityFilters) Check(c types.OptionContract) *Rejection {
	if c.Bid <= 0 {
		return &Rejection{
			Strike: c.Strike,
			Reason: RejectZeroBid,
			Detail: fmt.Sprintf("bid %.2f", c.Bid),
		}
	}
	if c.OpenInterest < f.MinOpenInterest {
		return &Rejection{
			Strike: c.Strike,
			Reason: RejectLowOpenInterest,
			Detail: fmt.Sprintf("open interest %d below %d", c.OpenInterest, f.MinOpenInterest),
		}
	}
	mid := c.Mid()
	if mid <= 0 {
		return &Rejection{
			Strike: c.Strike,
			Reason: RejectNoQuote,
			Detail: fmt.Sprintf("bid %.2f / ask %.2f", c.Bid, c.Ask),
		}
	}
	spread := c.Spread()
	relative := spread / mid
	if spread > f.MaxAbsoluteSpread && relative > f.MaxRelativeSpread {
		return &Rejection{
			Strike: c.Strike,
			Reason: RejectWideSpread,
			Detail: fmt.Sprintf("spread %.2f (%.1f%% of mid) exceeds %.2f and %.1f%%",
				spread, relative*100, f.MaxAbsoluteSpread, f.MaxRelativeSpread*100),
		}
	}
	return nil
}

// LiquidityScore grades a passing contract in [0,1]: open interest depth
// plus spread tightness.
func (f LiquidityFilters) LiquidityScore(c types.OptionContract) float64 {
	depth := math.Min(1.0, float64(c.OpenInterest)/1000.0)

	tightness := 0.0
	if mid := c.Mid(); mid > 0 && f.MaxRelativeSpread > 0 {
		rel := c.Spread() / mid
		tightness = math.Max(0, 1-rel/f.MaxRelativeSpread)
	}
	return 0.6*depth + 0.4*tightness
}
