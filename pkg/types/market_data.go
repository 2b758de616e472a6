package types

import (
	"math"
	"sort"
	"time"
)

// PriceBar is one daily OHLCV bar. A price field missing from the source
// feed is NaN; zero and negative prices are malformed input, not missing.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MissingField marks a price field absent from the source feed.
func MissingField() float64 {
	return math.NaN()
}

// HasClose reports whether the bar carries a close price.
func (b PriceBar) HasClose() bool {
	return !math.IsNaN(b.Close)
}

// HasRange reports whether the bar carries high/low prices.
func (b PriceBar) HasRange() bool {
	return !math.IsNaN(b.High) && !math.IsNaN(b.Low)
}

// HasOHLC reports whether the bar carries a full open/high/low/close set.
func (b PriceBar) HasOHLC() bool {
	return !math.IsNaN(b.Open) && b.HasRange() && b.HasClose()
}

// Quote is a single current price observation for a symbol.
type Quote struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// OptionType identifies the side of an option contract.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionContract is one row of an option-chain snapshot. Chains are owned
// transiently per request and never persisted by the engine.
type OptionContract struct {
	Symbol            string
	Strike            float64
	Expiration        time.Time
	Type              OptionType
	Bid               float64
	Ask               float64
	OpenInterest      int64
	ImpliedVolatility float64
	Delta             float64
	HasDelta          bool
}

// Mid returns the bid/ask midpoint, or 0 when no two-sided market exists.
func (c OptionContract) Mid() float64 {
	if c.Bid <= 0 || c.Ask <= 0 {
		return 0
	}
	return (c.Bid + c.Ask) / 2
}

// Spread returns the absolute bid/ask spread.
func (c OptionContract) Spread() float64 {
	return c.Ask - c.Bid
}

// OptionChain is a snapshot of contracts for one underlying and expiration.
type OptionChain struct {
	UnderlyingSymbol string
	UnderlyingPrice  float64
	Timestamp        time.Time
	Contracts        []OptionContract
}

// ByType returns the contracts of the requested type, sorted by strike.
func (ch *OptionChain) ByType(typ OptionType) []OptionContract {
	var out []OptionContract
	for _, c := range ch.Contracts {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// NearestStrike returns the listed strike of the requested type closest to
// target. The second return is false when the chain holds no such contracts.
func (ch *OptionChain) NearestStrike(typ OptionType, target float64) (float64, bool) {
	best := 0.0
	bestDiff := math.MaxFloat64
	found := false
	for _, c := range ch.Contracts {
		if c.Type != typ {
			continue
		}
		diff := math.Abs(c.Strike - target)
		if diff < bestDiff {
			bestDiff = diff
			best = c.Strike
			found = true
		}
	}
	return best, found
}

// AtTheMoneyIV returns the implied volatility of the contract closest to the
// underlying price, preferring calls over puts at equal distance. Returns 0
// when no contract carries a usable IV.
func (ch *OptionChain) AtTheMoneyIV() float64 {
	bestIV := 0.0
	bestDiff := math.MaxFloat64
	for _, c := range ch.Contracts {
		if c.ImpliedVolatility <= 0 {
			continue
		}
		diff := math.Abs(c.Strike - ch.UnderlyingPrice)
		if diff < bestDiff || (diff == bestDiff && c.Type == OptionTypeCall) {
			bestDiff = diff
			bestIV = c.ImpliedVolatility
		}
	}
	return bestIV
}

// EarningsCalendar holds known earnings dates for a symbol. Available is false
// when the calendar source could not be reached; an empty Dates slice with
// Available=true means the symbol genuinely has no upcoming earnings.
type EarningsCalendar struct {
	Symbol    string
	Dates     []time.Time
	Available bool
}

// SpansRange reports whether any earnings date falls inside [from, to].
func (e *EarningsCalendar) SpansRange(from, to time.Time) bool {
	if e == nil {
		return false
	}
	for _, d := range e.Dates {
		if !d.Before(from) && !d.After(to) {
			return true
		}
	}
	return false
}

// NextAfter returns the first earnings date at or after t, if any.
func (e *EarningsCalendar) NextAfter(t time.Time) (time.Time, bool) {
	if e == nil {
		return time.Time{}, false
	}
	var best time.Time
	found := false
	for _, d := range e.Dates {
		if d.Before(t) {
			continue
		}
		if !found || d.Before(best) {
			best = d
			found = true
		}
	}
	return best, found
}
