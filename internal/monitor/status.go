package monitor

import (
	"fmt"
	"math"
	"time"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// RiskLevel classifies an open trade by moneyness alone. DTE is reported
// alongside but never changes the level.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// mediumRiskOTMPct is the OTM cushion below which an OTM trade is MEDIUM.
const mediumRiskOTMPct = 5.0

// PositionStatus is a point-in-time view of an open trade. Derived, never
// persisted; Snapshot is the dated persisted copy.
type PositionStatus struct {
	CurrentPrice float64         `json:"current_price"`
	Strike       float64         `json:"strike"`
	Direction    wheel.Direction `json:"direction"`
	DTECalendar  int             `json:"dte_calendar"`
	DTETrading   int             `json:"dte_trading"`
	MoneynessPct float64         `json:"moneyness_pct"`
	IsITM        bool            `json:"is_itm"`
	Moneyness    string          `json:"moneyness"` // "OTM by 4.2%" / "ITM by 3.0%"
	RiskLevel    RiskLevel       `json:"risk_level"`
	AsOf         time.Time       `json:"as_of"`
}

// Status computes the live status of an open trade from a quote.
func Status(trade wheel.TradeRecord, quote types.Quote, now time.Time) (PositionStatus, error) {
	if !trade.IsOpen() {
		return PositionStatus{}, wheelerr.NewInvalidStateError("monitor", "status", string(trade.Outcome))
	}
	if quote.Price <= 0 || math.IsNaN(quote.Price) {
		return PositionStatus{}, wheelerr.NewInvalidInputError("monitor", "status",
			fmt.Sprintf("quote price must be positive, got %.4f", quote.Price))
	}

	itm := isITM(trade.Direction, quote.Price, trade.Strike)
	pct := math.Abs(quote.Price-trade.Strike) / trade.Strike * 100

	side := "OTM"
	if itm {
		side = "ITM"
	}

	return PositionStatus{
		CurrentPrice: quote.Price,
		Strike:       trade.Strike,
		Direction:    trade.Direction,
		DTECalendar:  CalendarDTE(now, trade.Expiration),
		DTETrading:   TradingDTE(now, trade.Expiration),
		MoneynessPct: pct,
		IsITM:        itm,
		Moneyness:    fmt.Sprintf("%s by %.1f%%", side, pct),
		RiskLevel:    classify(itm, pct),
		AsOf:         now,
	}, nil
}

// isITM: puts are ITM at or below strike, calls at or above.
func isITM(direction wheel.Direction, price, strike float64) bool {
	if direction == wheel.DirectionPut {
		return price <= strike
	}
	return price >= strike
}

// classify is a pure function of moneyness: HIGH when ITM by any amount,
// MEDIUM when OTM by 5% or less, LOW beyond that.
func classify(itm bool, pct float64) RiskLevel {
	if itm {
		return RiskHigh
	}
	if pct <= mediumRiskOTMPct {
		return RiskMedium
	}
	return RiskLow
}

// CalendarDTE counts whole calendar days from now's date to expiration's
// date. Same-day expiration is 0; past expirations go negative.
func CalendarDTE(now, expiration time.Time) int {
	n := dateOnly(now)
	e := dateOnly(expiration)
	return int(e.Sub(n).Hours() / 24)
}

// TradingDTE counts weekdays after now's date up to and including the
// expiration date. Market holidays are not excluded; this is a documented
// simplification.
func TradingDTE(now, expiration time.Time) int {
	n := dateOnly(now)
	e := dateOnly(expiration)
	if !e.After(n) {
		return 0
	}
	days := 0
	for d := n.AddDate(0, 0, 1); !d.After(e); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
