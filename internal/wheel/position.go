package wheel

import (
	"fmt"

	"github.com/google/uuid"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
)

// WheelPosition is the aggregate owning one symbol's wheel. Callers hold the
// pointer opaquely and mutate it only through the transition methods in
// machine.go; fields stay unexported so the single-open-trade invariant is
// enforced in one place.
//
// Transitions on one position must be serialized by the caller; distinct
// positions are independent.
type WheelPosition struct {
	id                uuid.UUID
	symbol            string
	state             State
	shares            int
	capitalAllocated  float64
	costBasis         float64
	profile           strikes.Profile
	cumulativePremium float64
	openTrade         *TradeRecord
	history           []*TradeRecord
	archived          bool
}

// NewCashWheel creates a wheel starting from cash.
func NewCashWheel(symbol string, capital float64, profile strikes.Profile) (*WheelPosition, error) {
	if symbol == "" {
		return nil, wheelerr.NewInvalidInputError("wheel", "new", "symbol is required")
	}
	if capital <= 0 {
		return nil, wheelerr.NewInvalidInputError("wheel", "new",
			fmt.Sprintf("capital must be positive, got %.2f", capital))
	}
	if _, err := strikes.ParseProfile(string(profile)); err != nil {
		return nil, err
	}
	return &WheelPosition{
		id:               uuid.New(),
		symbol:           symbol,
		state:            StateCash,
		capitalAllocated: capital,
		profile:          profile,
	}, nil
}

// ImportSharesWheel creates a wheel directly in SHARES from an existing
// share position. This is state construction, not a transition.
func ImportSharesWheel(symbol string, shares int, costBasis float64, profile strikes.Profile) (*WheelPosition, error) {
	if symbol == "" {
		return nil, wheelerr.NewInvalidInputError("wheel", "import_shares", "symbol is required")
	}
	if shares <= 0 || shares%SharesPerContract != 0 {
		return nil, wheelerr.NewInvalidInputError("wheel", "import_shares",
			fmt.Sprintf("shares must be a positive multiple of %d, got %d", SharesPerContract, shares))
	}
	if costBasis < 0 {
		return nil, wheelerr.NewInvalidInputError("wheel", "import_shares",
			fmt.Sprintf("cost basis must be non-negative, got %.2f", costBasis))
	}
	if _, err := strikes.ParseProfile(string(profile)); err != nil {
		return nil, err
	}
	return &WheelPosition{
		id:        uuid.New(),
		symbol:    symbol,
		state:     StateShares,
		shares:    shares,
		costBasis: costBasis,
		profile:   profile,
	}, nil
}

// ID returns the opaque identifier callers hold.
func (w *WheelPosition) ID() uuid.UUID { return w.id }

// Symbol returns the underlying symbol.
func (w *WheelPosition) Symbol() string { return w.symbol }

// State returns the current lifecycle state.
func (w *WheelPosition) State() State { return w.state }

// Shares returns the share count currently held.
func (w *WheelPosition) Shares() int { return w.shares }

// CapitalAllocated returns the cash currently backing the wheel.
func (w *WheelPosition) CapitalAllocated() float64 { return w.capitalAllocated }

// CostBasis returns the per-share cost basis of held shares.
func (w *WheelPosition) CostBasis() float64 { return w.costBasis }

// Profile returns the strike-selection profile.
func (w *WheelPosition) Profile() strikes.Profile { return w.profile }

// CumulativePremium returns all premium credited since inception. Premium
// is credited the moment a trade is sold, independent of its outcome.
func (w *WheelPosition) CumulativePremium() float64 { return w.cumulativePremium }

// OpenTrade returns a copy of the open trade, if any.
func (w *WheelPosition) OpenTrade() (TradeRecord, bool) {
	if w.openTrade == nil {
		return TradeRecord{}, false
	}
	return *w.openTrade, true
}

// History returns copies of all recorded trades, oldest first.
func (w *WheelPosition) History() []TradeRecord {
	out := make([]TradeRecord, 0, len(w.history))
	for _, t := range w.history {
		out = append(out, *t)
	}
	return out
}

// Archived reports whether the wheel has been retired.
func (w *WheelPosition) Archived() bool { return w.archived }
