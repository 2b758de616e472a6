package wheel

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
)

// Action names for rejected-transition errors.
const (
	actionSellPut      = "sell_put"
	actionSellCall     = "sell_call"
	actionResolve      = "resolve"
	actionManualAssign = "manual_assign"
	actionCloseEarly   = "close_early"
	actionArchive      = "archive"
)

// SellPut opens a cash-secured put. Legal only from CASH.
// Premium is credited to cumulative premium immediately.
func (w *WheelPosition) SellPut(strike float64, expiration time.Time, contracts int, premiumPerShare float64, at time.Time) (TradeRecord, error) {
	if w.archived {
		return TradeRecord{}, wheelerr.NewInvalidStateError("wheel", actionSellPut, "ARCHIVED")
	}
	if w.state != StateCash {
		return TradeRecord{}, wheelerr.NewInvalidStateError("wheel", actionSellPut, w.state.String())
	}
	if err := validateSellInputs(strike, expiration, contracts, premiumPerShare, at); err != nil {
		return TradeRecord{}, err
	}
	required := strike * float64(contracts*SharesPerContract)
	if required > w.capitalAllocated {
		return TradeRecord{}, wheelerr.NewInvalidInputError("wheel", actionSellPut,
			fmt.Sprintf("put requires %.2f cash but only %.2f allocated", required, w.capitalAllocated))
	}

	trade := w.record(DirectionPut, strike, expiration, contracts, premiumPerShare, at)
	w.state = StateCashPutOpen
	return *trade, nil
}

// SellCall opens a covered call. Legal only from SHARES with enough shares
// to cover the contracts.
func (w *WheelPosition) SellCall(strike float64, expiration time.Time, contracts int, premiumPerShare float64, at time.Time) (TradeRecord, error) {
	if w.archived {
		return TradeRecord{}, wheelerr.NewInvalidStateError("wheel", actionSellCall, "ARCHIVED")
	}
	if w.state != StateShares {
		return TradeRecord{}, wheelerr.NewInvalidStateError("wheel", actionSellCall, w.state.String())
	}
	if err := validateSellInputs(strike, expiration, contracts, premiumPerShare, at); err != nil {
		return TradeRecord{}, err
	}
	if contracts*SharesPerContract > w.shares {
		return TradeRecord{}, wheelerr.NewInvalidInputError("wheel", actionSellCall,
			fmt.Sprintf("%d contracts need %d shares but only %d held",
				contracts, contracts*SharesPerContract, w.shares))
	}

	trade := w.record(DirectionCall, strike, expiration, contracts, premiumPerShare, at)
	w.state = StateSharesCallOpen
	return *trade, nil
}

// Resolve settles the open trade against the expiration price:
//
//	CASH_PUT_OPEN:    price <= strike -> ASSIGNED (to SHARES),
//	                  price >  strike -> EXPIRED_WORTHLESS (to CASH)
//	SHARES_CALL_OPEN: price >= strike -> CALLED_AWAY (to CASH),
//	                  price <  strike -> EXPIRED_WORTHLESS (to SHARES)
func (w *WheelPosition) Resolve(priceAtExpiration float64, at time.Time) (Outcome, error) {
	if priceAtExpiration <= 0 {
		return "", wheelerr.NewInvalidInputError("wheel", actionResolve,
			fmt.Sprintf("expiration price must be positive, got %.4f", priceAtExpiration))
	}

	switch w.state {
	case StateCashPutOpen:
		if priceAtExpiration <= w.openTrade.Strike {
			w.settlePutAssignment(priceAtExpiration, at)
			return OutcomeAssigned, nil
		}
		w.openTrade.resolve(OutcomeExpiredWorthless, priceAtExpiration, at)
		w.openTrade = nil
		w.state = StateCash
		return OutcomeExpiredWorthless, nil

	case StateSharesCallOpen:
		if priceAtExpiration >= w.openTrade.Strike {
			trade := w.openTrade
			trade.resolve(OutcomeCalledAway, priceAtExpiration, at)
			w.shares -= trade.Shares()
			w.capitalAllocated += trade.Strike * float64(trade.Shares())
			w.openTrade = nil
			w.state = StateCash
			return OutcomeCalledAway, nil
		}
		w.openTrade.resolve(OutcomeExpiredWorthless, priceAtExpiration, at)
		w.openTrade = nil
		w.state = StateShares
		return OutcomeExpiredWorthless, nil

	default:
		return "", wheelerr.NewInvalidStateError("wheel", actionResolve, w.state.String())
	}
}

// ManualAssign records an early assignment of the open put, regardless of
// where the price sits relative to the strike.
func (w *WheelPosition) ManualAssign(price float64, at time.Time) (Outcome, error) {
	if w.state != StateCashPutOpen {
		return "", wheelerr.NewInvalidStateError("wheel", actionManualAssign, w.state.String())
	}
	if price <= 0 {
		return "", wheelerr.NewInvalidInputError("wheel", actionManualAssign,
			fmt.Sprintf("assignment price must be positive, got %.4f", price))
	}
	w.settlePutAssignment(price, at)
	return OutcomeAssigned, nil
}

// CloseEarly buys the open trade back before expiry. The original premium
// stays credited; the buyback price is recorded on the trade.
func (w *WheelPosition) CloseEarly(buybackPrice float64, at time.Time) (Outcome, error) {
	if buybackPrice < 0 {
		return "", wheelerr.NewInvalidInputError("wheel", actionCloseEarly,
			fmt.Sprintf("buyback price must be non-negative, got %.4f", buybackPrice))
	}

	switch w.state {
	case StateCashPutOpen:
		w.openTrade.resolve(OutcomeClosedEarly, buybackPrice, at)
		w.openTrade = nil
		w.state = StateCash
		return OutcomeClosedEarly, nil
	case StateSharesCallOpen:
		w.openTrade.resolve(OutcomeClosedEarly, buybackPrice, at)
		w.openTrade = nil
		w.state = StateShares
		return OutcomeClosedEarly, nil
	default:
		return "", wheelerr.NewInvalidStateError("wheel", actionCloseEarly, w.state.String())
	}
}

// Archive retires the wheel. Legal only with no open trade.
func (w *WheelPosition) Archive() error {
	if w.state.HasOpenTrade() {
		return wheelerr.NewInvalidStateError("wheel", actionArchive, w.state.String())
	}
	w.archived = true
	return nil
}

// record creates the open trade and credits its premium.
func (w *WheelPosition) record(direction Direction, strike float64, expiration time.Time, contracts int, premiumPerShare float64, at time.Time) *TradeRecord {
	trade := &TradeRecord{
		ID:           uuid.New(),
		WheelID:      w.id,
		Direction:    direction,
		Strike:       strike,
		Expiration:   expiration,
		Contracts:    contracts,
		TotalPremium: premiumPerShare * float64(contracts*SharesPerContract),
		Outcome:      OutcomeOpen,
		OpenedAt:     at,
	}
	w.cumulativePremium += trade.TotalPremium
	w.openTrade = trade
	w.history = append(w.history, trade)
	return trade
}

// settlePutAssignment converts the open put into shares at strike.
func (w *WheelPosition) settlePutAssignment(price float64, at time.Time) {
	trade := w.openTrade
	trade.resolve(OutcomeAssigned, price, at)
	w.shares += trade.Shares()
	w.costBasis = trade.Strike
	w.capitalAllocated -= trade.Strike * float64(trade.Shares())
	w.openTrade = nil
	w.state = StateShares
}

func validateSellInputs(strike float64, expiration time.Time, contracts int, premiumPerShare float64, at time.Time) error {
	if strike <= 0 {
		return wheelerr.NewInvalidInputError("wheel", "sell",
			fmt.Sprintf("strike must be positive, got %.4f", strike))
	}
	if contracts <= 0 {
		return wheelerr.NewInvalidInputError("wheel", "sell",
			fmt.Sprintf("contracts must be positive, got %d", contracts))
	}
	if premiumPerShare <= 0 {
		return wheelerr.NewInvalidInputError("wheel", "sell",
			fmt.Sprintf("premium must be positive, got %.4f", premiumPerShare))
	}
	if !expiration.After(at) {
		return wheelerr.NewInvalidInputError("wheel", "sell",
			fmt.Sprintf("expiration %s is not after open time %s",
				expiration.Format("2006-01-02"), at.Format("2006-01-02")))
	}
	return nil
}
