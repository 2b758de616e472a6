package wheel

import (
	"testing"
	"time"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
)

var (
	testOpen = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	testExp  = time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
)

func newTestWheel(t *testing.T, capital float64) *WheelPosition {
	t.Helper()
	pos, err := NewCashWheel("XYZ", capital, strikes.ProfileConservative)
	if err != nil {
		t.Fatalf("NewCashWheel: %v", err)
	}
	return pos
}

func TestPutExpiresWorthless(t *testing.T) {
	pos := newTestWheel(t, 20000)

	trade, err := pos.SellPut(150, testExp, 1, 2.50, testOpen)
	if err != nil {
		t.Fatalf("SellPut: %v", err)
	}
	if pos.State() != StateCashPutOpen {
		t.Fatalf("state = %s, want CASH_PUT_OPEN", pos.State())
	}
	if trade.TotalPremium != 250 {
		t.Errorf("TotalPremium = %.2f, want 250", trade.TotalPremium)
	}
	if pos.CumulativePremium() != 250 {
		t.Errorf("CumulativePremium = %.2f, want 250 at open", pos.CumulativePremium())
	}

	outcome, err := pos.Resolve(155, testExp)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeExpiredWorthless {
		t.Errorf("outcome = %s, want EXPIRED_WORTHLESS", outcome)
	}
	if pos.State() != StateCash {
		t.Errorf("state = %s, want CASH", pos.State())
	}
	if pos.CumulativePremium() != 250 {
		t.Errorf("CumulativePremium = %.2f, want 250 after expiry", pos.CumulativePremium())
	}
	if _, open := pos.OpenTrade(); open {
		t.Error("open trade remains after resolution")
	}
}

func TestPutAssignment(t *testing.T) {
	pos := newTestWheel(t, 20000)

	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}

	outcome, err := pos.Resolve(148, testExp)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeAssigned {
		t.Errorf("outcome = %s, want ASSIGNED", outcome)
	}
	if pos.State() != StateShares {
		t.Errorf("state = %s, want SHARES", pos.State())
	}
	if pos.Shares() != 100 {
		t.Errorf("shares = %d, want 100", pos.Shares())
	}
	if pos.CostBasis() != 150 {
		t.Errorf("cost basis = %.2f, want strike 150", pos.CostBasis())
	}
	if pos.CapitalAllocated() != 20000-15000 {
		t.Errorf("capital = %.2f, want 5000 after assignment", pos.CapitalAllocated())
	}
}

func TestBoundaryPriceAtStrikeAssigns(t *testing.T) {
	pos := newTestWheel(t, 20000)
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}

	outcome, err := pos.Resolve(150, testExp)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeAssigned {
		t.Errorf("outcome at price==strike = %s, want ASSIGNED", outcome)
	}
}

func TestCallAwayReturnsToCash(t *testing.T) {
	pos, err := ImportSharesWheel("XYZ", 100, 190, strikes.ProfileModerate)
	if err != nil {
		t.Fatalf("ImportSharesWheel: %v", err)
	}

	if _, err := pos.SellCall(200, testExp, 1, 3.10, testOpen); err != nil {
		t.Fatalf("SellCall: %v", err)
	}
	if pos.State() != StateSharesCallOpen {
		t.Fatalf("state = %s, want SHARES_CALL_OPEN", pos.State())
	}

	outcome, err := pos.Resolve(205, testExp)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeCalledAway {
		t.Errorf("outcome = %s, want CALLED_AWAY", outcome)
	}
	if pos.State() != StateCash {
		t.Errorf("state = %s, want CASH", pos.State())
	}
	if pos.Shares() != 0 {
		t.Errorf("shares = %d, want 0", pos.Shares())
	}
	if pos.CapitalAllocated() != 200*100 {
		t.Errorf("capital = %.2f, want 20000 credited at strike", pos.CapitalAllocated())
	}
}

func TestCallExpiresWorthlessKeepsShares(t *testing.T) {
	pos, err := ImportSharesWheel("XYZ", 200, 95, strikes.ProfileModerate)
	if err != nil {
		t.Fatalf("ImportSharesWheel: %v", err)
	}

	if _, err := pos.SellCall(110, testExp, 2, 1.15, testOpen); err != nil {
		t.Fatalf("SellCall: %v", err)
	}

	outcome, err := pos.Resolve(104, testExp)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome != OutcomeExpiredWorthless {
		t.Errorf("outcome = %s, want EXPIRED_WORTHLESS", outcome)
	}
	if pos.State() != StateShares {
		t.Errorf("state = %s, want SHARES", pos.State())
	}
	if pos.Shares() != 200 {
		t.Errorf("shares = %d, want 200", pos.Shares())
	}
	if pos.CumulativePremium() != 230 {
		t.Errorf("CumulativePremium = %.2f, want 230", pos.CumulativePremium())
	}
}

func TestFullWheelCycle(t *testing.T) {
	pos := newTestWheel(t, 16000)

	// CASH -> CASH_PUT_OPEN -> SHARES -> SHARES_CALL_OPEN -> CASH
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}
	if _, err := pos.Resolve(148, testExp); err != nil {
		t.Fatalf("Resolve put: %v", err)
	}

	exp2 := testExp.AddDate(0, 0, 30)
	if _, err := pos.SellCall(155, exp2, 1, 1.80, testExp); err != nil {
		t.Fatalf("SellCall: %v", err)
	}
	if _, err := pos.Resolve(160, exp2); err != nil {
		t.Fatalf("Resolve call: %v", err)
	}

	if pos.State() != StateCash {
		t.Fatalf("state = %s, want CASH after full cycle", pos.State())
	}
	if got := pos.CumulativePremium(); got != 250+180 {
		t.Errorf("CumulativePremium = %.2f, want 430", got)
	}
	// 16000 - 15000 assignment + 15500 call-away.
	if got := pos.CapitalAllocated(); got != 16500 {
		t.Errorf("capital = %.2f, want 16500", got)
	}
	if got := len(pos.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
}

func TestIllegalActionsLeaveStateUnchanged(t *testing.T) {
	pos := newTestWheel(t, 20000)

	// No shares: selling a call from CASH is illegal.
	if _, err := pos.SellCall(100, testExp, 1, 1.00, testOpen); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("SellCall from CASH: err = %v, want INVALID_STATE", err)
	}
	// Nothing open: resolving is illegal.
	if _, err := pos.Resolve(100, testExp); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("Resolve from CASH: err = %v, want INVALID_STATE", err)
	}
	if _, err := pos.ManualAssign(100, testExp); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("ManualAssign from CASH: err = %v, want INVALID_STATE", err)
	}
	if pos.State() != StateCash {
		t.Fatalf("state mutated by rejected actions: %s", pos.State())
	}

	// Open a put, then try to stack a second trade.
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}
	if _, err := pos.SellPut(145, testExp, 1, 2.00, testOpen); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("second SellPut: err = %v, want INVALID_STATE", err)
	}
	if err := pos.Archive(); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("Archive with open trade: err = %v, want INVALID_STATE", err)
	}
	if pos.State() != StateCashPutOpen {
		t.Fatalf("state mutated by rejected actions: %s", pos.State())
	}
	if pos.CumulativePremium() != 250 {
		t.Errorf("premium mutated by rejected actions: %.2f", pos.CumulativePremium())
	}
}

func TestSellPutRequiresFullCollateral(t *testing.T) {
	pos := newTestWheel(t, 10000)

	_, err := pos.SellPut(150, testExp, 1, 2.50, testOpen)
	if !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput) {
		t.Fatalf("undercapitalized SellPut: err = %v, want INVALID_INPUT", err)
	}
	if pos.State() != StateCash {
		t.Errorf("state = %s, want CASH unchanged", pos.State())
	}
}

func TestSellCallRequiresShareCover(t *testing.T) {
	pos, err := ImportSharesWheel("XYZ", 100, 90, strikes.ProfileModerate)
	if err != nil {
		t.Fatalf("ImportSharesWheel: %v", err)
	}

	_, err = pos.SellCall(110, testExp, 2, 1.00, testOpen)
	if !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput) {
		t.Fatalf("uncovered SellCall: err = %v, want INVALID_INPUT", err)
	}
}

func TestManualAssign(t *testing.T) {
	pos := newTestWheel(t, 20000)
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}

	// Early assignment can happen with the price still above the strike.
	outcome, err := pos.ManualAssign(152, testOpen.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("ManualAssign: %v", err)
	}
	if outcome != OutcomeAssigned {
		t.Errorf("outcome = %s, want ASSIGNED", outcome)
	}
	if pos.State() != StateShares || pos.Shares() != 100 {
		t.Errorf("state = %s shares = %d, want SHARES/100", pos.State(), pos.Shares())
	}
}

func TestCloseEarlyKeepsPremiumCredited(t *testing.T) {
	pos := newTestWheel(t, 20000)
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); err != nil {
		t.Fatalf("SellPut: %v", err)
	}

	outcome, err := pos.CloseEarly(0.80, testOpen.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("CloseEarly: %v", err)
	}
	if outcome != OutcomeClosedEarly {
		t.Errorf("outcome = %s, want CLOSED_EARLY", outcome)
	}
	if pos.State() != StateCash {
		t.Errorf("state = %s, want CASH", pos.State())
	}
	if pos.CumulativePremium() != 250 {
		t.Errorf("CumulativePremium = %.2f, want 250 retained", pos.CumulativePremium())
	}

	history := pos.History()
	if len(history) != 1 || history[0].PriceAtResolution == nil || *history[0].PriceAtResolution != 0.80 {
		t.Error("buyback price not recorded on the trade")
	}
}

func TestArchive(t *testing.T) {
	pos := newTestWheel(t, 20000)
	if err := pos.Archive(); err != nil {
		t.Fatalf("Archive from CASH: %v", err)
	}
	if !pos.Archived() {
		t.Error("wheel not archived")
	}
	if _, err := pos.SellPut(150, testExp, 1, 2.50, testOpen); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState) {
		t.Errorf("SellPut on archived wheel: err = %v, want INVALID_STATE", err)
	}
}

func TestConstructorValidation(t *testing.T) {
	if _, err := NewCashWheel("", 1000, strikes.ProfileModerate); err == nil {
		t.Error("empty symbol accepted")
	}
	if _, err := NewCashWheel("XYZ", 0, strikes.ProfileModerate); err == nil {
		t.Error("zero capital accepted")
	}
	if _, err := ImportSharesWheel("XYZ", 150, 90, strikes.ProfileModerate); err == nil {
		t.Error("non-multiple share count accepted")
	}
	if _, err := ImportSharesWheel("XYZ", 100, -1, strikes.ProfileModerate); err == nil {
		t.Error("negative cost basis accepted")
	}
	if _, err := NewCashWheel("XYZ", 1000, strikes.Profile("bogus")); err == nil {
		t.Error("unknown profile accepted")
	}
}

func TestSellInputValidation(t *testing.T) {
	pos := newTestWheel(t, 20000)

	cases := []struct {
		name    string
		strike  float64
		exp     time.Time
		lots    int
		premium float64
	}{
		{"zero strike", 0, testExp, 1, 2.50},
		{"zero contracts", 150, testExp, 0, 2.50},
		{"zero premium", 150, testExp, 1, 0},
		{"expiration before open", 150, testOpen.AddDate(0, 0, -1), 1, 2.50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := pos.SellPut(tc.strike, tc.exp, tc.lots, tc.premium, testOpen); !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}
