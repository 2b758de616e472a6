package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

var engineAsOf = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func engineChain(exp time.Time) *types.OptionChain {
	return &types.OptionChain{
		UnderlyingSymbol: "XYZ",
		UnderlyingPrice:  100,
		Timestamp:        engineAsOf,
		Contracts: []types.OptionContract{
			{Type: types.OptionTypePut, Strike: 85, Expiration: exp, Bid: 1.20, Ask: 1.26, OpenInterest: 300},
			{Type: types.OptionTypePut, Strike: 86, Expiration: exp, Bid: 1.00, Ask: 1.05, OpenInterest: 900},
			{Type: types.OptionTypePut, Strike: 87, Expiration: exp, Bid: 0.90, Ask: 0.95, OpenInterest: 500},
			{Type: types.OptionTypePut, Strike: 95, Expiration: exp, Bid: 2.80, Ask: 2.85, OpenInterest: 1000},
		},
	}
}

func cashWheel(t *testing.T) *wheel.WheelPosition {
	t.Helper()
	pos, err := wheel.NewCashWheel("XYZ", 20000, strikes.ProfileConservative)
	require.NoError(t, err)
	return pos
}

func blendedVol(v float64) volatility.Result {
	return volatility.Result{Value: v, Method: volatility.MethodBlended, Annualized: true}
}

func availableEarnings(dates ...time.Time) *types.EarningsCalendar {
	return &types.EarningsCalendar{Symbol: "XYZ", Dates: dates, Available: true}
}

func TestRecommendPutsFromCash(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	engine := NewEngine(DefaultOptions())

	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)

	for _, rec := range result.Recommendations {
		assert.Equal(t, types.OptionTypePut, rec.Direction)
		assert.Equal(t, 2, rec.Contracts, "20000 capital sizes two contracts at spot 100")
		assert.True(t, rec.EarningsChecked)
		assert.Equal(t, volatility.RegimeNormal, rec.Regime)
	}

	// Bias-sorted descending.
	for i := 1; i < len(result.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			result.Recommendations[i-1].BiasScore,
			result.Recommendations[i].BiasScore)
	}
	assert.LessOrEqual(t, len(result.Recommendations), DefaultOptions().MaxResults)
}

func TestRecommendCallsFromShares(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	pos, err := wheel.ImportSharesWheel("XYZ", 100, 95, strikes.ProfileConservative)
	require.NoError(t, err)

	chain := &types.OptionChain{
		UnderlyingPrice: 100,
		Contracts: []types.OptionContract{
			{Type: types.OptionTypeCall, Strike: 116, Expiration: exp, Bid: 0.60, Ask: 0.64, OpenInterest: 400},
			{Type: types.OptionTypeCall, Strike: 117, Expiration: exp, Bid: 0.50, Ask: 0.54, OpenInterest: 400},
		},
	}

	engine := NewEngine(DefaultOptions())
	result, err := engine.Recommend(pos, blendedVol(0.30), chain,
		availableEarnings(), volatility.RegimeLow, engineAsOf)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, types.OptionTypeCall, result.Recommendations[0].Direction)
	assert.Equal(t, 1, result.Recommendations[0].Contracts)
}

func TestRecommendRejectsOpenTradeStates(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	pos := cashWheel(t)
	_, err := pos.SellPut(90, exp, 1, 1.00, engineAsOf)
	require.NoError(t, err)

	engine := NewEngine(DefaultOptions())
	_, err = engine.Recommend(pos, blendedVol(0.30), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidState))
}

func TestRecommendEarningsSpanHardExclusion(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	earnings := availableEarnings(engineAsOf.AddDate(0, 0, 15))

	engine := NewEngine(DefaultOptions())
	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		earnings, volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)

	assert.Empty(t, result.Recommendations, "expirations spanning earnings are excluded by default")

	found := false
	for _, rej := range result.Rejections {
		if rej.Reason == "earnings_span" {
			found = true
		}
	}
	assert.True(t, found, "exclusions surface as rejections")
}

func TestRecommendEarningsSpanOverride(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	earnings := availableEarnings(engineAsOf.AddDate(0, 0, 15))

	opts := DefaultOptions()
	opts.IncludeEarningsSpan = true
	engine := NewEngine(opts)

	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		earnings, volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations[0].Warnings, WarningEarningsSpan)
}

func TestRecommendUnverifiedEarnings(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	unavailable := &types.EarningsCalendar{Symbol: "XYZ", Available: false}

	engine := NewEngine(DefaultOptions())
	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		unavailable, volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)

	for _, rec := range result.Recommendations {
		assert.False(t, rec.EarningsChecked)
		assert.Contains(t, rec.Warnings, WarningEarningsUnverified)
	}
}

func TestRecommendMaxDTEFilter(t *testing.T) {
	farExp := engineAsOf.AddDate(0, 0, 60)

	engine := NewEngine(DefaultOptions()) // MaxDTE 45
	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(farExp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
}

func TestRecommendMaxResultsTruncation(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)

	opts := DefaultOptions()
	opts.MaxResults = 1
	engine := NewEngine(opts)

	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 1)
}

func TestRecommendInputValidation(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	engine := NewEngine(DefaultOptions())

	_, err := engine.Recommend(cashWheel(t), blendedVol(0), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput))

	_, err = engine.Recommend(cashWheel(t), blendedVol(0.30), nil,
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData))
}

func TestRecommendUndercapitalizedWheel(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)
	pos, err := wheel.NewCashWheel("XYZ", 5000, strikes.ProfileConservative)
	require.NoError(t, err)

	engine := NewEngine(DefaultOptions())
	_, err = engine.Recommend(pos, blendedVol(0.30), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput))
}

func TestRecommendHighProbabilityWarning(t *testing.T) {
	exp := engineAsOf.AddDate(0, 0, 30)

	opts := DefaultOptions()
	opts.HighProbabilityLimit = 0.01 // force the warning on any candidate
	engine := NewEngine(opts)

	result, err := engine.Recommend(cashWheel(t), blendedVol(0.30), engineChain(exp),
		availableEarnings(), volatility.RegimeNormal, engineAsOf)
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations[0].Warnings, WarningHighAssignmentProb)
}
