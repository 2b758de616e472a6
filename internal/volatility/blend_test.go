package volatility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
)

func TestBlendWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultBlendWeights().Validate())

	_, err := NewBlendWeights(0.5, 0.5, 0.5)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryConfiguration))

	_, err = NewBlendWeights(-0.1, 0.6, 0.5)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryConfiguration))

	// Inside tolerance is accepted.
	w, err := NewBlendWeights(0.3005, 0.2, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0005, w.RealizedShort+w.RealizedLong+w.Implied, 1e-9)
}

func TestBlendAllComponentsPresent(t *testing.T) {
	// Enough history for both realized windows.
	closes := make([]float64, 80)
	price := 100.0
	for i := range closes {
		closes[i] = price
		if i%2 == 0 {
			price *= 1.02
		} else {
			price *= 0.99
		}
	}
	bars := barsFromCloses(closes...)

	engine := NewEngine(20, 60, 2)
	implied := 0.40

	res, err := engine.Blend(bars, implied, DefaultBlendWeights())
	require.NoError(t, err)
	assert.Equal(t, MethodBlended, res.Method)

	short, err := NewCloseToClose(2).Estimate(bars, 20)
	require.NoError(t, err)
	long, err := NewCloseToClose(2).Estimate(bars, 60)
	require.NoError(t, err)

	expected := 0.30*short.Value + 0.20*long.Value + 0.50*implied
	assert.InDelta(t, expected, res.Value, 1e-10)
}

func TestBlendDropsLongWindowAndRenormalizes(t *testing.T) {
	// 30 bars: enough for the 20-day window, not for 60.
	closes := make([]float64, 30)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.0 + 0.01*float64(i%3)
	}
	bars := barsFromCloses(closes...)

	engine := NewEngine(20, 60, 20)
	implied := 0.35

	res, err := engine.Blend(bars, implied, DefaultBlendWeights())
	require.NoError(t, err)

	short, err := NewCloseToClose(20).Estimate(bars, 20)
	require.NoError(t, err)

	// Long realized dropped; 0.30/0.50 renormalize over 0.80.
	expected := short.Value*(0.30/0.80) + implied*(0.50/0.80)
	assert.InDelta(t, expected, res.Value, 1e-10)
}

func TestBlendWithoutImpliedRenormalizesRealized(t *testing.T) {
	closes := make([]float64, 80)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.0 + 0.005*float64(i%4)
	}
	bars := barsFromCloses(closes...)

	engine := NewEngine(20, 60, 2)
	res, err := engine.Blend(bars, math.NaN(), DefaultBlendWeights())
	require.NoError(t, err)

	short, err := NewCloseToClose(2).Estimate(bars, 20)
	require.NoError(t, err)
	long, err := NewCloseToClose(2).Estimate(bars, 60)
	require.NoError(t, err)

	expected := short.Value*(0.30/0.50) + long.Value*(0.20/0.50)
	assert.InDelta(t, expected, res.Value, 1e-10)
}

func TestBlendNoViableComponent(t *testing.T) {
	engine := NewEngine(20, 60, 10)
	_, err := engine.Blend(barsFromCloses(100, 101), math.NaN(), DefaultBlendWeights())
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData))
}

func TestBlendInvalidInputIsFatal(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[25] = -5
	engine := NewEngine(20, 60, 2)

	_, err := engine.Blend(barsFromCloses(closes...), 0.3, DefaultBlendWeights())
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput))
}

func TestBlendResults(t *testing.T) {
	estimates := []Result{
		{Value: 0.20, SampleCount: 20},
		{Value: 0.40, SampleCount: 60},
	}

	res, err := BlendResults(estimates, []float64{0.25, 0.75})
	require.NoError(t, err)
	assert.InDelta(t, 0.35, res.Value, 1e-12)
	assert.Equal(t, 80, res.SampleCount)

	_, err = BlendResults(estimates, []float64{0.5})
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryConfiguration))

	_, err = BlendResults(estimates, []float64{0.8, 0.8})
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryConfiguration))

	_, err = BlendResults(nil, nil)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData))
}
