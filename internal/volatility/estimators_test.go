package volatility

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

func barsFromCloses(closes ...float64) []types.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = types.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   types.MissingField(),
			High:   types.MissingField(),
			Low:    types.MissingField(),
			Close:  c,
			Volume: 0,
		}
	}
	return bars
}

func ohlcBars(rows [][4]float64) []types.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(rows))
	for i, r := range rows {
		bars[i] = types.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Open:  r[0],
			High:  r[1],
			Low:   r[2],
			Close: r[3],
		}
	}
	return bars
}

// sampleStdev is an independent reference implementation for fixtures.
func sampleStdev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func TestCloseToCloseConstantGrowthIsZeroVol(t *testing.T) {
	closes := make([]float64, 25)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.01
	}

	est := NewCloseToClose(2)
	res, err := est.Estimate(barsFromCloses(closes...), 20)
	require.NoError(t, err)

	// Identical log returns have zero sample deviation.
	assert.InDelta(t, 0.0, res.Value, 1e-12)
	assert.Equal(t, MethodCloseToClose, res.Method)
	assert.Equal(t, 20, res.SampleCount)
	assert.True(t, res.Annualized)
}

func TestCloseToCloseMatchesReferenceStdev(t *testing.T) {
	closes := []float64{100, 102, 101, 104, 103, 106}
	bars := barsFromCloses(closes...)

	var returns []float64
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	expected := sampleStdev(returns) * math.Sqrt(252)

	est := NewCloseToClose(2)
	res, err := est.Estimate(bars, 5)
	require.NoError(t, err)
	assert.InDelta(t, expected, res.Value, 1e-10)
	assert.Equal(t, len(returns), res.SampleCount)
}

func TestCloseToCloseSkipsMissingCloses(t *testing.T) {
	bars := barsFromCloses(100, 102, 101, 104, 103)
	bars[2].Close = types.MissingField()

	est := NewCloseToClose(2)
	res, err := est.Estimate(bars, 4)
	require.NoError(t, err)

	// Missing bar is skipped, not interpolated: returns pair 102->104.
	returns := []float64{
		math.Log(102.0 / 100.0),
		math.Log(104.0 / 102.0),
		math.Log(103.0 / 104.0),
	}
	expected := sampleStdev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, res.Value, 1e-10)
	assert.Equal(t, 3, res.SampleCount)
}

func TestCloseToCloseRejectsNonPositiveClose(t *testing.T) {
	bars := barsFromCloses(100, 0, 101, 104, 103)

	est := NewCloseToClose(2)
	_, err := est.Estimate(bars, 4)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput))
}

func TestCloseToCloseInsufficientData(t *testing.T) {
	est := NewCloseToClose(10)
	_, err := est.Estimate(barsFromCloses(100, 101, 102), 20)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData))
}

func TestParkinsonConstantRange(t *testing.T) {
	rows := make([][4]float64, 15)
	for i := range rows {
		rows[i] = [4]float64{100.5, 101, 100, 100.5}
	}
	bars := ohlcBars(rows)

	est := NewParkinson(2)
	res, err := est.Estimate(bars, 15)
	require.NoError(t, err)

	hl := math.Log(101.0 / 100.0)
	expected := math.Sqrt(hl*hl/(4*math.Ln2)) * math.Sqrt(252)
	assert.InDelta(t, expected, res.Value, 1e-10)
	assert.Equal(t, 15, res.SampleCount)
}

func TestParkinsonRejectsInvertedRange(t *testing.T) {
	bars := ohlcBars([][4]float64{
		{100, 101, 99, 100},
		{100, 99, 101, 100}, // high below low
	})

	est := NewParkinson(1)
	_, err := est.Estimate(bars, 2)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInvalidInput))
}

func TestGarmanKlassMatchesClosedForm(t *testing.T) {
	rows := make([][4]float64, 12)
	for i := range rows {
		rows[i] = [4]float64{100, 102, 99, 101}
	}
	bars := ohlcBars(rows)

	est := NewGarmanKlass(2)
	res, err := est.Estimate(bars, 12)
	require.NoError(t, err)

	hl := math.Log(102.0 / 99.0)
	co := math.Log(101.0 / 100.0)
	variance := 0.5*hl*hl - (2*math.Ln2-1)*co*co
	expected := math.Sqrt(variance) * math.Sqrt(252)
	assert.InDelta(t, expected, res.Value, 1e-10)
}

func TestGarmanKlassSkipsPartialBars(t *testing.T) {
	rows := make([][4]float64, 12)
	for i := range rows {
		rows[i] = [4]float64{100, 102, 99, 101}
	}
	bars := ohlcBars(rows)
	bars[4].Open = types.MissingField()

	est := NewGarmanKlass(2)
	res, err := est.Estimate(bars, 12)
	require.NoError(t, err)
	assert.Equal(t, 11, res.SampleCount)
}

func TestYangZhangFlatSeriesIsZeroVol(t *testing.T) {
	rows := make([][4]float64, 15)
	for i := range rows {
		rows[i] = [4]float64{100, 100, 100, 100}
	}
	bars := ohlcBars(rows)

	est := NewYangZhang(2)
	res, err := est.Estimate(bars, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Value, 1e-12)
}

func TestYangZhangNeedsPairedBars(t *testing.T) {
	est := NewYangZhang(10)
	_, err := est.Estimate(ohlcBars([][4]float64{
		{100, 101, 99, 100},
		{100, 101, 99, 100},
	}), 20)
	require.Error(t, err)
	assert.True(t, wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData))
}

func TestEstimatorMethodsAndFields(t *testing.T) {
	cases := []struct {
		est    Estimator
		method Method
		fields string
	}{
		{NewCloseToClose(0), MethodCloseToClose, "close"},
		{NewParkinson(0), MethodParkinson, "high,low"},
		{NewGarmanKlass(0), MethodGarmanKlass, "open,high,low,close"},
		{NewYangZhang(0), MethodYangZhang, "open,high,low,close"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.method, tc.est.Method())
		assert.Equal(t, tc.fields, tc.est.RequiredFields())
	}
}
