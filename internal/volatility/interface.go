package volatility

import (
	"time"

	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Method identifies the estimator that produced a Result.
type Method string

const (
	MethodCloseToClose Method = "close_to_close"
	MethodParkinson    Method = "parkinson"
	MethodGarmanKlass  Method = "garman_klass"
	MethodYangZhang    Method = "yang_zhang"
	MethodImplied      Method = "implied"
	MethodBlended      Method = "blended"
)

const (
	// TradingDaysPerYear is the annualization base for daily estimators.
	TradingDaysPerYear = 252

	// DefaultMinSamples is the minimum number of valid observations an
	// estimator needs before it refuses to produce a value.
	DefaultMinSamples = 10
)

// Result is one annualized volatility estimate.
type Result struct {
	Value       float64   `json:"value"`
	Method      Method    `json:"method"`
	Window      int       `json:"window"`
	SampleCount int       `json:"sample_count"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Annualized  bool      `json:"annualized"`
}

// Estimator computes an annualized volatility estimate from the trailing
// window bars of a daily price history.
type Estimator interface {
	// Estimate computes annualized volatility over the trailing window bars
	Estimate(bars []types.PriceBar, window int) (Result, error)

	// Method returns the estimator identifier
	Method() Method

	// RequiredFields describes the bar fields the estimator consumes
	RequiredFields() string
}

// trailing returns the last window bars of the series, or all of them when
// the series is shorter.
func trailing(bars []types.PriceBar, window int) []types.PriceBar {
	if window > 0 && len(bars) > window {
		return bars[len(bars)-window:]
	}
	return bars
}

// span fills Start/End from the first and last bar of a slice.
func span(bars []types.PriceBar) (start, end time.Time) {
	if len(bars) == 0 {
		return
	}
	return bars[0].Date, bars[len(bars)-1].Date
}
