package volatility

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// CloseToClose estimates volatility from the standard deviation of daily
// log returns. Bars with a missing close are skipped, never interpolated.
type CloseToClose struct {
	minSamples int
}

// NewCloseToClose creates a close-to-close estimator. minSamples <= 0 falls
// back to DefaultMinSamples.
func NewCloseToClose(minSamples int) *CloseToClose {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &CloseToClose{minSamples: minSamples}
}

// Method returns the estimator identifier
func (e *CloseToClose) Method() Method {
	return MethodCloseToClose
}

// RequiredFields describes the bar fields the estimator consumes
func (e *CloseToClose) RequiredFields() string {
	return "close"
}

// Estimate computes the annualized close-to-close volatility over the
// trailing window bars: stdev(ln(C_t/C_t-1)) * sqrt(252).
func (e *CloseToClose) Estimate(bars []types.PriceBar, window int) (Result, error) {
	// window+1 closes give window returns
	if len(bars) < window+1 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "close_to_close",
			fmt.Sprintf("window %d needs %d bars, history has %d", window, window+1, len(bars)))
	}
	recent := trailing(bars, window+1)

	var returns []float64
	prev := math.NaN()
	for _, bar := range recent {
		if !bar.HasClose() {
			continue
		}
		if bar.Close <= 0 {
			return Result{}, wheelerr.NewInvalidInputError("volatility", "close_to_close",
				fmt.Sprintf("non-positive close %.4f at %s", bar.Close, bar.Date.Format("2006-01-02")))
		}
		if !math.IsNaN(prev) {
			returns = append(returns, math.Log(bar.Close/prev))
		}
		prev = bar.Close
	}

	if len(returns) < e.minSamples {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "close_to_close",
			fmt.Sprintf("need at least %d valid log returns, got %d", e.minSamples, len(returns)))
	}

	sd, err := stats.StandardDeviationSample(stats.Float64Data(returns))
	if err != nil {
		return Result{}, wheelerr.Wrap(err, wheelerr.ErrorCategoryInsufficientData, "volatility", "close_to_close")
	}

	start, end := span(recent)
	return Result{
		Value:       sd * math.Sqrt(TradingDaysPerYear),
		Method:      MethodCloseToClose,
		Window:      window,
		SampleCount: len(returns),
		Start:       start,
		End:         end,
		Annualized:  true,
	}, nil
}
