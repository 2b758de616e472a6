package volatility

import (
	"fmt"
	"math"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Parkinson estimates volatility from intraday high/low ranges. It captures
// intraday movement close-to-close misses, but ignores overnight gaps.
type Parkinson struct {
	minSamples int
}

// NewParkinson creates a Parkinson range estimator.
func NewParkinson(minSamples int) *Parkinson {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Parkinson{minSamples: minSamples}
}

// Method returns the estimator identifier
func (e *Parkinson) Method() Method {
	return MethodParkinson
}

// RequiredFields describes the bar fields the estimator consumes
func (e *Parkinson) RequiredFields() string {
	return "high,low"
}

// Estimate computes annualized Parkinson volatility over the trailing window
// bars: sqrt( 1/(4*n*ln2) * sum ln(H/L)^2 ) * sqrt(252).
func (e *Parkinson) Estimate(bars []types.PriceBar, window int) (Result, error) {
	if len(bars) < window {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "parkinson",
			fmt.Sprintf("window %d needs %d bars, history has %d", window, window, len(bars)))
	}
	recent := trailing(bars, window)

	var sum float64
	n := 0
	for _, bar := range recent {
		if !bar.HasRange() {
			continue
		}
		if bar.High <= 0 || bar.Low <= 0 {
			return Result{}, wheelerr.NewInvalidInputError("volatility", "parkinson",
				fmt.Sprintf("non-positive high/low at %s", bar.Date.Format("2006-01-02")))
		}
		if bar.High < bar.Low {
			return Result{}, wheelerr.NewInvalidInputError("volatility", "parkinson",
				fmt.Sprintf("high %.4f below low %.4f at %s", bar.High, bar.Low, bar.Date.Format("2006-01-02")))
		}
		hl := math.Log(bar.High / bar.Low)
		sum += hl * hl
		n++
	}

	if n < e.minSamples {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "parkinson",
			fmt.Sprintf("need at least %d bars with high/low, got %d", e.minSamples, n))
	}

	daily := math.Sqrt(sum / (4 * float64(n) * math.Ln2))
	start, end := span(recent)
	return Result{
		Value:       daily * math.Sqrt(TradingDaysPerYear),
		Method:      MethodParkinson,
		Window:      window,
		SampleCount: n,
		Start:       start,
		End:         end,
		Annualized:  true,
	}, nil
}
