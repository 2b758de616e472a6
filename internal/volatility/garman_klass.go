package volatility

import (
	"fmt"
	"math"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// GarmanKlass estimates volatility from full OHLC bars, combining the
// intraday range with the open-to-close drift term.
type GarmanKlass struct {
	minSamples int
}

// NewGarmanKlass creates a Garman-Klass estimator.
func NewGarmanKlass(minSamples int) *GarmanKlass {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &GarmanKlass{minSamples: minSamples}
}

// Method returns the estimator identifier
func (e *GarmanKlass) Method() Method {
	return MethodGarmanKlass
}

// RequiredFields describes the bar fields the estimator consumes
func (e *GarmanKlass) RequiredFields() string {
	return "open,high,low,close"
}

// Estimate computes annualized Garman-Klass volatility over the trailing
// window bars:
//
//	sqrt( 1/n * sum[ 0.5*ln(H/L)^2 - (2*ln2-1)*ln(C/O)^2 ] ) * sqrt(252)
func (e *GarmanKlass) Estimate(bars []types.PriceBar, window int) (Result, error) {
	if len(bars) < window {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "garman_klass",
			fmt.Sprintf("window %d needs %d bars, history has %d", window, window, len(bars)))
	}
	recent := trailing(bars, window)

	var sum float64
	n := 0
	for _, bar := range recent {
		if !bar.HasOHLC() {
			continue
		}
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return Result{}, wheelerr.NewInvalidInputError("volatility", "garman_klass",
				fmt.Sprintf("non-positive OHLC at %s", bar.Date.Format("2006-01-02")))
		}
		hl := math.Log(bar.High / bar.Low)
		co := math.Log(bar.Close / bar.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
		n++
	}

	if n < e.minSamples {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "garman_klass",
			fmt.Sprintf("need at least %d full OHLC bars, got %d", e.minSamples, n))
	}

	variance := sum / float64(n)
	if variance < 0 {
		// The drift term can push the sample variance below zero on
		// pathological series. Treat as no usable signal.
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "garman_klass",
			"negative sample variance")
	}

	start, end := span(recent)
	return Result{
		Value:       math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear),
		Method:      MethodGarmanKlass,
		Window:      window,
		SampleCount: n,
		Start:       start,
		End:         end,
		Annualized:  true,
	}, nil
}
