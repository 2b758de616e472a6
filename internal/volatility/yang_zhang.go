package volatility

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// YangZhang combines an overnight component (open vs prior close), an
// open-to-close component, and a Rogers-Satchell component. It is the only
// estimator here that accounts for overnight gaps.
type YangZhang struct {
	minSamples int
}

// NewYangZhang creates a Yang-Zhang estimator.
func NewYangZhang(minSamples int) *YangZhang {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &YangZhang{minSamples: minSamples}
}

// Method returns the estimator identifier
func (e *YangZhang) Method() Method {
	return MethodYangZhang
}

// RequiredFields describes the bar fields the estimator consumes
func (e *YangZhang) RequiredFields() string {
	return "open,high,low,close"
}

// Estimate computes annualized Yang-Zhang volatility over the trailing
// window bars. The open-to-close weight is k = 0.34/(1.34+(n+1)/(n-1));
// the overnight variance gets weight 1 and Rogers-Satchell weight 1-k.
func (e *YangZhang) Estimate(bars []types.PriceBar, window int) (Result, error) {
	// window+1 bars give window overnight observations
	if len(bars) < window+1 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "yang_zhang",
			fmt.Sprintf("window %d needs %d bars, history has %d", window, window+1, len(bars)))
	}
	recent := trailing(bars, window+1)

	var overnight, openClose []float64
	var rsSum float64
	rsCount := 0

	var prevClose float64 = math.NaN()
	for _, bar := range recent {
		if !bar.HasOHLC() {
			// A gap in the OHLC record breaks the prior-close pairing too
			prevClose = math.NaN()
			continue
		}
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return Result{}, wheelerr.NewInvalidInputError("volatility", "yang_zhang",
				fmt.Sprintf("non-positive OHLC at %s", bar.Date.Format("2006-01-02")))
		}

		if !math.IsNaN(prevClose) {
			overnight = append(overnight, math.Log(bar.Open/prevClose))
			openClose = append(openClose, math.Log(bar.Close/bar.Open))

			hc := math.Log(bar.High / bar.Close)
			ho := math.Log(bar.High / bar.Open)
			lc := math.Log(bar.Low / bar.Close)
			lo := math.Log(bar.Low / bar.Open)
			rsSum += hc*ho + lc*lo
			rsCount++
		}
		prevClose = bar.Close
	}

	n := len(overnight)
	if n < e.minSamples || n < 2 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "yang_zhang",
			fmt.Sprintf("need at least %d paired OHLC bars, got %d", e.minSamples, n))
	}

	overnightVar, err := stats.SampleVariance(stats.Float64Data(overnight))
	if err != nil {
		return Result{}, wheelerr.Wrap(err, wheelerr.ErrorCategoryInsufficientData, "volatility", "yang_zhang")
	}
	openCloseVar, err := stats.SampleVariance(stats.Float64Data(openClose))
	if err != nil {
		return Result{}, wheelerr.Wrap(err, wheelerr.ErrorCategoryInsufficientData, "volatility", "yang_zhang")
	}
	rsVar := rsSum / float64(rsCount)

	k := 0.34 / (1.34 + float64(n+1)/float64(n-1))
	variance := overnightVar + k*openCloseVar + (1-k)*rsVar
	if variance < 0 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "yang_zhang",
			"negative sample variance")
	}

	start, end := span(recent)
	return Result{
		Value:       math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear),
		Method:      MethodYangZhang,
		Window:      window,
		SampleCount: n,
		Start:       start,
		End:         end,
		Annualized:  true,
	}, nil
}
