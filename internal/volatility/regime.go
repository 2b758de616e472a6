package volatility

import (
	"fmt"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Regime buckets the current blended volatility against its own trailing
// history. Regime only annotates recommendations; it never blocks them.
type Regime string

const (
	RegimeLow     Regime = "LOW"
	RegimeNormal  Regime = "NORMAL"
	RegimeHigh    Regime = "HIGH"
	RegimeExtreme Regime = "EXTREME"
)

// Percentile cutoffs for the regime buckets.
const (
	regimeLowCutoff     = 25.0
	regimeNormalCutoff  = 75.0
	regimeHighCutoff    = 90.0
	minRegimeSamples    = 30
	DefaultRegimeWindow = 20
	// DefaultRegimeLookback is one trading year of history.
	DefaultRegimeLookback = 252
)

// RegimeClassifier ranks a volatility value against a trailing distribution
// of rolling realized-volatility samples.
type RegimeClassifier struct {
	lookback  int
	window    int
	estimator *CloseToClose
}

// NewRegimeClassifier creates a classifier. Zero values fall back to a
// 252-day lookback of 20-day rolling samples.
func NewRegimeClassifier(lookback, window, minSamples int) *RegimeClassifier {
	if lookback <= 0 {
		lookback = DefaultRegimeLookback
	}
	if window <= 0 {
		window = DefaultRegimeWindow
	}
	return &RegimeClassifier{
		lookback:  lookback,
		window:    window,
		estimator: NewCloseToClose(minSamples),
	}
}

// Classify buckets current against the trailing rolling-vol distribution and
// returns the regime plus the percentile rank of current within it.
func (c *RegimeClassifier) Classify(bars []types.PriceBar, current float64) (Regime, float64, error) {
	if current < 0 {
		return "", 0, wheelerr.NewInvalidInputError("volatility", "regime",
			fmt.Sprintf("negative volatility %.4f", current))
	}

	history := trailing(bars, c.lookback)

	var samples []float64
	for end := c.window + 1; end <= len(history); end++ {
		res, err := c.estimator.Estimate(history[:end], c.window)
		if err != nil {
			if wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData) {
				continue
			}
			return "", 0, err
		}
		samples = append(samples, res.Value)
	}

	if len(samples) < minRegimeSamples {
		return "", 0, wheelerr.NewInsufficientDataError("volatility", "regime",
			fmt.Sprintf("need %d rolling samples for regime ranking, got %d", minRegimeSamples, len(samples)))
	}

	below := 0
	for _, s := range samples {
		if s <= current {
			below++
		}
	}
	percentile := float64(below) / float64(len(samples)) * 100

	switch {
	case percentile < regimeLowCutoff:
		return RegimeLow, percentile, nil
	case percentile < regimeNormalCutoff:
		return RegimeNormal, percentile, nil
	case percentile < regimeHighCutoff:
		return RegimeHigh, percentile, nil
	default:
		return RegimeExtreme, percentile, nil
	}
}
