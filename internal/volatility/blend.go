package volatility

import (
	"fmt"
	"math"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// WeightSumTolerance is the allowed deviation of blend weights from 1.0.
const WeightSumTolerance = 0.001

// Default blend windows, in trading days.
const (
	DefaultShortWindow = 20
	DefaultLongWindow  = 60
)

// BlendWeights holds the three blend components. Weights are non-negative
// and must sum to 1.0 within WeightSumTolerance.
type BlendWeights struct {
	RealizedShort float64 `json:"realized_short"`
	RealizedLong  float64 `json:"realized_long"`
	Implied       float64 `json:"implied"`
}

// NewBlendWeights validates and constructs blend weights.
func NewBlendWeights(realizedShort, realizedLong, implied float64) (BlendWeights, error) {
	w := BlendWeights{RealizedShort: realizedShort, RealizedLong: realizedLong, Implied: implied}
	if err := w.Validate(); err != nil {
		return BlendWeights{}, err
	}
	return w, nil
}

// DefaultBlendWeights returns the standard 30/20/50 blend.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{RealizedShort: 0.30, RealizedLong: 0.20, Implied: 0.50}
}

// Validate checks non-negativity and the unit-sum constraint.
func (w BlendWeights) Validate() error {
	if w.RealizedShort < 0 || w.RealizedLong < 0 || w.Implied < 0 {
		return wheelerr.NewConfigurationError("volatility", "blend_weights",
			fmt.Sprintf("weights must be non-negative, got %.4f/%.4f/%.4f",
				w.RealizedShort, w.RealizedLong, w.Implied))
	}
	sum := w.RealizedShort + w.RealizedLong + w.Implied
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return wheelerr.NewConfigurationError("volatility", "blend_weights",
			fmt.Sprintf("weights must sum to 1.0 (±%.3f), got %.4f", WeightSumTolerance, sum))
	}
	return nil
}

// Engine produces the blended forward volatility estimate used by strike
// selection: short realized + long realized + ATM implied.
type Engine struct {
	shortWindow int
	longWindow  int
	estimator   *CloseToClose
}

// NewEngine creates a blending engine. Zero windows fall back to the
// 20/60 day defaults.
func NewEngine(shortWindow, longWindow, minSamples int) *Engine {
	if shortWindow <= 0 {
		shortWindow = DefaultShortWindow
	}
	if longWindow <= 0 {
		longWindow = DefaultLongWindow
	}
	return &Engine{
		shortWindow: shortWindow,
		longWindow:  longWindow,
		estimator:   NewCloseToClose(minSamples),
	}
}

// blendComponent pairs an available estimate with its weight.
type blendComponent struct {
	result Result
	weight float64
}

// Blend computes the blended forward estimate from a price history and an
// ATM implied volatility (impliedVol <= 0 or NaN means implied is
// unavailable). Estimators that fail with insufficient data are dropped
// from the blend and the remaining weights renormalized; invalid price
// input is never tolerated and fails the whole call.
func (e *Engine) Blend(bars []types.PriceBar, impliedVol float64, w BlendWeights) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}

	var components []blendComponent

	short, err := e.estimator.Estimate(bars, e.shortWindow)
	switch {
	case err == nil:
		components = append(components, blendComponent{short, w.RealizedShort})
	case wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData):
		// dropped from the blend
	default:
		return Result{}, err
	}

	long, err := e.estimator.Estimate(bars, e.longWindow)
	switch {
	case err == nil:
		components = append(components, blendComponent{long, w.RealizedLong})
	case wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData):
	default:
		return Result{}, err
	}

	if !math.IsNaN(impliedVol) && impliedVol > 0 {
		components = append(components, blendComponent{
			result: Result{Value: impliedVol, Method: MethodImplied, Annualized: true},
			weight: w.Implied,
		})
	}

	totalWeight := 0.0
	for _, c := range components {
		totalWeight += c.weight
	}
	if len(components) == 0 || totalWeight <= 0 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "blend",
			"no viable estimator for blend")
	}

	value := 0.0
	samples := 0
	for _, c := range components {
		value += c.result.Value * (c.weight / totalWeight)
		samples += c.result.SampleCount
	}

	start, end := span(bars)
	return Result{
		Value:       value,
		Method:      MethodBlended,
		Window:      e.shortWindow,
		SampleCount: samples,
		Start:       start,
		End:         end,
		Annualized:  true,
	}, nil
}

// BlendResults combines precomputed estimates with explicit weights. Weights
// must be non-negative and sum to 1.0 within WeightSumTolerance.
func BlendResults(estimates []Result, weights []float64) (Result, error) {
	if len(estimates) == 0 {
		return Result{}, wheelerr.NewInsufficientDataError("volatility", "blend", "no estimates supplied")
	}
	if len(estimates) != len(weights) {
		return Result{}, wheelerr.NewConfigurationError("volatility", "blend",
			fmt.Sprintf("%d estimates but %d weights", len(estimates), len(weights)))
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return Result{}, wheelerr.NewConfigurationError("volatility", "blend",
				fmt.Sprintf("negative weight %.4f", w))
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return Result{}, wheelerr.NewConfigurationError("volatility", "blend",
			fmt.Sprintf("weights must sum to 1.0 (±%.3f), got %.4f", WeightSumTolerance, sum))
	}

	value := 0.0
	samples := 0
	for i, est := range estimates {
		value += est.Value * weights[i]
		samples += est.SampleCount
	}
	return Result{
		Value:       value,
		Method:      MethodBlended,
		SampleCount: samples,
		Annualized:  true,
	}, nil
}
