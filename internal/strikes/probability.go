package strikes

import (
	"fmt"
	"math"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// DefaultRiskFreeRate is the annualized risk-free rate used when the caller
// supplies none.
const DefaultRiskFreeRate = 0.04

// ProbabilityResult holds the Black-Scholes assignment probability for one
// strike, along with the intermediate terms for inspection.
type ProbabilityResult struct {
	ProbabilityITM float64 `json:"probability_itm"`
	Delta          float64 `json:"delta"`
	D1             float64 `json:"d1"`
	D2             float64 `json:"d2"`
}

// AssignmentProbability computes the risk-neutral probability that an option
// finishes in the money at expiration.
//
// Sign convention, fixed once and enforced by the monotonicity tests:
//
//	P(call ITM) = N(d2)
//	P(put  ITM) = N(-d2)
//
// with d1 = [ln(S/K) + (r + sigma^2/2)T] / (sigma*sqrt(T)) and
// d2 = d1 - sigma*sqrt(T). Moving a strike further out of the money strictly
// lowers the probability for both sides.
func AssignmentProbability(spot, strike, sigma, tYears, riskFree float64, typ types.OptionType) (ProbabilityResult, error) {
	if spot <= 0 || math.IsNaN(spot) {
		return ProbabilityResult{}, wheelerr.NewInvalidInputError("strikes", "assignment_probability",
			fmt.Sprintf("spot must be positive, got %.4f", spot))
	}
	if strike <= 0 || math.IsNaN(strike) {
		return ProbabilityResult{}, wheelerr.NewInvalidInputError("strikes", "assignment_probability",
			fmt.Sprintf("strike must be positive, got %.4f", strike))
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return ProbabilityResult{}, wheelerr.NewInvalidInputError("strikes", "assignment_probability",
			fmt.Sprintf("sigma must be positive, got %.4f", sigma))
	}
	if tYears <= 0 {
		return ProbabilityResult{}, wheelerr.NewInvalidInputError("strikes", "assignment_probability",
			fmt.Sprintf("time to expiry must be positive, got %.6f years", tYears))
	}

	sqrtT := math.Sqrt(tYears)
	d1 := (math.Log(spot/strike) + (riskFree+sigma*sigma/2)*tYears) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	res := ProbabilityResult{D1: d1, D2: d2}
	switch typ {
	case types.OptionTypeCall:
		res.ProbabilityITM = normCDF(d2)
		res.Delta = normCDF(d1)
	case types.OptionTypePut:
		res.ProbabilityITM = normCDF(-d2)
		res.Delta = normCDF(d1) - 1
	default:
		return ProbabilityResult{}, wheelerr.NewInvalidInputError("strikes", "assignment_probability",
			fmt.Sprintf("unknown option type %q", string(typ)))
	}
	return res, nil
}

// TheoreticalPrice returns the Black-Scholes value of one option on one
// share. Used by the simulator to estimate premium when no live quote
// exists; live ranking always prices off the chain's bid.
func TheoreticalPrice(spot, strike, sigma, tYears, riskFree float64, typ types.OptionType) (float64, error) {
	res, err := AssignmentProbability(spot, strike, sigma, tYears, riskFree, typ)
	if err != nil {
		return 0, err
	}
	discount := math.Exp(-riskFree * tYears)
	switch typ {
	case types.OptionTypeCall:
		return spot*normCDF(res.D1) - strike*discount*normCDF(res.D2), nil
	default:
		return strike*discount*normCDF(-res.D2) - spot*normCDF(-res.D1), nil
	}
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
