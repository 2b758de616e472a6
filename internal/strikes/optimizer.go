package strikes

import (
	"fmt"
	"math"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Common listed strike increments.
var TradeableIncrements = []float64{0.50, 1.00, 2.50, 5.00}

// StrikeAtSigma returns the theoretical strike n standard deviations from
// spot: K = S * e^(n*sigma*sqrt(T)). T is in years. n is signed: positive
// puts the strike above spot (calls), negative below (puts).
func StrikeAtSigma(spot, sigma, n, tYears float64) (float64, error) {
	if spot <= 0 || math.IsNaN(spot) {
		return 0, wheelerr.NewInvalidInputError("strikes", "strike_at_sigma",
			fmt.Sprintf("spot must be positive, got %.4f", spot))
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return 0, wheelerr.NewInvalidInputError("strikes", "strike_at_sigma",
			fmt.Sprintf("sigma must be positive, got %.4f", sigma))
	}
	if tYears <= 0 {
		return 0, wheelerr.NewInvalidInputError("strikes", "strike_at_sigma",
			fmt.Sprintf("time to expiry must be positive, got %.6f years", tYears))
	}
	return spot * math.Exp(n*sigma*math.Sqrt(tYears)), nil
}

// SigmaDistance expresses how far a strike sits from spot in standard
// deviations: |ln(K/S)| / (sigma*sqrt(T)).
func SigmaDistance(spot, strike, sigma, tYears float64) (float64, error) {
	if spot <= 0 || strike <= 0 || sigma <= 0 || tYears <= 0 {
		return 0, wheelerr.NewInvalidInputError("strikes", "sigma_distance",
			fmt.Sprintf("inputs must be positive (spot=%.4f strike=%.4f sigma=%.4f t=%.6f)",
				spot, strike, sigma, tYears))
	}
	return math.Abs(math.Log(strike/spot)) / (sigma * math.Sqrt(tYears)), nil
}

// RoundToTradeable snaps a theoretical strike onto the increment grid.
// Conservative rounding moves away from the money: up for calls, down for
// puts. Non-conservative rounding snaps to nearest.
func RoundToTradeable(strike, increment float64, direction types.OptionType, conservative bool) (float64, error) {
	if strike <= 0 {
		return 0, wheelerr.NewInvalidInputError("strikes", "round_to_tradeable",
			fmt.Sprintf("strike must be positive, got %.4f", strike))
	}
	if increment <= 0 {
		return 0, wheelerr.NewInvalidInputError("strikes", "round_to_tradeable",
			fmt.Sprintf("increment must be positive, got %.4f", increment))
	}

	if !conservative {
		return math.Round(strike/increment) * increment, nil
	}
	switch direction {
	case types.OptionTypeCall:
		return math.Ceil(strike/increment) * increment, nil
	case types.OptionTypePut:
		return math.Floor(strike/increment) * increment, nil
	default:
		return 0, wheelerr.NewInvalidInputError("strikes", "round_to_tradeable",
			fmt.Sprintf("unknown option type %q", string(direction)))
	}
}

// IncrementFor guesses the listed strike increment for a price level:
// $0.50 under $25, $1 under $200, $2.50 under $500, $5 above.
func IncrementFor(price float64) float64 {
	switch {
	case price < 25:
		return 0.50
	case price < 200:
		return 1.00
	case price < 500:
		return 2.50
	default:
		return 5.00
	}
}

// SnapToChain snaps a theoretical strike onto a strike actually listed in
// the chain for the requested type, preferring the conservative side for
// conservative profiles.
func SnapToChain(chain *types.OptionChain, typ types.OptionType, theoretical float64, conservative bool) (float64, error) {
	contracts := chain.ByType(typ)
	if len(contracts) == 0 {
		return 0, wheelerr.NewInsufficientDataError("strikes", "snap_to_chain",
			fmt.Sprintf("chain has no %s contracts", string(typ)))
	}

	if conservative {
		// Walk away from the money until a listed strike is found.
		if typ == types.OptionTypeCall {
			for _, c := range contracts {
				if c.Strike >= theoretical {
					return c.Strike, nil
				}
			}
		} else {
			for i := len(contracts) - 1; i >= 0; i-- {
				if contracts[i].Strike <= theoretical {
					return contracts[i].Strike, nil
				}
			}
		}
		// Nothing on the far side; fall through to nearest.
	}

	strike, _ := chain.NearestStrike(typ, theoretical)
	return strike, nil
}
