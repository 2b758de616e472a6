package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Warning flags a caveat on a recommendation without excluding it.
type Warning string

const (
	WarningHighAssignmentProb Warning = "HIGH_ASSIGNMENT_PROBABILITY"
	WarningThinLiquidity      Warning = "THIN_LIQUIDITY"
	WarningShortDTE           Warning = "SHORT_DTE"
	WarningEarningsSpan       Warning = "EARNINGS_SPAN"
	// WarningEarningsUnverified marks candidates whose earnings exposure
	// could not be checked because the calendar source was unavailable.
	WarningEarningsUnverified Warning = "EARNINGS_UNVERIFIED"
)

// Recommendation is one annotated next-trade candidate.
type Recommendation struct {
	Candidate       strikes.Candidate `json:"candidate"`
	Direction       types.OptionType  `json:"direction"`
	Contracts       int               `json:"contracts"`
	BiasScore       float64           `json:"bias_score"`
	Warnings        []Warning         `json:"warnings,omitempty"`
	EarningsChecked bool              `json:"earnings_checked"`
	Regime          volatility.Regime `json:"regime,omitempty"`
}

// Options tunes the recommendation pass.
type Options struct {
	MaxResults           int
	MaxDTE               int
	RiskFreeRate         float64
	PerContractFee       float64
	SlippagePerContract  float64
	Filters              strikes.LiquidityFilters
	HighProbabilityLimit float64
	ThinLiquidityLimit   float64
	ShortDTELimit        int
	// IncludeEarningsSpan overrides the hard default exclusion of
	// candidates whose expiration spans a known earnings date.
	IncludeEarningsSpan bool
	// UseDeltaBand switches short-dated chains to delta-band selection.
	UseDeltaBand bool
}

// DefaultOptions returns the standard recommendation tuning.
func DefaultOptions() Options {
	return Options{
		MaxResults:           3,
		MaxDTE:               45,
		RiskFreeRate:         strikes.DefaultRiskFreeRate,
		PerContractFee:       0.65,
		SlippagePerContract:  1.00,
		Filters:              strikes.DefaultLiquidityFilters(),
		HighProbabilityLimit: 0.35,
		ThinLiquidityLimit:   0.30,
		ShortDTELimit:        3,
	}
}

// Result carries the recommendations plus everything that was excluded.
type Result struct {
	Recommendations []Recommendation    `json:"recommendations"`
	Rejections      []strikes.Rejection `json:"rejections,omitempty"`
	Regime          volatility.Regime   `json:"regime,omitempty"`
}

// Engine composes the volatility estimate and the strike optimizer into a
// ranked, warning-annotated candidate list biased toward premium retention
// over assignment.
type Engine struct {
	opts Options
}

// NewEngine creates a recommendation engine.
func NewEngine(opts Options) *Engine {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	return &Engine{opts: opts}
}

// Recommend produces next-trade candidates for a wheel with no open trade:
// puts from CASH, calls from SHARES. Any other state is rejected with an
// invalid-state error.
func (e *Engine) Recommend(pos *wheel.WheelPosition, vol volatility.Result, chain *types.OptionChain,
	earnings *types.EarningsCalendar, regime volatility.Regime, asOf time.Time) (Result, error) {

	var direction types.OptionType
	switch pos.State() {
	case wheel.StateCash:
		direction = types.OptionTypePut
	case wheel.StateShares:
		direction = types.OptionTypeCall
	default:
		return Result{}, wheelerr.NewInvalidStateError("recommend", "recommend", pos.State().String())
	}

	if vol.Value <= 0 {
		return Result{}, wheelerr.NewInvalidInputError("recommend", "recommend",
			fmt.Sprintf("blended volatility must be positive, got %.4f", vol.Value))
	}
	if chain == nil || chain.UnderlyingPrice <= 0 {
		return Result{}, wheelerr.NewInsufficientDataError("recommend", "recommend", "no usable option chain")
	}

	contracts, err := e.sizeContracts(pos, chain.UnderlyingPrice)
	if err != nil {
		return Result{}, err
	}

	ranked, err := strikes.Rank(chain, strikes.RankRequest{
		Direction:           direction,
		Spot:                chain.UnderlyingPrice,
		Sigma:               vol.Value,
		RiskFree:            e.opts.RiskFreeRate,
		AsOf:                asOf,
		Contracts:           contracts,
		PerContractFee:      e.opts.PerContractFee,
		SlippagePerContract: e.opts.SlippagePerContract,
		Profile:             pos.Profile(),
		Filters:             e.opts.Filters,
		UseDeltaBand:        e.opts.UseDeltaBand,
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Rejections: ranked.Rejections, Regime: regime}
	earningsChecked := earnings != nil && earnings.Available

	for _, cand := range ranked.Candidates {
		dte := calendarDays(asOf, cand.Expiration)
		if e.opts.MaxDTE > 0 && dte > e.opts.MaxDTE {
			continue
		}

		spansEarnings := earningsChecked && earnings.SpansRange(asOf, cand.Expiration)
		if spansEarnings && !e.opts.IncludeEarningsSpan {
			// Hard default exclusion: never silently include an
			// expiration that crosses earnings.
			result.Rejections = append(result.Rejections, strikes.Rejection{
				Strike: cand.Strike,
				Reason: "earnings_span",
				Detail: "expiration spans a known earnings date",
			})
			continue
		}

		rec := Recommendation{
			Candidate:       cand,
			Direction:       direction,
			Contracts:       contracts,
			BiasScore:       e.biasScore(cand, earnings, earningsChecked, asOf),
			EarningsChecked: earningsChecked,
			Regime:          regime,
		}

		if cand.ProbabilityITM > e.opts.HighProbabilityLimit {
			rec.Warnings = append(rec.Warnings, WarningHighAssignmentProb)
		}
		if cand.LiquidityScore < e.opts.ThinLiquidityLimit {
			rec.Warnings = append(rec.Warnings, WarningThinLiquidity)
		}
		if dte < e.opts.ShortDTELimit {
			rec.Warnings = append(rec.Warnings, WarningShortDTE)
		}
		if spansEarnings {
			rec.Warnings = append(rec.Warnings, WarningEarningsSpan)
		}
		if !earningsChecked {
			rec.Warnings = append(rec.Warnings, WarningEarningsUnverified)
		}

		result.Recommendations = append(result.Recommendations, rec)
	}

	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].BiasScore > result.Recommendations[j].BiasScore
	})
	if len(result.Recommendations) > e.opts.MaxResults {
		result.Recommendations = result.Recommendations[:e.opts.MaxResults]
	}
	return result, nil
}

// biasScore prefers premium retention over assignment: further-OTM strikes
// score higher, proximity of expiration to earnings drags the score down.
func (e *Engine) biasScore(cand strikes.Candidate, earnings *types.EarningsCalendar, checked bool, asOf time.Time) float64 {
	score := cand.SigmaDistance*50 + cand.LiquidityScore*10

	if checked {
		if next, ok := earnings.NextAfter(asOf); ok {
			gap := math.Abs(next.Sub(cand.Expiration).Hours() / 24)
			score -= math.Max(0, 10-gap)
		}
	}
	return score
}

// sizeContracts derives how many contracts the wheel can support: covered
// calls from shares held, cash-secured puts from allocated capital at spot.
func (e *Engine) sizeContracts(pos *wheel.WheelPosition, spot float64) (int, error) {
	var contracts int
	if pos.State() == wheel.StateShares {
		contracts = pos.Shares() / wheel.SharesPerContract
	} else {
		contracts = int(pos.CapitalAllocated() / (spot * wheel.SharesPerContract))
	}
	if contracts < 1 {
		return 0, wheelerr.NewInvalidInputError("recommend", "size_contracts",
			fmt.Sprintf("wheel cannot support a single contract at spot %.2f", spot))
	}
	return contracts, nil
}

func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
