package strikes

import (
	"fmt"
	"math"
	"sort"
	"time"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// Candidate is one ranked strike. Immutable once computed.
type Candidate struct {
	Contract       types.OptionContract `json:"-"`
	Strike         float64              `json:"strike"`
	Expiration     time.Time            `json:"expiration"`
	SigmaDistance  float64              `json:"sigma_distance"`
	ProbabilityITM float64              `json:"probability_itm"`
	Delta          float64              `json:"delta"`
	BidPremium     float64              `json:"bid_premium"`    // per share
	GrossPremium   float64              `json:"gross_premium"`  // bid * contracts * 100
	NetPremium     float64              `json:"net_premium"`    // gross minus fees and slippage
	LiquidityScore float64              `json:"liquidity_score"`
}

// RankRequest carries everything Rank needs besides the chain itself.
type RankRequest struct {
	Direction types.OptionType
	Spot      float64
	Sigma     float64
	RiskFree  float64
	AsOf      time.Time

	Contracts           int
	PerContractFee      float64
	SlippagePerContract float64

	Profile Profile
	Filters LiquidityFilters

	// UseDeltaBand switches the profile predicate from sigma distance to
	// absolute delta, the steadier choice for short-dated chains.
	UseDeltaBand bool
}

// RankResult pairs the surviving candidates with every exclusion, so a
// caller can always answer "why no candidates".
type RankResult struct {
	Candidates []Candidate `json:"candidates"`
	Rejections []Rejection `json:"rejections"`
}

// Rank computes, filters, and ranks strike candidates for one direction of a
// chain. Candidates are sorted by net premium descending, ties broken by
// higher open interest.
func Rank(chain *types.OptionChain, req RankRequest) (RankResult, error) {
	if chain == nil || len(chain.Contracts) == 0 {
		return RankResult{}, wheelerr.NewInsufficientDataError("strikes", "rank", "empty option chain")
	}
	if req.Spot <= 0 {
		return RankResult{}, wheelerr.NewInvalidInputError("strikes", "rank",
			fmt.Sprintf("spot must be positive, got %.4f", req.Spot))
	}
	if req.Sigma <= 0 {
		return RankResult{}, wheelerr.NewInvalidInputError("strikes", "rank",
			fmt.Sprintf("sigma must be positive, got %.4f", req.Sigma))
	}
	if req.Contracts <= 0 {
		return RankResult{}, wheelerr.NewInvalidInputError("strikes", "rank",
			fmt.Sprintf("contracts must be positive, got %d", req.Contracts))
	}

	band, err := profileBand(req.Profile, req.UseDeltaBand)
	if err != nil {
		return RankResult{}, err
	}

	var result RankResult
	for _, c := range chain.ByType(req.Direction) {
		tYears := c.Expiration.Sub(req.AsOf).Hours() / 24 / 365
		if tYears <= 0 {
			result.Rejections = append(result.Rejections, Rejection{
				Strike: c.Strike,
				Reason: RejectNoQuote,
				Detail: "contract already expired",
			})
			continue
		}

		prob, err := AssignmentProbability(req.Spot, c.Strike, req.Sigma, tYears, req.RiskFree, req.Direction)
		if err != nil {
			return RankResult{}, err
		}
		sigmaDist, err := SigmaDistance(req.Spot, c.Strike, req.Sigma, tYears)
		if err != nil {
			return RankResult{}, err
		}

		// ITM strikes never fit a premium-selling profile band scan.
		inBand := false
		var detail string
		if req.UseDeltaBand {
			delta := prob.Delta
			if c.HasDelta {
				delta = c.Delta
			}
			inBand = band.Contains(math.Abs(delta)) && otm(req.Direction, req.Spot, c.Strike)
			detail = fmt.Sprintf("|delta| %.3f outside %s band [%.2f, %.2f]",
				math.Abs(delta), string(req.Profile), band.Min, band.Max)
		} else {
			inBand = band.Contains(sigmaDist) && otm(req.Direction, req.Spot, c.Strike)
			detail = fmt.Sprintf("sigma distance %.2f outside %s band [%.2f, %.2f]",
				sigmaDist, string(req.Profile), band.Min, band.Max)
		}
		if !inBand {
			result.Rejections = append(result.Rejections, Rejection{
				Strike: c.Strike,
				Reason: RejectOutsideBand,
				Detail: detail,
			})
			continue
		}

		if rej := req.Filters.Check(c); rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}

		gross := c.Bid * float64(req.Contracts) * 100
		costs := (req.PerContractFee + req.SlippagePerContract) * float64(req.Contracts)
		result.Candidates = append(result.Candidates, Candidate{
			Contract:       c,
			Strike:         c.Strike,
			Expiration:     c.Expiration,
			SigmaDistance:  sigmaDist,
			ProbabilityITM: prob.ProbabilityITM,
			Delta:          prob.Delta,
			BidPremium:     c.Bid,
			GrossPremium:   gross,
			NetPremium:     gross - costs,
			LiquidityScore: req.Filters.LiquidityScore(c),
		})
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.NetPremium != b.NetPremium {
			return a.NetPremium > b.NetPremium
		}
		return a.Contract.OpenInterest > b.Contract.OpenInterest
	})
	return result, nil
}

func profileBand(p Profile, useDelta bool) (Band, error) {
	if useDelta {
		return p.DeltaBand()
	}
	return p.SigmaBand()
}

func otm(direction types.OptionType, spot, strike float64) bool {
	if direction == types.OptionTypeCall {
		return strike > spot
	}
	return strike < spot
}
