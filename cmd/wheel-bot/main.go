package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/quantwheel/options-wheel-bot/internal/config"
	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/logger"
	"github.com/quantwheel/options-wheel-bot/internal/monitoring"
	"github.com/quantwheel/options-wheel-bot/internal/recommend"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
	"github.com/quantwheel/options-wheel-bot/pkg/data"
	"github.com/quantwheel/options-wheel-bot/pkg/reporting"
)

func main() {
	var (
		configFile = flag.String("config", "", "JSON configuration file")
		symbol     = flag.String("symbol", "", "underlying symbol (overrides config)")
		capital    = flag.Float64("capital", 0, "capital to allocate (overrides config)")
		profile    = flag.String("profile", "", "strike profile: aggressive|moderate|conservative|defensive")
		shares     = flag.Int("shares", 0, "import an existing share position instead of starting from cash")
		costBasis  = flag.Float64("cost-basis", 0, "per-share cost basis for -shares")
		xlsxPath   = flag.String("xlsx", "", "write wheel workbook to this path")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *capital > 0 {
		cfg.Capital = *capital
	}
	if *profile != "" {
		cfg.Profile = *profile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	sessionLog, err := logger.NewLogger(cfg.Symbol)
	if err != nil {
		log.Fatalf("❌ Failed to create session log: %v", err)
	}
	defer sessionLog.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", monitoring.NewMetricsHandler())
			log.Printf("📊 Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	if err := run(cfg, *shares, *costBasis, *xlsxPath, sessionLog); err != nil {
		sessionLog.Error("run failed: %v", err)
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, importedShares int, costBasis float64, xlsxPath string, sessionLog *logger.Logger) error {
	provider := data.NewCSVProvider(cfg.DataDir)

	bars, err := provider.GetPrices(cfg.Symbol, cfg.RegimeLookback+cfg.LongWindow)
	if err != nil {
		return fmt.Errorf("price history: %w", err)
	}
	quote, err := provider.GetQuote(cfg.Symbol)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	chain, err := provider.GetChain(cfg.Symbol, time.Time{})
	if err != nil {
		return fmt.Errorf("option chain: %w", err)
	}
	earnings, err := provider.GetEarnings(cfg.Symbol)
	if err != nil {
		return fmt.Errorf("earnings calendar: %w", err)
	}

	monitoring.UpdatePrice(cfg.Symbol, quote.Price)
	sessionLog.Info("loaded %d bars, %d chain contracts for %s @ $%.2f",
		len(bars), len(chain.Contracts), cfg.Symbol, quote.Price)

	// Per-estimator breakdown over the short window. Individual failures are
	// reported, not fatal: the blend degrades gracefully.
	estimators := []volatility.Estimator{
		volatility.NewCloseToClose(cfg.MinSamples),
		volatility.NewParkinson(cfg.MinSamples),
		volatility.NewGarmanKlass(cfg.MinSamples),
		volatility.NewYangZhang(cfg.MinSamples),
	}
	var estimates []volatility.Result
	for _, est := range estimators {
		res, err := est.Estimate(bars, cfg.ShortWindow)
		if err != nil {
			monitoring.RecordEstimatorFailure(string(est.Method()))
			sessionLog.Warning("estimator %s failed: %v", est.Method(), err)
			continue
		}
		estimates = append(estimates, res)
	}

	volEngine := volatility.NewEngine(cfg.ShortWindow, cfg.LongWindow, cfg.MinSamples)
	blended, err := volEngine.Blend(bars, chain.AtTheMoneyIV(), cfg.Blend)
	if err != nil {
		return fmt.Errorf("volatility blend: %w", err)
	}
	monitoring.UpdateBlendedVolatility(cfg.Symbol, blended.Value)

	// Regime annotates; missing history is downgraded to a warning.
	var regime volatility.Regime
	classifier := volatility.NewRegimeClassifier(cfg.RegimeLookback, volatility.DefaultRegimeWindow, cfg.MinSamples)
	regime, percentile, err := classifier.Classify(bars, blended.Value)
	if err != nil {
		if !wheelerr.IsCategory(err, wheelerr.ErrorCategoryInsufficientData) {
			return fmt.Errorf("regime: %w", err)
		}
		sessionLog.Warning("regime unavailable: %v", err)
		regime = ""
	} else {
		sessionLog.LogVolatility(blended.Value, string(blended.Method), string(regime))
		sessionLog.Info("volatility percentile: %.1f", percentile)
	}

	pos, err := buildWheel(cfg, importedShares, costBasis)
	if err != nil {
		return err
	}

	engine := recommend.NewEngine(recommend.Options{
		MaxResults:           cfg.MaxResults,
		MaxDTE:               cfg.MaxDTE,
		RiskFreeRate:         cfg.RiskFreeRate,
		PerContractFee:       cfg.PerContractFee,
		SlippagePerContract:  cfg.SlippagePerContract,
		Filters:              cfg.Liquidity,
		HighProbabilityLimit: recommend.DefaultOptions().HighProbabilityLimit,
		ThinLiquidityLimit:   recommend.DefaultOptions().ThinLiquidityLimit,
		ShortDTELimit:        recommend.DefaultOptions().ShortDTELimit,
	})

	result, err := engine.Recommend(pos, blended, chain, earnings, regime, quote.Timestamp)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	monitoring.RecordRecommendations(cfg.Symbol, cfg.Profile, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		sessionLog.LogRecommendation(i+1, rec.Candidate.Strike, rec.Candidate.ProbabilityITM,
			rec.Candidate.NetPremium, rec.BiasScore, len(rec.Warnings))
	}

	console := reporting.NewConsoleReporter()
	console.PrintVolatility(cfg.Symbol, estimates, blended, regime)
	console.PrintRecommendations(cfg.Symbol, quote.Price, result)
	console.PrintWheelSummary(pos)

	if xlsxPath != "" {
		excel := reporting.NewExcelReporter()
		if err := excel.WriteWheelXLSX(pos, nil, xlsxPath); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		fmt.Printf("📁 Workbook written to %s\n", xlsxPath)
	}
	return nil
}

// buildWheel starts from cash by default, or imports an existing share
// position when -shares is given.
func buildWheel(cfg *config.Config, importedShares int, costBasis float64) (*wheel.WheelPosition, error) {
	if importedShares > 0 {
		return wheel.ImportSharesWheel(cfg.Symbol, importedShares, costBasis, cfg.WheelProfile())
	}
	return wheel.NewCashWheel(cfg.Symbol, cfg.Capital, cfg.WheelProfile())
}

// usage override keeps flag output readable when run bare.
func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wheel-bot [flags]\n\nProduces ranked wheel trade recommendations from CSV market data.\n\nFlags:\n")
		flag.PrintDefaults()
	}
}
