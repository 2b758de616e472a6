package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/quantwheel/options-wheel-bot/internal/config"
	"github.com/quantwheel/options-wheel-bot/internal/logger"
	"github.com/quantwheel/options-wheel-bot/internal/monitor"
	"github.com/quantwheel/options-wheel-bot/internal/monitoring"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
	"github.com/quantwheel/options-wheel-bot/pkg/data"
	"github.com/quantwheel/options-wheel-bot/pkg/reporting"
	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// wheel-sim replays the wheel lifecycle over historical daily bars: sell at
// the profile's target sigma, snapshot risk daily, resolve at expiration.
// Premium is theoretical (no historical chains), so results gauge mechanics,
// not P&L accuracy.
func main() {
	var (
		configFile = flag.String("config", "", "JSON configuration file")
		symbol     = flag.String("symbol", "", "underlying symbol (overrides config)")
		capital    = flag.Float64("capital", 0, "capital to allocate (overrides config)")
		profile    = flag.String("profile", "", "strike profile")
		dte        = flag.Int("dte", 30, "calendar days to expiration per simulated trade")
		xlsxPath   = flag.String("xlsx", "", "write simulation workbook to this path")
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
	if *dte <= 0 {
		log.Fatalf("❌ dte must be positive, got %d", *dte)
	}

	sessionLog, err := logger.NewLogger(cfg.Symbol)
	if err != nil {
		log.Fatalf("❌ Failed to create session log: %v", err)
	}
	defer sessionLog.Close()

	if err := run(cfg, *dte, *xlsxPath, sessionLog); err != nil {
		sessionLog.Error("simulation failed: %v", err)
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, dte int, xlsxPath string, sessionLog *logger.Logger) error {
	provider := data.NewCSVProvider(cfg.DataDir)
	bars, err := provider.GetPrices(cfg.Symbol, 0)
	if err != nil {
		return fmt.Errorf("price history: %w", err)
	}

	warmup := cfg.LongWindow + 1
	if len(bars) <= warmup {
		return fmt.Errorf("need more than %d bars to simulate, got %d", warmup, len(bars))
	}

	pos, err := wheel.NewCashWheel(cfg.Symbol, cfg.Capital, cfg.WheelProfile())
	if err != nil {
		return err
	}

	volEngine := volatility.NewEngine(cfg.ShortWindow, cfg.LongWindow, cfg.MinSamples)
	store := monitor.NewSnapshotStore()
	sim := &simulator{
		cfg:       cfg,
		bars:      bars,
		pos:       pos,
		volEngine: volEngine,
		store:     store,
		dte:       dte,
		log:       sessionLog,
	}

	sessionLog.Info("simulating %s over %d bars (profile=%s, dte=%d)",
		cfg.Symbol, len(bars)-warmup, cfg.Profile, dte)

	for i := warmup; i < len(bars); i++ {
		if err := sim.step(i); err != nil {
			return err
		}
	}

	console := reporting.NewConsoleReporter()
	console.PrintWheelSummary(pos)
	console.PrintTradeHistory(pos.History())
	fmt.Printf("Snapshots recorded: %d\n", store.Count())

	if xlsxPath != "" {
		excel := reporting.NewExcelReporter()
		if err := excel.WriteWheelXLSX(pos, sim.allSnapshots(), xlsxPath); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		fmt.Printf("📁 Workbook written to %s\n", xlsxPath)
	}
	return nil
}

type simulator struct {
	cfg       *config.Config
	bars      []types.PriceBar
	pos       *wheel.WheelPosition
	volEngine *volatility.Engine
	store     *monitor.SnapshotStore
	dte       int
	log       *logger.Logger
}

// step advances the simulation one bar: snapshot or resolve an open trade,
// otherwise try to open one.
func (s *simulator) step(i int) error {
	bar := s.bars[i]
	if !bar.HasClose() {
		return nil
	}

	if trade, open := s.pos.OpenTrade(); open {
		if !bar.Date.Before(trade.Expiration) {
			return s.resolve(trade, bar)
		}
		s.snapshot(trade, bar)
		return nil
	}
	return s.open(i)
}

func (s *simulator) open(i int) error {
	bar := s.bars[i]
	spot := bar.Close

	// Implied vol is unavailable historically; the blend renormalizes onto
	// the realized components.
	blended, err := s.volEngine.Blend(s.bars[:i+1], math.NaN(), s.cfg.Blend)
	if err != nil {
		s.log.Warning("no volatility estimate at %s: %v", bar.Date.Format("2006-01-02"), err)
		return nil
	}

	profile := s.cfg.WheelProfile()
	target, err := profile.TargetSigma()
	if err != nil {
		return err
	}
	direction := types.OptionTypePut
	n := -target
	if s.pos.State() == wheel.StateShares {
		direction = types.OptionTypeCall
		n = target
	}

	tYears := float64(s.dte) / 365.0
	theoretical, err := strikes.StrikeAtSigma(spot, blended.Value, n, tYears)
	if err != nil {
		return err
	}
	strike, err := strikes.RoundToTradeable(theoretical, strikes.IncrementFor(spot), direction, profile.RoundsAwayFromMoney())
	if err != nil {
		return err
	}

	premium, err := strikes.TheoreticalPrice(spot, strike, blended.Value, tYears, s.cfg.RiskFreeRate, direction)
	if err != nil {
		return err
	}
	if premium < 0.01 {
		// Too far OTM to collect anything; wait for a better bar.
		return nil
	}

	expiration := bar.Date.AddDate(0, 0, s.dte)
	var trade wheel.TradeRecord
	if direction == types.OptionTypePut {
		contracts := int(s.pos.CapitalAllocated() / (strike * wheel.SharesPerContract))
		if contracts < 1 {
			s.log.Warning("capital cannot secure a put at strike %.2f", strike)
			return nil
		}
		trade, err = s.pos.SellPut(strike, expiration, contracts, premium, bar.Date)
	} else {
		contracts := s.pos.Shares() / wheel.SharesPerContract
		trade, err = s.pos.SellCall(strike, expiration, contracts, premium, bar.Date)
	}
	if err != nil {
		return err
	}

	monitoring.RecordPremium(s.cfg.Symbol, trade.TotalPremium)
	s.log.Trade("opened %s %dx $%.2f exp %s, premium $%.2f (sigma %.4f)",
		trade.Direction, trade.Contracts, trade.Strike,
		trade.Expiration.Format("2006-01-02"), trade.TotalPremium, blended.Value)
	return nil
}

func (s *simulator) resolve(trade wheel.TradeRecord, bar types.PriceBar) error {
	from := s.pos.State().String()
	outcome, err := s.pos.Resolve(bar.Close, bar.Date)
	if err != nil {
		return err
	}
	monitoring.RecordTransition(s.cfg.Symbol, string(outcome))
	s.log.LogTransition("resolve", from, s.pos.State().String(), string(outcome), trade.TotalPremium)
	return nil
}

func (s *simulator) snapshot(trade wheel.TradeRecord, bar types.PriceBar) {
	quote := types.Quote{Symbol: s.cfg.Symbol, Price: bar.Close, Timestamp: bar.Date}
	status, err := monitor.Status(trade, quote, bar.Date)
	if err != nil {
		s.log.Warning("status at %s: %v", bar.Date.Format("2006-01-02"), err)
		return
	}
	if created, _ := s.store.Create(trade.ID, status, bar.Date); created == 1 && status.RiskLevel == monitor.RiskHigh {
		s.log.Warning("open %s ITM at %s: %s", trade.Direction, bar.Date.Format("2006-01-02"), status.Moneyness)
	}
}

func (s *simulator) allSnapshots() []monitor.Snapshot {
	var out []monitor.Snapshot
	for _, trade := range s.pos.History() {
		out = append(out, s.store.ForTrade(trade.ID)...)
	}
	return out
}
