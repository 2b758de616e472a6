package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantwheel/options-wheel-bot/internal/monitor"
	"github.com/quantwheel/options-wheel-bot/internal/recommend"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
)

// ConsoleReporter renders engine output as console tables.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintRecommendations prints the ranked candidate table plus a rejection
// summary so excluded strikes stay visible.
func (r *ConsoleReporter) PrintRecommendations(symbol string, spot float64, result recommend.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("RECOMMENDATIONS - %s @ $%.2f (regime: %s)", symbol, spot, result.Regime))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"#", "Strike", "Exp", "P(ITM)", "σ-Dist", "Net Premium", "Liq", "Bias", "Warnings"})
	for i, rec := range result.Recommendations {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("$%.2f", rec.Candidate.Strike),
			rec.Candidate.Expiration.Format("2006-01-02"),
			fmt.Sprintf("%.1f%%", rec.Candidate.ProbabilityITM*100),
			fmt.Sprintf("%.2f", rec.Candidate.SigmaDistance),
			fmt.Sprintf("$%.2f", rec.Candidate.NetPremium),
			fmt.Sprintf("%.2f", rec.Candidate.LiquidityScore),
			fmt.Sprintf("%.1f", rec.BiasScore),
			formatWarnings(rec.Warnings),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 9, WidthMax: 40},
	})

	t.Render()

	if len(result.Recommendations) == 0 {
		fmt.Println("⚠️  No candidates survived filtering.")
	}
	if len(result.Rejections) > 0 {
		fmt.Printf("Rejected %d strikes:\n", len(result.Rejections))
		for _, rej := range result.Rejections {
			fmt.Printf("  $%.2f - %s (%s)\n", rej.Strike, rej.Reason, rej.Detail)
		}
	}
	fmt.Println()
}

// PrintStatus prints the live risk view of an open trade.
func (r *ConsoleReporter) PrintStatus(symbol string, status monitor.PositionStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("POSITION STATUS - %s", symbol))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Direction", string(status.Direction)},
		{"💰 Strike", fmt.Sprintf("$%.2f", status.Strike)},
		{"💰 Current Price", fmt.Sprintf("$%.2f", status.CurrentPrice)},
		{"📈 Moneyness", status.Moneyness},
		{"⏰ DTE (calendar)", fmt.Sprintf("%d", status.DTECalendar)},
		{"⏰ DTE (trading)", fmt.Sprintf("%d", status.DTETrading)},
		{"🚨 Risk Level", riskLabel(status.RiskLevel)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintWheelSummary prints the lifetime view of one wheel position.
func (r *ConsoleReporter) PrintWheelSummary(pos *wheel.WheelPosition) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("WHEEL SUMMARY - %s", pos.Symbol()))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🔄 State", pos.State().String()},
		{"💵 Capital Allocated", fmt.Sprintf("$%.2f", pos.CapitalAllocated())},
		{"📦 Shares Held", fmt.Sprintf("%d", pos.Shares())},
		{"💰 Cost Basis", fmt.Sprintf("$%.2f", pos.CostBasis())},
		{"✅ Cumulative Premium", fmt.Sprintf("$%.2f", pos.CumulativePremium())},
		{"📜 Completed Trades", fmt.Sprintf("%d", len(pos.History()))},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, WidthMax: 25, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintTradeHistory prints resolved trades in chronological order.
func (r *ConsoleReporter) PrintTradeHistory(trades []wheel.TradeRecord) {
	if len(trades) == 0 {
		fmt.Println("No completed trades.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADE HISTORY")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Opened", "Dir", "Strike", "Contracts", "Premium", "Outcome", "Resolved"})
	for _, tr := range trades {
		resolved := "-"
		if tr.ResolvedAt != nil {
			resolved = tr.ResolvedAt.Format("2006-01-02")
		}
		t.AppendRow(table.Row{
			tr.OpenedAt.Format("2006-01-02"),
			string(tr.Direction),
			fmt.Sprintf("$%.2f", tr.Strike),
			tr.Contracts,
			fmt.Sprintf("$%.2f", tr.TotalPremium),
			string(tr.Outcome),
			resolved,
		})
	}

	t.Render()
	fmt.Println()
}

// PrintVolatility prints the per-estimator breakdown alongside the blend.
func (r *ConsoleReporter) PrintVolatility(symbol string, estimates []volatility.Result, blended volatility.Result, regime volatility.Regime) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("VOLATILITY - %s", symbol))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Method", "Window", "Samples", "Annualized σ"})
	for _, est := range estimates {
		t.AppendRow(table.Row{
			string(est.Method),
			est.Window,
			est.SampleCount,
			fmt.Sprintf("%.2f%%", est.Value*100),
		})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"blended", blended.Window, blended.SampleCount, fmt.Sprintf("%.2f%%", blended.Value*100)})

	t.Render()
	fmt.Printf("Regime: %s\n\n", regime)
}

func formatWarnings(warnings []recommend.Warning) string {
	if len(warnings) == 0 {
		return "-"
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = string(w)
	}
	return strings.Join(parts, ", ")
}

func riskLabel(level monitor.RiskLevel) string {
	switch level {
	case monitor.RiskHigh:
		return "🔴 HIGH"
	case monitor.RiskMedium:
		return "🟡 MEDIUM"
	default:
		return "🟢 LOW"
	}
}
