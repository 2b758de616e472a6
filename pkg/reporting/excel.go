package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantwheel/options-wheel-bot/internal/monitor"
	"github.com/quantwheel/options-wheel-bot/internal/wheel"
)

// ExcelStyles holds the style IDs used across sheets.
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	DateStyle     int
}

// ExcelReporter writes wheel history and risk snapshots to a workbook.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteWheelXLSX writes one wheel position's trade history and risk
// snapshots to an Excel file at path.
func (r *ExcelReporter) WriteWheelXLSX(pos *wheel.WheelPosition, snapshots []monitor.Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const snapshotsSheet = "Snapshots"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	fx.NewSheet(snapshotsSheet)
	fx.NewSheet(summarySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, pos, styles); err != nil {
		return err
	}
	if err := r.writeSnapshotsSheet(fx, snapshotsSheet, snapshots, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, pos, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 9,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 14,
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, pos *wheel.WheelPosition, styles ExcelStyles) error {
	headers := []string{"Opened", "Direction", "Strike", "Expiration", "Contracts", "Premium", "Outcome", "Resolved", "Price at Resolution"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, tr := range pos.History() {
		fx.SetCellValue(sheet, cellAt(1, row), tr.OpenedAt.Format("2006-01-02"))
		fx.SetCellValue(sheet, cellAt(2, row), string(tr.Direction))
		fx.SetCellValue(sheet, cellAt(3, row), tr.Strike)
		fx.SetCellValue(sheet, cellAt(4, row), tr.Expiration.Format("2006-01-02"))
		fx.SetCellValue(sheet, cellAt(5, row), tr.Contracts)
		fx.SetCellValue(sheet, cellAt(6, row), tr.TotalPremium)
		fx.SetCellValue(sheet, cellAt(7, row), string(tr.Outcome))
		if tr.ResolvedAt != nil {
			fx.SetCellValue(sheet, cellAt(8, row), tr.ResolvedAt.Format("2006-01-02"))
		}
		if tr.PriceAtResolution != nil {
			fx.SetCellValue(sheet, cellAt(9, row), *tr.PriceAtResolution)
		}
		fx.SetCellStyle(sheet, cellAt(3, row), cellAt(3, row), styles.CurrencyStyle)
		fx.SetCellStyle(sheet, cellAt(6, row), cellAt(6, row), styles.CurrencyStyle)
		fx.SetCellStyle(sheet, cellAt(9, row), cellAt(9, row), styles.CurrencyStyle)
		row++
	}

	fx.SetColWidth(sheet, "A", "I", 16)
	return nil
}

func (r *ExcelReporter) writeSnapshotsSheet(fx *excelize.File, sheet string, snapshots []monitor.Snapshot, styles ExcelStyles) error {
	headers := []string{"Date", "Trade ID", "Price", "Strike", "Moneyness", "Risk", "DTE (cal)", "DTE (trading)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	for _, s := range snapshots {
		fx.SetCellValue(sheet, cellAt(1, row), s.Date.Format("2006-01-02"))
		fx.SetCellValue(sheet, cellAt(2, row), s.TradeID.String())
		fx.SetCellValue(sheet, cellAt(3, row), s.Status.CurrentPrice)
		fx.SetCellValue(sheet, cellAt(4, row), s.Status.Strike)
		fx.SetCellValue(sheet, cellAt(5, row), s.Status.Moneyness)
		fx.SetCellValue(sheet, cellAt(6, row), string(s.Status.RiskLevel))
		fx.SetCellValue(sheet, cellAt(7, row), s.Status.DTECalendar)
		fx.SetCellValue(sheet, cellAt(8, row), s.Status.DTETrading)
		fx.SetCellStyle(sheet, cellAt(3, row), cellAt(4, row), styles.CurrencyStyle)
		row++
	}

	fx.SetColWidth(sheet, "A", "A", 12)
	fx.SetColWidth(sheet, "B", "B", 38)
	fx.SetColWidth(sheet, "C", "H", 14)
	return nil
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, pos *wheel.WheelPosition, styles ExcelStyles) error {
	rows := [][]interface{}{
		{"Symbol", pos.Symbol()},
		{"State", pos.State().String()},
		{"Capital Allocated", pos.CapitalAllocated()},
		{"Shares Held", pos.Shares()},
		{"Cost Basis", pos.CostBasis()},
		{"Cumulative Premium", pos.CumulativePremium()},
		{"Completed Trades", len(pos.History())},
	}

	for i, pair := range rows {
		label := cellAt(1, i+1)
		value := cellAt(2, i+1)
		fx.SetCellValue(sheet, label, pair[0])
		fx.SetCellValue(sheet, value, pair[1])
		fx.SetCellStyle(sheet, label, label, styles.HeaderStyle)
	}

	fx.SetColWidth(sheet, "A", "A", 22)
	fx.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func cellAt(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
