package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// CSVProvider implements MarketDataProvider over flat files in a data
// directory:
//
//	<dir>/<SYMBOL>.csv           daily bars (date,open,high,low,close,volume)
//	<dir>/<SYMBOL>_chain.csv     chain snapshot (type,strike,expiration,bid,ask,open_interest,implied_vol,delta)
//	<dir>/<SYMBOL>_earnings.csv  one earnings date per line
//
// A missing earnings file means the calendar source is unavailable, which
// is reported explicitly rather than as an empty list.
type CSVProvider struct {
	dir    string
	format CSVColumnMapping
}

// NewCSVProvider creates a CSV provider rooted at dir with the default
// column layout.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir, format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a CSV provider with a custom layout.
func NewCSVProviderWithFormat(dir string, format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{dir: dir, format: format}
}

// GetPrices loads the trailing lookback daily bars for a symbol.
func (p *CSVProvider) GetPrices(symbol string, lookback int) ([]types.PriceBar, error) {
	path := filepath.Join(p.dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open price history for %s: %w", symbol, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil { // header
		return nil, fmt.Errorf("could not read price history header: %w", err)
	}

	var bars []types.PriceBar
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading %s at line %d: %w", path, lineNum, err)
		}
		lineNum++

		if len(record) < p.format.MinColumns {
			log.Printf("insufficient columns at line %d (expected %d, got %d), skipping",
				lineNum, p.format.MinColumns, len(record))
			continue
		}

		date, err := time.Parse(p.format.DateFormat, record[p.format.DateCol])
		if err != nil {
			log.Printf("invalid date %q at line %d, skipping: %v", record[p.format.DateCol], lineNum, err)
			continue
		}

		bars = append(bars, types.PriceBar{
			Date:   date,
			Open:   parsePrice(record[p.format.OpenCol]),
			High:   parsePrice(record[p.format.HighCol]),
			Low:    parsePrice(record[p.format.LowCol]),
			Close:  parsePrice(record[p.format.CloseCol]),
			Volume: parsePrice(record[p.format.VolumeCol]),
		})
	}

	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	if lookback > 0 && len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

// GetChain loads the chain snapshot for a symbol, keeping only contracts at
// the requested expiration (zero expiration keeps everything).
func (p *CSVProvider) GetChain(symbol string, expiration time.Time) (*types.OptionChain, error) {
	path := filepath.Join(p.dir, symbol+"_chain.csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open option chain for %s: %w", symbol, err)
	}
	defer file.Close()

	quote, err := p.GetQuote(symbol)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil { // header
		return nil, fmt.Errorf("could not read chain header: %w", err)
	}

	chain := &types.OptionChain{
		UnderlyingSymbol: symbol,
		UnderlyingPrice:  quote.Price,
		Timestamp:        quote.Timestamp,
	}

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading %s at line %d: %w", path, lineNum, err)
		}
		lineNum++

		if len(record) < 7 {
			log.Printf("insufficient chain columns at line %d, skipping", lineNum)
			continue
		}

		exp, err := time.Parse("2006-01-02", record[2])
		if err != nil {
			log.Printf("invalid expiration %q at line %d, skipping: %v", record[2], lineNum, err)
			continue
		}
		if !expiration.IsZero() && !sameDate(exp, expiration) {
			continue
		}

		strike, err := strconv.ParseFloat(record[1], 64)
		if err != nil || strike <= 0 {
			log.Printf("invalid strike %q at line %d, skipping", record[1], lineNum)
			continue
		}

		typ := types.OptionType(strings.ToLower(strings.TrimSpace(record[0])))
		if typ != types.OptionTypeCall && typ != types.OptionTypePut {
			log.Printf("invalid option type %q at line %d, skipping", record[0], lineNum)
			continue
		}

		bid, _ := strconv.ParseFloat(record[3], 64)
		ask, _ := strconv.ParseFloat(record[4], 64)
		oi, _ := strconv.ParseInt(record[5], 10, 64)
		iv, _ := strconv.ParseFloat(record[6], 64)

		contract := types.OptionContract{
			Symbol:            symbol,
			Strike:            strike,
			Expiration:        exp,
			Type:              typ,
			Bid:               bid,
			Ask:               ask,
			OpenInterest:      oi,
			ImpliedVolatility: iv,
		}
		if len(record) > 7 && record[7] != "" {
			if delta, err := strconv.ParseFloat(record[7], 64); err == nil {
				contract.Delta = delta
				contract.HasDelta = true
			}
		}
		chain.Contracts = append(chain.Contracts, contract)
	}

	return chain, nil
}

// GetQuote returns the last close in the price history as the current quote.
func (p *CSVProvider) GetQuote(symbol string) (types.Quote, error) {
	bars, err := p.GetPrices(symbol, 0)
	if err != nil {
		return types.Quote{}, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].HasClose() && bars[i].Close > 0 {
			return types.Quote{
				Symbol:    symbol,
				Price:     bars[i].Close,
				Timestamp: bars[i].Date,
			}, nil
		}
	}
	return types.Quote{}, fmt.Errorf("no usable close in price history for %s", symbol)
}

// GetEarnings loads the earnings calendar. A missing file is the explicit
// "source unavailable" signal.
func (p *CSVProvider) GetEarnings(symbol string) (*types.EarningsCalendar, error) {
	path := filepath.Join(p.dir, symbol+"_earnings.csv")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.EarningsCalendar{Symbol: symbol, Available: false}, nil
		}
		return nil, fmt.Errorf("could not read earnings calendar for %s: %w", symbol, err)
	}

	cal := &types.EarningsCalendar{Symbol: symbol, Available: true}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := time.Parse("2006-01-02", line)
		if err != nil {
			log.Printf("invalid earnings date %q for %s, skipping: %v", line, symbol, err)
			continue
		}
		cal.Dates = append(cal.Dates, d)
	}
	return cal, nil
}

// ValidateBars checks ordering and duplicate dates: bars must be ascending
// by date with no date appearing twice.
func ValidateBars(bars []types.PriceBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no price bars provided")
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("price bars out of order at index %d: %s not after %s",
				i, bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// parsePrice parses a price field; an empty field is a missing value, not
// a zero price.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.MissingField()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.MissingField()
	}
	return v
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
