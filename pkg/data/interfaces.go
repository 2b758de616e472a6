package data

import (
	"time"

	"github.com/quantwheel/options-wheel-bot/pkg/types"
)

// MarketDataProvider is the narrow capability interface the engine depends
// on. Concrete adapters (CSV files here, a brokerage client in the host
// application) implement it; the engine never touches a provider directly
// beyond these four calls and never performs network I/O itself.
type MarketDataProvider interface {
	// GetPrices returns the trailing lookback daily bars for a symbol,
	// ascending by date with no duplicate dates.
	GetPrices(symbol string, lookback int) ([]types.PriceBar, error)

	// GetChain returns the option-chain snapshot for one expiration.
	GetChain(symbol string, expiration time.Time) (*types.OptionChain, error)

	// GetQuote returns the current price for a symbol.
	GetQuote(symbol string) (types.Quote, error)

	// GetEarnings returns the earnings calendar for a symbol. An
	// unreachable calendar source is reported via Available=false, never
	// as an empty list.
	GetEarnings(symbol string) (*types.EarningsCalendar, error)
}

// CSVColumnMapping defines the column positions for price-history CSV files
type CSVColumnMapping struct {
	DateCol    int
	OpenCol    int
	HighCol    int
	LowCol     int
	CloseCol   int
	VolumeCol  int
	MinColumns int
	DateFormat string
}

// DefaultCSVFormat is the standard daily-bar layout:
// date,open,high,low,close,volume.
var DefaultCSVFormat = CSVColumnMapping{
	DateCol:    0,
	OpenCol:    1,
	HighCol:    2,
	LowCol:     3,
	CloseCol:   4,
	VolumeCol:  5,
	MinColumns: 6,
	DateFormat: "2006-01-02",
}
