package wheel

import (
	"time"

	"github.com/google/uuid"
)

// Direction is the side of the short option a trade sells.
type Direction string

const (
	DirectionPut  Direction = "put"
	DirectionCall Direction = "call"
)

// Outcome is the terminal (or open) disposition of a trade. A trade is
// closed by exactly one terminal event.
type Outcome string

const (
	OutcomeOpen             Outcome = "OPEN"
	OutcomeExpiredWorthless Outcome = "EXPIRED_WORTHLESS"
	OutcomeAssigned         Outcome = "ASSIGNED"
	OutcomeCalledAway       Outcome = "CALLED_AWAY"
	OutcomeClosedEarly      Outcome = "CLOSED_EARLY"
)

// SharesPerContract is the standard equity option multiplier.
const SharesPerContract = 100

// TradeRecord is one sold option through its life. The wheel enforces at
// most one record with OutcomeOpen per position.
type TradeRecord struct {
	ID                uuid.UUID  `json:"id"`
	WheelID           uuid.UUID  `json:"wheel_id"`
	Direction         Direction  `json:"direction"`
	Strike            float64    `json:"strike"`
	Expiration        time.Time  `json:"expiration"`
	Contracts         int        `json:"contracts"`
	TotalPremium      float64    `json:"total_premium"`
	Outcome           Outcome    `json:"outcome"`
	OpenedAt          time.Time  `json:"opened_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	PriceAtResolution *float64   `json:"price_at_resolution,omitempty"`
}

// IsOpen reports whether the trade has not yet hit a terminal event.
func (t *TradeRecord) IsOpen() bool {
	return t.Outcome == OutcomeOpen
}

// Shares returns the share count the trade controls.
func (t *TradeRecord) Shares() int {
	return t.Contracts * SharesPerContract
}

// resolve stamps the terminal event onto the record.
func (t *TradeRecord) resolve(outcome Outcome, price float64, at time.Time) {
	t.Outcome = outcome
	t.ResolvedAt = &at
	t.PriceAtResolution = &price
}
