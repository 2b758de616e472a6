package wheel

// State is the wheel lifecycle state. Exactly one state holds at any time;
// every mutation goes through the transition methods on WheelPosition.
type State int

const (
	StateCash State = iota
	StateCashPutOpen
	StateShares
	StateSharesCallOpen
)

func (s State) String() string {
	switch s {
	case StateCash:
		return "CASH"
	case StateCashPutOpen:
		return "CASH_PUT_OPEN"
	case StateShares:
		return "SHARES"
	case StateSharesCallOpen:
		return "SHARES_CALL_OPEN"
	default:
		return "UNKNOWN"
	}
}

// HasOpenTrade reports whether the state implies an open short option.
func (s State) HasOpenTrade() bool {
	return s == StateCashPutOpen || s == StateSharesCallOpen
}

// MarshalJSON renders the state name rather than its ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
