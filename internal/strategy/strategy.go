package strategy

import "github.com/shopspring/decimal"

type Action string

const (
	Hold Action = "HOLD"
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Signal is produced fresh every cycle. Qty is only set for sells, where it is
// the full held quantity; buy sizing belongs to the executor.
type Signal struct {
	Action Action
	Symbol string
	Qty    decimal.Decimal
	Reason string
}

func hold(symbol, reason string) Signal {
	return Signal{Action: Hold, Symbol: symbol, Reason: reason}
}
