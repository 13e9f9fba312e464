package strategy

import (
	"reversalbot/internal/broker"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ExitRule liquidates a position once its unrealized change crosses either
// threshold. Both bounds are inclusive and intentionally asymmetric.
type ExitRule struct {
	TakeProfitPct decimal.Decimal
	StopLossPct   decimal.Decimal
}

func DefaultExitRule() ExitRule {
	return NewExitRule(5.01, -4.98)
}

func NewExitRule(takeProfitPct, stopLossPct float64) ExitRule {
	return ExitRule{
		TakeProfitPct: decimal.NewFromFloat(takeProfitPct),
		StopLossPct:   decimal.NewFromFloat(stopLossPct),
	}
}

// PercentChange returns (current - entry) / entry * 100. ok is false when the
// entry price is zero.
func PercentChange(entry, current decimal.Decimal) (decimal.Decimal, bool) {
	if entry.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(entry).Div(entry).Mul(hundred), true
}

func (r ExitRule) Evaluate(pos *broker.Position) Signal {
	if pos == nil {
		return hold("", "no_position")
	}
	if pos.CurrentPrice.IsZero() {
		return hold(pos.Symbol, "no_current_price")
	}
	change, ok := PercentChange(pos.AvgEntryPrice, pos.CurrentPrice)
	if !ok {
		return hold(pos.Symbol, "zero_entry_price")
	}

	switch {
	case change.GreaterThanOrEqual(r.TakeProfitPct):
		return Signal{Action: Sell, Symbol: pos.Symbol, Qty: pos.Qty, Reason: "take_profit"}
	case change.LessThanOrEqual(r.StopLossPct):
		return Signal{Action: Sell, Symbol: pos.Symbol, Qty: pos.Qty, Reason: "stop_loss"}
	default:
		return hold(pos.Symbol, "within_band")
	}
}
