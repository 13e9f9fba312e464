package risk

import (
	"fmt"

	"reversalbot/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type RiskContext struct {
	KillSwitch bool
	HeldQty    decimal.Decimal
}

type ApprovedIntent struct {
	Intent strategy.Signal
	Reason string
}

// Gate is the last check before an order reaches the broker.
type Gate struct {
	Log zerolog.Logger
}

func (g Gate) Evaluate(intent strategy.Signal, ctx RiskContext) (ApprovedIntent, error) {
	if intent.Action == strategy.Hold {
		return ApprovedIntent{Intent: intent, Reason: "hold"}, nil
	}

	if ctx.KillSwitch {
		g.reject(intent, "kill_switch_enabled")
		return ApprovedIntent{}, fmt.Errorf("kill_switch_enabled")
	}
	if !intent.Qty.IsPositive() {
		g.reject(intent, "invalid_quantity")
		return ApprovedIntent{}, fmt.Errorf("invalid_quantity")
	}
	if intent.Action == strategy.Sell {
		if !ctx.HeldQty.IsPositive() {
			g.reject(intent, "no_position_to_sell")
			return ApprovedIntent{}, fmt.Errorf("no_position_to_sell")
		}
		if intent.Qty.GreaterThan(ctx.HeldQty) {
			g.reject(intent, "sell_exceeds_position")
			return ApprovedIntent{}, fmt.Errorf("sell_exceeds_position")
		}
	}

	g.Log.Debug().Str("symbol", intent.Symbol).Str("intent", string(intent.Action)).Str("qty", intent.Qty.String()).
		Str("reason", intent.Reason).Msg("risk approved")
	return ApprovedIntent{Intent: intent, Reason: "approved"}, nil
}

func (g Gate) reject(intent strategy.Signal, reason string) {
	g.Log.Info().Str("symbol", intent.Symbol).Str("intent", string(intent.Action)).Str("qty", intent.Qty.String()).
		Str("reason", reason).Msg("risk rejected")
}
