package risk

import (
	"testing"

	"reversalbot/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestGateRejectsKillSwitch(t *testing.T) {
	gate := Gate{Log: zerolog.Nop()}
	intent := strategy.Signal{Action: strategy.Buy, Symbol: "AAPL", Qty: decimal.NewFromInt(10)}

	if _, err := gate.Evaluate(intent, RiskContext{KillSwitch: true}); err == nil {
		t.Fatalf("expected kill switch rejection")
	}
}

func TestGateRejectsInvalidQuantity(t *testing.T) {
	gate := Gate{Log: zerolog.Nop()}
	intent := strategy.Signal{Action: strategy.Sell, Symbol: "AAPL", Qty: decimal.Zero}

	if _, err := gate.Evaluate(intent, RiskContext{HeldQty: decimal.NewFromInt(5)}); err == nil {
		t.Fatalf("expected invalid quantity rejection")
	}
}

func TestGateRejectsOversell(t *testing.T) {
	gate := Gate{Log: zerolog.Nop()}
	intent := strategy.Signal{Action: strategy.Sell, Symbol: "AAPL", Qty: decimal.NewFromInt(6)}

	if _, err := gate.Evaluate(intent, RiskContext{HeldQty: decimal.NewFromInt(5)}); err == nil {
		t.Fatalf("expected oversell rejection")
	}
	if _, err := gate.Evaluate(intent, RiskContext{}); err == nil {
		t.Fatalf("expected no position rejection")
	}
}

func TestGateApprovesValidOrders(t *testing.T) {
	gate := Gate{Log: zerolog.Nop()}
	buy := strategy.Signal{Action: strategy.Buy, Symbol: "AAPL", Qty: decimal.NewFromInt(10)}
	sell := strategy.Signal{Action: strategy.Sell, Symbol: "MSFT", Qty: decimal.RequireFromString("2.5")}

	if _, err := gate.Evaluate(buy, RiskContext{}); err != nil {
		t.Fatalf("expected buy approval, got %v", err)
	}
	approved, err := gate.Evaluate(sell, RiskContext{HeldQty: decimal.RequireFromString("2.5")})
	if err != nil {
		t.Fatalf("expected sell approval, got %v", err)
	}
	if approved.Reason != "approved" {
		t.Fatalf("expected approved reason, got %q", approved.Reason)
	}
}
