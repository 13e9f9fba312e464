package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/risk"
	"reversalbot/internal/strategy"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestExecutor(b OrderSubmitter, opts ExecutorOptions) (*Executor, *[]time.Duration) {
	x := NewExecutor(b, risk.Gate{Log: zerolog.Nop()}, opts, zerolog.Nop())
	var waits []time.Duration
	x.wait = func(ctx context.Context, delay time.Duration) error {
		waits = append(waits, delay)
		return nil
	}
	return x, &waits
}

func TestExecuteSkipsSellWithoutPosition(t *testing.T) {
	b := &fakeBroker{}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 10})

	outcomes := x.Execute(context.Background(), nil, []string{"GONE"}, Snapshot{RunID: "run"})

	if len(b.submitted) != 0 {
		t.Fatalf("expected no submissions, got %v", b.submittedSymbols())
	}
	if len(outcomes) != 1 || outcomes[0].Result != ResultSkipped || outcomes[0].Reason != "no_matching_position" {
		t.Fatalf("expected one skipped outcome, got %+v", outcomes)
	}
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	b := &fakeBroker{errs: map[string][]error{
		"X": {&broker.RejectedError{StatusCode: 403, Reason: "insufficient buying power"}},
		"Y": {errors.New("connection reset")},
	}}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 10, MaxRetries: 3})

	outcomes := x.Execute(context.Background(), []string{"X", "Y", "Z"}, nil, Snapshot{RunID: "run"})

	if !reflect.DeepEqual(b.submittedSymbols(), []string{"X", "Y", "Z"}) {
		t.Fatalf("expected submissions for X, Y, Z, got %v", b.submittedSymbols())
	}
	results := []string{outcomes[0].Result, outcomes[1].Result, outcomes[2].Result}
	if !reflect.DeepEqual(results, []string{ResultFailed, ResultFailed, ResultSubmitted}) {
		t.Fatalf("unexpected results %v", results)
	}
	if outcomes[0].Reason != "insufficient buying power" || outcomes[0].Attempts != 1 {
		t.Fatalf("rejection should not be retried: %+v", outcomes[0])
	}
	if outcomes[1].Attempts != 1 {
		t.Fatalf("transport error should not be retried: %+v", outcomes[1])
	}
}

func TestExecuteBuildsMarketGTCOrders(t *testing.T) {
	b := &fakeBroker{}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 10})
	snap := Snapshot{RunID: "run", Positions: []broker.Position{heldPosition("MSFT", 7, "100", "106")}}

	outcomes := x.Execute(context.Background(), []string{"AAPL"}, []string{"MSFT"}, snap)

	if len(b.submitted) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(b.submitted))
	}
	buy, sell := b.submitted[0], b.submitted[1]
	if buy.Side != alpaca.Buy || !buy.Qty.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected buy %+v", buy)
	}
	if sell.Side != alpaca.Sell || !sell.Qty.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("sell should liquidate the full position, got %+v", sell)
	}
	for _, req := range b.submitted {
		if req.Type != alpaca.Market || req.TimeInForce != alpaca.GTC {
			t.Fatalf("expected market/gtc, got %s/%s", req.Type, req.TimeInForce)
		}
	}
	if buy.ClientOrderID != "run-1" || sell.ClientOrderID != "run-2" {
		t.Fatalf("unexpected client order ids %q %q", buy.ClientOrderID, sell.ClientOrderID)
	}
	if outcomes[1].Side != strategy.Sell || outcomes[1].OrderID != "order-MSFT" {
		t.Fatalf("unexpected sell outcome %+v", outcomes[1])
	}
}

func TestExecuteRetriesThrottledOrders(t *testing.T) {
	b := &fakeBroker{errs: map[string][]error{
		"AAPL": {&broker.ThrottledError{}, &broker.ThrottledError{}},
	}}
	x, waits := newTestExecutor(b, ExecutorOptions{BuyQty: 1, MaxRetries: 3, Backoff: time.Second})

	outcomes := x.Execute(context.Background(), []string{"AAPL"}, nil, Snapshot{RunID: "run"})

	if outcomes[0].Result != ResultSubmitted || outcomes[0].Attempts != 3 {
		t.Fatalf("expected submit on third attempt, got %+v", outcomes[0])
	}
	if !reflect.DeepEqual(*waits, []time.Duration{time.Second, 2 * time.Second}) {
		t.Fatalf("expected exponential backoff, got %v", *waits)
	}
}

func TestExecuteHonorsRetryAfter(t *testing.T) {
	b := &fakeBroker{errs: map[string][]error{
		"AAPL": {&broker.ThrottledError{RetryAfter: 7 * time.Second}},
	}}
	x, waits := newTestExecutor(b, ExecutorOptions{BuyQty: 1, MaxRetries: 1, Backoff: time.Second})

	x.Execute(context.Background(), []string{"AAPL"}, nil, Snapshot{RunID: "run"})

	if !reflect.DeepEqual(*waits, []time.Duration{7 * time.Second}) {
		t.Fatalf("expected retry-after delay, got %v", *waits)
	}
}

func TestExecuteGivesUpAfterMaxRetries(t *testing.T) {
	throttled := &broker.ThrottledError{}
	b := &fakeBroker{errs: map[string][]error{
		"AAPL": {throttled, throttled, throttled, throttled},
	}}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 1, MaxRetries: 2})

	outcomes := x.Execute(context.Background(), []string{"AAPL", "MSFT"}, nil, Snapshot{RunID: "run"})

	if outcomes[0].Result != ResultFailed || outcomes[0].Attempts != 3 {
		t.Fatalf("expected failure after 3 attempts, got %+v", outcomes[0])
	}
	if outcomes[1].Result != ResultSubmitted {
		t.Fatalf("next order should still be submitted, got %+v", outcomes[1])
	}
}

func TestExecuteDryRunSubmitsNothing(t *testing.T) {
	b := &fakeBroker{}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 10, DryRun: true})
	snap := Snapshot{RunID: "run", Positions: []broker.Position{heldPosition("MSFT", 2, "100", "90")}}

	outcomes := x.Execute(context.Background(), []string{"AAPL"}, []string{"MSFT"}, snap)

	if len(b.submitted) != 0 {
		t.Fatalf("dry run submitted %v", b.submittedSymbols())
	}
	for _, o := range outcomes {
		if o.Result != ResultDryRun {
			t.Fatalf("expected dry_run outcome, got %+v", o)
		}
	}
}

func TestExecuteKillSwitchSkipsOrders(t *testing.T) {
	b := &fakeBroker{}
	x, _ := newTestExecutor(b, ExecutorOptions{BuyQty: 10, KillSwitch: true})

	outcomes := x.Execute(context.Background(), []string{"AAPL"}, nil, Snapshot{RunID: "run"})

	if len(b.submitted) != 0 || outcomes[0].Result != ResultSkipped || outcomes[0].Reason != "kill_switch_enabled" {
		t.Fatalf("expected kill switch skip, got %+v", outcomes)
	}
}
