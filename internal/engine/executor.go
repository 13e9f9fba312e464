package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/risk"
	"reversalbot/internal/strategy"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	ResultSubmitted = "submitted"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
	ResultDryRun    = "dry_run"
)

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderConfirmation, error)
}

type OrderOutcome struct {
	Symbol        string          `json:"symbol"`
	Side          strategy.Action `json:"side"`
	Qty           decimal.Decimal `json:"qty"`
	Result        string          `json:"result"`
	OrderID       string          `json:"order_id,omitempty"`
	ClientOrderID string          `json:"client_order_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Attempts      int             `json:"attempts"`
}

type ExecutorOptions struct {
	BuyQty     int
	MaxRetries int
	Backoff    time.Duration
	DryRun     bool
	KillSwitch bool
}

// Executor turns buy and sell lists into market GTC orders, one at a time.
type Executor struct {
	broker OrderSubmitter
	gate   risk.Gate
	opts   ExecutorOptions
	wait   func(ctx context.Context, delay time.Duration) error
	log    zerolog.Logger
}

func NewExecutor(submitter OrderSubmitter, gate risk.Gate, opts ExecutorOptions, logger zerolog.Logger) *Executor {
	return &Executor{
		broker: submitter,
		gate:   gate,
		opts:   opts,
		wait:   broker.WaitForContext,
		log:    logger.With().Str("component", "executor").Logger(),
	}
}

// Execute submits every buy, then every sell. A failure on one order is
// recorded and the batch continues.
func (e *Executor) Execute(ctx context.Context, buys, sells []string, snap Snapshot) []OrderOutcome {
	outcomes := make([]OrderOutcome, 0, len(buys)+len(sells))
	seq := 0
	nextID := func() string {
		seq++
		return fmt.Sprintf("%s-%d", snap.RunID, seq)
	}

	buyQty := decimal.NewFromInt(int64(e.opts.BuyQty))
	for _, symbol := range buys {
		intent := strategy.Signal{Action: strategy.Buy, Symbol: symbol, Qty: buyQty, Reason: "entry"}
		outcomes = append(outcomes, e.place(ctx, intent, decimal.Zero, nextID))
	}

	for _, symbol := range sells {
		pos := snap.Position(symbol)
		if pos == nil {
			e.log.Warn().Str("symbol", symbol).Str("reason", "no_matching_position").Msg("sell skipped")
			outcomes = append(outcomes, OrderOutcome{
				Symbol: symbol,
				Side:   strategy.Sell,
				Result: ResultSkipped,
				Reason: "no_matching_position",
			})
			continue
		}
		intent := strategy.Signal{Action: strategy.Sell, Symbol: symbol, Qty: pos.Qty, Reason: "exit"}
		outcomes = append(outcomes, e.place(ctx, intent, pos.Qty, nextID))
	}
	return outcomes
}

func (e *Executor) place(ctx context.Context, intent strategy.Signal, heldQty decimal.Decimal, nextID func() string) OrderOutcome {
	outcome := OrderOutcome{Symbol: intent.Symbol, Side: intent.Action, Qty: intent.Qty}

	approved, err := e.gate.Evaluate(intent, risk.RiskContext{KillSwitch: e.opts.KillSwitch, HeldQty: heldQty})
	if err != nil {
		outcome.Result = ResultSkipped
		outcome.Reason = err.Error()
		return outcome
	}

	req := buildOrder(approved.Intent, nextID())
	outcome.ClientOrderID = req.ClientOrderID

	if e.opts.DryRun {
		outcome.Result = ResultDryRun
		e.log.Info().Str("symbol", req.Symbol).Str("side", string(req.Side)).Str("qty", req.Qty.String()).Msg("dry run, order not placed")
		return outcome
	}

	conf, attempts, err := e.submitWithRetry(ctx, req)
	outcome.Attempts = attempts
	if err != nil {
		outcome.Result = ResultFailed
		outcome.Reason = failureReason(err)
		e.log.Error().Str("symbol", req.Symbol).Str("side", string(req.Side)).Int("attempts", attempts).
			Str("reason", outcome.Reason).Msg("order failed")
		return outcome
	}

	outcome.Result = ResultSubmitted
	outcome.OrderID = conf.ID
	e.log.Info().Str("symbol", req.Symbol).Str("side", string(req.Side)).Str("qty", req.Qty.String()).
		Str("order_id", conf.ID).Str("client_order_id", req.ClientOrderID).Msg("order submitted")
	return outcome
}

// submitWithRetry retries throttled submissions only, at most MaxRetries
// times. It returns the number of attempts made.
func (e *Executor) submitWithRetry(ctx context.Context, req broker.OrderRequest) (broker.OrderConfirmation, int, error) {
	for attempt := 1; ; attempt++ {
		conf, err := e.broker.SubmitOrder(ctx, req)
		if err == nil {
			return conf, attempt, nil
		}
		var throttled *broker.ThrottledError
		if !errors.As(err, &throttled) || attempt > e.opts.MaxRetries {
			return broker.OrderConfirmation{}, attempt, err
		}

		delay := throttled.RetryAfter
		if delay <= 0 {
			delay = e.opts.Backoff << (attempt - 1)
		}
		e.log.Warn().Str("symbol", req.Symbol).Int("attempt", attempt).Dur("delay", delay).Msg("order throttled, backing off")
		if err := e.wait(ctx, delay); err != nil {
			return broker.OrderConfirmation{}, attempt, err
		}
	}
}

func buildOrder(intent strategy.Signal, clientOrderID string) broker.OrderRequest {
	side := alpaca.Buy
	if intent.Action == strategy.Sell {
		side = alpaca.Sell
	}
	return broker.OrderRequest{
		Symbol:        intent.Symbol,
		Qty:           intent.Qty,
		Side:          side,
		Type:          alpaca.Market,
		TimeInForce:   alpaca.GTC,
		ClientOrderID: clientOrderID,
	}
}

func failureReason(err error) string {
	var rejected *broker.RejectedError
	if errors.As(err, &rejected) && rejected.Reason != "" {
		return rejected.Reason
	}
	return err.Error()
}
