package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/metrics"
	"reversalbot/internal/state"
	"reversalbot/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrTradingBlocked is recorded when the account refuses trading. Evaluation
// still runs but no order is submitted.
var ErrTradingBlocked = errors.New("account is restricted from trading")

type Broker interface {
	OrderSubmitter
	Account(ctx context.Context) (broker.Account, error)
	Positions(ctx context.Context) ([]broker.Position, error)
}

type Report struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Evaluated      int
	Buys           []string
	Sells          []string
	Skips          []Skip
	Outcomes       []OrderOutcome
	TradingBlocked bool
	BuyingPower    decimal.Decimal
	// OrdersAborted is set when the order phase did not run; AbortReason says why.
	OrdersAborted bool
	AbortReason   string
	FetchErr      error
}

func (r Report) count(result string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == result {
			n++
		}
	}
	return n
}

func (r Report) Submitted() int { return r.count(ResultSubmitted) }
func (r Report) Failed() int    { return r.count(ResultFailed) }

// Skipped counts symbols skipped during evaluation and orders skipped during
// execution.
func (r Report) Skipped() int { return len(r.Skips) + r.count(ResultSkipped) }

type Cycle struct {
	broker   Broker
	engine   *Engine
	executor *Executor
	universe []string
	journal  *DecisionLogger
	store    *state.Store
	log      zerolog.Logger
}

// NewCycle wires one full evaluation and execution pass. journal and store
// may be nil.
func NewCycle(b Broker, e *Engine, x *Executor, universe []string, journal *DecisionLogger, store *state.Store, logger zerolog.Logger) *Cycle {
	return &Cycle{
		broker:   b,
		engine:   e,
		executor: x,
		universe: universe,
		journal:  journal,
		store:    store,
		log:      logger.With().Str("component", "cycle").Logger(),
	}
}

// Run executes one cycle. It only returns an error when the position snapshot
// cannot be taken; every per-symbol and per-order failure lands in the report.
func (c *Cycle) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := c.log.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("universe", len(c.universe)).Msg("cycle started")

	acct, err := c.broker.Account(ctx)
	switch {
	case err != nil:
		report.OrdersAborted = true
		report.AbortReason = err.Error()
		log.Error().Err(err).Msg("account unavailable, order phase disabled")
	case acct.TradingBlocked:
		report.TradingBlocked = true
		report.OrdersAborted = true
		report.AbortReason = ErrTradingBlocked.Error()
		log.Warn().Msg("account is currently restricted from trading")
	default:
		log.Info().Str("buying_power", acct.BuyingPower.String()).Msg("buying power available")
	}
	report.BuyingPower = acct.BuyingPower

	positions, err := c.broker.Positions(ctx)
	if err != nil {
		err = fmt.Errorf("fetch positions: %w", err)
		c.finish(log, &report, err)
		return report, err
	}
	snap := Snapshot{RunID: report.RunID, TakenAt: time.Now().UTC(), Account: acct, Positions: positions}
	for _, p := range positions {
		log.Info().Str("symbol", p.Symbol).Str("qty", p.Qty.String()).Str("avg_entry", p.AvgEntryPrice.String()).
			Str("current", p.CurrentPrice.String()).Msg("held position")
	}

	decision := c.engine.Evaluate(ctx, c.universe, snap)
	report.Evaluated = decision.Evaluated
	report.Buys = decision.Buys
	report.Sells = decision.Sells
	report.Skips = decision.Skips
	report.FetchErr = decision.FetchErr

	if report.OrdersAborted {
		log.Warn().Str("reason", report.AbortReason).Int("buys", len(report.Buys)).Int("sells", len(report.Sells)).
			Msg("order phase aborted")
	} else {
		report.Outcomes = c.executor.Execute(ctx, decision.Buys, decision.Sells, snap)
	}

	c.finish(log, &report, nil)
	return report, nil
}

func (c *Cycle) finish(log zerolog.Logger, report *Report, cycleErr error) {
	report.FinishedAt = time.Now().UTC()

	event := log.Info()
	if cycleErr != nil {
		event = log.Error().Err(cycleErr)
	}
	event.Int("evaluated", report.Evaluated).
		Int("buys", len(report.Buys)).
		Int("sells", len(report.Sells)).
		Int("skipped", report.Skipped()).
		Int("submitted", report.Submitted()).
		Int("failed", report.Failed()).
		Bool("orders_aborted", report.OrdersAborted).
		AnErr("fetch_errors", report.FetchErr).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("cycle summary")

	c.record(*report, cycleErr)
	c.journalReport(*report)
	if c.store != nil {
		summary := state.CycleSummary{
			RunID:          report.RunID,
			StartedAt:      report.StartedAt,
			FinishedAt:     report.FinishedAt,
			Evaluated:      report.Evaluated,
			Buys:           report.Buys,
			Sells:          report.Sells,
			Skipped:        report.Skipped(),
			Submitted:      report.Submitted(),
			Failed:         report.Failed(),
			TradingBlocked: report.TradingBlocked,
			BuyingPower:    report.BuyingPower.String(),
		}
		if cycleErr != nil {
			summary.Error = cycleErr.Error()
		}
		c.store.RecordCycle(summary)
	}
}

func (c *Cycle) record(report Report, cycleErr error) {
	result := "ok"
	if cycleErr != nil {
		result = "error"
	}
	metrics.CyclesTotal.WithLabelValues(result).Inc()
	metrics.CycleDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	metrics.SymbolsEvaluatedTotal.Add(float64(report.Evaluated))
	metrics.SignalsTotal.WithLabelValues("buy").Add(float64(len(report.Buys)))
	metrics.SignalsTotal.WithLabelValues("sell").Add(float64(len(report.Sells)))
	for _, s := range report.Skips {
		metrics.SkipsTotal.WithLabelValues(s.Reason).Inc()
	}
	for _, o := range report.Outcomes {
		metrics.OrdersTotal.WithLabelValues(string(o.Side), o.Result).Inc()
	}
}

func (c *Cycle) journalReport(report Report) {
	if c.journal == nil {
		return
	}
	now := time.Now().UTC()
	for _, s := range report.Skips {
		c.journal.Append(JournalEntry{RunID: report.RunID, Timestamp: now, Symbol: s.Symbol, Result: ResultSkipped, Reason: s.Reason})
	}
	if report.OrdersAborted {
		for _, symbol := range report.Buys {
			c.journal.Append(JournalEntry{RunID: report.RunID, Timestamp: now, Symbol: symbol, Intent: strategy.Buy, Result: "aborted", Reason: report.AbortReason})
		}
		for _, symbol := range report.Sells {
			c.journal.Append(JournalEntry{RunID: report.RunID, Timestamp: now, Symbol: symbol, Intent: strategy.Sell, Result: "aborted", Reason: report.AbortReason})
		}
		return
	}
	for _, o := range report.Outcomes {
		c.journal.Append(JournalEntry{
			RunID:         report.RunID,
			Timestamp:     now,
			Symbol:        o.Symbol,
			Intent:        o.Side,
			Qty:           o.Qty.String(),
			Result:        o.Result,
			Reason:        o.Reason,
			OrderID:       o.OrderID,
			ClientOrderID: o.ClientOrderID,
			Attempts:      o.Attempts,
		})
	}
}
