package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/md"
	"reversalbot/internal/strategy"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type BarSource interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]md.Bar, error)
}

// Snapshot is the account and position state taken once at cycle start. It is
// never refreshed or mutated during the cycle.
type Snapshot struct {
	RunID     string
	TakenAt   time.Time
	Account   broker.Account
	Positions []broker.Position
}

// Position returns a copy of the held position for symbol, or nil.
func (s Snapshot) Position(symbol string) *broker.Position {
	for _, p := range s.Positions {
		if p.Symbol == symbol {
			pos := p
			return &pos
		}
	}
	return nil
}

func (s Snapshot) heldSymbols() map[string]struct{} {
	held := make(map[string]struct{}, len(s.Positions))
	for _, p := range s.Positions {
		held[p.Symbol] = struct{}{}
	}
	return held
}

type Skip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

type Decision struct {
	Evaluated int
	Buys      []string
	Sells     []string
	Skips     []Skip
	// FetchErr aggregates fetch failures other than missing data.
	FetchErr error
}

type Engine struct {
	bars       BarSource
	exit       strategy.ExitRule
	windowDays int
	workers    int
	now        func() time.Time
	log        zerolog.Logger
}

func New(bars BarSource, exit strategy.ExitRule, windowDays, workers int, logger zerolog.Logger) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		bars:       bars,
		exit:       exit,
		windowDays: windowDays,
		workers:    workers,
		now:        time.Now,
		log:        logger.With().Str("component", "engine").Logger(),
	}
}

// Candidates returns the universe in input order, without duplicates and
// without symbols already held.
func Candidates(universe []string, snap Snapshot) []string {
	held := snap.heldSymbols()
	seen := make(map[string]struct{}, len(universe))
	out := make([]string, 0, len(universe))
	for _, symbol := range universe {
		if _, ok := held[symbol]; ok {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	return out
}

type evalResult struct {
	signal strategy.Signal
	err    error
}

// Evaluate splits the universe and the held positions into buy and sell lists.
// A symbol whose bars cannot be fetched is skipped; it never aborts the cycle.
func (e *Engine) Evaluate(ctx context.Context, universe []string, snap Snapshot) Decision {
	candidates := Candidates(universe, snap)
	end := e.now()
	start := end.AddDate(0, 0, -e.windowDays)

	results := make([]evalResult, len(candidates))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, symbol := range candidates {
		i, symbol := i, symbol
		g.Go(func() error {
			bars, err := e.bars.DailyBars(ctx, symbol, start, end)
			if err != nil {
				results[i] = evalResult{err: err}
				return nil
			}
			results[i] = evalResult{signal: strategy.EvaluatePerformance(symbol, bars)}
			return nil
		})
	}
	_ = g.Wait()

	decision := Decision{
		Evaluated: len(candidates),
		Buys:      []string{},
		Sells:     []string{},
	}
	for i, symbol := range candidates {
		res := results[i]
		switch {
		case res.err != nil && errors.Is(res.err, md.ErrDataUnavailable):
			e.skip(&decision, symbol, "data_unavailable", res.err)
		case res.err != nil:
			decision.FetchErr = multierr.Append(decision.FetchErr, res.err)
			e.skip(&decision, symbol, "fetch_failed", res.err)
		case res.signal.Reason == "no_data":
			e.skip(&decision, symbol, "data_unavailable", nil)
		case res.signal.Action == strategy.Buy:
			decision.Buys = append(decision.Buys, symbol)
			e.log.Info().Str("symbol", symbol).Str("reason", res.signal.Reason).Msg("meets the criteria for buying")
		default:
			e.log.Debug().Str("symbol", symbol).Str("reason", res.signal.Reason).Msg("no entry signal")
		}
	}

	for _, p := range snap.Positions {
		pos := p
		sig := e.exit.Evaluate(&pos)
		if sig.Action != strategy.Sell {
			e.log.Debug().Str("symbol", pos.Symbol).Str("reason", sig.Reason).Msg("holding position")
			continue
		}
		decision.Sells = append(decision.Sells, pos.Symbol)
		e.log.Info().Str("symbol", pos.Symbol).Str("reason", sig.Reason).Msg("meets the criteria for selling")
	}

	if len(decision.Buys) == 0 {
		e.log.Info().Msg("no assets meet the criteria for purchase today")
	} else {
		e.log.Info().Str("symbols", strings.Join(decision.Buys, ",")).Msg("eligible assets for purchase today")
	}
	if len(decision.Sells) == 0 {
		e.log.Info().Msg("no assets in the portfolio meet the criteria for selling")
	} else {
		e.log.Info().Str("symbols", strings.Join(decision.Sells, ",")).Msg("eligible assets for selling today")
	}
	return decision
}

func (e *Engine) skip(decision *Decision, symbol, reason string, err error) {
	decision.Skips = append(decision.Skips, Skip{Symbol: symbol, Reason: reason})
	e.log.Warn().Str("symbol", symbol).Str("reason", reason).AnErr("error", err).Msg("symbol skipped")
}
