package strategy

import (
	"reversalbot/internal/md"

	"github.com/markcheno/go-talib"
)

// Lookbacks in trading days.
const (
	LookbackDay     = 1
	LookbackWeek    = 5
	LookbackMonth   = 21
	LookbackQuarter = 63
	LookbackYear    = 252
)

// DailyJumpThreshold is the minimum latest-session return for a buy.
const DailyJumpThreshold = 0.05

// Return is a fractional price change. It is only meaningful when Valid is set;
// all comparisons on an invalid Return report false.
type Return struct {
	Value float64
	Valid bool
}

func (r Return) AtLeast(x float64) bool { return r.Valid && r.Value >= x }
func (r Return) Above(x float64) bool   { return r.Valid && r.Value > x }
func (r Return) Below(x float64) bool   { return r.Valid && r.Value < x }

type ReturnSet struct {
	Daily   Return
	Week    Return
	Month   Return
	Quarter Return
	Year    Return
}

// ComputeReturns anchors every lookback at the last close.
func ComputeReturns(closes []float64) ReturnSet {
	return ReturnSet{
		Daily:   lookbackReturn(closes, LookbackDay),
		Week:    lookbackReturn(closes, LookbackWeek),
		Month:   lookbackReturn(closes, LookbackMonth),
		Quarter: lookbackReturn(closes, LookbackQuarter),
		Year:    lookbackReturn(closes, LookbackYear),
	}
}

func lookbackReturn(closes []float64, lookback int) Return {
	if len(closes) <= lookback {
		return Return{}
	}
	// Rocp reports 0 for a zero base, which would read as a real flat return.
	if closes[len(closes)-1-lookback] == 0 {
		return Return{}
	}
	// Only the tail matters; feed talib the minimal window.
	window := closes[len(closes)-1-lookback:]
	out := talib.Rocp(window, lookback)
	return Return{Value: out[len(out)-1], Valid: true}
}

// EvaluatePerformance looks for a stock that is down over the trailing year
// but up over the quarter, month and week, and jumped at least 5% in the
// latest session.
func EvaluatePerformance(symbol string, bars []md.Bar) Signal {
	if len(bars) == 0 {
		return hold(symbol, "no_data")
	}

	r := ComputeReturns(md.Closes(bars))
	if !r.Year.Valid {
		return hold(symbol, "insufficient_history")
	}
	if !r.Daily.AtLeast(DailyJumpThreshold) {
		return hold(symbol, "no_daily_jump")
	}
	if r.Year.Below(0) && r.Quarter.Above(0) && r.Month.Above(0) && r.Week.Above(0) {
		return Signal{Action: Buy, Symbol: symbol, Reason: "reversal_after_downtrend"}
	}
	return hold(symbol, "trend_filter")
}
