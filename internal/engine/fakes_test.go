package engine

import (
	"context"
	"sync"
	"time"

	"reversalbot/internal/broker"
	"reversalbot/internal/md"

	"github.com/shopspring/decimal"
)

type fakeBars struct {
	mu    sync.Mutex
	bars  map[string][]md.Bar
	errs  map[string]error
	calls []string
}

func (f *fakeBars) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]md.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.bars[symbol], nil
}

func (f *fakeBars) called(symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == symbol {
			return true
		}
	}
	return false
}

type fakeBroker struct {
	account    broker.Account
	accountErr error
	positions  []broker.Position
	posErr     error
	// errs holds a queue of errors per symbol, consumed one per submission.
	errs      map[string][]error
	submitted []broker.OrderRequest
}

func (f *fakeBroker) Account(ctx context.Context) (broker.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeBroker) Positions(ctx context.Context) ([]broker.Position, error) {
	return f.positions, f.posErr
}

func (f *fakeBroker) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderConfirmation, error) {
	f.submitted = append(f.submitted, req)
	if queue := f.errs[req.Symbol]; len(queue) > 0 {
		err := queue[0]
		f.errs[req.Symbol] = queue[1:]
		if err != nil {
			return broker.OrderConfirmation{}, err
		}
	}
	return broker.OrderConfirmation{ID: "order-" + req.Symbol, ClientOrderID: req.ClientOrderID, Status: "accepted"}, nil
}

func (f *fakeBroker) submittedSymbols() []string {
	out := make([]string, 0, len(f.submitted))
	for _, req := range f.submitted {
		out = append(out, req.Symbol)
	}
	return out
}

// reversalBars builds a year of bars that triggers a buy: down over the year,
// flat since, up 6% on the last session.
func reversalBars(symbol string) []md.Bar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]md.Bar, 253)
	for i := range bars {
		c := 100.0
		switch i {
		case 0:
			c = 200
		case len(bars) - 1:
			c = 106
		}
		bars[i] = md.Bar{Symbol: symbol, Timestamp: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func flatBars(symbol string) []md.Bar {
	bars := reversalBars(symbol)
	bars[len(bars)-1].Close = 100
	return bars
}

func heldPosition(symbol string, qty int64, entry, current string) broker.Position {
	return broker.Position{
		Symbol:        symbol,
		Qty:           decimal.NewFromInt(qty),
		AvgEntryPrice: decimal.RequireFromString(entry),
		CurrentPrice:  decimal.RequireFromString(current),
	}
}
