package md

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
)

// ErrDataUnavailable means the provider returned no bars for the requested
// window. Callers treat it as a per-symbol skip, not a failure.
var ErrDataUnavailable = errors.New("data unavailable")

type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    uint64
}

type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Client pulls daily bars from the Alpaca historical data API.
type Client struct {
	client barsGetter
	feed   marketdata.Feed
	log    zerolog.Logger
}

func New(apiKey, apiSecret, feed string, logger zerolog.Logger) *Client {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	return &Client{
		client: marketdata.NewClient(opts),
		feed:   parseFeed(feed),
		log:    logger.With().Str("component", "md").Logger(),
	}
}

// DailyBars returns one bar per trading day in [start, end], oldest first.
func (c *Client) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := c.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        end,
		Adjustment: marketdata.Split,
		Feed:       c.feed,
	})
	if err != nil {
		c.log.Debug().Str("symbol", symbol).Err(err).Msg("fetch bars failed")
		return nil, fmt.Errorf("get bars %s: %w", symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}

	bars := make([]Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, Bar{
			Symbol:    symbol,
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}
	c.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("bars fetched")
	return bars, nil
}

// Closes extracts the close series in bar order.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func parseFeed(feed string) marketdata.Feed {
	switch feed {
	case "iex":
		return marketdata.IEX
	case "sip":
		return marketdata.SIP
	default:
		return marketdata.IEX
	}
}
