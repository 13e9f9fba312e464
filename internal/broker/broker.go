package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type OrderRequest struct {
	Symbol        string
	Qty           decimal.Decimal
	Side          alpaca.Side
	Type          alpaca.OrderType
	TimeInForce   alpaca.TimeInForce
	ClientOrderID string
}

type OrderConfirmation struct {
	ID            string
	ClientOrderID string
	Status        string
}

type Position struct {
	Symbol        string
	Qty           decimal.Decimal
	AvgEntryPrice decimal.Decimal
	CurrentPrice  decimal.Decimal
}

type Account struct {
	TradingBlocked bool
	BuyingPower    decimal.Decimal
	Equity         decimal.Decimal
}

// RejectedError is a business rejection from the broker. It is never retried.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.StatusCode, e.Reason)
}

// ThrottledError means the broker asked us to slow down. RetryAfter is zero
// when the broker did not say how long to wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("throttled, retry after %s", e.RetryAfter)
	}
	return "throttled"
}

type tradingAPI interface {
	GetAccount() (*alpaca.Account, error)
	GetPositions() ([]alpaca.Position, error)
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
}

type Client struct {
	client  tradingAPI
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New builds a client against baseURL. Order submissions are paced to at most
// ordersPerSecond; a non-positive value disables pacing.
func New(apiKey, apiSecret, baseURL string, ordersPerSecond float64, logger zerolog.Logger) *Client {
	opts := alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	}
	return newClient(alpaca.NewClient(opts), ordersPerSecond, logger)
}

func newClient(api tradingAPI, ordersPerSecond float64, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if ordersPerSecond > 0 {
		limit = rate.Limit(ordersPerSecond)
	}
	return &Client{
		client:  api,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.With().Str("component", "broker").Logger(),
	}
}

func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (OrderConfirmation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return OrderConfirmation{}, err
	}

	qty := req.Qty
	order, err := c.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          req.Side,
		Type:          req.Type,
		TimeInForce:   req.TimeInForce,
		ClientOrderID: req.ClientOrderID,
	})
	if err != nil {
		err = classify(err)
		c.log.Error().Str("side", string(req.Side)).Str("symbol", req.Symbol).Str("qty", req.Qty.String()).Err(err).Msg("place order failed")
		return OrderConfirmation{}, err
	}

	c.log.Info().Str("order_id", order.ID).Str("side", string(req.Side)).Str("symbol", req.Symbol).
		Str("qty", req.Qty.String()).Str("status", string(order.Status)).Msg("place order success")
	return OrderConfirmation{
		ID:            order.ID,
		ClientOrderID: order.ClientOrderID,
		Status:        string(order.Status),
	}, nil
}

func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := c.client.GetPositions()
	if err != nil {
		c.log.Error().Err(err).Msg("fetch positions failed")
		return nil, fmt.Errorf("get positions: %w", err)
	}

	positions := make([]Position, 0, len(raw))
	for _, p := range raw {
		pos := Position{
			Symbol:        p.Symbol,
			Qty:           p.Qty,
			AvgEntryPrice: p.AvgEntryPrice,
		}
		if p.CurrentPrice != nil {
			pos.CurrentPrice = *p.CurrentPrice
		} else {
			c.log.Warn().Str("symbol", p.Symbol).Msg("position has no current price")
		}
		positions = append(positions, pos)
	}
	c.log.Info().Int("count", len(positions)).Msg("positions fetched")
	return positions, nil
}

func (c *Client) Account(ctx context.Context) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	acct, err := c.client.GetAccount()
	if err != nil {
		c.log.Error().Err(err).Msg("fetch account failed")
		return Account{}, fmt.Errorf("get account: %w", err)
	}

	c.log.Info().Bool("trading_blocked", acct.TradingBlocked).Str("buying_power", acct.BuyingPower.String()).
		Str("equity", acct.Equity.String()).Msg("account fetched")
	return Account{
		TradingBlocked: acct.TradingBlocked,
		BuyingPower:    acct.BuyingPower,
		Equity:         acct.Equity,
	}, nil
}

// classify maps Alpaca API errors onto RejectedError and ThrottledError.
// Transport errors pass through unchanged.
func classify(err error) error {
	var apiErr *alpaca.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return &ThrottledError{}
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return &RejectedError{StatusCode: apiErr.StatusCode, Reason: apiErr.Message}
	default:
		return err
	}
}

func WaitForContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
