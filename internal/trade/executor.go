package trade

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/asyncstate"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// Status is the lifecycle position of the current order attempt.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusRejected   Status = "rejected"
)

// ErrSubmissionInProgress is returned when Submit is called while another order is in flight.
var ErrSubmissionInProgress = errors.New("an order is already being submitted")

// API is the subset of the backend client the executor needs.
type API interface {
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)
	SubmitTrade(ctx context.Context, req models.TradeRequest) (*models.TradeReceipt, error)
	GetPrice(ctx context.Context, ticker string) (*models.Quote, error)
	ClosePosition(ctx context.Context, ticker string) (*models.ClosePositionResult, error)
	Deposit(ctx context.Context, amount decimal.Decimal, method string) (*models.CashMovement, error)
	Withdraw(ctx context.Context, amount decimal.Decimal) (*models.CashMovement, error)
}

// Executor owns the portfolio snapshot and the order state machine
// Idle -> Validating -> Submitting -> {Succeeded, Rejected} -> Idle.
type Executor struct {
	api    API
	logger *common.Logger

	// Portfolio, Order, Quote and Cash expose {loading, error} per operation family.
	Portfolio *asyncstate.Tracker
	Order     *asyncstate.Tracker
	Quote     *asyncstate.Tracker
	Cash      *asyncstate.Tracker

	mu           sync.Mutex
	status       Status
	message      string
	snapshot     *models.Portfolio
	quote        *models.Quote
	onTransition func(Status)
}

// NewExecutor creates an Executor in the Idle state with no portfolio snapshot.
func NewExecutor(api API, logger *common.Logger) *Executor {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Executor{
		api:       api,
		logger:    logger,
		Portfolio: asyncstate.New(nil),
		Order:     asyncstate.New(nil),
		Quote:     asyncstate.New(nil),
		Cash:      asyncstate.New(nil),
		status:    StatusIdle,
	}
}

// OnTransition registers fn to observe every status change.
func (e *Executor) OnTransition(fn func(Status)) {
	e.mu.Lock()
	e.onTransition = fn
	e.mu.Unlock()
}

// Status returns the current order status and the last surfaced message.
func (e *Executor) Status() (Status, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.message
}

// Snapshot returns the last loaded portfolio, or nil.
func (e *Executor) Snapshot() *models.Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// CurrentQuote returns the last successful quote, or nil.
func (e *Executor) CurrentQuote() *models.Quote {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quote
}

func (e *Executor) transition(s Status, message string) {
	e.mu.Lock()
	e.status = s
	if message != "" {
		e.message = message
	}
	cb := e.onTransition
	e.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

// LoadPortfolio fetches a fresh snapshot. The client never patches it locally.
func (e *Executor) LoadPortfolio(ctx context.Context) (*models.Portfolio, error) {
	p, err := asyncstate.Run(ctx, e.Portfolio, e.api.GetPortfolio)
	if err != nil {
		e.logger.Warn().Str("error", err.Error()).Msg("Failed to load portfolio")
		return nil, err
	}
	e.mu.Lock()
	e.snapshot = p
	e.mu.Unlock()
	return p, nil
}

// Preview validates form against the current snapshot and computes its cost for display.
func (e *Executor) Preview(form OrderForm) (models.TradeRequest, Cost, error) {
	req, err := Validate(form, e.Snapshot())
	if err != nil {
		return models.TradeRequest{}, Cost{}, err
	}
	return req, ComputeCost(req.Side, req.Quantity, req.Price), nil
}

// Submit validates and sends one order. Validation failures never reach the network.
// Server rejections are surfaced verbatim and never retried. On success the portfolio
// is reloaded; a failed reload is recorded on the Portfolio tracker but does not fail the trade.
func (e *Executor) Submit(ctx context.Context, form OrderForm) (*models.TradeReceipt, error) {
	e.mu.Lock()
	if e.status == StatusValidating || e.status == StatusSubmitting {
		e.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	e.status = StatusValidating
	e.message = ""
	cb := e.onTransition
	e.mu.Unlock()
	if cb != nil {
		cb(StatusValidating)
	}

	req, err := Validate(form, e.Snapshot())
	if err != nil {
		e.Order.SetError(err.Error())
		e.transition(StatusRejected, err.Error())
		e.transition(StatusIdle, "")
		return nil, err
	}

	e.transition(StatusSubmitting, "")
	receipt, err := asyncstate.Run(ctx, e.Order, func(ctx context.Context) (*models.TradeReceipt, error) {
		return e.api.SubmitTrade(ctx, req)
	})
	if err != nil {
		e.logger.Warn().Str("ticker", req.Ticker).Str("side", string(req.Side)).Str("error", err.Error()).Msg("Order rejected")
		e.transition(StatusRejected, err.Error())
		e.transition(StatusIdle, "")
		return nil, err
	}

	e.logger.Info().Str("ticker", req.Ticker).Str("side", string(req.Side)).Str("trade_id", receipt.TradeID).Msg("Order executed")
	e.transition(StatusSucceeded, receipt.Message)
	e.LoadPortfolio(ctx)
	e.transition(StatusIdle, "")
	return receipt, nil
}

// LookupQuote fetches a display quote for ticker. It has no bearing on validation;
// a failure clears the previous quote.
func (e *Executor) LookupQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	symbol := models.NormalizeTicker(ticker)
	if symbol == "" {
		err := &ValidationError{Field: "ticker", Message: "Please enter a ticker"}
		e.Quote.SetError(err.Error())
		e.clearQuote()
		return nil, err
	}

	q, err := asyncstate.Run(ctx, e.Quote, func(ctx context.Context) (*models.Quote, error) {
		return e.api.GetPrice(ctx, symbol)
	})
	if err != nil {
		e.clearQuote()
		return nil, err
	}
	e.mu.Lock()
	e.quote = q
	e.mu.Unlock()
	return q, nil
}

// Reset drops the snapshot, the display quote and every recorded error. It is called
// when the session changes hands. An order already in flight keeps its status.
func (e *Executor) Reset() {
	e.mu.Lock()
	e.snapshot = nil
	e.quote = nil
	e.message = ""
	e.mu.Unlock()

	for _, t := range []*asyncstate.Tracker{e.Portfolio, e.Order, e.Quote, e.Cash} {
		t.ClearError()
	}
}

func (e *Executor) clearQuote() {
	e.mu.Lock()
	e.quote = nil
	e.mu.Unlock()
}

// ClosePosition sells the whole holding in ticker and reloads the portfolio.
func (e *Executor) ClosePosition(ctx context.Context, ticker string) (*models.ClosePositionResult, error) {
	symbol, err := models.ValidateTicker(ticker)
	if err != nil {
		return nil, &ValidationError{Field: "ticker", Message: err.Error()}
	}

	res, err := asyncstate.Run(ctx, e.Order, func(ctx context.Context) (*models.ClosePositionResult, error) {
		return e.api.ClosePosition(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("ticker", symbol).Str("trade_id", res.TradeID).Msg("Position closed")
	e.LoadPortfolio(ctx)
	return res, nil
}

// Deposit adds cash and reloads the portfolio.
func (e *Executor) Deposit(ctx context.Context, amount decimal.Decimal, method string) (*models.CashMovement, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "Amount must be greater than 0"}
	}
	res, err := asyncstate.Run(ctx, e.Cash, func(ctx context.Context) (*models.CashMovement, error) {
		return e.api.Deposit(ctx, amount, method)
	})
	if err != nil {
		return nil, err
	}
	e.LoadPortfolio(ctx)
	return res, nil
}

// Withdraw removes cash and reloads the portfolio. The backend enforces the balance.
func (e *Executor) Withdraw(ctx context.Context, amount decimal.Decimal) (*models.CashMovement, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "Amount must be greater than 0"}
	}
	res, err := asyncstate.Run(ctx, e.Cash, func(ctx context.Context) (*models.CashMovement, error) {
		return e.api.Withdraw(ctx, amount)
	})
	if err != nil {
		return nil, err
	}
	e.LoadPortfolio(ctx)
	return res, nil
}
