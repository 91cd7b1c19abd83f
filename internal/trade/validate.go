// Package trade gates orders before they reach the backend and drives their submission.
package trade

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/models"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side rule violation. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// OrderForm is the raw user input for one order.
type OrderForm struct {
	Ticker   string
	Side     string
	Quantity string
	Price    string
}

// Validate applies the order rules in order and stops at the first failure:
// presence, quantity > 0, price > 0, and for BUY orders quantity x price <= cash.
// An empty side means BUY; an unknown side fails after the price rule.
// A nil snapshot skips the funds check; the server re-validates regardless.
func Validate(form OrderForm, snapshot *models.Portfolio) (models.TradeRequest, error) {
	ticker := strings.TrimSpace(form.Ticker)
	qtyRaw := strings.TrimSpace(form.Quantity)
	priceRaw := strings.TrimSpace(form.Price)

	if ticker == "" || qtyRaw == "" || priceRaw == "" {
		return models.TradeRequest{}, &ValidationError{Field: missingField(ticker, qtyRaw, priceRaw), Message: "Please fill in ticker, quantity and price"}
	}

	qty, err := decimal.NewFromString(qtyRaw)
	if err != nil || !qty.IsPositive() {
		return models.TradeRequest{}, &ValidationError{Field: "quantity", Message: "Quantity must be greater than 0"}
	}

	price, err := decimal.NewFromString(priceRaw)
	if err != nil || !price.IsPositive() {
		return models.TradeRequest{}, &ValidationError{Field: "price", Message: "Price must be greater than 0"}
	}

	side := models.SideBuy
	if strings.TrimSpace(form.Side) != "" {
		s, err := models.ParseSide(form.Side)
		if err != nil {
			return models.TradeRequest{}, &ValidationError{Field: "side", Message: err.Error()}
		}
		side = s
	}

	if side == models.SideBuy && snapshot != nil {
		notional := qty.Mul(price)
		if notional.GreaterThan(snapshot.CashBalance) {
			return models.TradeRequest{}, &ValidationError{
				Field: "quantity",
				Message: fmt.Sprintf("Insufficient funds: order requires %s, available %s",
					common.FormatMoney(notional, common.DefaultCurrency),
					common.FormatMoney(snapshot.CashBalance, common.DefaultCurrency)),
			}
		}
	}

	return models.TradeRequest{
		Ticker:   strings.ToUpper(ticker),
		Side:     side,
		Quantity: qty,
		Price:    price,
	}, nil
}

func missingField(ticker, qty, price string) string {
	switch {
	case ticker == "":
		return "ticker"
	case qty == "":
		return "quantity"
	default:
		return "price"
	}
}
