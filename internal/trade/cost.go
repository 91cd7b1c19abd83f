package trade

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// CommissionRate is charged on the notional of every BUY and SELL.
var CommissionRate = decimal.New(1, -3)

// commissionPlaces is the currency precision commission is rounded to.
const commissionPlaces = 2

// Cost is the display breakdown of an order.
type Cost struct {
	TotalValue decimal.Decimal
	Commission decimal.Decimal
	// TotalCost is the cash leaving the account for a BUY, or the net proceeds of a SELL.
	TotalCost decimal.Decimal
}

// ComputeCost mirrors the backend's accounting for quantity shares at price.
func ComputeCost(side models.Side, quantity, price decimal.Decimal) Cost {
	total := quantity.Mul(price)
	commission := total.Mul(CommissionRate).Round(commissionPlaces)

	cost := Cost{TotalValue: total, Commission: commission}
	if side == models.SideSell {
		cost.TotalCost = total.Sub(commission)
	} else {
		cost.TotalCost = total.Add(commission)
	}
	return cost
}
