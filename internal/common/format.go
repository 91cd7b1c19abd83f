package common

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when the backend does not report one.
const DefaultCurrency = money.USD

// FormatMoney renders an amount in the currency's display form, e.g. "$1,501.50".
func FormatMoney(v decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}
	fraction := money.New(0, code).Currency().Fraction
	minor := v.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatSignedMoney prefixes non-negative amounts with "+".
func FormatSignedMoney(v decimal.Decimal, currency string) string {
	if v.Sign() >= 0 {
		return "+" + FormatMoney(v, currency)
	}
	return FormatMoney(v, currency)
}

// FormatSignedPct formats a percentage with a sign and two decimals.
func FormatSignedPct(v decimal.Decimal) string {
	if v.Sign() >= 0 {
		return "+" + v.StringFixed(2) + "%"
	}
	return v.StringFixed(2) + "%"
}

// FormatQuantity trims trailing zeros, so 10.000 renders as 10.
func FormatQuantity(v decimal.Decimal) string {
	return v.String()
}
