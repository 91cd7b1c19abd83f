package models

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend validates numeric fields as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxTickerLength is the longest symbol accepted for watchlist entries.
const MaxTickerLength = 5

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// ErrInvalidTicker is returned for symbols that are empty, too long, or not alphanumeric.
var ErrInvalidTicker = errors.New("ticker must be 1-5 letters or digits")

// NormalizeTicker trims whitespace and upper-cases a symbol.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateTicker normalizes raw and checks it is a 1-5 character alphanumeric symbol.
func ValidateTicker(raw string) (string, error) {
	t := NormalizeTicker(raw)
	if !tickerPattern.MatchString(t) {
		return "", ErrInvalidTicker
	}
	return t, nil
}
