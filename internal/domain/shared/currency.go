package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency = errors.New("invalid currency")
)

// Currency tags every monetary amount in the ledger
type Currency string

const (
	CurrencyUSD Currency = "USD" // Hard currency
	CurrencyVES Currency = "VES" // Local currency
)

// ParseCurrency accepts a currency code in any letter case
func ParseCurrency(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyVES:
		return CurrencyVES, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
}

// Valid reports whether c is one of the two tracked currencies
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyVES
}

// Money pairs an amount with its currency. An amount never travels without its tag.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney builds a Money value, rejecting unknown currencies
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.Valid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// String renders the amount in the display format of its currency
func (m Money) String() string {
	return Format(m.Amount, m.Currency)
}

// CurrencyTotals holds one running sum per currency. The two sums are never added together.
type CurrencyTotals struct {
	USD decimal.Decimal `json:"USD"`
	VES decimal.Decimal `json:"VES"`
}

// Add accumulates amount into the bucket of currency
func (t *CurrencyTotals) Add(amount decimal.Decimal, currency Currency) {
	switch currency {
	case CurrencyUSD:
		t.USD = t.USD.Add(amount)
	case CurrencyVES:
		t.VES = t.VES.Add(amount)
	}
}

// Plus returns the per-currency sum of t and o
func (t CurrencyTotals) Plus(o CurrencyTotals) CurrencyTotals {
	return CurrencyTotals{USD: t.USD.Add(o.USD), VES: t.VES.Add(o.VES)}
}
