package exchange

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoRate = errors.New("no exchange rate has been set")
)

// Rate is one captured USD to local currency quote. Rates are superseded, never mutated.
type Rate struct {
	ID         uuid.UUID       `json:"id"`
	USDToLocal decimal.Decimal `json:"usd_to_local"`
	Source     string          `json:"source"`
	CapturedAt time.Time       `json:"captured_at"`
}

// InvalidRate rejects a non-finite or non-positive rate value
type InvalidRate struct {
	Value float64
}

func (e InvalidRate) Error() string {
	return fmt.Sprintf("invalid exchange rate %v: must be finite and positive", e.Value)
}

// Is matches any InvalidRate
func (e InvalidRate) Is(target error) bool {
	_, ok := target.(InvalidRate)
	return ok
}

// NewRate validates value and stamps a new rate
func NewRate(value float64, source string, capturedAt time.Time) (Rate, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return Rate{}, InvalidRate{Value: value}
	}
	return Rate{
		ID:         uuid.New(),
		USDToLocal: decimal.NewFromFloat(value),
		Source:     source,
		CapturedAt: capturedAt,
	}, nil
}

// Convert moves amount between currencies using the rate it is handed.
// Same-currency conversion is the identity and does not consult the rate.
// No rounding is applied.
func Convert(amount decimal.Decimal, from, to shared.Currency, rate Rate) (decimal.Decimal, error) {
	if !from.Valid() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", shared.ErrInvalidCurrency, from)
	}
	if !to.Valid() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", shared.ErrInvalidCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	if !rate.USDToLocal.IsPositive() {
		return decimal.Decimal{}, ErrNoRate
	}
	if from == shared.CurrencyUSD {
		return amount.Mul(rate.USDToLocal), nil
	}
	return amount.Div(rate.USDToLocal), nil
}

// ConvertMoney converts m into currency to
func (r Rate) ConvertMoney(m shared.Money, to shared.Currency) (shared.Money, error) {
	amount, err := Convert(m.Amount, m.Currency, to, r)
	if err != nil {
		return shared.Money{}, err
	}
	return shared.Money{Amount: amount, Currency: to}, nil
}
