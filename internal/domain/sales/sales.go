// Package sales holds the read-only views of the sales journal and the product catalog.
package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled
type PaymentMethod string

const (
	PaymentUSD       PaymentMethod = "usd"
	PaymentVES       PaymentMethod = "ves"
	PaymentZelle     PaymentMethod = "zelle"
	PaymentPagoMovil PaymentMethod = "pago_movil"
	PaymentMixed     PaymentMethod = "mixed"
)

// SettlesInUSD reports whether the method clears in hard currency
func (p PaymentMethod) SettlesInUSD() bool {
	return p == PaymentUSD || p == PaymentZelle
}

// SettlesInVES reports whether the method clears in local currency
func (p PaymentMethod) SettlesInVES() bool {
	return p == PaymentVES || p == PaymentPagoMovil
}

// Item is one cart line of a sale
type Item struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	PriceVES    decimal.Decimal `json:"price_ves"`
}

// Record is a sale from the journal. Which amount fields are meaningful depends on
// PaymentMethod: PaidUSD and PaidVES are populated only for mixed settlements.
type Record struct {
	ID            string              `json:"id"`
	Items         []Item              `json:"items"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	TotalUSD      decimal.NullDecimal `json:"total_usd"`
	TotalVES      decimal.NullDecimal `json:"total_ves"`
	PaidUSD       decimal.NullDecimal `json:"paid_usd"`
	PaidVES       decimal.NullDecimal `json:"paid_ves"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Product is a catalog entry
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	PriceVES     decimal.Decimal `json:"price_ves"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
}

// Source supplies the sales journal and the catalog
type Source interface {
	LoadSales(ctx context.Context) ([]Record, error)
	LoadProducts(ctx context.Context) ([]Product, error)
}
