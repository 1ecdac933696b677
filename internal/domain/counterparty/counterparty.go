// Package counterparty describes the customer and supplier directories obligations point into.
package counterparty

import (
	"context"

	"github.com/shopspring/decimal"
)

// Customer is a directory entry that can owe the shop money
type Customer struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	IsActive         bool            `json:"is_active"`
}

// Supplier is a directory entry the shop can owe money to
type Supplier struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PaymentTermsDays int    `json:"payment_terms_days"`
	IsActive         bool   `json:"is_active"`
}

// Directory loads both counterparty lists
type Directory interface {
	LoadCustomers(ctx context.Context) ([]Customer, error)
	LoadSuppliers(ctx context.Context) ([]Supplier, error)
}
