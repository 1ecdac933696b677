package analytics

import (
	"time"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/sales"
)

// Inputs is everything a dashboard snapshot is computed from
type Inputs struct {
	Sales             []sales.Record
	Products          []sales.Product
	Receivables       []obligation.Obligation
	Payables          []obligation.Obligation
	Rate              exchange.Rate
	HasRate           bool
	Now               time.Time
	LowStockThreshold int
	TopProductsLimit  int
}

// Snapshot is the point-in-time dashboard. It holds no reference to its inputs.
type Snapshot struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Rate         *exchange.Rate     `json:"rate,omitempty"`
	Today        DayRevenue         `json:"today"`
	TotalRevenue Revenue            `json:"total_revenue"`
	Monthly      Comparison         `json:"monthly"`
	PaymentMix   PaymentMix         `json:"payment_mix"`
	Inventory    InventorySnapshot  `json:"inventory"`
	TopProducts  []ProductRevenue   `json:"top_products"`
	Receivables  obligation.Summary `json:"receivables"`
	Payables     obligation.Summary `json:"payables"`
}

// InventorySnapshot groups the catalog figures
type InventorySnapshot struct {
	Products      int             `json:"products"`
	Value         Valuation       `json:"value"`
	LowStock      []sales.Product `json:"low_stock"`
	OutOfStock    []sales.Product `json:"out_of_stock"`
	ReorderAlerts []sales.Product `json:"reorder_alerts"`
}

// Assemble recombines the engine outputs into a snapshot.
// Obligations are reconciled against in.Now first so overdue totals reflect the clock.
func Assemble(in Inputs) Snapshot {
	receivables, _ := obligation.ReconcileOverdue(in.Receivables, in.Now)
	payables, _ := obligation.ReconcileOverdue(in.Payables, in.Now)

	snap := Snapshot{
		GeneratedAt:  in.Now,
		Today:        RevenueTodaySplitByCurrency(in.Sales, in.Now),
		TotalRevenue: TotalRevenue(in.Sales),
		Monthly:      MonthlyComparison(in.Sales, in.Now),
		PaymentMix:   PaymentMethodMix(in.Sales),
		Inventory:    Inventory(in.Products, in.LowStockThreshold, in.Rate, in.HasRate),
		TopProducts:  TopProducts(in.Sales, in.TopProductsLimit),
		Receivables:  obligation.Summarize(receivables),
		Payables:     obligation.Summarize(payables),
	}
	if in.HasRate {
		rate := in.Rate
		snap.Rate = &rate
	}
	return snap
}

// Inventory values the catalog at rate and lists the products needing attention
func Inventory(products []sales.Product, lowStockThreshold int, rate exchange.Rate, hasRate bool) InventorySnapshot {
	return InventorySnapshot{
		Products:      len(products),
		Value:         InventoryValuation(products, rate, hasRate),
		LowStock:      LowStockProducts(products, lowStockThreshold),
		OutOfStock:    OutOfStockProducts(products),
		ReorderAlerts: ReorderAlerts(products),
	}
}
