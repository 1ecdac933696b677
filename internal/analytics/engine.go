// Package analytics turns the sales journal and the catalog into the figures the back office displays.
// Every function is pure: inputs, the clock and the rate are passed in explicitly.
package analytics

import (
	"sort"
	"time"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/sales"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Revenue is the all-time revenue taken from each sale's USD total.
// Sales recorded with only a VES total are reported apart, never converted.
type Revenue struct {
	USD          decimal.Decimal `json:"usd"`
	USDSales     int             `json:"usd_sales"`
	VESOnly      decimal.Decimal `json:"ves_only"`
	VESOnlySales int             `json:"ves_only_sales"`
}

// TotalRevenue sums the authoritative USD total of every sale
func TotalRevenue(records []sales.Record) Revenue {
	var r Revenue
	for _, s := range records {
		switch {
		case s.TotalUSD.Valid:
			r.USD = r.USD.Add(s.TotalUSD.Decimal)
			r.USDSales++
		case s.TotalVES.Valid:
			r.VESOnly = r.VESOnly.Add(s.TotalVES.Decimal)
			r.VESOnlySales++
		}
	}
	return r
}

// Attribute splits a sale's value into the currency it was settled in.
// usd and zelle count their USD total, ves and pago_movil their VES total,
// mixed counts each paid portion in its own currency.
func Attribute(s sales.Record) shared.CurrencyTotals {
	var t shared.CurrencyTotals
	switch {
	case s.PaymentMethod.SettlesInUSD():
		t.USD = valueOrZero(s.TotalUSD)
	case s.PaymentMethod.SettlesInVES():
		t.VES = valueOrZero(s.TotalVES)
	case s.PaymentMethod == sales.PaymentMixed:
		t.USD = valueOrZero(s.PaidUSD)
		t.VES = valueOrZero(s.PaidVES)
	}
	return t
}

func valueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if n.Valid {
		return n.Decimal
	}
	return decimal.Zero
}

// DayRevenue is the split revenue of one calendar day
type DayRevenue struct {
	Date    string                `json:"date"`
	Sales   int                   `json:"sales"`
	Revenue shared.CurrencyTotals `json:"revenue"`
}

// RevenueTodaySplitByCurrency sums today's sales into separate USD and VES buckets.
// Today is now's calendar day in now's location.
func RevenueTodaySplitByCurrency(records []sales.Record, now time.Time) DayRevenue {
	out := DayRevenue{Date: now.Format(time.DateOnly)}
	for _, s := range records {
		if !shared.SameDay(s.CreatedAt, now, now.Location()) {
			continue
		}
		out.Sales++
		out.Revenue = out.Revenue.Plus(Attribute(s))
	}
	return out
}

// DailyTrend returns one point per calendar day for the last days days ending today, oldest first
func DailyTrend(records []sales.Record, now time.Time, days int) []DayRevenue {
	if days <= 0 {
		return []DayRevenue{}
	}
	loc := now.Location()
	today := shared.StartOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	points := make([]DayRevenue, days)
	index := make(map[string]int, days)
	for i := range points {
		d := first.AddDate(0, 0, i).Format(time.DateOnly)
		points[i].Date = d
		index[d] = i
	}
	for _, s := range records {
		i, ok := index[s.CreatedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		points[i].Sales++
		points[i].Revenue = points[i].Revenue.Plus(Attribute(s))
	}
	return points
}

// PaymentMix counts sales per settlement group
type PaymentMix struct {
	USD   int `json:"usd"`   // usd and zelle
	VES   int `json:"ves"`   // ves and pago_movil
	Mixed int `json:"mixed"` // split settlement
	Total int `json:"total"`
}

// PaymentMethodMix counts every sale in its settlement group
func PaymentMethodMix(records []sales.Record) PaymentMix {
	var m PaymentMix
	for _, s := range records {
		switch {
		case s.PaymentMethod.SettlesInUSD():
			m.USD++
		case s.PaymentMethod.SettlesInVES():
			m.VES++
		case s.PaymentMethod == sales.PaymentMixed:
			m.Mixed++
		}
	}
	m.Total = len(records)
	return m
}

// LowStockProducts keeps products with 0 < stock <= threshold. Zero stock is out of stock, not low.
func LowStockProducts(products []sales.Product, threshold int) []sales.Product {
	out := make([]sales.Product, 0)
	for _, p := range products {
		if p.Stock > 0 && p.Stock <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// OutOfStockProducts keeps products with no stock left
func OutOfStockProducts(products []sales.Product) []sales.Product {
	out := make([]sales.Product, 0)
	for _, p := range products {
		if p.Stock == 0 {
			out = append(out, p)
		}
	}
	return out
}

// ReorderAlerts keeps products at or under their own reorder level but not yet empty
func ReorderAlerts(products []sales.Product) []sales.Product {
	out := make([]sales.Product, 0)
	for _, p := range products {
		if p.Stock > 0 && p.Stock <= p.ReorderLevel {
			out = append(out, p)
		}
	}
	return out
}

// InventoryValue is the sum of priceUSD * stock
func InventoryValue(products []sales.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.PriceUSD.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}

// Valuation is the inventory value at one point in time
type Valuation struct {
	USD decimal.Decimal     `json:"usd"`
	VES decimal.NullDecimal `json:"ves"` // absent without a rate
}

// InventoryValuation values the catalog in USD and, when a rate is known, in VES at that rate
func InventoryValuation(products []sales.Product, rate exchange.Rate, hasRate bool) Valuation {
	v := Valuation{USD: InventoryValue(products)}
	if !hasRate {
		return v
	}
	if ves, err := exchange.Convert(v.USD, shared.CurrencyUSD, shared.CurrencyVES, rate); err == nil {
		v.VES = decimal.NewNullDecimal(ves)
	}
	return v
}

// ProductRevenue is a product's realized revenue across the journal
type ProductRevenue struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	RevenueUSD  decimal.Decimal `json:"revenue_usd"`
}

// TopProducts ranks products by the USD value of their cart lines, highest first,
// ties broken by product id ascending. At most n entries are returned.
func TopProducts(records []sales.Record, n int) []ProductRevenue {
	if n <= 0 {
		return []ProductRevenue{}
	}
	byID := make(map[string]*ProductRevenue)
	for _, s := range records {
		for _, it := range s.Items {
			pr, ok := byID[it.ProductID]
			if !ok {
				pr = &ProductRevenue{ProductID: it.ProductID, ProductName: it.ProductName}
				byID[it.ProductID] = pr
			}
			pr.Quantity += it.Quantity
			pr.RevenueUSD = pr.RevenueUSD.Add(it.PriceUSD.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	ranked := make([]ProductRevenue, 0, len(byID))
	for _, pr := range byID {
		ranked = append(ranked, *pr)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].RevenueUSD.Cmp(ranked[j].RevenueUSD); c != 0 {
			return c > 0
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Comparison is this calendar month against the previous one
type Comparison struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Growth   decimal.Decimal `json:"growth"` // fraction, 0 when Previous is 0
}

// MonthlyComparison compares USD revenue of now's month with the month before
func MonthlyComparison(records []sales.Record, now time.Time) Comparison {
	loc := now.Location()
	currentStart := shared.StartOfMonth(now)
	previousStart := currentStart.AddDate(0, -1, 0)
	nextStart := currentStart.AddDate(0, 1, 0)

	var c Comparison
	for _, s := range records {
		if !s.TotalUSD.Valid {
			continue
		}
		at := s.CreatedAt.In(loc)
		switch {
		case !at.Before(currentStart) && at.Before(nextStart):
			c.Current = c.Current.Add(s.TotalUSD.Decimal)
		case !at.Before(previousStart) && at.Before(currentStart):
			c.Previous = c.Previous.Add(s.TotalUSD.Decimal)
		}
	}
	if c.Previous.IsZero() {
		c.Growth = decimal.Zero
		return c
	}
	c.Growth = c.Current.Sub(c.Previous).Div(c.Previous)
	return c
}
