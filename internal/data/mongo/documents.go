package mongo

import (
	"time"

	"github.com/flowi-ledger/internal/domain/counterparty"
	"github.com/flowi-ledger/internal/domain/sales"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// Documents mirror what the storefront writes: money as doubles, ids as
// either ObjectIDs or plain strings.

type saleItemDocument struct {
	ProductID   bson.RawValue `bson:"product_id"`
	ProductName string        `bson:"product_name"`
	Quantity    int           `bson:"quantity"`
	PriceUSD    float64       `bson:"price_usd"`
	PriceVES    float64       `bson:"price_ves"`
}

type saleDocument struct {
	ID            bson.RawValue      `bson:"_id"`
	Items         []saleItemDocument `bson:"items"`
	PaymentMethod string             `bson:"payment_method"`
	TotalUSD      *float64           `bson:"total_usd,omitempty"`
	TotalVES      *float64           `bson:"total_ves,omitempty"`
	PaidUSD       *float64           `bson:"paid_usd,omitempty"`
	PaidVES       *float64           `bson:"paid_ves,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d saleDocument) toDomain() sales.Record {
	items := make([]sales.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, sales.Item{
			ProductID:   idString(it.ProductID),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			PriceUSD:    decimal.NewFromFloat(it.PriceUSD),
			PriceVES:    decimal.NewFromFloat(it.PriceVES),
		})
	}
	return sales.Record{
		ID:            idString(d.ID),
		Items:         items,
		PaymentMethod: sales.PaymentMethod(d.PaymentMethod),
		TotalUSD:      nullDecimal(d.TotalUSD),
		TotalVES:      nullDecimal(d.TotalVES),
		PaidUSD:       nullDecimal(d.PaidUSD),
		PaidVES:       nullDecimal(d.PaidVES),
		CreatedAt:     d.CreatedAt,
	}
}

type productDocument struct {
	ID           bson.RawValue `bson:"_id"`
	Name         string        `bson:"name"`
	PriceUSD     float64       `bson:"price_usd"`
	PriceVES     float64       `bson:"price_ves"`
	Stock        int           `bson:"stock"`
	ReorderLevel int           `bson:"reorder_level"`
}

func (d productDocument) toDomain() sales.Product {
	stock := d.Stock
	if stock < 0 {
		stock = 0
	}
	return sales.Product{
		ID:           idString(d.ID),
		Name:         d.Name,
		PriceUSD:     decimal.NewFromFloat(d.PriceUSD),
		PriceVES:     decimal.NewFromFloat(d.PriceVES),
		Stock:        stock,
		ReorderLevel: d.ReorderLevel,
	}
}

type customerDocument struct {
	ID           bson.RawValue `bson:"_id"`
	Name         string        `bson:"name"`
	CreditLimit  float64       `bson:"credit_limit"`
	PaymentTerms int           `bson:"payment_terms"`
	IsActive     bool          `bson:"is_active"`
}

func (d customerDocument) toDomain() counterparty.Customer {
	return counterparty.Customer{
		ID:               idString(d.ID),
		Name:             d.Name,
		CreditLimit:      decimal.NewFromFloat(d.CreditLimit),
		PaymentTermsDays: d.PaymentTerms,
		IsActive:         d.IsActive,
	}
}

type supplierDocument struct {
	ID               bson.RawValue `bson:"_id"`
	Name             string        `bson:"name"`
	PaymentTermsDays int           `bson:"payment_terms_days"`
	IsActive         bool          `bson:"is_active"`
}

func (d supplierDocument) toDomain() counterparty.Supplier {
	return counterparty.Supplier{
		ID:               idString(d.ID),
		Name:             d.Name,
		PaymentTermsDays: d.PaymentTermsDays,
		IsActive:         d.IsActive,
	}
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}

// idString renders an ObjectID as hex and a string id as is
func idString(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if v.Value == nil {
		return ""
	}
	return v.String()
}
