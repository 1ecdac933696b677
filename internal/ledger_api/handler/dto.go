package handler

import (
	"strings"
	"time"

	"github.com/flowi-ledger/internal/domain/exchange"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SetRateRequest represents a manual exchange rate entry
type SetRateRequest struct {
	USDToLocal float64 `json:"usd_to_local"`
	Source     string  `json:"source"`
}

// RateResponse represents an exchange rate in API responses
type RateResponse struct {
	ID         string `json:"id"`
	USDToLocal string `json:"usd_to_local"`
	Source     string `json:"source"`
	CapturedAt string `json:"captured_at"`
}

// RateHistoryQuery bounds the rate history listing
type RateHistoryQuery struct {
	Limit int `form:"limit,default=20" binding:"min=1,max=500"`
}

// ConvertRequest represents a currency conversion request
type ConvertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from" binding:"required"`
	To     string          `json:"to" binding:"required"`
}

// ConvertResponse carries the converted amount and the rate it was computed with
type ConvertResponse struct {
	Amount    string        `json:"amount"`
	Currency  string        `json:"currency"`
	Formatted string        `json:"formatted"`
	Rate      *RateResponse `json:"rate,omitempty"`
}

// ObligationRequest represents the editable fields of a receivable or payable
type ObligationRequest struct {
	CounterpartyType string          `json:"counterparty_type" binding:"required,oneof=customer supplier"`
	CustomerID       string          `json:"customer_id,omitempty"`
	SupplierID       string          `json:"supplier_id,omitempty"`
	ReferenceNumber  string          `json:"reference_number"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency" binding:"required"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	Description      string          `json:"description,omitempty"`
}

// ObligationResponse represents a receivable or payable in API responses
type ObligationResponse struct {
	ID               string `json:"id"`
	CounterpartyType string `json:"counterparty_type"`
	CounterpartyID   string `json:"counterparty_id"`
	CounterpartyName string `json:"counterparty_name"`
	ReferenceNumber  string `json:"reference_number"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	Formatted        string `json:"formatted"`
	PaymentTermsDays int    `json:"payment_terms_days"`
	DueDate          string `json:"due_date"`
	Status           string `json:"status"`
	Description      string `json:"description,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// ObligationListQuery narrows an obligation listing
type ObligationListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending overdue paid cancelled"`
	Currency string `form:"currency"`
	Search   string `form:"q"`
}

// ReconcileResponse lists the entries the overdue pass moved
type ReconcileResponse struct {
	Updated []string `json:"updated"`
}

// ReferenceResponse carries a suggested reference number
type ReferenceResponse struct {
	ReferenceNumber string `json:"reference_number"`
}

// AnalyticsQuery carries the optional size knobs of the analytics endpoints; zero means the configured default
type AnalyticsQuery struct {
	N         int `form:"n" binding:"min=0,max=100"`
	Days      int `form:"days" binding:"min=0,max=366"`
	Threshold int `form:"threshold" binding:"min=0"`
}

// toInput maps the request onto the domain input. The currency code is upper-cased
// and left for validation to reject.
func (r ObligationRequest) toInput() obligation.Input {
	return obligation.Input{
		CounterpartyType: obligation.CounterpartyType(r.CounterpartyType),
		CustomerID:       strings.TrimSpace(r.CustomerID),
		SupplierID:       strings.TrimSpace(r.SupplierID),
		ReferenceNumber:  r.ReferenceNumber,
		Amount:           r.Amount,
		Currency:         shared.Currency(strings.ToUpper(strings.TrimSpace(r.Currency))),
		PaymentTermsDays: r.PaymentTermsDays,
		Description:      r.Description,
	}
}

// toCriteria maps the listing query onto filter criteria
func (q ObligationListQuery) toCriteria() (obligation.Criteria, error) {
	c := obligation.Criteria{
		Status: obligation.Status(q.Status),
		Search: q.Search,
	}
	if q.Currency != "" {
		currency, err := shared.ParseCurrency(q.Currency)
		if err != nil {
			return obligation.Criteria{}, err
		}
		c.Currency = currency
	}
	return c, nil
}

// mapRateToResponse maps a rate entity to a rate response DTO
func mapRateToResponse(r *exchange.Rate) *RateResponse {
	if r == nil {
		return nil
	}
	return &RateResponse{
		ID:         r.ID.String(),
		USDToLocal: r.USDToLocal.String(),
		Source:     r.Source,
		CapturedAt: r.CapturedAt.Format(time.RFC3339),
	}
}

// mapObligationToResponse maps an obligation entity to an obligation response DTO
func mapObligationToResponse(o *obligation.Obligation) ObligationResponse {
	return ObligationResponse{
		ID:               o.ID.String(),
		CounterpartyType: string(o.CounterpartyType),
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		ReferenceNumber:  o.ReferenceNumber,
		Amount:           o.Amount.String(),
		Currency:         string(o.Currency),
		Formatted:        o.Money().String(),
		PaymentTermsDays: o.PaymentTermsDays,
		DueDate:          o.DueDate.Format(time.DateOnly),
		Status:           string(o.Status),
		Description:      o.Description,
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        o.UpdatedAt.Format(time.RFC3339),
	}
}

func mapObligationsToResponse(entries []obligation.Obligation) []ObligationResponse {
	out := make([]ObligationResponse, 0, len(entries))
	for i := range entries {
		out = append(out, mapObligationToResponse(&entries[i]))
	}
	return out
}
