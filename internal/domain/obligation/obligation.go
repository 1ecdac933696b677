package obligation

import (
	"fmt"
	"time"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind names one of the two obligation collections
type Kind string

const (
	KindReceivable Kind = "receivable" // A customer owes the shop
	KindPayable    Kind = "payable"    // The shop owes a supplier
)

// ParseKind accepts both the singular kind and its collection name
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "receivable", "receivables":
		return KindReceivable, true
	case "payable", "payables":
		return KindPayable, true
	}
	return "", false
}

// Collection is the persisted collection name of the kind
func (k Kind) Collection() string {
	return string(k) + "s"
}

// CounterpartyType is the only counterparty type an obligation of this kind may reference
func (k Kind) CounterpartyType() CounterpartyType {
	if k == KindPayable {
		return CounterpartySupplier
	}
	return CounterpartyCustomer
}

// CounterpartyType identifies which directory the counterparty id points into
type CounterpartyType string

const (
	CounterpartyCustomer CounterpartyType = "customer"
	CounterpartySupplier CounterpartyType = "supplier"
)

// Status is the lifecycle position of an obligation
type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusPending, StatusOverdue, StatusPaid, StatusCancelled}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// allowedTransitions is the complete state machine
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusOverdue, StatusPaid, StatusCancelled},
	StatusOverdue: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal status change
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Obligation is a receivable or payable entry.
// CounterpartyName is a snapshot taken when the entry was written, not a live reference.
type Obligation struct {
	ID               uuid.UUID        `json:"id"`
	CounterpartyType CounterpartyType `json:"counterparty_type"`
	CounterpartyID   string           `json:"counterparty_id"`
	CounterpartyName string           `json:"counterparty_name"`
	ReferenceNumber  string           `json:"reference_number"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         shared.Currency  `json:"currency"`
	PaymentTermsDays int              `json:"payment_terms_days"`
	DueDate          time.Time        `json:"due_date"`
	Status           Status           `json:"status"`
	Description      string           `json:"description,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Money returns the amount tagged with its currency
func (o Obligation) Money() shared.Money {
	return shared.Money{Amount: o.Amount, Currency: o.Currency}
}

// Input carries the user-editable fields of an obligation.
// Exactly one of CustomerID and SupplierID is expected, matching CounterpartyType.
type Input struct {
	CounterpartyType CounterpartyType `json:"counterparty_type"`
	CustomerID       string           `json:"customer_id,omitempty"`
	SupplierID       string           `json:"supplier_id,omitempty"`
	ReferenceNumber  string           `json:"reference_number"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         shared.Currency  `json:"currency"`
	PaymentTermsDays int              `json:"payment_terms_days"`
	Description      string           `json:"description,omitempty"`
}

// CounterpartyID returns whichever counterparty reference is set
func (in Input) CounterpartyID() string {
	if in.CounterpartyType == CounterpartySupplier {
		return in.SupplierID
	}
	return in.CustomerID
}

// New builds a pending obligation from a validated input
func New(in Input, counterpartyName string, now time.Time) Obligation {
	o := Obligation{
		ID:        uuid.New(),
		Status:    StatusPending,
		CreatedAt: now,
	}
	o.apply(in, counterpartyName, now)
	return o
}

// Edit applies a validated input to an existing obligation.
// The due date is recomputed from the original creation time, never from now.
// An overdue entry cannot get terms that would put its due date on or after today.
func (o Obligation) Edit(in Input, counterpartyName string, now time.Time) (Obligation, error) {
	if o.Status == StatusOverdue {
		due := DueDate(o.CreatedAt, in.PaymentTermsDays)
		if !shared.DayBefore(due, now, now.Location()) {
			return o, ValidationError{
				Field:  "payment_terms_days",
				Reason: fmt.Sprintf("overdue obligation cannot be due on %s or later", due.In(now.Location()).Format(time.DateOnly)),
			}
		}
	}
	o.apply(in, counterpartyName, now)
	return o, nil
}

func (o *Obligation) apply(in Input, counterpartyName string, now time.Time) {
	o.CounterpartyType = in.CounterpartyType
	o.CounterpartyID = in.CounterpartyID()
	o.CounterpartyName = counterpartyName
	o.ReferenceNumber = normalizeReference(in.ReferenceNumber)
	o.Amount = in.Amount
	o.Currency = in.Currency
	o.PaymentTermsDays = in.PaymentTermsDays
	o.Description = in.Description
	o.DueDate = DueDate(o.CreatedAt, in.PaymentTermsDays)
	o.UpdatedAt = now
}

// In returns the obligation with its timestamps expressed in loc
func (o Obligation) In(loc *time.Location) Obligation {
	o.DueDate = o.DueDate.In(loc)
	o.CreatedAt = o.CreatedAt.In(loc)
	o.UpdatedAt = o.UpdatedAt.In(loc)
	return o
}

// DueDate is createdAt plus the payment terms in calendar days
func DueDate(createdAt time.Time, paymentTermsDays int) time.Time {
	return createdAt.AddDate(0, 0, paymentTermsDays)
}

// Transition moves the obligation to status to, rejecting illegal changes
func (o Obligation) Transition(to Status, now time.Time) (Obligation, error) {
	if !CanTransition(o.Status, to) {
		return o, InvalidTransition{From: o.Status, To: to}
	}
	o.Status = to
	o.UpdatedAt = now
	return o, nil
}

// OverdueAt reports whether a pending obligation has passed its due date.
// The comparison is by calendar day in now's location: a same-day due date is not overdue.
func (o Obligation) OverdueAt(now time.Time) bool {
	return o.Status == StatusPending && shared.DayBefore(o.DueDate, now, now.Location())
}
