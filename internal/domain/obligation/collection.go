package obligation

import (
	"fmt"
	"strings"
	"time"

	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Validate checks in against the collection it will be written into.
// selfID is the id being edited, or uuid.Nil on create.
func Validate(kind Kind, in Input, existing []Obligation, selfID uuid.UUID) error {
	ref := normalizeReference(in.ReferenceNumber)
	if ref == "" {
		return ValidationError{Field: "reference_number", Reason: "reference number is required"}
	}
	for _, o := range existing {
		if o.ID != selfID && strings.EqualFold(o.ReferenceNumber, ref) {
			return ValidationError{Field: "reference_number", Reason: fmt.Sprintf("reference number %s is already in use", ref)}
		}
	}

	if in.CounterpartyType != kind.CounterpartyType() {
		return ValidationError{Field: "counterparty_type", Reason: fmt.Sprintf("%s entries must reference a %s", kind, kind.CounterpartyType())}
	}
	hasCustomer := strings.TrimSpace(in.CustomerID) != ""
	hasSupplier := strings.TrimSpace(in.SupplierID) != ""
	switch {
	case hasCustomer && hasSupplier:
		return ValidationError{Field: "counterparty_id", Reason: "only one of customer or supplier may be set"}
	case in.CounterpartyType == CounterpartyCustomer && !hasCustomer:
		return ValidationError{Field: "counterparty_id", Reason: "a customer must be selected"}
	case in.CounterpartyType == CounterpartySupplier && !hasSupplier:
		return ValidationError{Field: "counterparty_id", Reason: "a supplier must be selected"}
	}

	if !in.Amount.IsPositive() {
		return ValidationError{Field: "amount", Reason: "amount must be greater than 0"}
	}
	if !in.Currency.Valid() {
		return ValidationError{Field: "currency", Reason: "currency must be USD or VES"}
	}
	if in.PaymentTermsDays < 0 {
		return ValidationError{Field: "payment_terms_days", Reason: "payment terms cannot be negative"}
	}
	return nil
}

func normalizeReference(ref string) string {
	return strings.TrimSpace(ref)
}

// IndexOf returns the position of id in entries, or -1
func IndexOf(entries []Obligation, id uuid.UUID) int {
	for i, o := range entries {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Without returns entries minus id and whether id was present.
// The input slice is left untouched.
func Without(entries []Obligation, id uuid.UUID) ([]Obligation, bool) {
	i := IndexOf(entries, id)
	if i < 0 {
		return entries, false
	}
	out := make([]Obligation, 0, len(entries)-1)
	out = append(out, entries[:i]...)
	return append(out, entries[i+1:]...), true
}

// ReconcileOverdue moves every pending entry whose due day is before now's day to overdue.
// It returns a new slice and the ids that changed; running it again is a no-op.
func ReconcileOverdue(entries []Obligation, now time.Time) ([]Obligation, []uuid.UUID) {
	out := make([]Obligation, len(entries))
	var changed []uuid.UUID
	for i, o := range entries {
		if o.OverdueAt(now) {
			o.Status = StatusOverdue
			o.UpdatedAt = now
			changed = append(changed, o.ID)
		}
		out[i] = o
	}
	return out, changed
}

// TotalsByStatusAndCurrency sums amounts per status and per currency.
// Every status is present in the result, possibly with zero totals.
func TotalsByStatusAndCurrency(entries []Obligation) map[Status]shared.CurrencyTotals {
	totals := make(map[Status]shared.CurrencyTotals, len(Statuses))
	for _, s := range Statuses {
		totals[s] = shared.CurrencyTotals{}
	}
	for _, o := range entries {
		t := totals[o.Status]
		t.Add(o.Amount, o.Currency)
		totals[o.Status] = t
	}
	return totals
}

// Summary is the header figure set of an obligation page
type Summary struct {
	Outstanding shared.CurrencyTotals `json:"outstanding"` // pending + overdue
	Overdue     shared.CurrencyTotals `json:"overdue"`
	Counts      map[Status]int        `json:"counts"`
}

// Summarize derives the outstanding and overdue figures from the per-status totals
func Summarize(entries []Obligation) Summary {
	totals := TotalsByStatusAndCurrency(entries)
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, o := range entries {
		counts[o.Status]++
	}
	return Summary{
		Outstanding: totals[StatusPending].Plus(totals[StatusOverdue]),
		Overdue:     totals[StatusOverdue],
		Counts:      counts,
	}
}

// Criteria narrows a listing. Zero fields match everything.
type Criteria struct {
	Status   Status
	Currency shared.Currency
	Search   string
}

// Filter returns the entries matching c, preserving order.
// Search is a case-insensitive substring match on reference, counterparty name and description.
func Filter(entries []Obligation, c Criteria) []Obligation {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]Obligation, 0, len(entries))
	for _, o := range entries {
		if c.Status != "" && o.Status != c.Status {
			continue
		}
		if c.Currency != "" && o.Currency != c.Currency {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(o.ReferenceNumber), needle) &&
			!strings.Contains(strings.ToLower(o.CounterpartyName), needle) &&
			!strings.Contains(strings.ToLower(o.Description), needle) {
			continue
		}
		out = append(out, o)
	}
	return out
}

const suggestionAttempts = 20

// SuggestReference proposes an unused INV-YYYYMMDD-NNN reference for now's day.
// intn draws the random suffix; it is tried a few times before falling back to a scan.
func SuggestReference(now time.Time, existing []Obligation, intn func(n int) int) (string, error) {
	used := make(map[string]struct{}, len(existing))
	for _, o := range existing {
		used[strings.ToUpper(o.ReferenceNumber)] = struct{}{}
	}
	prefix := "INV-" + now.Format("20060102") + "-"
	free := func(n int) (string, bool) {
		ref := fmt.Sprintf("%s%03d", prefix, n)
		_, taken := used[ref]
		return ref, !taken
	}

	for i := 0; i < suggestionAttempts; i++ {
		if ref, ok := free(intn(1000)); ok {
			return ref, nil
		}
	}
	for n := 0; n < 1000; n++ {
		if ref, ok := free(n); ok {
			return ref, nil
		}
	}
	return "", ErrReferenceSpaceExhausted
}
