package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/flowi-ledger/internal/domain/counterparty"
	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// ObligationServiceImpl implements the ObligationService interface.
// Read-modify-write sequences on one kind are serialized by a per-kind lock.
type ObligationServiceImpl struct {
	repo      obligation.Repository
	directory counterparty.Directory
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	intn      func(n int) int

	locks map[obligation.Kind]*sync.Mutex
}

// NewObligationService creates a new obligation service. Calendar-day rules are evaluated in loc.
func NewObligationService(
	logger *slog.Logger,
	repo obligation.Repository,
	directory counterparty.Directory,
	publisher EventPublisher,
	loc *time.Location,
) ObligationService {
	return newObligationService(logger, repo, directory, publisher, func() time.Time {
		return time.Now().In(loc)
	}, rand.Intn)
}

func newObligationService(
	logger *slog.Logger,
	repo obligation.Repository,
	directory counterparty.Directory,
	publisher EventPublisher,
	now func() time.Time,
	intn func(n int) int,
) *ObligationServiceImpl {
	return &ObligationServiceImpl{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		logger:    logger,
		now:       now,
		intn:      intn,
		locks: map[obligation.Kind]*sync.Mutex{
			obligation.KindReceivable: {},
			obligation.KindPayable:    {},
		},
	}
}

func (s *ObligationServiceImpl) lock(kind obligation.Kind) func() {
	mu, ok := s.locks[kind]
	if !ok {
		panic(fmt.Sprintf("unknown obligation kind %q", kind))
	}
	mu.Lock()
	return mu.Unlock
}

// load reads the collection for a read-only caller. A failed read degrades to an
// empty collection; the failure is logged, not returned.
func (s *ObligationServiceImpl) load(ctx context.Context, kind obligation.Kind, now time.Time) []obligation.Obligation {
	entries, err := s.loadForWrite(ctx, kind, now)
	if err != nil {
		s.logger.Error("Failed to load obligations, continuing with an empty collection",
			"kind", kind,
			"error", err,
		)
		return []obligation.Obligation{}
	}
	return entries
}

// loadForWrite reads and reconciles the collection a mutation is computed from.
// A failed read is returned, never degraded: saves replace the whole collection.
func (s *ObligationServiceImpl) loadForWrite(ctx context.Context, kind obligation.Kind, now time.Time) ([]obligation.Obligation, error) {
	entries, err := s.repo.Load(ctx, kind)
	if err != nil {
		return nil, &shared.PersistenceError{Op: "load", Collection: kind.Collection(), Err: err}
	}
	local := make([]obligation.Obligation, len(entries))
	for i := range entries {
		local[i] = entries[i].In(now.Location())
	}

	reconciled, changed := obligation.ReconcileOverdue(local, now)
	if len(changed) == 0 {
		return reconciled, nil
	}

	if err := s.save(ctx, kind, reconciled); err != nil {
		s.logger.Warn("Overdue reconciliation not persisted, will retry on next read", "kind", kind, "error", err)
		return reconciled, nil
	}
	s.logger.Info("Obligations became overdue", "kind", kind, "count", len(changed))
	for _, id := range changed {
		s.publish(ctx, shared.EventObligationOverdue, kind, reconciled[obligation.IndexOf(reconciled, id)], now)
	}
	return reconciled, nil
}

func (s *ObligationServiceImpl) save(ctx context.Context, kind obligation.Kind, entries []obligation.Obligation) error {
	if err := s.repo.Save(ctx, kind, entries); err != nil {
		return &shared.PersistenceError{Op: "save", Collection: kind.Collection(), Err: err}
	}
	return nil
}

type obligationEvent struct {
	Kind       obligation.Kind       `json:"kind"`
	Obligation obligation.Obligation `json:"obligation"`
}

func (s *ObligationServiceImpl) publish(ctx context.Context, t shared.EventType, kind obligation.Kind, o obligation.Obligation, now time.Time) {
	if s.publisher == nil {
		return
	}
	event := shared.NewEvent(t, obligationEvent{Kind: kind, Obligation: o}, now)
	event.CorrelationID = shared.CorrelationIDFromContext(ctx)
	if err := s.publisher.Publish(ctx, o.ID.String(), event); err != nil {
		s.logger.Error("Failed to publish obligation event",
			"type", t,
			"obligation_id", o.ID,
			"error", err,
		)
	}
}

// List returns the reconciled collection narrowed by c
func (s *ObligationServiceImpl) List(ctx context.Context, kind obligation.Kind, c obligation.Criteria) ([]obligation.Obligation, error) {
	defer s.lock(kind)()
	entries := s.load(ctx, kind, s.now())
	return obligation.Filter(entries, c), nil
}

// Get returns a copy of the entry with id
func (s *ObligationServiceImpl) Get(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	defer s.lock(kind)()
	entries := s.load(ctx, kind, s.now())
	i := obligation.IndexOf(entries, id)
	if i < 0 {
		return nil, obligation.ErrObligationNotFound{ID: id}
	}
	o := entries[i]
	return &o, nil
}

// Create validates in against the current collection and appends a pending entry
func (s *ObligationServiceImpl) Create(ctx context.Context, kind obligation.Kind, in obligation.Input) (*obligation.Obligation, error) {
	defer s.lock(kind)()
	now := s.now()
	entries, err := s.loadForWrite(ctx, kind, now)
	if err != nil {
		return nil, err
	}

	if err := obligation.Validate(kind, in, entries, uuid.Nil); err != nil {
		return nil, err
	}
	name, err := s.resolveCounterparty(ctx, in)
	if err != nil {
		return nil, err
	}

	created := obligation.New(in, name, now)
	next := make([]obligation.Obligation, 0, len(entries)+1)
	next = append(next, entries...)
	next = append(next, created)
	if err := s.save(ctx, kind, next); err != nil {
		return nil, err
	}

	s.logger.Info("Obligation created",
		"kind", kind,
		"obligation_id", created.ID,
		"reference_number", created.ReferenceNumber,
		"amount", created.Money().String(),
		"due_date", created.DueDate,
	)
	s.publish(ctx, shared.EventObligationCreated, kind, created, now)
	return &created, nil
}

// Update rewrites the editable fields of id
func (s *ObligationServiceImpl) Update(ctx context.Context, kind obligation.Kind, id uuid.UUID, in obligation.Input) (*obligation.Obligation, error) {
	defer s.lock(kind)()
	now := s.now()
	entries, err := s.loadForWrite(ctx, kind, now)
	if err != nil {
		return nil, err
	}

	i := obligation.IndexOf(entries, id)
	if i < 0 {
		return nil, obligation.ErrObligationNotFound{ID: id}
	}
	if err := obligation.Validate(kind, in, entries, id); err != nil {
		return nil, err
	}
	name, err := s.resolveCounterparty(ctx, in)
	if err != nil {
		return nil, err
	}

	updated, err := entries[i].Edit(in, name, now)
	if err != nil {
		return nil, err
	}
	next := make([]obligation.Obligation, len(entries))
	copy(next, entries)
	next[i] = updated
	if err := s.save(ctx, kind, next); err != nil {
		return nil, err
	}

	s.logger.Info("Obligation updated", "kind", kind, "obligation_id", id, "due_date", updated.DueDate)
	s.publish(ctx, shared.EventObligationUpdated, kind, updated, now)
	return &updated, nil
}

// Delete removes id. An absent id is not an error and nothing is written.
func (s *ObligationServiceImpl) Delete(ctx context.Context, kind obligation.Kind, id uuid.UUID) error {
	defer s.lock(kind)()
	now := s.now()
	entries, err := s.loadForWrite(ctx, kind, now)
	if err != nil {
		return err
	}

	i := obligation.IndexOf(entries, id)
	if i < 0 {
		s.logger.Debug("Delete of absent obligation ignored", "kind", kind, "obligation_id", id)
		return nil
	}
	removed := entries[i]
	next, _ := obligation.Without(entries, id)
	if err := s.save(ctx, kind, next); err != nil {
		return err
	}

	s.logger.Info("Obligation deleted", "kind", kind, "obligation_id", id)
	s.publish(ctx, shared.EventObligationDeleted, kind, removed, now)
	return nil
}

// MarkPaid moves a pending or overdue entry to paid
func (s *ObligationServiceImpl) MarkPaid(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	return s.transition(ctx, kind, id, obligation.StatusPaid, shared.EventObligationPaid)
}

// Cancel moves a pending or overdue entry to cancelled
func (s *ObligationServiceImpl) Cancel(ctx context.Context, kind obligation.Kind, id uuid.UUID) (*obligation.Obligation, error) {
	return s.transition(ctx, kind, id, obligation.StatusCancelled, shared.EventObligationCancelled)
}

func (s *ObligationServiceImpl) transition(ctx context.Context, kind obligation.Kind, id uuid.UUID, to obligation.Status, event shared.EventType) (*obligation.Obligation, error) {
	defer s.lock(kind)()
	now := s.now()
	entries, err := s.loadForWrite(ctx, kind, now)
	if err != nil {
		return nil, err
	}

	i := obligation.IndexOf(entries, id)
	if i < 0 {
		return nil, obligation.ErrObligationNotFound{ID: id}
	}
	moved, err := entries[i].Transition(to, now)
	if err != nil {
		return nil, err
	}

	next := make([]obligation.Obligation, len(entries))
	copy(next, entries)
	next[i] = moved
	if err := s.save(ctx, kind, next); err != nil {
		return nil, err
	}

	s.logger.Info("Obligation status changed",
		"kind", kind,
		"obligation_id", id,
		"from", entries[i].Status,
		"to", to,
	)
	s.publish(ctx, event, kind, moved, now)
	return &moved, nil
}

// Reconcile loads, reconciles and persists the collection, returning the ids it moved
func (s *ObligationServiceImpl) Reconcile(ctx context.Context, kind obligation.Kind) ([]uuid.UUID, error) {
	defer s.lock(kind)()
	now := s.now()

	entries, err := s.repo.Load(ctx, kind)
	if err != nil {
		return nil, &shared.PersistenceError{Op: "load", Collection: kind.Collection(), Err: err}
	}
	reconciled, changed := obligation.ReconcileOverdue(entries, now)
	if len(changed) == 0 {
		return changed, nil
	}
	if err := s.save(ctx, kind, reconciled); err != nil {
		return nil, err
	}

	s.logger.Info("Obligations became overdue", "kind", kind, "count", len(changed))
	for _, id := range changed {
		s.publish(ctx, shared.EventObligationOverdue, kind, reconciled[obligation.IndexOf(reconciled, id)], now)
	}
	return changed, nil
}

// Summary returns the outstanding and overdue figures of the reconciled collection
func (s *ObligationServiceImpl) Summary(ctx context.Context, kind obligation.Kind) (obligation.Summary, error) {
	defer s.lock(kind)()
	return obligation.Summarize(s.load(ctx, kind, s.now())), nil
}

// NextReference suggests an unused reference number for today
func (s *ObligationServiceImpl) NextReference(ctx context.Context, kind obligation.Kind) (string, error) {
	defer s.lock(kind)()
	now := s.now()
	return obligation.SuggestReference(now, s.load(ctx, kind, now), s.intn)
}

// resolveCounterparty returns the name of the referenced active customer or supplier
func (s *ObligationServiceImpl) resolveCounterparty(ctx context.Context, in obligation.Input) (string, error) {
	id := strings.TrimSpace(in.CounterpartyID())

	switch in.CounterpartyType {
	case obligation.CounterpartyCustomer:
		customers, err := s.directory.LoadCustomers(ctx)
		if err != nil {
			return "", &shared.PersistenceError{Op: "load", Collection: "customers", Err: err}
		}
		for _, c := range customers {
			if c.ID == id {
				if !c.IsActive {
					return "", obligation.ValidationError{Field: "counterparty_id", Reason: fmt.Sprintf("customer %s is inactive", c.Name)}
				}
				return c.Name, nil
			}
		}
		return "", obligation.ValidationError{Field: "counterparty_id", Reason: fmt.Sprintf("customer %s does not exist", id)}

	case obligation.CounterpartySupplier:
		suppliers, err := s.directory.LoadSuppliers(ctx)
		if err != nil {
			return "", &shared.PersistenceError{Op: "load", Collection: "suppliers", Err: err}
		}
		for _, sup := range suppliers {
			if sup.ID == id {
				if !sup.IsActive {
					return "", obligation.ValidationError{Field: "counterparty_id", Reason: fmt.Sprintf("supplier %s is inactive", sup.Name)}
				}
				return sup.Name, nil
			}
		}
		return "", obligation.ValidationError{Field: "counterparty_id", Reason: fmt.Sprintf("supplier %s does not exist", id)}
	}

	return "", obligation.ValidationError{Field: "counterparty_type", Reason: "counterparty type must be customer or supplier"}
}
