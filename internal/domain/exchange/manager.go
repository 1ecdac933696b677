package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowi-ledger/internal/domain/shared"
)

// Subscriber is invoked with every newly set rate
type Subscriber func(ctx context.Context, rate Rate)

type subscription struct {
	id int
	fn Subscriber
}

// Manager holds the single current rate and fans out changes to subscribers.
// Callers read the rate once and thread the value through their computation.
type Manager struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *Rate

	// writeMu orders persistence and publication of new rates
	writeMu sync.Mutex

	subMu  sync.Mutex
	subs   []subscription
	nextID int
}

// NewManager creates a manager over repo. repo may be nil for a purely in-memory manager.
func NewManager(repo Repository, logger *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads the newest persisted rate. When none exists and seed is positive,
// seed is recorded as the first rate.
func (m *Manager) Restore(ctx context.Context, seed float64) error {
	if m.repo != nil {
		latest, err := m.repo.Latest(ctx)
		if err != nil {
			return &shared.PersistenceError{Op: "load", Collection: "exchange_rates", Err: err}
		}
		if latest != nil {
			m.mu.Lock()
			m.current = latest
			m.mu.Unlock()
			m.logger.Info("exchange rate restored", "usd_to_local", latest.USDToLocal.String(), "captured_at", latest.CapturedAt)
			return nil
		}
	}
	if seed > 0 {
		if _, err := m.SetRate(ctx, seed, "seed"); err != nil {
			return err
		}
	}
	return nil
}

// Current returns the rate in force, if any
func (m *Manager) Current() (Rate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Rate{}, false
	}
	return *m.current, true
}

// SetRate records a new rate and notifies subscribers synchronously in subscription order.
// A rejected or unpersisted value leaves the prior rate in force.
func (m *Manager) SetRate(ctx context.Context, value float64, source string) (Rate, error) {
	rate, err := m.record(ctx, value, source)
	if err != nil {
		return Rate{}, err
	}

	m.logger.Info("exchange rate updated", "rate_id", rate.ID, "usd_to_local", rate.USDToLocal.String(), "source", source)

	for _, s := range m.subscribers() {
		s.fn(ctx, rate)
	}
	return rate, nil
}

// record persists the rate and makes it current as one step, so the newest
// persisted row is always the one in force
func (m *Manager) record(ctx context.Context, value float64, source string) (Rate, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	rate, err := NewRate(value, source, m.now())
	if err != nil {
		return Rate{}, err
	}

	if m.repo != nil {
		if err := m.repo.Append(ctx, rate); err != nil {
			m.logger.Error("failed to persist exchange rate", "error", err, "usd_to_local", rate.USDToLocal.String())
			return Rate{}, &shared.PersistenceError{Op: "save", Collection: "exchange_rates", Err: err}
		}
	}

	m.mu.Lock()
	m.current = &rate
	m.mu.Unlock()
	return rate, nil
}

// History lists recorded rates, newest first
func (m *Manager) History(ctx context.Context, limit int) ([]Rate, error) {
	if m.repo == nil {
		if r, ok := m.Current(); ok {
			return []Rate{r}, nil
		}
		return []Rate{}, nil
	}
	rates, err := m.repo.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing rate history: %w", &shared.PersistenceError{Op: "load", Collection: "exchange_rates", Err: err})
	}
	return rates, nil
}

// Subscribe registers fn and returns a function that removes it
func (m *Manager) Subscribe(fn Subscriber) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) subscribers() []subscription {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	out := make([]subscription, len(m.subs))
	copy(out, m.subs)
	return out
}
