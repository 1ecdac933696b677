package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flowi-ledger/internal/domain/obligation"
	"github.com/flowi-ledger/internal/domain/sales"
	"github.com/panjf2000/ants/v2"
)

// Parts selects which inputs a load fetches
type Parts uint8

const (
	PartSales Parts = 1 << iota
	PartProducts
	PartReceivables
	PartPayables

	PartAll = PartSales | PartProducts | PartReceivables | PartPayables
)

// Loaded is the result of one boundary load. Parts that were not requested stay empty.
type Loaded struct {
	Sales       []sales.Record
	Products    []sales.Product
	Receivables []obligation.Obligation
	Payables    []obligation.Obligation
}

// InputsLoader fetches the collections derived metrics are computed from
type InputsLoader interface {
	Load(ctx context.Context, parts Parts) (*Loaded, error)
}

// SnapshotLoader fetches the requested parts concurrently on a bounded worker pool.
// A failing catalog read degrades to an empty slice and is logged.
type SnapshotLoader struct {
	pool        *ants.Pool
	source      sales.Source
	obligations ObligationService
	logger      *slog.Logger
}

// NewSnapshotLoader creates a loader with a pool of size workers
func NewSnapshotLoader(logger *slog.Logger, size int, source sales.Source, obligations ObligationService) (*SnapshotLoader, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create loader pool: %w", err)
	}
	return &SnapshotLoader{
		pool:        pool,
		source:      source,
		obligations: obligations,
		logger:      logger,
	}, nil
}

// Load returns once every requested part has been fetched
func (l *SnapshotLoader) Load(ctx context.Context, parts Parts) (*Loaded, error) {
	out := &Loaded{
		Sales:       []sales.Record{},
		Products:    []sales.Product{},
		Receivables: []obligation.Obligation{},
		Payables:    []obligation.Obligation{},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	tasks := map[Parts]func(){
		PartSales: func() {
			records, err := l.source.LoadSales(ctx)
			if err != nil {
				l.logger.Error("Failed to load sales, continuing without them", "error", err)
				return
			}
			out.Sales = records
		},
		PartProducts: func() {
			products, err := l.source.LoadProducts(ctx)
			if err != nil {
				l.logger.Error("Failed to load products, continuing without them", "error", err)
				return
			}
			out.Products = products
		},
		PartReceivables: func() {
			entries, err := l.obligations.List(ctx, obligation.KindReceivable, obligation.Criteria{})
			if err != nil {
				fail(err)
				return
			}
			out.Receivables = entries
		},
		PartPayables: func() {
			entries, err := l.obligations.List(ctx, obligation.KindPayable, obligation.Criteria{})
			if err != nil {
				fail(err)
				return
			}
			out.Payables = entries
		},
	}

	for _, part := range []Parts{PartSales, PartProducts, PartReceivables, PartPayables} {
		if parts&part == 0 {
			continue
		}
		task := tasks[part]
		wg.Add(1)
		if err := l.pool.Submit(func() {
			defer wg.Done()
			task()
		}); err != nil {
			wg.Done()
			l.logger.Error("Failed to submit load to worker pool", "error", err)
			fail(fmt.Errorf("failed to submit load: %w", err))
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return out, nil
}

// Shutdown releases the worker pool
func (l *SnapshotLoader) Shutdown() {
	l.logger.Info("Shutting down loader pool", "running_workers", l.pool.Running())
	l.pool.Release()
}
