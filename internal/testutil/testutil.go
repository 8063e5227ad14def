package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/application/usecases/marketplace"
	"fairtickets/internal/clock"
	"fairtickets/internal/infrastructure/memory"
)

// Epoch is the fake clock's starting instant in tests.
var Epoch = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// Recorder captures published events.
type Recorder struct {
	mu     sync.Mutex
	events []any
}

func (r *Recorder) Publish(_ context.Context, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

// Last returns the most recent event of type T.
func Last[T any](r *Recorder) (T, bool) {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if e, ok := events[i].(T); ok {
			return e, true
		}
	}
	var zero T
	return zero, false
}

func Count[T any](r *Recorder) int {
	n := 0
	for _, e := range r.Events() {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

var ErrCommitFailed = errors.New("commit failed")

// FailingCommit runs the unit of work and then fails as if the commit was lost.
type FailingCommit struct{}

func (FailingCommit) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return ErrCommitFailed
}

// World wires the in-memory collaborators around a directory and a marketplace.
type World struct {
	Clock     *clock.Fake
	Registry  *memory.Registry
	Bank      *memory.Bank
	Events    *Recorder
	Deps      ledger.Deps
	Directory *directory.Directory
	Market    *marketplace.Marketplace
}

func NewWorld() *World {
	w := &World{
		Clock:    clock.NewFake(Epoch),
		Registry: memory.NewRegistry(),
		Bank:     memory.NewBank(),
		Events:   &Recorder{},
	}
	w.Deps = ledger.Deps{
		Oracle:   w.Registry,
		Payments: w.Bank,
		Store:    memory.Store{},
		Tx:       memory.Transactor{},
		Events:   w.Events,
		Clock:    w.Clock,
	}
	w.Directory = directory.New(w.Deps)
	w.Market = marketplace.New(marketplace.Deps{
		Directory: w.Directory,
		Store:     memory.Store{},
		Tx:        memory.Transactor{},
		Events:    w.Events,
		Clock:     w.Clock,
	})
	return w
}

// Fund verifies an account and deposits an amount on it.
func (w *World) Fund(account string, amount uint64) {
	_ = w.Registry.Verify(context.Background(), account)
	w.Deposit(account, amount)
}

func (w *World) Deposit(account string, amount uint64) {
	_ = w.Bank.Deposit(context.Background(), account, amount)
}

func (w *World) Balance(account string) uint64 {
	b, _ := w.Bank.Balance(context.Background(), account)
	return b
}
