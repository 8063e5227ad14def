package repository

import (
	"context"

	trmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// Transactor runs a unit of work in one Postgres transaction; the transaction
// travels in ctx to the Store and the outbox publisher.
type Transactor struct {
	trManager *trmanager.Manager
}

func NewTransactor(trManager *trmanager.Manager) *Transactor {
	return &Transactor{trManager: trManager}
}

func (t *Transactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.trManager.Do(ctx, fn)
}
