package memory

import (
	"context"

	"fairtickets/internal/entities"
)

// Store keeps nothing; the ledgers' in-process arenas are the only copy of
// state when no database is configured.
type Store struct{}

func (Store) SaveEvent(context.Context, entities.Event) error     { return nil }
func (Store) SaveTicket(context.Context, entities.Ticket) error   { return nil }
func (Store) SaveListing(context.Context, entities.Listing) error { return nil }
func (Store) SaveProceeds(context.Context, string, uint64) error  { return nil }

// Transactor runs the unit of work directly.
type Transactor struct{}

func (Transactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Publisher drops every event.
type Publisher struct{}

func (Publisher) Publish(context.Context, any) error { return nil }
