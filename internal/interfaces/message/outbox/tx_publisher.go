package outbox

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	"fairtickets/internal/interfaces/message/events"
)

// TxPublisher publishes domain events into the outbox of the transaction
// carried by ctx, or straight into the outbox table when there is none.
type TxPublisher struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
	logger watermill.LoggerAdapter
}

func NewTxPublisher(db *sqlx.DB, getter *trmsqlx.CtxGetter, logger watermill.LoggerAdapter) *TxPublisher {
	return &TxPublisher{
		db:     db,
		getter: getter,
		logger: logger,
	}
}

func (p *TxPublisher) Publish(ctx context.Context, event any) error {
	publisher, err := NewPublisher(p.getter.DefaultTrOrDB(ctx, p.db), p.logger)
	if err != nil {
		return fmt.Errorf("failed to create outbox publisher: %w", err)
	}

	eb, err := events.NewEventBus(publisher, p.logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	return eb.Publish(ctx, event)
}
