package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fairtickets/internal/entities"
)

// EventsRepository keeps every published domain event, an audit trail of
// mints, resales and redemptions.
type EventsRepository struct {
	db *sqlx.DB
}

func NewEventsRepo(db *sqlx.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

func (r *EventsRepository) SaveEvent(ctx context.Context, event entities.DatalakeEvent) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO domain_events (event_id, published_at, event_name, event_payload)
		VALUES (:event_id, :published_at, :event_name, :event_payload)
		ON CONFLICT DO NOTHING
	`, event)
	return err
}

func (r *EventsRepository) List(ctx context.Context, eventName string) ([]entities.DatalakeEvent, error) {
	var events []entities.DatalakeEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM domain_events
		WHERE event_name = $1
		ORDER BY published_at
	`, eventName)
	return events, err
}
