package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
	"fairtickets/internal/idempotency"
)

type CreateEvent struct {
	Organizer string
	Name      string
	Symbol    string
	Date      time.Time
	BasePrice uint64
	Policy    entities.ResalePolicy
}

// Snapshot is the persisted state of one event's ledger.
type Snapshot struct {
	Event    entities.Event
	Tickets  []entities.Ticket
	Proceeds uint64
}

// Directory creates events and owns one ledger per event.
type Directory struct {
	deps ledger.Deps
	opts []ledger.Option

	mu      sync.RWMutex
	ledgers map[string]*ledger.Ledger
	order   []string
}

func New(deps ledger.Deps, opts ...ledger.Option) *Directory {
	return &Directory{
		deps:    deps,
		opts:    opts,
		ledgers: make(map[string]*ledger.Ledger),
	}
}

func (d *Directory) CreateEvent(ctx context.Context, req CreateEvent) (entities.Event, error) {
	req.Organizer = strings.TrimSpace(req.Organizer)
	req.Name = strings.TrimSpace(req.Name)
	if req.Organizer == "" {
		return entities.Event{}, fmt.Errorf("%w: organizer is required", resale.ErrInvalidPolicy)
	}
	if req.Name == "" {
		return entities.Event{}, fmt.Errorf("%w: name is required", resale.ErrInvalidPolicy)
	}
	if err := resale.ValidatePolicy(req.BasePrice, req.Policy); err != nil {
		return entities.Event{}, err
	}

	event := entities.Event{
		ID:        uuid.NewString(),
		Organizer: req.Organizer,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Date:      req.Date.UTC(),
		BasePrice: req.BasePrice,
		Policy:    req.Policy,
	}

	err := d.deps.Tx.Do(ctx, func(ctx context.Context) error {
		if err := d.deps.Store.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return d.deps.Events.Publish(ctx, entities.EventCreated_v1{
			Header:    entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
			EventID:   event.ID,
			Organizer: event.Organizer,
			Name:      event.Name,
			BasePrice: event.BasePrice,
		})
	})
	if err != nil {
		return entities.Event{}, err
	}

	d.add(ledger.New(event, d.deps, d.opts...))

	log.FromContext(ctx).
		WithField("event_id", event.ID).
		WithField("organizer", event.Organizer).
		Info("Event created")

	return event, nil
}

// Restore rebuilds ledgers from persisted snapshots.
func (d *Directory) Restore(snapshots []Snapshot) {
	for _, s := range snapshots {
		d.add(ledger.Restore(s.Event, s.Tickets, s.Proceeds, d.deps, d.opts...))
	}
}

func (d *Directory) Ledger(_ context.Context, eventID string) (*ledger.Ledger, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	l, ok := d.ledgers[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", resale.ErrEventNotFound, eventID)
	}
	return l, nil
}

// Events lists events in creation order.
func (d *Directory) Events() []entities.Event {
	d.mu.RLock()
	defer d.mu.RUnlock()

	events := make([]entities.Event, 0, len(d.order))
	for _, id := range d.order {
		events = append(events, d.ledgers[id].Event())
	}
	return events
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

func (d *Directory) add(l *ledger.Ledger) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := l.Event().ID
	if _, ok := d.ledgers[id]; !ok {
		d.order = append(d.order, id)
	}
	d.ledgers[id] = l
}
