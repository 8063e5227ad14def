package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"fairtickets/internal/clock"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
	"fairtickets/internal/idempotency"
)

const defaultCallTimeout = 2 * time.Second

type Deps struct {
	Oracle   resale.VerificationOracle
	Payments resale.Payments
	Store    resale.Store
	Tx       resale.Transactor
	Events   resale.EventPublisher
	Clock    clock.Clock
}

// Ledger owns the tickets of one event. Operations on different tickets run
// in parallel; operations on the same ticket are serialized by its slot lock.
type Ledger struct {
	deps        Deps
	callTimeout time.Duration

	eventID   string
	organizer string
	basePrice uint64
	policy    entities.ResalePolicy

	// issueMu serializes token id allocation and the proceeds balance (mint, withdraw).
	issueMu sync.Mutex

	mu       sync.RWMutex
	event    entities.Event
	tickets  map[uint64]*slot
	proceeds uint64
}

type slot struct {
	mu     sync.Mutex
	ticket entities.Ticket
}

type Option func(*Ledger)

// WithCallTimeout bounds every oracle and payments call.
func WithCallTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.callTimeout = d
		}
	}
}

func New(event entities.Event, deps Deps, opts ...Option) *Ledger {
	return Restore(event, nil, 0, deps, opts...)
}

// Restore rebuilds a ledger from persisted records.
func Restore(event entities.Event, tickets []entities.Ticket, proceeds uint64, deps Deps, opts ...Option) *Ledger {
	l := &Ledger{
		deps:        deps,
		callTimeout: defaultCallTimeout,
		eventID:     event.ID,
		organizer:   event.Organizer,
		basePrice:   event.BasePrice,
		policy:      event.Policy,
		event:       event,
		tickets:     make(map[uint64]*slot, len(tickets)),
		proceeds:    proceeds,
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, t := range tickets {
		l.tickets[t.TokenID] = &slot{ticket: t}
		if t.TokenID >= l.event.TotalIssued {
			l.event.TotalIssued = t.TokenID + 1
		}
	}
	return l
}

func (l *Ledger) Event() entities.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.event
}

func (l *Ledger) Policy() entities.ResalePolicy {
	return l.policy
}

func (l *Ledger) Organizer() string {
	return l.organizer
}

// Proceeds is the primary-sale balance awaiting withdrawal.
func (l *Ledger) Proceeds() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.proceeds
}

func (l *Ledger) Ticket(tokenID uint64) (entities.Ticket, error) {
	s, err := l.slot(tokenID)
	if err != nil {
		return entities.Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket, nil
}

// TicketsOf lists the tickets currently held by owner, ordered by token id.
func (l *Ledger) TicketsOf(owner string) []entities.Ticket {
	l.mu.RLock()
	slots := make([]*slot, 0, len(l.tickets))
	for _, s := range l.tickets {
		slots = append(slots, s)
	}
	l.mu.RUnlock()

	var held []entities.Ticket
	for _, s := range slots {
		s.mu.Lock()
		if s.ticket.Owner == owner {
			held = append(held, s.ticket)
		}
		s.mu.Unlock()
	}
	sort.Slice(held, func(i, j int) bool { return held[i].TokenID < held[j].TokenID })
	return held
}

// WithTicket runs fn while holding the ticket's lock, so no mint, resale or
// redemption of that ticket interleaves with it. fn must not call back into
// the ledger for the same ticket.
func (l *Ledger) WithTicket(tokenID uint64, fn func(t entities.Ticket) error) error {
	s, err := l.slot(tokenID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ticket)
}

func (l *Ledger) slot(tokenID uint64) (*slot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.tickets[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: event %s token %d", resale.ErrTicketNotFound, l.eventID, tokenID)
	}
	return s, nil
}

func (l *Ledger) verify(ctx context.Context, account string, rejected *resale.Error) error {
	ctx, cancel := context.WithTimeout(ctx, l.callTimeout)
	defer cancel()

	ok, err := l.deps.Oracle.IsVerified(ctx, account)
	if err != nil {
		return resale.Unavailable(resale.ErrOracleUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", rejected, account)
	}
	return nil
}

// commit settles the payment and then runs fn as one unit of work. fn
// publishes the operation's events, so nothing is announced for a payment
// that was refused. If the unit fails after money moved, the settlement is
// reversed.
func (l *Ledger) commit(ctx context.Context, settlement *resale.Settlement, fn func(ctx context.Context) error) error {
	if settlement != nil {
		payCtx, cancel := context.WithTimeout(ctx, l.callTimeout)
		err := l.deps.Payments.Settle(payCtx, *settlement)
		cancel()
		if err != nil {
			return resale.Unavailable(resale.ErrPaymentsUnavailable, err)
		}
	}

	err := l.deps.Tx.Do(ctx, fn)
	if err != nil && settlement != nil {
		if rerr := l.deps.Payments.Reverse(context.WithoutCancel(ctx), settlement.Reference); rerr != nil {
			log.FromContext(ctx).
				WithField("reference", settlement.Reference).
				WithField("error", rerr).
				Error("Failed to reverse settlement of aborted commit")
		}
	}
	return err
}

// reference derives the settlement reference from the request's idempotency
// key, so a replayed request is rejected by payments instead of charging twice.
func (l *Ledger) reference(ctx context.Context, op, subject string) string {
	return fmt.Sprintf("%s:%s:%s:%s", idempotency.GetKey(ctx), op, l.eventID, subject)
}

func (l *Ledger) header(ctx context.Context) entities.EventHeader {
	return entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx))
}
