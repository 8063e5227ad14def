package marketplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/clock"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
	"fairtickets/internal/idempotency"
)

// EventDirectory resolves an event to its ledger.
type EventDirectory interface {
	Ledger(ctx context.Context, eventID string) (*ledger.Ledger, error)
}

type Deps struct {
	Directory EventDirectory
	Store     resale.Store
	Tx        resale.Transactor
	Events    resale.EventPublisher
	Clock     clock.Clock
}

// Marketplace holds at most one listing record per (event, token). Every
// operation on a listing runs under that listing's lock and, while it
// inspects the ticket, under the ticket's lock: listing before ticket, never
// the other way around.
type Marketplace struct {
	deps Deps

	mu       sync.Mutex
	listings map[listingKey]*slot
}

type listingKey struct {
	eventID string
	tokenID uint64
}

type slot struct {
	mu      sync.Mutex
	listing entities.Listing
}

func New(deps Deps) *Marketplace {
	return &Marketplace{
		deps:     deps,
		listings: make(map[listingKey]*slot),
	}
}

// Restore loads persisted listing records.
func (m *Marketplace) Restore(listings []entities.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range listings {
		m.listings[listingKey{l.EventID, l.TokenID}] = &slot{listing: l}
	}
}

// List offers a ticket for resale. The price cap is checked here as an early
// rejection and again at purchase time.
func (m *Marketplace) List(ctx context.Context, eventID string, tokenID uint64, seller string, price uint64) (entities.Listing, error) {
	if price == 0 {
		return entities.Listing{}, resale.ErrInvalidPrice
	}

	l, err := m.deps.Directory.Ledger(ctx, eventID)
	if err != nil {
		return entities.Listing{}, err
	}

	// Tickets are never removed, so a token that exists now still exists
	// once the slot is held.
	if _, err := l.Ticket(tokenID); err != nil {
		return entities.Listing{}, err
	}

	s := m.slot(eventID, tokenID, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	var listing entities.Listing
	err = l.WithTicket(tokenID, func(t entities.Ticket) error {
		if t.Owner != seller {
			return fmt.Errorf("%w: %s", resale.ErrNotTicketOwner, seller)
		}
		if t.Redeemed {
			return fmt.Errorf("%w: token %d", resale.ErrTicketRedeemed, tokenID)
		}
		// A listing left behind by a former owner is void and gets overwritten.
		if s.listing.Active && s.listing.Seller == t.Owner {
			return fmt.Errorf("%w: %s", resale.ErrListingAlreadyActive, s.listing.ID)
		}
		if err := resale.CheckPriceCap(price, t.OriginalPrice, l.Policy()); err != nil {
			return err
		}

		listing = entities.Listing{
			ID:        uuid.NewString(),
			EventID:   eventID,
			TokenID:   tokenID,
			Seller:    seller,
			Price:     price,
			Active:    true,
			CreatedAt: m.deps.Clock.Now(),
		}
		return m.deps.Tx.Do(ctx, func(ctx context.Context) error {
			if err := m.deps.Store.SaveListing(ctx, listing); err != nil {
				return fmt.Errorf("save listing: %w", err)
			}
			return m.deps.Events.Publish(ctx, entities.TicketListed_v1{
				Header:    header(ctx),
				ListingID: listing.ID,
				EventID:   eventID,
				TokenID:   tokenID,
				Seller:    seller,
				Price:     price,
			})
		})
	})
	if err != nil {
		return entities.Listing{}, err
	}

	s.listing = listing

	log.FromContext(ctx).
		WithField("listing_id", listing.ID).
		WithField("event_id", eventID).
		WithField("token_id", tokenID).
		Info("Ticket listed")

	return listing, nil
}

// Cancel lets the seller withdraw an active listing.
func (m *Marketplace) Cancel(ctx context.Context, eventID string, tokenID uint64, caller string) error {
	s := m.slot(eventID, tokenID, false)
	if s == nil {
		return fmt.Errorf("%w: event %s token %d", resale.ErrListingNotActive, eventID, tokenID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listing.Active {
		return fmt.Errorf("%w: %s", resale.ErrListingNotActive, s.listing.ID)
	}
	if caller != s.listing.Seller {
		return fmt.Errorf("%w: %s", resale.ErrNotSeller, caller)
	}

	return m.deactivate(ctx, s, entities.ListingCancelledBySeller)
}

// Void deactivates the listing of a ticket that can no longer be sold, such
// as a redeemed one. It is a no-op when nothing is listed.
func (m *Marketplace) Void(ctx context.Context, eventID string, tokenID uint64) error {
	s := m.slot(eventID, tokenID, false)
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listing.Active {
		return nil
	}
	return m.deactivate(ctx, s, entities.ListingVoided)
}

// Listing returns the listing record of a ticket. An active listing whose
// seller no longer owns the ticket is reported inactive.
func (m *Marketplace) Listing(ctx context.Context, eventID string, tokenID uint64) (entities.Listing, error) {
	var listing entities.Listing
	if s := m.slot(eventID, tokenID, false); s != nil {
		s.mu.Lock()
		listing = s.listing
		s.mu.Unlock()
	}
	// A slot is created before the first listing attempt commits.
	if listing.ID == "" {
		return entities.Listing{}, fmt.Errorf("%w: event %s token %d", resale.ErrListingNotFound, eventID, tokenID)
	}

	if listing.Active {
		l, err := m.deps.Directory.Ledger(ctx, eventID)
		if err != nil {
			return entities.Listing{}, err
		}
		t, err := l.Ticket(tokenID)
		if err != nil {
			return entities.Listing{}, err
		}
		if t.Owner != listing.Seller || t.Redeemed {
			listing.Active = false
		}
	}
	return listing, nil
}

func (m *Marketplace) deactivate(ctx context.Context, s *slot, reason string) error {
	inactive := s.listing
	inactive.Active = false

	err := m.deps.Tx.Do(ctx, func(ctx context.Context) error {
		if err := m.deps.Store.SaveListing(ctx, inactive); err != nil {
			return fmt.Errorf("save listing: %w", err)
		}
		return m.deps.Events.Publish(ctx, entities.ListingCancelled_v1{
			Header:    header(ctx),
			ListingID: inactive.ID,
			EventID:   inactive.EventID,
			TokenID:   inactive.TokenID,
			Seller:    inactive.Seller,
			Reason:    reason,
		})
	})
	if err != nil {
		return err
	}

	s.listing = inactive

	log.FromContext(ctx).
		WithField("listing_id", inactive.ID).
		WithField("reason", reason).
		Info("Listing deactivated")

	return nil
}

func (m *Marketplace) slot(eventID string, tokenID uint64, create bool) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := listingKey{eventID, tokenID}
	s, ok := m.listings[k]
	if !ok && create {
		s = &slot{}
		m.listings[k] = s
	}
	return s
}

func header(ctx context.Context) entities.EventHeader {
	return entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx))
}
