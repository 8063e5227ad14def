package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
)

// Buy purchases the active listing of a ticket for exactly its price.
//
// Listing deactivation, ownership transfer and the payment split commit as
// one unit. Every resale rule is re-validated against current state, so a
// listing accepted earlier can still be rejected now (e.g. the hold period
// has not elapsed yet). A failed purchase leaves the listing active.
// Concurrent buyers are serialized on the listing; the losers observe
// ErrListingNotActive.
func (m *Marketplace) Buy(ctx context.Context, eventID string, tokenID uint64, buyer string, paidAmount uint64) (ledger.Sale, error) {
	l, err := m.deps.Directory.Ledger(ctx, eventID)
	if err != nil {
		return ledger.Sale{}, err
	}

	s := m.slot(eventID, tokenID, false)
	if s == nil {
		return ledger.Sale{}, fmt.Errorf("%w: event %s token %d", resale.ErrListingNotActive, eventID, tokenID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listing := s.listing
	if !listing.Active {
		return ledger.Sale{}, fmt.Errorf("%w: %s", resale.ErrListingNotActive, listing.ID)
	}
	if paidAmount != listing.Price {
		return ledger.Sale{}, fmt.Errorf("%w: paid %d, listed at %d", resale.ErrPriceMismatch, paidAmount, listing.Price)
	}
	if buyer == listing.Seller {
		return ledger.Sale{}, resale.ErrBuyerIsSeller
	}

	t, err := l.Ticket(tokenID)
	if err != nil {
		return ledger.Sale{}, err
	}
	if t.Owner != listing.Seller {
		return ledger.Sale{}, fmt.Errorf("%w: %s", resale.ErrSellerNoLongerOwner, listing.ID)
	}

	sold := listing
	sold.Active = false

	sale, err := l.TransferForResale(
		ctx,
		ledger.Resale{
			TokenID: tokenID,
			From:    listing.Seller,
			To:      buyer,
			Price:   listing.Price,
			At:      m.deps.Clock.Now(),
		},
		func(ctx context.Context, sale ledger.Sale) error {
			if err := m.deps.Store.SaveListing(ctx, sold); err != nil {
				return fmt.Errorf("save listing: %w", err)
			}
			return m.deps.Events.Publish(ctx, entities.TicketResold_v1{
				Header:        header(ctx),
				EventID:       eventID,
				TokenID:       tokenID,
				ListingID:     listing.ID,
				Seller:        sale.Seller,
				Buyer:         sale.Buyer,
				Price:         sale.Price,
				Royalty:       sale.Royalty,
				Proceeds:      sale.Proceeds,
				TransferCount: sale.Ticket.TransferCount,
				SoldAt:        sale.Ticket.LastPurchaseTimestamp,
			})
		},
	)
	if errors.Is(err, resale.ErrNotOwner) {
		return ledger.Sale{}, fmt.Errorf("%w: %s", resale.ErrSellerNoLongerOwner, listing.ID)
	}
	if err != nil {
		return ledger.Sale{}, err
	}

	s.listing = sold

	log.FromContext(ctx).
		WithField("listing_id", listing.ID).
		WithField("event_id", eventID).
		WithField("token_id", tokenID).
		WithField("royalty", sale.Royalty).
		Info("Ticket resold")

	return sale, nil
}
