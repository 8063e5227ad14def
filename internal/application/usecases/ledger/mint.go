package ledger

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
)

// Mint sells the next ticket of the event to a verified account at exactly
// the base price. The payment lands in the event's escrow account.
func (l *Ledger) Mint(ctx context.Context, to, seatInfo string, paidAmount uint64) (entities.Ticket, error) {
	l.issueMu.Lock()
	defer l.issueMu.Unlock()

	if err := l.verify(ctx, to, resale.ErrVerificationRequired); err != nil {
		return entities.Ticket{}, err
	}
	if paidAmount != l.basePrice {
		return entities.Ticket{}, fmt.Errorf("%w: paid %d, base price %d", resale.ErrPriceMismatch, paidAmount, l.basePrice)
	}

	event := l.Event()
	proceeds := l.Proceeds() + paidAmount
	if proceeds < paidAmount {
		return entities.Ticket{}, fmt.Errorf("%w: proceeds overflow", resale.ErrInvalidPrice)
	}

	now := l.deps.Clock.Now()
	ticket := entities.Ticket{
		EventID:               l.eventID,
		TokenID:               event.TotalIssued,
		OriginalPrice:         paidAmount,
		LastPurchaseTimestamp: now,
		TransferCount:         0,
		SeatInfo:              seatInfo,
		Owner:                 to,
		Redeemed:              false,
	}
	event.TotalIssued++

	settlement := resale.Settlement{
		Reference: l.reference(ctx, "mint", to),
		Payer:     to,
		Payouts:   []resale.Payout{{Account: resale.EscrowAccount(l.eventID), Amount: paidAmount}},
	}

	err := l.commit(ctx, &settlement, func(ctx context.Context) error {
		if err := l.deps.Store.SaveTicket(ctx, ticket); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		if err := l.deps.Store.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		if err := l.deps.Store.SaveProceeds(ctx, l.eventID, proceeds); err != nil {
			return fmt.Errorf("save proceeds: %w", err)
		}
		return l.deps.Events.Publish(ctx, entities.TicketMinted_v1{
			Header:   l.header(ctx),
			EventID:  l.eventID,
			TokenID:  ticket.TokenID,
			Owner:    to,
			Price:    paidAmount,
			SeatInfo: seatInfo,
			MintedAt: now,
		})
	})
	if err != nil {
		return entities.Ticket{}, err
	}

	l.mu.Lock()
	l.tickets[ticket.TokenID] = &slot{ticket: ticket}
	l.event = event
	l.proceeds = proceeds
	l.mu.Unlock()

	log.FromContext(ctx).
		WithField("event_id", l.eventID).
		WithField("token_id", ticket.TokenID).
		Info("Ticket minted")

	return ticket, nil
}
