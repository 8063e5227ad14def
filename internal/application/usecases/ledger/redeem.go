package ledger

import (
	"context"
	"fmt"

	"github.com/AlekSi/pointer"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
)

// Redeem checks a ticket in at the venue: Valid -> Used, exactly once.
// A second attempt fails with ErrAlreadyRedeemed and is published as
// RedemptionRejected_v1.
func (l *Ledger) Redeem(ctx context.Context, tokenID uint64) (entities.Ticket, error) {
	s, err := l.slot(tokenID)
	if err != nil {
		return entities.Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := l.deps.Clock.Now()
	t := s.ticket

	if t.Redeemed {
		l.rejectRedemption(ctx, t)
		return t, fmt.Errorf("%w: token %d redeemed at %s", resale.ErrAlreadyRedeemed, tokenID, t.RedeemedAt)
	}

	next := t
	next.Redeemed = true
	next.RedeemedAt = pointer.To(now)

	err = l.commit(ctx, nil, func(ctx context.Context) error {
		if err := l.deps.Store.SaveTicket(ctx, next); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		return l.deps.Events.Publish(ctx, entities.TicketRedeemed_v1{
			Header:     l.header(ctx),
			EventID:    l.eventID,
			TokenID:    tokenID,
			Owner:      next.Owner,
			RedeemedAt: now,
		})
	})
	if err != nil {
		return entities.Ticket{}, err
	}

	s.ticket = next
	return next, nil
}

func (l *Ledger) rejectRedemption(ctx context.Context, t entities.Ticket) {
	logger := log.FromContext(ctx).
		WithField("event_id", l.eventID).
		WithField("token_id", t.TokenID).
		WithField("owner", t.Owner)
	logger.Warn("Double redemption attempt")

	event := entities.RedemptionRejected_v1{
		Header:      l.header(ctx),
		EventID:     l.eventID,
		TokenID:     t.TokenID,
		Owner:       t.Owner,
		AttemptedAt: l.deps.Clock.Now(),
	}
	if t.RedeemedAt != nil {
		event.FirstRedeemedAt = *t.RedeemedAt
	}
	if err := l.deps.Events.Publish(ctx, event); err != nil {
		logger.WithField("error", err).Error("Failed to publish RedemptionRejected_v1")
	}
}
