package ledger

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
)

// Withdraw sweeps the accumulated primary-sale proceeds to the organizer.
func (l *Ledger) Withdraw(ctx context.Context, caller string) (uint64, error) {
	l.issueMu.Lock()
	defer l.issueMu.Unlock()

	if caller != l.organizer {
		return 0, fmt.Errorf("%w: %s", resale.ErrNotOrganizer, caller)
	}

	amount := l.Proceeds()
	if amount == 0 {
		return 0, nil
	}

	settlement := resale.Settlement{
		Reference: l.reference(ctx, "withdraw", l.organizer),
		Payer:     resale.EscrowAccount(l.eventID),
		Payouts:   []resale.Payout{{Account: l.organizer, Amount: amount}},
	}
	err := l.commit(ctx, &settlement, func(ctx context.Context) error {
		if err := l.deps.Store.SaveProceeds(ctx, l.eventID, 0); err != nil {
			return fmt.Errorf("save proceeds: %w", err)
		}
		return l.deps.Events.Publish(ctx, entities.ProceedsWithdrawn_v1{
			Header:    l.header(ctx),
			EventID:   l.eventID,
			Organizer: l.organizer,
			Amount:    amount,
		})
	})
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	l.proceeds = 0
	l.mu.Unlock()

	log.FromContext(ctx).
		WithField("event_id", l.eventID).
		WithField("amount", amount).
		Info("Proceeds withdrawn")

	return amount, nil
}
