package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
)

type Resale struct {
	TokenID uint64
	From    string
	To      string
	Price   uint64
	At      time.Time
}

// Sale is the committed outcome of a resale.
type Sale struct {
	Ticket   entities.Ticket
	Seller   string
	Buyer    string
	Price    uint64
	Royalty  uint64
	Proceeds uint64
}

// TransferForResale moves a ticket to a verified buyer as part of a
// marketplace purchase. The buyer pays Price: the royalty goes to the
// organizer and the rest to the seller. within runs inside the same unit of
// work, so the caller's bookkeeping commits or aborts together with the
// transfer and the payment.
//
// Only the marketplace calls this; there is no direct peer-to-peer transfer.
func (l *Ledger) TransferForResale(
	ctx context.Context,
	r Resale,
	within func(ctx context.Context, sale Sale) error,
) (Sale, error) {
	s, err := l.slot(r.TokenID)
	if err != nil {
		return Sale{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticket
	if t.Owner != r.From {
		return Sale{}, fmt.Errorf("%w: token %d", resale.ErrNotOwner, r.TokenID)
	}
	if t.Redeemed {
		return Sale{}, fmt.Errorf("%w: token %d", resale.ErrTicketRedeemed, r.TokenID)
	}
	if err := l.verify(ctx, r.To, resale.ErrBuyerNotVerified); err != nil {
		return Sale{}, err
	}
	if err := resale.CheckHoldPeriod(t.LastPurchaseTimestamp, r.At, l.policy); err != nil {
		return Sale{}, err
	}
	if err := resale.CheckTransferLimit(t.TransferCount, l.policy); err != nil {
		return Sale{}, err
	}
	if err := resale.CheckPriceCap(r.Price, t.OriginalPrice, l.policy); err != nil {
		return Sale{}, err
	}

	royalty, proceeds := resale.SplitRoyalty(r.Price, l.policy.RoyaltyBps)

	next := t
	next.Owner = r.To
	next.TransferCount++
	next.LastPurchaseTimestamp = r.At

	sale := Sale{
		Ticket:   next,
		Seller:   r.From,
		Buyer:    r.To,
		Price:    r.Price,
		Royalty:  royalty,
		Proceeds: proceeds,
	}

	settlement := resale.Settlement{
		Reference: l.reference(ctx, "resale", strconv.FormatUint(r.TokenID, 10)),
		Payer:     r.To,
	}
	if proceeds > 0 {
		settlement.Payouts = append(settlement.Payouts, resale.Payout{Account: r.From, Amount: proceeds})
	}
	if royalty > 0 {
		settlement.Payouts = append(settlement.Payouts, resale.Payout{Account: l.organizer, Amount: royalty})
	}

	err = l.commit(ctx, &settlement, func(ctx context.Context) error {
		if err := l.deps.Store.SaveTicket(ctx, next); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		if within != nil {
			return within(ctx, sale)
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	s.ticket = next
	return sale, nil
}
