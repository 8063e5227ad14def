package memory

import (
	"context"
	"fmt"
	"sync"

	"fairtickets/internal/domain/resale"
)

// Bank moves numeric balances between accounts. Settlements are atomic and
// remembered by reference so they can be reversed once.
type Bank struct {
	mu       sync.Mutex
	balances map[string]uint64
	settled  map[string]resale.Settlement
}

func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]uint64),
		settled:  make(map[string]resale.Settlement),
	}
}

func (b *Bank) Deposit(_ context.Context, account string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.balances[account]+amount < amount {
		return fmt.Errorf("%w: balance of %s overflows", resale.ErrInvalidPrice, account)
	}
	b.balances[account] += amount
	return nil
}

func (b *Bank) Balance(_ context.Context, account string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[account], nil
}

func (b *Bank) Settle(_ context.Context, s resale.Settlement) error {
	total, err := s.Total()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.settled[s.Reference]; ok {
		return fmt.Errorf("%w: %s", resale.ErrDuplicateSettlement, s.Reference)
	}
	if b.balances[s.Payer] < total {
		return fmt.Errorf("%w: %s has %d, needs %d", resale.ErrInsufficientFunds, s.Payer, b.balances[s.Payer], total)
	}

	b.balances[s.Payer] -= total
	for _, p := range s.Payouts {
		b.balances[p.Account] += p.Amount
	}
	b.settled[s.Reference] = s
	return nil
}

func (b *Bank) Reverse(_ context.Context, reference string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.settled[reference]
	if !ok {
		return fmt.Errorf("settlement %s not found", reference)
	}
	for _, p := range s.Payouts {
		if b.balances[p.Account] < p.Amount {
			return fmt.Errorf("%w: cannot reverse %s, %s spent the payout", resale.ErrInsufficientFunds, reference, p.Account)
		}
	}

	var total uint64
	for _, p := range s.Payouts {
		b.balances[p.Account] -= p.Amount
		total += p.Amount
	}
	b.balances[s.Payer] += total
	delete(b.settled, reference)
	return nil
}
