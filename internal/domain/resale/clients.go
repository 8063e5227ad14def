package resale

import (
	"context"
	"fmt"

	"fairtickets/internal/entities"
)

//go:generate mockgen -destination=mocks/verification_oracle_mock.go -package=mocks . VerificationOracle
type VerificationOracle interface {
	IsVerified(ctx context.Context, account string) (bool, error)
}

//go:generate mockgen -destination=mocks/payments_mock.go -package=mocks . Payments
type Payments interface {
	// Settle debits Payer by the sum of Payouts and credits every payout, or
	// changes nothing.
	Settle(ctx context.Context, settlement Settlement) error
	// Reverse undoes a settlement whose enclosing commit failed.
	Reverse(ctx context.Context, reference string) error
}

type Payout struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type Settlement struct {
	Reference string   `json:"reference"`
	Payer     string   `json:"payer"`
	Payouts   []Payout `json:"payouts"`
}

// Total sums the payouts; an overflowing settlement is rejected.
func (s Settlement) Total() (uint64, error) {
	var total uint64
	for _, p := range s.Payouts {
		if total+p.Amount < total {
			return 0, fmt.Errorf("%w: settlement total overflows", ErrInvalidPrice)
		}
		total += p.Amount
	}
	return total, nil
}

// EscrowAccount holds an event's primary-sale proceeds until the organizer withdraws.
func EscrowAccount(eventID string) string {
	return "escrow:" + eventID
}

// Store persists committed records. Calls run inside the Transactor's unit of work.
type Store interface {
	SaveEvent(ctx context.Context, event entities.Event) error
	SaveTicket(ctx context.Context, ticket entities.Ticket) error
	SaveListing(ctx context.Context, listing entities.Listing) error
	SaveProceeds(ctx context.Context, eventID string, amount uint64) error
}

type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher is satisfied by *cqrs.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Unavailable marks a collaborator failure, keeping domain errors the
// collaborator already classified.
func Unavailable(sentinel *Error, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
