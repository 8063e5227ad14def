package entities

import "time"

// ResalePolicy is fixed when the event is created.
type ResalePolicy struct {
	// MaxPriceMultiplierBps caps resale price at OriginalPrice * bps / 10000.
	MaxPriceMultiplierBps uint64 `json:"max_price_multiplier_bps"`
	// MinHoldPeriod is the time a holder must keep a ticket before reselling it.
	MinHoldPeriod time.Duration `json:"min_hold_period"`
	// MaxTransfers counts resales only; the primary mint is not a transfer.
	MaxTransfers uint32 `json:"max_transfers"`
	// RoyaltyBps is the share of every resale price routed to the organizer.
	RoyaltyBps uint64 `json:"royalty_bps"`
}

type Event struct {
	ID        string       `json:"event_id"`
	Organizer string       `json:"organizer"`
	Name      string       `json:"name"`
	Symbol    string       `json:"symbol"`
	Date      time.Time    `json:"date"`
	BasePrice uint64       `json:"base_price"`
	Policy    ResalePolicy `json:"resale_policy"`

	TotalIssued uint64 `json:"total_issued"`
}

type Ticket struct {
	EventID               string     `json:"event_id"`
	TokenID               uint64     `json:"token_id"`
	OriginalPrice         uint64     `json:"original_price"`
	LastPurchaseTimestamp time.Time  `json:"last_purchase_timestamp"`
	TransferCount         uint32     `json:"transfer_count"`
	SeatInfo              string     `json:"seat_info"`
	Owner                 string     `json:"owner"`
	Redeemed              bool       `json:"redeemed"`
	RedeemedAt            *time.Time `json:"redeemed_at,omitempty"`
}

// Listing is keyed by (EventID, TokenID); the record is reused across
// listing lifecycles and Active is authoritative.
type Listing struct {
	ID        string    `json:"listing_id"`
	EventID   string    `json:"event_id"`
	TokenID   uint64    `json:"token_id"`
	Seller    string    `json:"seller"`
	Price     uint64    `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
