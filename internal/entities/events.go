package entities

import "time"

type Event interface {
	IsInternal() bool
}

type EventCreated_v1 struct {
	Header EventHeader `json:"header"`

	EventID   string `json:"event_id"`
	Organizer string `json:"organizer"`
	Name      string `json:"name"`
	BasePrice uint64 `json:"base_price"`
}

func (e EventCreated_v1) IsInternal() bool {
	return false
}

type TicketMinted_v1 struct {
	Header EventHeader `json:"header"`

	EventID  string    `json:"event_id"`
	TokenID  uint64    `json:"token_id"`
	Owner    string    `json:"owner"`
	Price    uint64    `json:"price"`
	SeatInfo string    `json:"seat_info"`
	MintedAt time.Time `json:"minted_at"`
}

func (e TicketMinted_v1) IsInternal() bool {
	return false
}

type TicketResold_v1 struct {
	Header EventHeader `json:"header"`

	EventID       string    `json:"event_id"`
	TokenID       uint64    `json:"token_id"`
	ListingID     string    `json:"listing_id"`
	Seller        string    `json:"seller"`
	Buyer         string    `json:"buyer"`
	Price         uint64    `json:"price"`
	Royalty       uint64    `json:"royalty"`
	Proceeds      uint64    `json:"proceeds"`
	TransferCount uint32    `json:"transfer_count"`
	SoldAt        time.Time `json:"sold_at"`
}

func (e TicketResold_v1) IsInternal() bool {
	return false
}

type TicketRedeemed_v1 struct {
	Header EventHeader `json:"header"`

	EventID    string    `json:"event_id"`
	TokenID    uint64    `json:"token_id"`
	Owner      string    `json:"owner"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

func (e TicketRedeemed_v1) IsInternal() bool {
	return false
}

// RedemptionRejected_v1 is emitted for every attempt to redeem a ticket twice.
type RedemptionRejected_v1 struct {
	Header EventHeader `json:"header"`

	EventID         string    `json:"event_id"`
	TokenID         uint64    `json:"token_id"`
	Owner           string    `json:"owner"`
	FirstRedeemedAt time.Time `json:"first_redeemed_at"`
	AttemptedAt     time.Time `json:"attempted_at"`
}

func (e RedemptionRejected_v1) IsInternal() bool {
	return true
}

type TicketListed_v1 struct {
	Header EventHeader `json:"header"`

	ListingID string `json:"listing_id"`
	EventID   string `json:"event_id"`
	TokenID   uint64 `json:"token_id"`
	Seller    string `json:"seller"`
	Price     uint64 `json:"price"`
}

func (e TicketListed_v1) IsInternal() bool {
	return false
}

const (
	ListingCancelledBySeller = "cancelled"
	ListingVoided            = "voided"
)

type ListingCancelled_v1 struct {
	Header EventHeader `json:"header"`

	ListingID string `json:"listing_id"`
	EventID   string `json:"event_id"`
	TokenID   uint64 `json:"token_id"`
	Seller    string `json:"seller"`
	Reason    string `json:"reason"`
}

func (e ListingCancelled_v1) IsInternal() bool {
	return false
}

type ProceedsWithdrawn_v1 struct {
	Header EventHeader `json:"header"`

	EventID   string `json:"event_id"`
	Organizer string `json:"organizer"`
	Amount    uint64 `json:"amount"`
}

func (e ProceedsWithdrawn_v1) IsInternal() bool {
	return false
}
