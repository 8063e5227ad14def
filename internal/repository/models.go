package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/AlekSi/pointer"

	"fairtickets/internal/entities"
)

func eventToModel(e entities.Event) Event {
	return Event{
		ID:                    e.ID,
		Organizer:             e.Organizer,
		Name:                  e.Name,
		Symbol:                e.Symbol,
		Date:                  e.Date,
		BasePrice:             formatUint(e.BasePrice),
		MaxPriceMultiplierBps: formatUint(e.Policy.MaxPriceMultiplierBps),
		MinHoldPeriodNs:       int64(e.Policy.MinHoldPeriod),
		MaxTransfers:          int64(e.Policy.MaxTransfers),
		RoyaltyBps:            formatUint(e.Policy.RoyaltyBps),
		TotalIssued:           formatUint(e.TotalIssued),
	}
}

func modelToEvent(m Event) (entities.Event, uint64, error) {
	var p parser
	event := entities.Event{
		ID:        m.ID,
		Organizer: m.Organizer,
		Name:      m.Name,
		Symbol:    m.Symbol,
		Date:      m.Date.UTC(),
		BasePrice: p.uint("base_price", m.BasePrice),
		Policy: entities.ResalePolicy{
			MaxPriceMultiplierBps: p.uint("max_price_multiplier_bps", m.MaxPriceMultiplierBps),
			MinHoldPeriod:         time.Duration(m.MinHoldPeriodNs),
			MaxTransfers:          uint32(m.MaxTransfers),
			RoyaltyBps:            p.uint("royalty_bps", m.RoyaltyBps),
		},
		TotalIssued: p.uint("total_issued", m.TotalIssued),
	}
	proceeds := p.uint("proceeds", m.Proceeds)
	if p.err != nil {
		return entities.Event{}, 0, fmt.Errorf("event %s: %w", m.ID, p.err)
	}
	return event, proceeds, nil
}

func ticketToModel(t entities.Ticket) Ticket {
	m := Ticket{
		EventID:        t.EventID,
		TokenID:        formatUint(t.TokenID),
		OriginalPrice:  formatUint(t.OriginalPrice),
		LastPurchaseAt: t.LastPurchaseTimestamp,
		TransferCount:  int64(t.TransferCount),
		SeatInfo:       t.SeatInfo,
		Owner:          t.Owner,
		Redeemed:       t.Redeemed,
	}
	if t.RedeemedAt != nil {
		m.RedeemedAt = sql.NullTime{Time: *t.RedeemedAt, Valid: true}
	}
	return m
}

func modelToTicket(m Ticket) (entities.Ticket, error) {
	var p parser
	t := entities.Ticket{
		EventID:               m.EventID,
		TokenID:               p.uint("token_id", m.TokenID),
		OriginalPrice:         p.uint("original_price", m.OriginalPrice),
		LastPurchaseTimestamp: m.LastPurchaseAt.UTC(),
		TransferCount:         uint32(m.TransferCount),
		SeatInfo:              m.SeatInfo,
		Owner:                 m.Owner,
		Redeemed:              m.Redeemed,
	}
	if m.RedeemedAt.Valid {
		t.RedeemedAt = pointer.To(m.RedeemedAt.Time.UTC())
	}
	if p.err != nil {
		return entities.Ticket{}, fmt.Errorf("ticket %s/%s: %w", m.EventID, m.TokenID, p.err)
	}
	return t, nil
}

func listingToModel(l entities.Listing) Listing {
	return Listing{
		EventID:   l.EventID,
		TokenID:   formatUint(l.TokenID),
		ID:        l.ID,
		Seller:    l.Seller,
		Price:     formatUint(l.Price),
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
	}
}

func modelToListing(m Listing) (entities.Listing, error) {
	var p parser
	l := entities.Listing{
		ID:        m.ID,
		EventID:   m.EventID,
		TokenID:   p.uint("token_id", m.TokenID),
		Seller:    m.Seller,
		Price:     p.uint("price", m.Price),
		Active:    m.Active,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if p.err != nil {
		return entities.Listing{}, fmt.Errorf("listing %s: %w", m.ID, p.err)
	}
	return l, nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) uint(column, v string) uint64 {
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", column, err)
	}
	return n
}
