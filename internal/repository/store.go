package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/entities"
)

type Event struct {
	ID                    string    `db:"event_id"`
	Organizer             string    `db:"organizer"`
	Name                  string    `db:"name"`
	Symbol                string    `db:"symbol"`
	Date                  time.Time `db:"event_date"`
	BasePrice             string    `db:"base_price"`
	MaxPriceMultiplierBps string    `db:"max_price_multiplier_bps"`
	MinHoldPeriodNs       int64     `db:"min_hold_period_ns"`
	MaxTransfers          int64     `db:"max_transfers"`
	RoyaltyBps            string    `db:"royalty_bps"`
	TotalIssued           string    `db:"total_issued"`
	Proceeds              string    `db:"proceeds"`
}

type Ticket struct {
	EventID        string       `db:"event_id"`
	TokenID        string       `db:"token_id"`
	OriginalPrice  string       `db:"original_price"`
	LastPurchaseAt time.Time    `db:"last_purchase_at"`
	TransferCount  int64        `db:"transfer_count"`
	SeatInfo       string       `db:"seat_info"`
	Owner          string       `db:"owner"`
	Redeemed       bool         `db:"redeemed"`
	RedeemedAt     sql.NullTime `db:"redeemed_at"`
}

type Listing struct {
	EventID   string    `db:"event_id"`
	TokenID   string    `db:"token_id"`
	ID        string    `db:"listing_id"`
	Seller    string    `db:"seller"`
	Price     string    `db:"price"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// Store persists ledgers and listings. Writes join the transaction carried by
// ctx, if any.
type Store struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewStore(db *sqlx.DB, getter *trmsqlx.CtxGetter) *Store {
	return &Store{
		db:     db,
		getter: getter,
	}
}

func (s *Store) SaveEvent(ctx context.Context, event entities.Event) error {
	_, err := sqlx.NamedExecContext(ctx, s.getter.DefaultTrOrDB(ctx, s.db), `
		INSERT INTO events (
			event_id, organizer, name, symbol, event_date, base_price,
			max_price_multiplier_bps, min_hold_period_ns, max_transfers, royalty_bps, total_issued
		) VALUES (
			:event_id, :organizer, :name, :symbol, :event_date, :base_price,
			:max_price_multiplier_bps, :min_hold_period_ns, :max_transfers, :royalty_bps, :total_issued
		)
		ON CONFLICT (event_id) DO UPDATE SET total_issued = EXCLUDED.total_issued
	`, eventToModel(event))
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

func (s *Store) SaveTicket(ctx context.Context, ticket entities.Ticket) error {
	_, err := sqlx.NamedExecContext(ctx, s.getter.DefaultTrOrDB(ctx, s.db), `
		INSERT INTO tickets (
			event_id, token_id, original_price, last_purchase_at, transfer_count,
			seat_info, owner, redeemed, redeemed_at
		) VALUES (
			:event_id, :token_id, :original_price, :last_purchase_at, :transfer_count,
			:seat_info, :owner, :redeemed, :redeemed_at
		)
		ON CONFLICT (event_id, token_id) DO UPDATE SET
			last_purchase_at = EXCLUDED.last_purchase_at,
			transfer_count = EXCLUDED.transfer_count,
			owner = EXCLUDED.owner,
			redeemed = EXCLUDED.redeemed,
			redeemed_at = EXCLUDED.redeemed_at
	`, ticketToModel(ticket))
	if err != nil {
		return fmt.Errorf("upsert ticket: %w", err)
	}
	return nil
}

func (s *Store) SaveListing(ctx context.Context, listing entities.Listing) error {
	_, err := sqlx.NamedExecContext(ctx, s.getter.DefaultTrOrDB(ctx, s.db), `
		INSERT INTO listings (event_id, token_id, listing_id, seller, price, active, created_at)
		VALUES (:event_id, :token_id, :listing_id, :seller, :price, :active, :created_at)
		ON CONFLICT (event_id, token_id) DO UPDATE SET
			listing_id = EXCLUDED.listing_id,
			seller = EXCLUDED.seller,
			price = EXCLUDED.price,
			active = EXCLUDED.active,
			created_at = EXCLUDED.created_at
	`, listingToModel(listing))
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

func (s *Store) SaveProceeds(ctx context.Context, eventID string, amount uint64) error {
	res, err := s.getter.DefaultTrOrDB(ctx, s.db).ExecContext(ctx,
		`UPDATE events SET proceeds = $2 WHERE event_id = $1`,
		eventID, strconv.FormatUint(amount, 10),
	)
	if err != nil {
		return fmt.Errorf("update proceeds: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update proceeds: event %s not stored", eventID)
	}
	return nil
}

// LoadSnapshots reads every event with its tickets, in creation order.
func (s *Store) LoadSnapshots(ctx context.Context) ([]directory.Snapshot, error) {
	var events []Event
	err := s.db.SelectContext(ctx, &events, `
		SELECT event_id, organizer, name, symbol, event_date, base_price, max_price_multiplier_bps,
			min_hold_period_ns, max_transfers, royalty_bps, total_issued, proceeds
		FROM events
		ORDER BY created_at, event_id
	`)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	var tickets []Ticket
	err = s.db.SelectContext(ctx, &tickets, `
		SELECT event_id, token_id, original_price, last_purchase_at, transfer_count,
			seat_info, owner, redeemed, redeemed_at
		FROM tickets
		ORDER BY event_id, token_id
	`)
	if err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}

	byEvent := make(map[string][]entities.Ticket)
	for _, t := range tickets {
		ticket, err := modelToTicket(t)
		if err != nil {
			return nil, err
		}
		byEvent[t.EventID] = append(byEvent[t.EventID], ticket)
	}

	snapshots := make([]directory.Snapshot, 0, len(events))
	for _, e := range events {
		event, proceeds, err := modelToEvent(e)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, directory.Snapshot{
			Event:    event,
			Tickets:  byEvent[e.ID],
			Proceeds: proceeds,
		})
	}
	return snapshots, nil
}

func (s *Store) LoadListings(ctx context.Context) ([]entities.Listing, error) {
	var rows []Listing
	err := s.db.SelectContext(ctx, &rows, `
		SELECT event_id, token_id, listing_id, seller, price, active, created_at
		FROM listings
	`)
	if err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}

	listings := make([]entities.Listing, 0, len(rows))
	for _, r := range rows {
		l, err := modelToListing(r)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}
