package repository_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/entities"
	"fairtickets/internal/repository"
)

var db *sqlx.DB
var getDbOnce sync.Once

func getDb(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("POSTGRES_URL") == "" {
		t.Skip("POSTGRES_URL not set")
	}

	getDbOnce.Do(func() {
		var err error
		db, err = sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
		if err != nil {
			panic(err)
		}
	})
	require.NoError(t, repository.InitializeDBSchema(context.Background(), db))
	return db
}

func newEvent() entities.Event {
	return entities.Event{
		ID:        uuid.NewString(),
		Organizer: "organizer",
		Name:      "Spring Concert",
		Symbol:    "SPRING",
		Date:      time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC),
		BasePrice: 100,
		Policy: entities.ResalePolicy{
			MaxPriceMultiplierBps: 15_000,
			MinHoldPeriod:         24 * time.Hour,
			MaxTransfers:          2,
			RoyaltyBps:            500,
		},
	}
}

func findSnapshot(t *testing.T, store *repository.Store, eventID string) (entities.Event, []entities.Ticket, uint64) {
	t.Helper()
	snapshots, err := store.LoadSnapshots(context.Background())
	require.NoError(t, err)
	for _, s := range snapshots {
		if s.Event.ID == eventID {
			return s.Event, s.Tickets, s.Proceeds
		}
	}
	t.Fatalf("event %s not loaded", eventID)
	return entities.Event{}, nil, 0
}

func TestStore_RoundTrip_Integration(t *testing.T) {
	db := getDb(t)
	ctx := context.Background()
	store := repository.NewStore(db, trmsqlx.DefaultCtxGetter)

	event := newEvent()
	require.NoError(t, store.SaveEvent(ctx, event))

	bought := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	ticket := entities.Ticket{
		EventID:               event.ID,
		TokenID:               0,
		OriginalPrice:         100,
		LastPurchaseTimestamp: bought,
		SeatInfo:              "Row 1 Seat 1",
		Owner:                 "alice",
	}
	require.NoError(t, store.SaveTicket(ctx, ticket))

	event.TotalIssued = 1
	require.NoError(t, store.SaveEvent(ctx, event))
	require.NoError(t, store.SaveProceeds(ctx, event.ID, 100))

	redeemedAt := bought.Add(time.Hour)
	ticket.Redeemed = true
	ticket.RedeemedAt = &redeemedAt
	require.NoError(t, store.SaveTicket(ctx, ticket))

	loaded, tickets, proceeds := findSnapshot(t, store, event.ID)
	assert.Equal(t, event, loaded)
	assert.Equal(t, uint64(100), proceeds)
	require.Len(t, tickets, 1)
	assert.Equal(t, ticket, tickets[0])
}

func TestStore_Listings_Integration(t *testing.T) {
	db := getDb(t)
	ctx := context.Background()
	store := repository.NewStore(db, trmsqlx.DefaultCtxGetter)

	event := newEvent()
	require.NoError(t, store.SaveEvent(ctx, event))
	require.NoError(t, store.SaveTicket(ctx, entities.Ticket{
		EventID: event.ID, TokenID: 0, OriginalPrice: 100, Owner: "alice",
		LastPurchaseTimestamp: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}))

	listing := entities.Listing{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		TokenID:   0,
		Seller:    "alice",
		Price:     150,
		Active:    true,
		CreatedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveListing(ctx, listing))

	listing.Active = false
	require.NoError(t, store.SaveListing(ctx, listing), "the record is overwritten in place")

	listings, err := store.LoadListings(ctx)
	require.NoError(t, err)

	var found []entities.Listing
	for _, l := range listings {
		if l.EventID == event.ID {
			found = append(found, l)
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, listing, found[0])
}

func TestTransactor_RollsBack_Integration(t *testing.T) {
	db := getDb(t)
	ctx := context.Background()
	getter := trmsqlx.DefaultCtxGetter
	store := repository.NewStore(db, getter)
	tx := repository.NewTransactor(manager.Must(trmsqlx.NewDefaultFactory(db)))

	event := newEvent()
	boom := errors.New("payment declined")
	err := tx.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, store.SaveEvent(ctx, event))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events WHERE event_id = $1`, event.ID))
	assert.Equal(t, 0, count)

	require.NoError(t, tx.Do(ctx, func(ctx context.Context) error {
		return store.SaveEvent(ctx, event)
	}))
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events WHERE event_id = $1`, event.ID))
	assert.Equal(t, 1, count)
}

func TestEventsRepository_Integration(t *testing.T) {
	db := getDb(t)
	ctx := context.Background()
	repo := repository.NewEventsRepo(db)

	name := "TicketResold_v1." + uuid.NewString()
	event := entities.DatalakeEvent{
		Id:          uuid.New(),
		PublishedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		EventName:   name,
		Payload:     []byte(`{"price":150}`),
	}
	require.NoError(t, repo.SaveEvent(ctx, event))
	require.NoError(t, repo.SaveEvent(ctx, event), "saving twice is a no-op")

	events, err := repo.List(ctx, name)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.Id, events[0].Id)
	assert.JSONEq(t, `{"price":150}`, string(events[0].Payload))
}
