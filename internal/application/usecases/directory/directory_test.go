package directory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/entities"
	"fairtickets/internal/testutil"
)

func validRequest() directory.CreateEvent {
	return directory.CreateEvent{
		Organizer: "organizer",
		Name:      "Spring Concert",
		Symbol:    "SPRING",
		Date:      time.Date(2026, 4, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
		BasePrice: 100,
		Policy: entities.ResalePolicy{
			MaxPriceMultiplierBps: 15_000,
			MinHoldPeriod:         24 * time.Hour,
			MaxTransfers:          2,
			RoyaltyBps:            500,
		},
	}
}

func TestDirectory_CreateEvent(t *testing.T) {
	ctx := context.Background()
	w := testutil.NewWorld()

	event, err := w.Directory.CreateEvent(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, time.UTC, event.Date.Location())
	assert.Equal(t, uint64(0), event.TotalIssued)

	l, err := w.Directory.Ledger(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event, l.Event())
	assert.Equal(t, "organizer", l.Organizer())

	created, ok := testutil.Last[entities.EventCreated_v1](w.Events)
	require.True(t, ok)
	assert.Equal(t, event.ID, created.EventID)

	_, err = w.Directory.Ledger(ctx, "missing")
	assert.ErrorIs(t, err, resale.ErrEventNotFound)
}

func TestDirectory_CreateEvent_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(r *directory.CreateEvent)
	}{
		{name: "blank organizer", mutate: func(r *directory.CreateEvent) { r.Organizer = "  " }},
		{name: "missing name", mutate: func(r *directory.CreateEvent) { r.Name = "" }},
		{name: "free event", mutate: func(r *directory.CreateEvent) { r.BasePrice = 0 }},
		{name: "royalty above 100%", mutate: func(r *directory.CreateEvent) { r.Policy.RoyaltyBps = 10_001 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.NewWorld()
			req := validRequest()
			tc.mutate(&req)

			_, err := w.Directory.CreateEvent(context.Background(), req)
			assert.ErrorIs(t, err, resale.ErrInvalidPolicy)
			assert.Equal(t, 0, w.Directory.Count())
			assert.Empty(t, w.Events.Events())
		})
	}
}

func TestDirectory_EventsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	w := testutil.NewWorld()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		req := validRequest()
		req.Name = name
		event, err := w.Directory.CreateEvent(ctx, req)
		require.NoError(t, err)
		ids = append(ids, event.ID)
	}

	events := w.Directory.Events()
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, ids[i], e.ID)
	}
	assert.Equal(t, 3, w.Directory.Count())
}

func TestDirectory_Restore(t *testing.T) {
	ctx := context.Background()
	w := testutil.NewWorld()
	req := validRequest()

	w.Directory.Restore([]directory.Snapshot{{
		Event: entities.Event{ID: "evt-1", Organizer: req.Organizer, Name: req.Name, BasePrice: 100, Policy: req.Policy, TotalIssued: 1},
		Tickets: []entities.Ticket{
			{EventID: "evt-1", TokenID: 0, Owner: "alice", OriginalPrice: 100, LastPurchaseTimestamp: testutil.Epoch},
		},
		Proceeds: 100,
	}})

	l, err := w.Directory.Ledger(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), l.Proceeds())
	assert.Len(t, l.TicketsOf("alice"), 1)
	assert.Equal(t, 1, w.Directory.Count())
}
