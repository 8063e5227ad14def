package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/entities"
	"fairtickets/internal/idempotency"
	ticketshttp "fairtickets/internal/interfaces/http"
	"fairtickets/internal/testutil"
)

type api struct {
	t       *testing.T
	handler http.Handler
	world   *testutil.World
}

func newAPI(t *testing.T, routerIsRunning bool) *api {
	t.Helper()
	w := testutil.NewWorld()
	e := commonHTTP.NewEcho()
	ticketshttp.NewServer(e, ":0", w.Directory, w.Market, w.Registry, w.Bank, func() bool { return routerIsRunning })
	return &api{t: t, handler: e, world: w}
}

func (a *api) do(method, path string, body any, key string) *httptest.ResponseRecorder {
	a.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(idempotency.Header, key)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, code, decode[ticketshttp.ErrorResponse](t, rec).Code)
}

func (a *api) createEvent() string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/events", ticketshttp.CreateEventRequest{
		Organizer: "org",
		Name:      "Spring Concert",
		Symbol:    "SPRING",
		Date:      testutil.Epoch.Add(30 * 24 * time.Hour),
		BasePrice: 100,
		ResalePolicy: ticketshttp.ResalePolicy{
			MaxPriceMultiplierBps: 15_000,
			MinHoldPeriod:         "24h",
			MaxTransfers:          2,
			RoyaltyBps:            500,
		},
	}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ticketshttp.EventResponse](a.t, rec).EventID
}

func TestServer_ResaleFlow(t *testing.T) {
	a := newAPI(t, true)

	rec := a.do(http.MethodPost, "/accounts/verify", ticketshttp.AccountsRequest{Accounts: []string{"alice", "carol"}}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	a.do(http.MethodPost, "/accounts/alice/deposit", ticketshttp.DepositRequest{Amount: 100}, "")
	rec = a.do(http.MethodPost, "/accounts/carol/deposit", ticketshttp.DepositRequest{Amount: 150}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(150), decode[ticketshttp.BalanceResponse](t, rec).Balance)

	eventID := a.createEvent()
	base := "/events/" + eventID

	rec = a.do(http.MethodPost, base+"/tickets", ticketshttp.MintRequest{To: "alice", SeatInfo: "A-1", PaidAmount: 100}, "mint-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ticket := decode[entities.Ticket](t, rec)
	assert.Equal(t, uint64(0), ticket.TokenID)
	assert.Equal(t, "alice", ticket.Owner)

	rec = a.do(http.MethodPost, base+"/tickets/0/listing", ticketshttp.ListTicketRequest{Seller: "alice", Price: 150}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[entities.Listing](t, rec).Active)

	rec = a.do(http.MethodPost, base+"/tickets/0/listing/buy", ticketshttp.BuyListingRequest{Buyer: "carol", PaidAmount: 150}, "")
	requireError(t, rec, http.StatusUnprocessableEntity, "HOLD_PERIOD_ACTIVE")

	a.world.Clock.Advance(24 * time.Hour)

	rec = a.do(http.MethodPost, base+"/tickets/0/listing/buy", ticketshttp.BuyListingRequest{Buyer: "carol", PaidAmount: 150}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sale := decode[ticketshttp.SaleResponse](t, rec)
	assert.Equal(t, uint64(8), sale.Royalty)
	assert.Equal(t, uint64(142), sale.Proceeds)
	assert.Equal(t, "carol", sale.Ticket.Owner)
	assert.Equal(t, uint32(1), sale.Ticket.TransferCount)

	rec = a.do(http.MethodGet, base+"/tickets/0/listing", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[entities.Listing](t, rec).Active)

	rec = a.do(http.MethodGet, base+"/owners/carol/tickets", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[ticketshttp.TicketsResponse](t, rec).Tickets, 1)

	rec = a.do(http.MethodPost, base+"/tickets/0/redeem", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[entities.Ticket](t, rec).Redeemed)

	rec = a.do(http.MethodPost, base+"/tickets/0/redeem", nil, "")
	requireError(t, rec, http.StatusConflict, "ALREADY_REDEEMED")

	rec = a.do(http.MethodPost, base+"/withdraw", ticketshttp.WithdrawRequest{Caller: "alice"}, "")
	requireError(t, rec, http.StatusForbidden, "NOT_ORGANIZER")

	rec = a.do(http.MethodPost, base+"/withdraw", ticketshttp.WithdrawRequest{Caller: "org"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(100), decode[ticketshttp.WithdrawResponse](t, rec).Amount)

	rec = a.do(http.MethodGet, "/accounts/org/balance", nil, "")
	assert.Equal(t, uint64(108), decode[ticketshttp.BalanceResponse](t, rec).Balance)
	rec = a.do(http.MethodGet, "/accounts/alice/balance", nil, "")
	assert.Equal(t, uint64(142), decode[ticketshttp.BalanceResponse](t, rec).Balance)

	rec = a.do(http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	event := decode[ticketshttp.EventResponse](t, rec)
	assert.Equal(t, uint64(1), event.TotalIssued)
	assert.Equal(t, "24h0m0s", event.ResalePolicy.MinHoldPeriod)
}

func TestServer_ReplayedMintIsRejected(t *testing.T) {
	a := newAPI(t, true)
	a.world.Fund("alice", 300)
	base := "/events/" + a.createEvent()

	mint := ticketshttp.MintRequest{To: "alice", PaidAmount: 100}
	rec := a.do(http.MethodPost, base+"/tickets", mint, "same-key")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, base+"/tickets", mint, "same-key")
	requireError(t, rec, http.StatusConflict, "DUPLICATE_SETTLEMENT")
	assert.Equal(t, uint64(200), a.world.Balance("alice"))

	rec = a.do(http.MethodPost, base+"/tickets", mint, "other-key")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(1), decode[entities.Ticket](t, rec).TokenID)
}

func TestServer_Errors(t *testing.T) {
	a := newAPI(t, true)
	a.world.Fund("alice", 100)
	base := "/events/" + a.createEvent()

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "unknown event",
			method: http.MethodGet,
			path:   "/events/missing",
			status: http.StatusNotFound,
			code:   "EVENT_NOT_FOUND",
		},
		{
			name:   "malformed token id",
			method: http.MethodGet,
			path:   base + "/tickets/abc",
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "unknown ticket",
			method: http.MethodGet,
			path:   base + "/tickets/7",
			status: http.StatusNotFound,
			code:   "TICKET_NOT_FOUND",
		},
		{
			name:   "never listed",
			method: http.MethodGet,
			path:   base + "/tickets/0/listing",
			status: http.StatusNotFound,
			code:   "LISTING_NOT_FOUND",
		},
		{
			name:   "unverified recipient",
			method: http.MethodPost,
			path:   base + "/tickets",
			body:   ticketshttp.MintRequest{To: "mallory", PaidAmount: 100},
			status: http.StatusForbidden,
			code:   "VERIFICATION_REQUIRED",
		},
		{
			name:   "wrong mint price",
			method: http.MethodPost,
			path:   base + "/tickets",
			body:   ticketshttp.MintRequest{To: "alice", PaidAmount: 99},
			status: http.StatusBadRequest,
			code:   "PRICE_MISMATCH",
		},
		{
			name:   "invalid policy",
			method: http.MethodPost,
			path:   "/events",
			body: ticketshttp.CreateEventRequest{
				Organizer:    "org",
				Name:         "Bad",
				BasePrice:    100,
				ResalePolicy: ticketshttp.ResalePolicy{MaxPriceMultiplierBps: 10_000, RoyaltyBps: 10_001},
			},
			status: http.StatusBadRequest,
			code:   "INVALID_POLICY",
		},
		{
			name:   "malformed hold period",
			method: http.MethodPost,
			path:   "/events",
			body: ticketshttp.CreateEventRequest{
				Organizer:    "org",
				Name:         "Bad",
				BasePrice:    100,
				ResalePolicy: ticketshttp.ResalePolicy{MaxPriceMultiplierBps: 10_000, MinHoldPeriod: "a day"},
			},
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
		{
			name:   "empty verify batch",
			method: http.MethodPost,
			path:   "/accounts/verify",
			body:   ticketshttp.AccountsRequest{},
			status: http.StatusBadRequest,
			code:   "BAD_REQUEST",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(tc.method, tc.path, tc.body, "")
			requireError(t, rec, tc.status, tc.code)
		})
	}
}

func TestServer_Accounts(t *testing.T) {
	a := newAPI(t, true)

	rec := a.do(http.MethodPost, "/accounts/verify", ticketshttp.AccountsRequest{Accounts: []string{"alice", "bob"}}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodPost, "/accounts/unverify", ticketshttp.AccountsRequest{Accounts: []string{"bob"}}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, "/accounts/alice/verified", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ticketshttp.VerifiedResponse{Account: "alice", Verified: true}, decode[ticketshttp.VerifiedResponse](t, rec))

	rec = a.do(http.MethodGet, "/accounts/bob/verified", nil, "")
	assert.False(t, decode[ticketshttp.VerifiedResponse](t, rec).Verified)
}

func TestServer_ListEvents(t *testing.T) {
	a := newAPI(t, true)
	first := a.createEvent()
	second := a.createEvent()

	rec := a.do(http.MethodGet, "/events", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	events := decode[ticketshttp.EventsResponse](t, rec)
	assert.Equal(t, 2, events.Count)
	require.Len(t, events.Events, 2)
	assert.Equal(t, first, events.Events[0].EventID)
	assert.Equal(t, second, events.Events[1].EventID)
}

func TestServer_CancelListing(t *testing.T) {
	a := newAPI(t, true)
	a.world.Fund("alice", 100)
	base := "/events/" + a.createEvent()

	rec := a.do(http.MethodPost, base+"/tickets", ticketshttp.MintRequest{To: "alice", PaidAmount: 100}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, base+"/tickets/0/listing", ticketshttp.ListTicketRequest{Seller: "alice", Price: 120}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, base+"/tickets/0/listing/cancel", ticketshttp.CancelListingRequest{Caller: "carol"}, "")
	requireError(t, rec, http.StatusForbidden, "NOT_SELLER")

	rec = a.do(http.MethodPost, base+"/tickets/0/listing/cancel", ticketshttp.CancelListingRequest{Caller: "alice"}, "")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, base+"/tickets/0/listing/cancel", ticketshttp.CancelListingRequest{Caller: "alice"}, "")
	requireError(t, rec, http.StatusConflict, "LISTING_NOT_ACTIVE")
}

func TestServer_Health(t *testing.T) {
	rec := newAPI(t, false).do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = newAPI(t, true).do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	rec := newAPI(t, true).do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
