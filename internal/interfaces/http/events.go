package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/entities"
)

type ResalePolicy struct {
	MaxPriceMultiplierBps uint64 `json:"max_price_multiplier_bps"`
	// MinHoldPeriod is a Go duration, e.g. "24h".
	MinHoldPeriod string `json:"min_hold_period"`
	MaxTransfers  uint32 `json:"max_transfers"`
	RoyaltyBps    uint64 `json:"royalty_bps"`
}

type CreateEventRequest struct {
	Organizer    string       `json:"organizer"`
	Name         string       `json:"name"`
	Symbol       string       `json:"symbol"`
	Date         time.Time    `json:"date"`
	BasePrice    uint64       `json:"base_price"`
	ResalePolicy ResalePolicy `json:"resale_policy"`
}

type EventResponse struct {
	EventID      string       `json:"event_id"`
	Organizer    string       `json:"organizer"`
	Name         string       `json:"name"`
	Symbol       string       `json:"symbol"`
	Date         time.Time    `json:"date"`
	BasePrice    uint64       `json:"base_price"`
	ResalePolicy ResalePolicy `json:"resale_policy"`
	TotalIssued  uint64       `json:"total_issued"`
}

type EventsResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

type WithdrawRequest struct {
	Caller string `json:"caller"`
}

type WithdrawResponse struct {
	Amount uint64 `json:"amount"`
}

func newEventResponse(e entities.Event) EventResponse {
	return EventResponse{
		EventID:   e.ID,
		Organizer: e.Organizer,
		Name:      e.Name,
		Symbol:    e.Symbol,
		Date:      e.Date,
		BasePrice: e.BasePrice,
		ResalePolicy: ResalePolicy{
			MaxPriceMultiplierBps: e.Policy.MaxPriceMultiplierBps,
			MinHoldPeriod:         e.Policy.MinHoldPeriod.String(),
			MaxTransfers:          e.Policy.MaxTransfers,
			RoyaltyBps:            e.Policy.RoyaltyBps,
		},
		TotalIssued: e.TotalIssued,
	}
}

func (s *Server) CreateEventHandler(c echo.Context) error {
	var request CreateEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	var hold time.Duration
	if request.ResalePolicy.MinHoldPeriod != "" {
		var err error
		hold, err = time.ParseDuration(request.ResalePolicy.MinHoldPeriod)
		if err != nil || hold < 0 {
			return badRequest("min_hold_period must be a non-negative duration")
		}
	}

	event, err := s.directory.CreateEvent(c.Request().Context(), directory.CreateEvent{
		Organizer: request.Organizer,
		Name:      request.Name,
		Symbol:    request.Symbol,
		Date:      request.Date,
		BasePrice: request.BasePrice,
		Policy: entities.ResalePolicy{
			MaxPriceMultiplierBps: request.ResalePolicy.MaxPriceMultiplierBps,
			MinHoldPeriod:         hold,
			MaxTransfers:          request.ResalePolicy.MaxTransfers,
			RoyaltyBps:            request.ResalePolicy.RoyaltyBps,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newEventResponse(event))
}

func (s *Server) ListEventsHandler(c echo.Context) error {
	events := s.directory.Events()

	response := EventsResponse{
		Events: make([]EventResponse, 0, len(events)),
		Count:  len(events),
	}
	for _, e := range events {
		response.Events = append(response.Events, newEventResponse(e))
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) GetEventHandler(c echo.Context) error {
	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newEventResponse(l.Event()))
}

func (s *Server) WithdrawHandler(c echo.Context) error {
	var request WithdrawRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	amount, err := l.Withdraw(c.Request().Context(), request.Caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, WithdrawResponse{Amount: amount})
}

func tokenID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("token_id"), 10, 64)
	if err != nil {
		return 0, badRequest("token_id must be an unsigned integer")
	}
	return id, nil
}
