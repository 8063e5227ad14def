package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fairtickets/internal/entities"
)

type MintRequest struct {
	To         string `json:"to"`
	SeatInfo   string `json:"seat_info"`
	PaidAmount uint64 `json:"paid_amount"`
}

type TicketsResponse struct {
	Tickets []entities.Ticket `json:"tickets"`
}

func (s *Server) MintHandler(c echo.Context) error {
	var request MintRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	ticket, err := l.Mint(c.Request().Context(), request.To, request.SeatInfo, request.PaidAmount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ticket)
}

func (s *Server) GetTicketHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	ticket, err := l.Ticket(id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ticket)
}

func (s *Server) GetOwnerTicketsHandler(c echo.Context) error {
	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	tickets := l.TicketsOf(c.Param("owner"))
	if tickets == nil {
		tickets = []entities.Ticket{}
	}

	return c.JSON(http.StatusOK, TicketsResponse{Tickets: tickets})
}

func (s *Server) RedeemHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	l, err := s.directory.Ledger(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return err
	}

	ticket, err := l.Redeem(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ticket)
}
