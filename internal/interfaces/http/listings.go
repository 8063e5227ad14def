package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fairtickets/internal/entities"
)

type ListTicketRequest struct {
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

type BuyListingRequest struct {
	Buyer      string `json:"buyer"`
	PaidAmount uint64 `json:"paid_amount"`
}

type CancelListingRequest struct {
	Caller string `json:"caller"`
}

type SaleResponse struct {
	Ticket   entities.Ticket `json:"ticket"`
	Seller   string          `json:"seller"`
	Buyer    string          `json:"buyer"`
	Price    uint64          `json:"price"`
	Royalty  uint64          `json:"royalty"`
	Proceeds uint64          `json:"seller_proceeds"`
}

func (s *Server) ListTicketHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	var request ListTicketRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	listing, err := s.marketplace.List(c.Request().Context(), c.Param("event_id"), id, request.Seller, request.Price)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, listing)
}

func (s *Server) GetListingHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	listing, err := s.marketplace.Listing(c.Request().Context(), c.Param("event_id"), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listing)
}

func (s *Server) BuyListingHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	var request BuyListingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	sale, err := s.marketplace.Buy(c.Request().Context(), c.Param("event_id"), id, request.Buyer, request.PaidAmount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SaleResponse{
		Ticket:   sale.Ticket,
		Seller:   sale.Seller,
		Buyer:    sale.Buyer,
		Price:    sale.Price,
		Royalty:  sale.Royalty,
		Proceeds: sale.Proceeds,
	})
}

func (s *Server) CancelListingHandler(c echo.Context) error {
	id, err := tokenID(c)
	if err != nil {
		return err
	}

	var request CancelListingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	err = s.marketplace.Cancel(c.Request().Context(), c.Param("event_id"), id, request.Caller)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
