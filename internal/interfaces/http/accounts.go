package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type AccountsRequest struct {
	Accounts []string `json:"accounts"`
}

type VerifiedResponse struct {
	Account  string `json:"account"`
	Verified bool   `json:"verified"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

func (s *Server) VerifyAccountsHandler(c echo.Context) error {
	var request AccountsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if len(request.Accounts) == 0 {
		return badRequest("accounts are required")
	}

	if err := s.registry.VerifyBatch(c.Request().Context(), request.Accounts); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) UnverifyAccountsHandler(c echo.Context) error {
	var request AccountsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if len(request.Accounts) == 0 {
		return badRequest("accounts are required")
	}

	for _, account := range request.Accounts {
		if err := s.registry.Unverify(c.Request().Context(), account); err != nil {
			return err
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetVerifiedHandler(c echo.Context) error {
	account := c.Param("account")

	verified, err := s.registry.IsVerified(c.Request().Context(), account)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, VerifiedResponse{Account: account, Verified: verified})
}

func (s *Server) DepositHandler(c echo.Context) error {
	account := c.Param("account")

	var request DepositRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Amount == 0 {
		return badRequest("amount must be positive")
	}

	if err := s.wallets.Deposit(c.Request().Context(), account, request.Amount); err != nil {
		return err
	}

	return s.balance(c, account)
}

func (s *Server) GetBalanceHandler(c echo.Context) error {
	return s.balance(c, c.Param("account"))
}

func (s *Server) balance(c echo.Context, account string) error {
	balance, err := s.wallets.Balance(c.Request().Context(), account)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, BalanceResponse{Account: account, Balance: balance})
}
