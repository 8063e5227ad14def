package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/entities"
	"fairtickets/internal/idempotency"
)

type Directory interface {
	CreateEvent(ctx context.Context, req directory.CreateEvent) (entities.Event, error)
	Ledger(ctx context.Context, eventID string) (*ledger.Ledger, error)
	Events() []entities.Event
	Count() int
}

type Marketplace interface {
	List(ctx context.Context, eventID string, tokenID uint64, seller string, price uint64) (entities.Listing, error)
	Buy(ctx context.Context, eventID string, tokenID uint64, buyer string, paidAmount uint64) (ledger.Sale, error)
	Cancel(ctx context.Context, eventID string, tokenID uint64, caller string) error
	Listing(ctx context.Context, eventID string, tokenID uint64) (entities.Listing, error)
}

type Registry interface {
	IsVerified(ctx context.Context, account string) (bool, error)
	VerifyBatch(ctx context.Context, accounts []string) error
	Unverify(ctx context.Context, account string) error
}

// Wallets is the account side of the balance book.
type Wallets interface {
	Deposit(ctx context.Context, account string, amount uint64) error
	Balance(ctx context.Context, account string) (uint64, error)
}

type Server struct {
	e    *echo.Echo
	addr string

	directory   Directory
	marketplace Marketplace
	registry    Registry
	wallets     Wallets
}

func NewServer(
	e *echo.Echo,
	addr string,
	directory Directory,
	marketplace Marketplace,
	registry Registry,
	wallets Wallets,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:           e,
		addr:        addr,
		directory:   directory,
		marketplace: marketplace,
		registry:    registry,
		wallets:     wallets,
	}

	e.HTTPErrorHandler = srv.handleError

	// logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				Info("Handling a request")

			err := next(c)

			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Error("Request handling error")
			}

			return err
		}
	})
	e.Use(IdempotencyMiddleware)

	e.POST("/events", srv.CreateEventHandler)
	e.GET("/events", srv.ListEventsHandler)
	e.GET("/events/:event_id", srv.GetEventHandler)
	e.POST("/events/:event_id/withdraw", srv.WithdrawHandler)

	e.POST("/events/:event_id/tickets", srv.MintHandler)
	e.GET("/events/:event_id/tickets/:token_id", srv.GetTicketHandler)
	e.GET("/events/:event_id/owners/:owner/tickets", srv.GetOwnerTicketsHandler)
	e.POST("/events/:event_id/tickets/:token_id/redeem", srv.RedeemHandler)

	e.POST("/events/:event_id/tickets/:token_id/listing", srv.ListTicketHandler)
	e.GET("/events/:event_id/tickets/:token_id/listing", srv.GetListingHandler)
	e.POST("/events/:event_id/tickets/:token_id/listing/buy", srv.BuyListingHandler)
	e.POST("/events/:event_id/tickets/:token_id/listing/cancel", srv.CancelListingHandler)

	e.POST("/accounts/verify", srv.VerifyAccountsHandler)
	e.POST("/accounts/unverify", srv.UnverifyAccountsHandler)
	e.GET("/accounts/:account/verified", srv.GetVerifiedHandler)
	e.POST("/accounts/:account/deposit", srv.DepositHandler)
	e.GET("/accounts/:account/balance", srv.GetBalanceHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	return srv
}

// IdempotencyMiddleware puts the request's Idempotency-Key, or a fresh one,
// into the request context.
func IdempotencyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := idempotency.Ensure(c.Request().Context(), c.Request().Header.Get(idempotency.Header))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
