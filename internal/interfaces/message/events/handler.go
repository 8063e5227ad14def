package events

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fairtickets/internal/entities"
)

//go:generate mockgen -destination=mocks/listing_voider_mock.go -package=mocks . ListingVoider
type ListingVoider interface {
	Void(ctx context.Context, eventID string, tokenID uint64) error
}

var doubleRedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticket_double_redemptions_total",
	Help: "Total number of rejected attempts to redeem an already redeemed ticket",
}, []string{"event_id"})

type Handler struct {
	listings ListingVoider
}

func NewHandler(listings ListingVoider) *Handler {
	return &Handler{listings: listings}
}

func (h *Handler) Handlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		h.VoidListingOnRedeemedHandler(),
		h.DoubleRedemptionHandler(),
	}
}

// VoidListingOnRedeemedHandler takes a redeemed ticket off the market.
func (h *Handler) VoidListingOnRedeemedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"marketplace.void_listing_on_ticket_redeemed",
		func(ctx context.Context, event *entities.TicketRedeemed_v1) error {
			log.FromContext(ctx).
				WithField("event_id", event.EventID).
				WithField("token_id", event.TokenID).
				Info("Voiding listing of redeemed ticket")

			return h.listings.Void(ctx, event.EventID, event.TokenID)
		},
	)
}

func (h *Handler) DoubleRedemptionHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"fraud.on_redemption_rejected",
		func(ctx context.Context, event *entities.RedemptionRejected_v1) error {
			log.FromContext(ctx).
				WithField("event_id", event.EventID).
				WithField("token_id", event.TokenID).
				WithField("owner", event.Owner).
				WithField("first_redeemed_at", event.FirstRedeemedAt).
				WithField("attempted_at", event.AttemptedAt).
				Warn("Ticket presented again after redemption")

			doubleRedemptionsTotal.WithLabelValues(event.EventID).Inc()
			return nil
		},
	)
}
