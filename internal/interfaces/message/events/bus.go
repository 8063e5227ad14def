package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"fairtickets/internal/entities"
)

const (
	// EventsTopic receives every public event; the router stores it in the
	// event log and forwards it to its per-event topic.
	EventsTopic = "events"

	publicTopicPrefix   = "events."
	internalTopicPrefix = "internal-events.svc-fairtickets."
)

var marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

func Marshaler() cqrs.CommandEventMarshaler {
	return marshaler
}

func NewEventBus(
	pub message.Publisher,
	logger watermill.LoggerAdapter,
) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				event, ok := params.Event.(entities.Event)
				if !ok {
					return "", fmt.Errorf("invalid event type: %T doesn't implement entities.Event", params.Event)
				}

				if event.IsInternal() {
					// Publish directly to the per-event topic
					return internalTopicPrefix + params.EventName, nil
				}
				return EventsTopic, nil
			},
			Marshaler: marshaler,
			Logger:    logger,
		},
	)
}

// PublicTopic is the per-event topic the splitter forwards public events to.
func PublicTopic(eventName string) string {
	return publicTopicPrefix + eventName
}
