package message

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"

	"fairtickets/internal/entities"
	"fairtickets/internal/interfaces/message/events"
)

type EventRepository interface {
	SaveEvent(ctx context.Context, event entities.DatalakeEvent) error
}

type RouterConfig struct {
	// NewSubscriber builds a subscriber per consumer group.
	NewSubscriber events.SubscriberConstructor
	// Publisher receives the per-event topics the splitter forwards to.
	Publisher message.Publisher
	// EventsRepo stores every public event; nil disables the event log.
	EventsRepo EventRepository
	// RetryInterval is the first backoff step; tests shorten it.
	RetryInterval time.Duration
}

func NewRouter(
	watermillLogger watermill.LoggerAdapter,
	config RouterConfig,
	eventHandler *events.Handler,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	initMiddlewares(watermillLogger, router, config.RetryInterval)

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(
		router,
		events.NewEventProcessorConfig(config.NewSubscriber, watermillLogger),
	)
	if err != nil {
		return nil, err
	}

	if err := eventProcessor.AddHandlers(eventHandler.Handlers()...); err != nil {
		return nil, err
	}

	marshaler := events.Marshaler()

	splitterSubscriber, err := config.NewSubscriber("events_splitter")
	if err != nil {
		return nil, err
	}
	router.AddNoPublisherHandler(
		"events_splitter",
		events.EventsTopic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("cannot get event name from message")
			}

			return config.Publisher.Publish(events.PublicTopic(eventName), msg)
		},
	)

	if config.EventsRepo == nil {
		return router, nil
	}

	saverSubscriber, err := config.NewSubscriber("events_saver")
	if err != nil {
		return nil, err
	}
	router.AddNoPublisherHandler(
		"events_saver",
		events.EventsTopic,
		saverSubscriber,
		func(msg *message.Message) error {
			type Event struct {
				Header entities.EventHeader `json:"header"`
			}

			var event Event
			if err := marshaler.Unmarshal(msg, &event); err != nil {
				return err
			}

			eventName := marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("cannot get event name from message")
			}

			id, err := uuid.Parse(event.Header.Id)
			if err != nil {
				return fmt.Errorf("failed to parse event id: %w", err)
			}

			err = config.EventsRepo.SaveEvent(
				msg.Context(),
				entities.DatalakeEvent{
					Id:          id,
					PublishedAt: event.Header.PublishedAt,
					EventName:   eventName,
					Payload:     msg.Payload,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to save event %s: %w", eventName, err)
			}
			return nil
		},
	)

	return router, nil
}

func initMiddlewares(watermillLogger watermill.LoggerAdapter, router *message.Router, retryInterval time.Duration) {
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
	}

	router.AddMiddleware(events.TracingMiddleware)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware)
	router.AddMiddleware(events.LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: retryInterval,
		MaxInterval:     10 * retryInterval,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// skip permanent errors before retrying
	router.AddMiddleware(events.SkipPermanentErrorsMiddleware)
	router.AddMiddleware(events.MetricsMiddleware)
}
