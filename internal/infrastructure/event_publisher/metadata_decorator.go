package event_publisher

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"

	"fairtickets/internal/idempotency"
	"fairtickets/internal/interfaces/message/events"
)

// MetadataPublisherDecorator copies the correlation id and idempotency key of
// the publishing request into message metadata.
type MetadataPublisherDecorator struct {
	message.Publisher
}

func (d MetadataPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		ctx := msg.Context()
		if msg.Metadata.Get(events.CorrelationIDMetadataKey) == "" {
			msg.Metadata.Set(events.CorrelationIDMetadataKey, log.CorrelationIDFromContext(ctx))
		}
		if msg.Metadata.Get(events.IdempotencyKeyMetadataKey) == "" && idempotency.HasKey(ctx) {
			msg.Metadata.Set(events.IdempotencyKeyMetadataKey, idempotency.GetKey(ctx))
		}
	}
	return d.Publisher.Publish(topic, messages...)
}
