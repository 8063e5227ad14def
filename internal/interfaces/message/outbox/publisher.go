package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"fairtickets/internal/infrastructure/event_publisher"
	"fairtickets/internal/observability"
)

// Topic is the Postgres table-backed topic the forwarder drains.
const Topic = "events_to_forward"

// NewPublisher writes messages into the outbox using tx, so they are committed
// together with the state change that produced them.
func NewPublisher(
	tx watermillSQL.ContextExecutor,
	logger watermill.LoggerAdapter,
) (message.Publisher, error) {
	publisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	var pub message.Publisher = forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: Topic,
	})
	pub = observability.PublisherWithTracing{Publisher: pub}
	pub = event_publisher.MetadataPublisherDecorator{Publisher: pub}

	return pub, nil
}
