package outbox

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"

	"gatekeeper/internal/entities"
	"gatekeeper/internal/infrastructure/event_publisher"
	"gatekeeper/internal/interfaces/message/events"
	"gatekeeper/internal/observability"
)

// Topic is the Postgres table the forwarder drains into redis.
const Topic = "events_to_forward"

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
		return nil, fmt.Errorf("failed to create outbox publisher: %w", err)
	}

	var pub message.Publisher = forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: Topic,
	})
	pub = observability.PublisherWithTracing{Publisher: pub}
	pub = event_publisher.CorrelationPublisherDecorator{Publisher: pub}

	return pub, nil
}

// ScanEventsPublisher writes TicketScanned_v1 into the outbox through the transaction
// found in ctx, so the event is stored only if the scan commits.
type ScanEventsPublisher struct {
	getter *trmsqlx.CtxGetter
	logger watermill.LoggerAdapter
}

func NewScanEventsPublisher(getter *trmsqlx.CtxGetter, logger watermill.LoggerAdapter) *ScanEventsPublisher {
	if getter == nil {
		getter = trmsqlx.DefaultCtxGetter
	}
	return &ScanEventsPublisher{getter: getter, logger: logger}
}

func (p *ScanEventsPublisher) PublishTicketScanned(ctx context.Context, event entities.TicketScanned_v1) error {
	tx := p.getter.DefaultTrOrDB(ctx, nil)
	if tx == nil {
		return fmt.Errorf("no transaction in context, refusing to publish TicketScanned_v1 outside of it")
	}

	publisher, err := NewPublisher(tx, p.logger)
	if err != nil {
		return err
	}

	eventBus, err := events.NewEventBus(publisher, p.logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	return eventBus.Publish(ctx, event)
}
