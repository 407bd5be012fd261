package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"gatekeeper/internal/entities"
)

const (
	// EventsTopic receives every integration event before it is split per event name.
	EventsTopic = "events"

	internalTopicPrefix = "internal-events.svc-gatekeeper."
	eventTopicPrefix    = "events."
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
					return internalTopicPrefix + params.EventName, nil
				}
				// stored in the data lake and split per event name by the router
				return EventsTopic, nil
			},
			Marshaler: marshaler,
			Logger:    logger,
		},
	)
}

// TopicForEvent is the topic handlers of the named event subscribe to.
func TopicForEvent(eventName string) string {
	return eventTopicPrefix + eventName
}
