package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"gatekeeper/internal/entities"
)

const consumerGroupPrefix = "svc-gatekeeper."

func NewEventProcessorConfig(
	redisClient *redis.Client,
	logger watermill.LoggerAdapter,
) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			handlerEvent := params.EventHandler.NewEvent()
			event, ok := handlerEvent.(entities.Event)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entities.Event", handlerEvent)
			}

			if event.IsInternal() {
				return internalTopicPrefix + params.EventName, nil
			}
			return TopicForEvent(params.EventName), nil
		},
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return NewRedisSubscriber(redisClient, params.HandlerName, logger)
		},
		Marshaler: marshaler,
		Logger:    logger,
	}
}

// NewRedisSubscriber creates a subscriber with its own consumer group, so every handler
// receives every message of its topic.
func NewRedisSubscriber(
	redisClient *redis.Client,
	handlerName string,
	logger watermill.LoggerAdapter,
) (message.Subscriber, error) {
	return redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: consumerGroupPrefix + handlerName,
	}, logger)
}
