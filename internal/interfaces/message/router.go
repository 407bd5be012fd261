package message

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gatekeeper/internal/entities"
	"gatekeeper/internal/interfaces/message/events"
	"gatekeeper/internal/observability"
)

const PoisonQueueTopic = "PoisonQueue"

func NewRouter(
	logger watermill.LoggerAdapter,
	redisClient *redis.Client,
	redisPublisher message.Publisher,
	eventHandler *events.Handler,
	eventsRepo events.EventRepository,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	if err := addMiddlewares(router, redisPublisher, logger); err != nil {
		return nil, err
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(
		router,
		events.NewEventProcessorConfig(redisClient, logger),
	)
	if err != nil {
		return nil, err
	}

	err = eventProcessor.AddHandlers(
		eventHandler.AttendanceReadModelHandler(),
		eventHandler.TicketsScannedTrackerHandler(),
	)
	if err != nil {
		return nil, err
	}

	if err := addSplitterAndSaver(router, redisClient, redisPublisher, eventsRepo, logger); err != nil {
		return nil, err
	}

	return router, nil
}

// addSplitterAndSaver consumes the shared events topic twice: once to republish each
// event on its own topic, once to store it in the data lake.
func addSplitterAndSaver(
	router *message.Router,
	redisClient *redis.Client,
	redisPublisher message.Publisher,
	eventsRepo events.EventRepository,
	logger watermill.LoggerAdapter,
) error {
	marshaler := events.Marshaler()

	splitterSubscriber, err := events.NewRedisSubscriber(redisClient, "events_splitter", logger)
	if err != nil {
		return err
	}

	router.AddNoPublisherHandler(
		"events_splitter",
		events.EventsTopic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("%w: cannot get event name from message", events.ErrMalformedMessage)
			}

			return redisPublisher.Publish(events.TopicForEvent(eventName), msg)
		},
	)

	saverSubscriber, err := events.NewRedisSubscriber(redisClient, "events_saver", logger)
	if err != nil {
		return err
	}

	router.AddNoPublisherHandler(
		"events_saver",
		events.EventsTopic,
		saverSubscriber,
		func(msg *message.Message) error {
			var event struct {
				Header entities.EventHeader `json:"header"`
			}
			if err := marshaler.Unmarshal(msg, &event); err != nil {
				return err
			}

			eventName := marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("%w: cannot get event name from message", events.ErrMalformedMessage)
			}

			id, err := uuid.Parse(event.Header.Id)
			if err != nil {
				return fmt.Errorf("%w: invalid event id %q: %w", events.ErrMalformedMessage, event.Header.Id, err)
			}

			err = eventsRepo.SaveEvent(msg.Context(), entities.DatalakeEvent{
				Id:          id,
				PublishedAt: event.Header.PublishedAt,
				EventName:   eventName,
				Payload:     msg.Payload,
			})
			if err != nil {
				return fmt.Errorf("failed to save event %s: %w", eventName, err)
			}

			return nil
		},
	)

	return nil
}

func addMiddlewares(router *message.Router, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) error {
	poisonQueue, err := middleware.PoisonQueueWithFilter(poisonPublisher, PoisonQueueTopic, events.IsPermanent)
	if err != nil {
		return fmt.Errorf("failed to create poison queue middleware: %w", err)
	}

	router.AddMiddleware(observability.TracingMiddleware)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware)
	router.AddMiddleware(events.LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)

	// inside Retry, so malformed messages are parked without being retried
	router.AddMiddleware(poisonQueue)
	router.AddMiddleware(events.MetricsMiddleware)

	return nil
}
