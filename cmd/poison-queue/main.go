package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

const (
	PoisonQueueTopic = "PoisonQueue"
	consumerGroup    = "poison-queue-cli"
	walkTimeout      = 10 * time.Second
	stopGrace        = 200 * time.Millisecond
)

var errMessageNotFound = errors.New("message not found")

type Message struct {
	ID          string
	Reason      string
	FromTopic   string
	FromHandler string
}

type Handler struct {
	client    *redis.Client
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

func NewHandler(redisAddr string) (*Handler, error) {
	if redisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}

	logger := watermill.NewStdLogger(false, false)
	client := redis.NewClient(&redis.Options{Addr: redisAddr})

	pub, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		client:    client,
		publisher: pub,
		logger:    logger,
	}, nil
}

// Each walk subscribes anew since the router closes its subscriber on shutdown.
func (h *Handler) newSubscriber() (message.Subscriber, error) {
	return redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        h.client,
			ConsumerGroup: consumerGroup,
			OldestId:      "0",
		},
		h.logger,
	)
}

// visitFunc decides what happens with a poisoned message. Returning keep=false drops it
// from the queue, stop=true ends the walk.
type visitFunc func(msg *message.Message) (keep bool, stop bool, err error)

// walk goes once around the queue. Every kept message is published back to its tail, so
// the walk is over when the first kept message shows up again. Messages seen after that
// are rotated untouched until the router stops.
func (h *Handler) walk(ctx context.Context, visit visitFunc) error {
	subscriber, err := h.newSubscriber()
	if err != nil {
		return err
	}

	router, err := message.NewRouter(message.RouterConfig{}, h.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, walkTimeout)
	defer cancel()

	var (
		firstMessageID string
		done           bool
		stopOnce       sync.Once
		walkErr        error
	)

	finish := func() {
		done = true
		stopOnce.Do(func() {
			// leave time for the last ack to reach redis
			time.AfterFunc(stopGrace, cancel)
		})
	}

	router.AddNoPublisherHandler(
		"poison_queue_walk",
		PoisonQueueTopic,
		subscriber,
		func(msg *message.Message) error {
			if done || msg.UUID == firstMessageID {
				finish()
				return h.publisher.Publish(PoisonQueueTopic, msg.Copy())
			}

			keep, stop, err := visit(msg)
			if err != nil {
				walkErr = err
				keep = true
				stop = true
			}
			if stop {
				finish()
			}
			if !keep {
				return nil
			}

			if firstMessageID == "" {
				firstMessageID = msg.UUID
			}
			return h.publisher.Publish(PoisonQueueTopic, msg.Copy())
		},
	)

	if err := router.Run(ctx); err != nil {
		return err
	}

	return walkErr
}

func (h *Handler) Preview(ctx context.Context) ([]Message, error) {
	res := make([]Message, 0)

	err := h.walk(ctx, func(msg *message.Message) (bool, bool, error) {
		res = append(res, Message{
			ID:         msg.UUID,
			Reason:     msg.Metadata.Get(middleware.ReasonForPoisonedKey),
			FromTopic:  msg.Metadata.Get(middleware.PoisonedTopicKey),
			FromHandler: msg.Metadata.Get(middleware.PoisonedHandlerKey),
		})
		return true, false, nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (h *Handler) Remove(ctx context.Context, id string) error {
	found := false

	err := h.walk(ctx, func(msg *message.Message) (bool, bool, error) {
		if msg.UUID == id {
			found = true
			return false, true, nil
		}
		return true, false, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return errMessageNotFound
	}

	return nil
}

// Requeue moves the message back to the topic it was poisoned on.
func (h *Handler) Requeue(ctx context.Context, id string) error {
	found := false

	err := h.walk(ctx, func(msg *message.Message) (bool, bool, error) {
		if msg.UUID != id {
			return true, false, nil
		}

		topic := msg.Metadata.Get(middleware.PoisonedTopicKey)
		if topic == "" {
			return true, true, fmt.Errorf("message %s has no source topic", id)
		}

		if err := h.publisher.Publish(topic, msg.Copy()); err != nil {
			return true, true, fmt.Errorf("failed to requeue to %s: %w", topic, err)
		}

		found = true
		return false, true, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return errMessageNotFound
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:  "poison-queue",
		Usage: "Manage the Poison Queue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "redis-addr",
				EnvVars: []string{"REDIS_ADDR"},
				Usage:   "redis address",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "preview",
				Usage: "preview messages",
				Action: func(c *cli.Context) error {
					h, err := NewHandler(c.String("redis-addr"))
					if err != nil {
						return err
					}

					messages, err := h.Preview(c.Context)
					if err != nil {
						return err
					}

					for _, m := range messages {
						fmt.Printf("%v\t%v\t%v\t%v\n", m.ID, m.FromTopic, m.FromHandler, m.Reason)
					}

					return nil
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "<message_id>",
				Usage:     "remove message",
				Action: func(c *cli.Context) error {
					h, err := NewHandler(c.String("redis-addr"))
					if err != nil {
						return err
					}

					return h.Remove(c.Context, c.Args().First())
				},
			},
			{
				Name:      "requeue",
				ArgsUsage: "<message_id>",
				Usage:     "publish message back to its source topic",
				Action: func(c *cli.Context) error {
					h, err := NewHandler(c.String("redis-addr"))
					if err != nil {
						return err
					}

					return h.Requeue(c.Context, c.Args().First())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
