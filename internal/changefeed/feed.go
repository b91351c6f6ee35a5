// Package changefeed streams document changes to live subscribers. Writers
// publish a Change after a successful store write; readers subscribe to a
// collection and receive every later change that passes their filter.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// Change describes one write to a collection. Owner is the user the
// document belongs to and is what per-user subscriptions filter on.
type Change struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Operation  Operation       `json:"operation"`
	DocumentID uint            `json:"document_id"`
	Owner      string          `json:"owner"`
	Document   json.RawMessage `json:"document"`
	At         time.Time       `json:"at"`
}

// Filter selects which changes a subscriber receives.
type Filter func(Change) bool

// ForOwner keeps changes belonging to one user.
func ForOwner(userID string) Filter {
	return func(c Change) bool { return c.Owner == userID }
}

type Feed struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	prefix     string
	logger     *slog.Logger
	buffer     int
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

func New(publisher message.Publisher, subscriber message.Subscriber, topicPrefix string, logger *slog.Logger) *Feed {
	return &Feed{
		publisher:  publisher,
		subscriber: subscriber,
		prefix:     topicPrefix,
		logger:     logger,
		buffer:     16,
	}
}

// NewInMemory builds a feed on a process-local gochannel pub/sub.
func NewInMemory(logger *slog.Logger) *Feed {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))
	return New(pubSub, pubSub, "changes", logger)
}

// NewKafka builds a feed on Kafka. Subscribers join no consumer group so
// every open stream sees every change.
func NewKafka(cfg KafkaConfig, logger *slog.Logger) (*Feed, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create changefeed publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create changefeed subscriber: %w", err)
	}

	return New(publisher, subscriber, cfg.TopicPrefix, logger), nil
}

func (f *Feed) topic(collection string) string {
	return f.prefix + "." + collection
}

// Publish announces a change of doc in collection.
func (f *Feed) Publish(ctx context.Context, collection string, op Operation, id uint, owner string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", collection, err)
	}

	change := Change{
		ID:         uuid.NewString(),
		Collection: collection,
		Operation:  op,
		DocumentID: id,
		Owner:      owner,
		Document:   body,
		At:         time.Now().UTC(),
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	msg := message.NewMessage(change.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("owner", owner)

	if err := f.publisher.Publish(f.topic(collection), msg); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Subscribe streams changes of collection that pass filter. The returned
// channel is closed once ctx is done; a closed stream cannot be resumed.
func (f *Feed) Subscribe(ctx context.Context, collection string, filter Filter) (<-chan Change, error) {
	messages, err := f.subscriber.Subscribe(ctx, f.topic(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	out := make(chan Change, f.buffer)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				err := json.Unmarshal(msg.Payload, &change)
				msg.Ack()
				if err != nil {
					f.logger.Warn("Dropping undecodable change", "topic", f.topic(collection), "error", err)
					continue
				}
				if filter != nil && !filter(change) {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (f *Feed) Close() error {
	pubErr := f.publisher.Close()
	// gochannel serves as both ends; closing it twice is harmless.
	subErr := f.subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}
