package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/events"
)

// EventConfig holds configuration for event publishing and change streams
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka or log
	KafkaBrokers      string
	NotificationTopic string
	ChangefeedPrefix  string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

func (c *EventConfig) useKafka() bool {
	return c.Enabled && c.Publisher == "kafka"
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, events are only logged")
		return events.NewLogEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.NotificationTopic,
			Logger:       logger,
		})
	case "log", "mock":
		logger.Info("Using log event publisher")
		return events.NewLogEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to log publisher", "publisher", c.Publisher)
		return events.NewLogEventPublisher(logger), nil
	}
}

// CreateChangeFeed returns a Kafka backed feed when Kafka events are
// enabled. Otherwise changes only reach subscribers of this process.
func (c *EventConfig) CreateChangeFeed(logger *slog.Logger) (*changefeed.Feed, error) {
	if !c.useKafka() {
		logger.Info("Using in-memory change feed")
		return changefeed.NewInMemory(logger), nil
	}

	logger.Info("Creating Kafka change feed", "brokers", c.KafkaBrokers, "prefix", c.ChangefeedPrefix)
	return changefeed.NewKafka(changefeed.KafkaConfig{
		Brokers:     c.GetKafkaBrokers(),
		TopicPrefix: c.ChangefeedPrefix,
	}, logger)
}
