package domain

import (
	"context"
)

// EventBus defines the interface for event-driven communication
// between the ingest API and the refresh worker. Supports Go channels
// for single-node deployments or NATS for distributed ones. All
// methods are keyed by business domain for board isolation.
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, d BusinessDomain, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, d BusinessDomain, topic string, handler MessageHandler) (Subscription, error)

	// Request sends a message and waits for a response (request-reply pattern).
	Request(ctx context.Context, d BusinessDomain, topic string, payload []byte) ([]byte, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	Domain    BusinessDomain    `json:"domain"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string

	// Channel settings
	ChannelBufferSize int

	// NATS settings
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}

// Standard topic names for the refresh pipeline.
const (
	TopicSnapshotIngested = "confighub.snapshot.ingested"
	TopicSnapshotReady    = "confighub.snapshot.ready"
	TopicAlert            = "confighub.alert"
)
