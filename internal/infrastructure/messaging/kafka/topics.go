package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// Base topic names. The deployed name is the configured prefix plus the base.
const (
	TopicComparisonCompleted  = "comparison.completed"
	TopicComparisonRegenerate = "comparison.regenerate"
	TopicDeadLetter           = "dead_letter"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "policyinsight."

// Event types carried in the envelope.
const (
	EventComparisonCompleted   = "comparison.completed"
	EventRegenerationRequested = "comparison.regeneration_requested"
	eventSource                = "policyinsight"
	eventSchemaVersion         = "v1"
)

// TopicName joins prefix and base, falling back to DefaultTopicPrefix.
func TopicName(prefix, base string) string {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + base
}

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ComparisonCompletedPayload is published after a comparison is stored.
type ComparisonCompletedPayload struct {
	ComparisonID   string    `json:"comparison_id"`
	UserID         string    `json:"user_id"`
	PolicyIDs      []string  `json:"policy_ids"`
	RelevanceScore int       `json:"relevance_score"`
	Kind           string    `json:"kind"`
	Augmented      bool      `json:"augmented"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RegenerationRequestedPayload asks a worker to rebuild a comparison's insights.
type RegenerationRequestedPayload struct {
	ComparisonID string    `json:"comparison_id"`
	UserID       string    `json:"user_id"`
	RequestedAt  time.Time `json:"requested_at"`
}

// NewEventEnvelope wraps payload in a fresh envelope.
func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: eventSchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage serialises the envelope for topic, keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	return &ProducerMessage{
		Topic:     topic,
		Key:       []byte(key),
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}, nil
}

// MessageToEventEnvelope parses a consumed message.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// DecodeRegenerationRequest extracts the regeneration payload from msg.
func DecodeRegenerationRequest(msg *Message) (RegenerationRequestedPayload, error) {
	var p RegenerationRequestedPayload
	env, err := MessageToEventEnvelope(msg)
	if err != nil {
		return p, err
	}
	if env.EventType != EventRegenerationRequested {
		return p, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	if err := env.DecodePayload(&p); err != nil {
		return p, err
	}
	if p.ComparisonID == "" || p.UserID == "" {
		return p, errors.New(errors.ErrCodeValidation, "regeneration request missing comparison or user id")
	}
	return p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Typed publishing
// ─────────────────────────────────────────────────────────────────────────────

// EventPublisher publishes comparison events on prefixed topics.
type EventPublisher struct {
	publisher Publisher
	prefix    string
	logger    logging.Logger
}

// NewEventPublisher creates an EventPublisher over p.
func NewEventPublisher(p Publisher, topicPrefix string, logger logging.Logger) *EventPublisher {
	return &EventPublisher{publisher: p, prefix: topicPrefix, logger: logger}
}

// PublishComparisonCompleted announces a stored comparison. Keyed by comparison id.
func (e *EventPublisher) PublishComparisonCompleted(ctx context.Context, p ComparisonCompletedPayload) error {
	return e.publish(ctx, TopicComparisonCompleted, EventComparisonCompleted, p.ComparisonID, p)
}

// PublishRegenerationRequested queues an insights regeneration job.
func (e *EventPublisher) PublishRegenerationRequested(ctx context.Context, p RegenerationRequestedPayload) error {
	return e.publish(ctx, TopicComparisonRegenerate, EventRegenerationRequested, p.ComparisonID, p)
}

func (e *EventPublisher) publish(ctx context.Context, base, eventType, key string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	if id, ok := logging.RequestIDFromContext(ctx); ok {
		env.TraceID = id
	}
	msg, err := env.ToMessage(TopicName(e.prefix, base), key)
	if err != nil {
		return err
	}
	if err := e.publisher.Publish(ctx, msg); err != nil {
		return err
	}
	e.logger.Debug("Event published",
		logging.String("event_type", eventType),
		logging.String("event_id", env.EventID),
		logging.String("key", key))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic administration
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes a topic to provision.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager manages Kafka topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials the cluster controller.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueue, "failed to dial kafka")
	}
	controller, err := conn.Controller()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueue, "failed to find kafka controller")
	}
	conn.Close()

	ctrl, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueue, "failed to dial kafka controller")
	}
	return &TopicManager{conn: ctrl, logger: logger}, nil
}

// CreateTopic creates cfg unless the topic already exists.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.New(errors.ErrCodeValidation, "NumPartitions must be > 0")
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "ReplicationFactor must be > 0")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{
			ConfigName:  "retention.ms",
			ConfigValue: fmt.Sprintf("%d", cfg.RetentionMs),
		})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			return nil
		}
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessageQueue, "failed to create topic "+cfg.Name)
	}
	m.logger.Info("Topic created", logging.String("topic", cfg.Name))
	return nil
}

// TopicExists reports whether name has at least one partition.
func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

// EnsureTopics creates every topic in topics.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the admin connection.
func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the topics the service needs under prefix.
func DefaultTopics(prefix string, replication int) []TopicConfig {
	if replication <= 0 {
		replication = 1
	}
	const day = int64(24 * 3600 * 1000)
	return []TopicConfig{
		{Name: TopicName(prefix, TopicComparisonCompleted), NumPartitions: 6, ReplicationFactor: replication, RetentionMs: 7 * day},
		{Name: TopicName(prefix, TopicComparisonRegenerate), NumPartitions: 3, ReplicationFactor: replication, RetentionMs: 3 * day},
		{Name: TopicName(prefix, TopicDeadLetter), NumPartitions: 1, ReplicationFactor: replication, RetentionMs: 30 * day},
	}
}

//Personal.AI order the ending
