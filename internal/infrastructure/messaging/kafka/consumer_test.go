package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/PolicyInsight/internal/config"
)

// mockKafkaReader serves queued messages, then blocks until cancelled.
type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }

func (m *mockKafkaReader) committedOffsets() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.committed))
	for i, msg := range m.committed {
		out[i] = msg.Offset
	}
	return out
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*ProducerMessage
	err  error
}

func (r *recordingPublisher) Publish(ctx context.Context, msg *ProducerMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "test-group",
		Topics:  []string{"test-topic"},
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			DeadLetterTopic: "dlq",
		},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	cases := map[string]func(*ConsumerConfig){
		"no brokers":   func(c *ConsumerConfig) { c.Brokers = nil },
		"no group":     func(c *ConsumerConfig) { c.GroupID = "" },
		"no topics":    func(c *ConsumerConfig) { c.Topics = nil },
		"bad offset":   func(c *ConsumerConfig) { c.AutoOffsetReset = "middle" },
		"neg. retries": func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			mutate(&cfg)
			assert.Error(t, ValidateConsumerConfig(cfg))
		})
	}
}

func TestConsumerConfigFromKafka(t *testing.T) {
	cfg := ConsumerConfigFromKafka(config.KafkaConfig{
		Brokers:         []string{"k:9092"},
		GroupID:         "workers",
		AutoOffsetReset: "latest",
		TopicPrefix:     "staging.",
	}, "staging.comparison.regenerate")

	assert.Equal(t, "workers", cfg.GroupID)
	assert.Equal(t, []string{"staging.comparison.regenerate"}, cfg.Topics)
	assert.Equal(t, "latest", cfg.AutoOffsetReset)
	assert.Equal(t, "staging.dead_letter", cfg.RetryConfig.DeadLetterTopic)
	assert.Equal(t, 3, cfg.RetryConfig.MaxRetries)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, newMockLogger())
	c.Subscribe("topic", func(ctx context.Context, msg *Message) error { return nil })
	assert.Len(t, c.handlers, 1)
	c.Unsubscribe("topic")
	assert.Empty(t, c.handlers)
}

func TestStart_AlreadyRunning(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, newMockLogger())
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumeLoop_HandlesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{queue: []kafka.Message{
		{Topic: "test-topic", Offset: 7, Value: []byte("value"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("x")}}},
		{Topic: "other-topic", Offset: 8, Value: []byte("ignored")},
	}}
	c := newConsumerWithReader(reader, newTestConsumerConfig(), nil, newMockLogger())

	handled := make(chan *Message, 1)
	c.Subscribe("test-topic", func(ctx context.Context, msg *Message) error {
		handled <- msg
		return nil
	})

	require.NoError(t, c.Start(context.Background()))

	select {
	case msg := <-handled:
		assert.Equal(t, "value", string(msg.Value))
		assert.Equal(t, "x", msg.Headers["event_type"])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	assert.Equal(t, []int64{7, 8}, reader.committedOffsets())
	assert.True(t, reader.closed)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.MessagesConsumed)
	assert.Equal(t, int64(1), stats.MessagesProcessed)
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), nil, newMockLogger())

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("fail")
		}
		return nil
	}

	require.NoError(t, c.processMessage(context.Background(), &Message{}, handler))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.Stats().MessagesRetried)
}

func TestProcessMessage_RetryExhaustedDeadLetters(t *testing.T) {
	dl := &recordingPublisher{}
	c := newConsumerWithReader(&mockKafkaReader{}, newTestConsumerConfig(), dl, newMockLogger())

	var attempts atomic.Int32
	handler := func(ctx context.Context, msg *Message) error {
		attempts.Add(1)
		return errors.New("boom")
	}

	msg := &Message{Topic: "test-topic", Key: []byte("c-1"), Value: []byte("{}"), Headers: map[string]string{"event_type": "x"}}
	require.NoError(t, c.processMessage(context.Background(), msg, handler))

	assert.Equal(t, int32(3), attempts.Load())
	require.Len(t, dl.msgs, 1)
	assert.Equal(t, "dlq", dl.msgs[0].Topic)
	assert.Equal(t, "c-1", string(dl.msgs[0].Key))
	assert.Equal(t, "test-topic", dl.msgs[0].Headers["original_topic"])
	assert.Equal(t, "boom", dl.msgs[0].Headers["error_message"])
	assert.Equal(t, "x", dl.msgs[0].Headers["event_type"])
	_, leaked := msg.Headers["original_topic"]
	assert.False(t, leaked)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.MessagesFailed)
	assert.Equal(t, int64(1), stats.MessagesDeadLettered)
}

func TestProcessMessage_DeadLetterFailureStillAdvances(t *testing.T) {
	dl := &recordingPublisher{err: errors.New("dlq down")}
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.MaxRetries = 0
	c := newConsumerWithReader(&mockKafkaReader{}, cfg, dl, newMockLogger())

	err := c.processMessage(context.Background(), &Message{Topic: "t"}, func(ctx context.Context, msg *Message) error {
		return errors.New("fail")
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), c.Stats().MessagesDeadLettered)
}

func TestProcessMessage_CancelledDuringBackoff(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.RetryConfig.RetryBackoff = time.Hour
	c := newConsumerWithReader(&mockKafkaReader{}, cfg, nil, newMockLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.processMessage(ctx, &Message{}, func(ctx context.Context, msg *Message) error {
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose_NotRunning(t *testing.T) {
	reader := &mockKafkaReader{}
	c := newConsumerWithReader(reader, newTestConsumerConfig(), nil, newMockLogger())
	assert.NoError(t, c.Close())
	assert.False(t, reader.closed)
}
