package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ============================================
// Publish Tests
// ============================================

func TestProducer_PublishStoredEvent(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, nil)

	event := store.Event{ID: "e1", AggregateID: "R1", AggregateType: "Order", EventType: "OrderCreated", Version: 1}
	require.NoError(t, producer.Publish(context.Background(), "R1", event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "R1", string(msg.Key))
	assert.Equal(t, "OrderCreated", header(msg, HeaderEventType))
	assert.Equal(t, "Order", header(msg, HeaderAggregateType))

	var decoded store.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "e1", decoded.ID)
}

func TestProducer_PublishPlainValue(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, nil)

	require.NoError(t, producer.Publish(context.Background(), "k", map[string]int{"n": 1}))

	require.Len(t, writer.messages, 1)
	assert.Empty(t, writer.messages[0].Headers)
	assert.JSONEq(t, `{"n":1}`, string(writer.messages[0].Value))
}

func TestProducer_PublishErrors(t *testing.T) {
	producer := newProducer(&fakeWriter{err: assert.AnError}, nil)
	assert.ErrorIs(t, producer.Publish(context.Background(), "k", "v"), assert.AnError)

	producer = newProducer(&fakeWriter{}, nil)
	assert.Error(t, producer.Publish(context.Background(), "k", make(chan int)))
}

func TestProducer_Close(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, newProducer(writer, nil).Close())
	assert.True(t, writer.closed)
}
