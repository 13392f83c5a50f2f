package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variantcatalog/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
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
	return headerCarrier{headers: &msg.Headers}.Get(key)
}

// ============================================================================
// Event
// ============================================================================

func TestNewEvent_Fields(t *testing.T) {
	data := map[string]any{"product_id": "p-1", "count": 4}
	event, err := NewEvent("ecommerce.variant.combinations.generated", "p-1", "product", "variant-service", data)
	require.NoError(t, err)

	assert.Len(t, event.EventID, 36)
	assert.Equal(t, "ecommerce.variant.combinations.generated", event.EventType)
	assert.Equal(t, "p-1", event.AggregateID)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, "variant-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)
	assert.JSONEq(t, `{"product_id":"p-1","count":4}`, string(event.Data))
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("x.y", "a", "t", "s", make(chan int))
	require.Error(t, err)
}

func TestNewEventFromContext_CopiesCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	event, err := NewEventFromContext(ctx, "x.y", "a", "t", "s", nil)
	require.NoError(t, err)
	assert.Equal(t, "corr-1", event.CorrelationID)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("ecommerce.product.deleted", "p-9", "product", "product-service", map[string]string{"id": "p-9"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-abc").WithMetadata("tenant", "t1")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-abc", restored.CorrelationID)
	assert.Equal(t, map[string]string{"tenant": "t1"}, restored.Metadata)

	var payload struct {
		ID string `json:"id"`
	}
	require.NoError(t, restored.UnmarshalData(&payload))
	assert.Equal(t, "p-9", payload.ID)
}

func TestUnmarshalEvent_Errors(t *testing.T) {
	_, err := UnmarshalEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = UnmarshalEvent([]byte(`{"event_id":"1"}`))
	assert.ErrorIs(t, err, ErrMissingEventType)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "ecommerce.variant.combinations.generated", Topic("variant", "combinations.generated"))
	assert.Equal(t, "ecommerce.dlq.ecommerce.product.deleted", DLQTopic("ecommerce.product.deleted"))
}

// ============================================================================
// Producer
// ============================================================================

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, []string{"localhost:9092"}, discardLogger())
	before := counterValue(t, ProducerMessagesPublished.WithLabelValues("topic-ok"))

	event, err := NewEvent("ecommerce.variant.combination.stock_updated", "c-1", "combination", "variant-service", map[string]int{"quantity": 3})
	require.NoError(t, err)
	event.WithCorrelationID("corr-7")

	require.NoError(t, p.Publish(context.Background(), "topic-ok", event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "topic-ok", msg.Topic)
	assert.Equal(t, []byte("c-1"), msg.Key)
	assert.Equal(t, event.EventID, header(msg, "event_id"))
	assert.Equal(t, "ecommerce.variant.combination.stock_updated", header(msg, "event_type"))
	assert.Equal(t, "corr-7", header(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)

	assert.Equal(t, before+1, counterValue(t, ProducerMessagesPublished.WithLabelValues("topic-ok")))
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, nil, discardLogger())
	before := counterValue(t, ProducerPublishErrors.WithLabelValues("topic-err"))

	event, err := NewEvent("x.y", "a", "t", "s", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), "topic-err", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic-err")
	assert.Equal(t, before+1, counterValue(t, ProducerPublishErrors.WithLabelValues("topic-err")))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, nil, discardLogger()).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}

// ============================================================================
// Tracing carrier
// ============================================================================

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := headerCarrier{headers: &headers}

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	c.Set("existing", "v2")

	assert.Equal(t, "v2", c.Get("existing"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"existing", "traceparent"}, c.Keys())
	assert.Len(t, headers, 2)
}

// ============================================================================
// DLQ
// ============================================================================

func TestDLQProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	d := &DLQProducer{writer: w, logger: discardLogger()}

	original := kafka.Message{
		Topic:     "ecommerce.product.deleted",
		Partition: 2,
		Offset:    41,
		Key:       []byte("p-1"),
		Value:     []byte("{}"),
		Headers:   []kafka.Header{{Key: "event_type", Value: []byte("ecommerce.product.deleted")}},
	}
	require.NoError(t, d.Publish(context.Background(), original, errors.New("boom"), "variant-service"))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "ecommerce.dlq.ecommerce.product.deleted", msg.Topic)
	assert.Equal(t, []byte("p-1"), msg.Key)
	assert.Equal(t, "ecommerce.product.deleted", header(msg, "event_type"))
	assert.Equal(t, "2", header(msg, "dlq.original_partition"))
	assert.Equal(t, "41", header(msg, "dlq.original_offset"))
	assert.Equal(t, "variant-service", header(msg, "dlq.consumer_group"))
	assert.Equal(t, "boom", header(msg, "dlq.error"))
}

func TestDLQProducer_WriteFailure(t *testing.T) {
	d := &DLQProducer{writer: &fakeWriter{err: errors.New("down")}, logger: discardLogger()}
	err := d.Publish(context.Background(), kafka.Message{Topic: "t"}, nil, "g")
	assert.ErrorContains(t, err, "ecommerce.dlq.t")
}
