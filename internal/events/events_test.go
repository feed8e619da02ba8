package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: "invoices.events", logger: logging.NewLogger("test")}
}

func TestKafkaPublisher_InvoiceCreated(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)
	ctx := middleware.WithRequestID(context.Background(), "req-1")

	inv := &models.InvoiceDetail{ID: 12, InvoiceNumber: "INV-00012", GrandTotal: 236}
	require.NoError(t, p.PublishInvoiceCreated(ctx, inv))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(EventTypeInvoiceCreated), string(msg.Headers[0].Value))

	var event InvoiceEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "INV-00012", event.InvoiceNumber)
	assert.Equal(t, "req-1", event.CorrelationID)

	var data models.InvoiceDetail
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, 236.0, data.GrandTotal)
}

func TestKafkaPublisher_StatusChanged(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	inv := &models.InvoiceDetail{ID: 3, Status: models.InvoiceStatusPaid}
	require.NoError(t, p.PublishInvoiceStatusChanged(context.Background(), inv, models.InvoiceStatusPending))

	var event InvoiceEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, EventTypeInvoiceStatusChanged, event.Type)
	assert.Empty(t, event.CorrelationID)

	var change StatusChange
	require.NoError(t, json.Unmarshal(event.Data, &change))
	assert.Equal(t, models.InvoiceStatusPending, change.PreviousStatus)
	assert.Equal(t, models.InvoiceStatusPaid, change.NewStatus)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newTestPublisher(w)

	err := p.PublishInvoiceDeleted(context.Background(), &models.InvoiceDetail{ID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher()
	ctx := context.Background()
	inv := &models.InvoiceDetail{ID: 1}

	require.NoError(t, m.PublishInvoiceCreated(ctx, inv))
	require.NoError(t, m.PublishInvoiceStatusChanged(ctx, inv, models.InvoiceStatusDraft))
	require.NoError(t, m.PublishInvoiceDeleted(ctx, inv))

	assert.Equal(t, []EventType{
		EventTypeInvoiceCreated,
		EventTypeInvoiceStatusChanged,
		EventTypeInvoiceDeleted,
	}, m.Types())
}

func TestStatusForPayment(t *testing.T) {
	tests := []struct {
		eventType PaymentEventType
		status    models.InvoiceStatus
		ok        bool
	}{
		{PaymentEventCompleted, models.InvoiceStatusPaid, true},
		{PaymentEventFailed, models.InvoiceStatusPending, true},
		{PaymentEventCancelled, models.InvoiceStatusCancelled, true},
		{"payment.refunded", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			status, ok := StatusForPayment(tt.eventType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
		})
	}
}

type statusCall struct {
	id     int64
	status models.InvoiceStatus
}

type fakeUpdater struct {
	calls []statusCall
}

func (f *fakeUpdater) UpdateInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) (*models.InvoiceDetail, error) {
	f.calls = append(f.calls, statusCall{id, status})
	return &models.InvoiceDetail{ID: id, Status: status}, nil
}

func TestKafkaConsumer_HandleMessage(t *testing.T) {
	u := &fakeUpdater{}
	c := &KafkaConsumer{invoices: u, logger: logging.NewLogger("test")}
	ctx := context.Background()

	c.handleMessage(ctx, kafka.Message{Value: []byte(`{"type":"payment.completed","payment_id":"pay_1","invoice_id":7}`)})
	c.handleMessage(ctx, kafka.Message{Value: []byte(`{"type":"payment.refunded","invoice_id":7}`)})
	c.handleMessage(ctx, kafka.Message{Value: []byte(`{"type":"payment.failed","payment_id":"pay_2"}`)})
	c.handleMessage(ctx, kafka.Message{Value: []byte(`not json`)})
	c.handleMessage(ctx, kafka.Message{Value: []byte(`{"type":"payment.cancelled","invoice_id":9}`)})

	assert.Equal(t, []statusCall{
		{7, models.InvoiceStatusPaid},
		{9, models.InvoiceStatusCancelled},
	}, u.calls)
}
