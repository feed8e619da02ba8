package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// Publisher emits invoice lifecycle events.
type Publisher interface {
	PublishInvoiceCreated(ctx context.Context, inv *models.InvoiceDetail) error
	PublishInvoiceDeleted(ctx context.Context, inv *models.InvoiceDetail) error
	PublishInvoiceStatusChanged(ctx context.Context, inv *models.InvoiceDetail, previous models.InvoiceStatus) error
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = (*MockEventPublisher)(nil)
)

// EventType represents the type of invoice event.
type EventType string

const (
	EventTypeInvoiceCreated       EventType = "invoice.created"
	EventTypeInvoiceDeleted       EventType = "invoice.deleted"
	EventTypeInvoiceStatusChanged EventType = "invoice.status_changed"
)

// InvoiceEvent is the envelope written to the invoices topic.
type InvoiceEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	InvoiceID     int64             `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// StatusChange is the data of an invoice.status_changed event.
type StatusChange struct {
	Invoice        *models.InvoiceDetail `json:"invoice"`
	PreviousStatus models.InvoiceStatus  `json:"previous_status"`
	NewStatus      models.InvoiceStatus  `json:"new_status"`
}

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes invoice events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	timeout := cfg.WriteTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.InvoicesTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: timeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.InvoicesTopic,
		logger: logger,
	}
}

// PublishInvoiceCreated publishes an invoice created event.
func (p *KafkaPublisher) PublishInvoiceCreated(ctx context.Context, inv *models.InvoiceDetail) error {
	p.logger.Debug("Publishing invoice created event", logging.Fields{
		"invoice_id": inv.ID,
	})

	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(ctx, EventTypeInvoiceCreated, inv, data))
}

// PublishInvoiceDeleted publishes an invoice deleted event.
func (p *KafkaPublisher) PublishInvoiceDeleted(ctx context.Context, inv *models.InvoiceDetail) error {
	p.logger.Debug("Publishing invoice deleted event", logging.Fields{
		"invoice_id": inv.ID,
	})

	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(ctx, EventTypeInvoiceDeleted, inv, data))
}

// PublishInvoiceStatusChanged publishes an invoice status change event.
func (p *KafkaPublisher) PublishInvoiceStatusChanged(ctx context.Context, inv *models.InvoiceDetail, previous models.InvoiceStatus) error {
	p.logger.Debug("Publishing invoice status changed event", logging.Fields{
		"invoice_id":      inv.ID,
		"previous_status": previous,
		"new_status":      inv.Status,
	})

	data, err := json.Marshal(StatusChange{
		Invoice:        inv,
		PreviousStatus: previous,
		NewStatus:      inv.Status,
	})
	if err != nil {
		return err
	}

	return p.publish(ctx, newEvent(ctx, EventTypeInvoiceStatusChanged, inv, data))
}

func newEvent(ctx context.Context, eventType EventType, inv *models.InvoiceDetail, data []byte) *InvoiceEvent {
	return &InvoiceEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Data:          data,
		Metadata:      map[string]string{"source": "invoices-service"},
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.RequestIDFromContext(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *InvoiceEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.InvoiceID, 10)),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"invoice_id": event.InvoiceID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"invoice_id": event.InvoiceID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events in memory. Safe for concurrent use.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*InvoiceEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]*InvoiceEvent, 0)}
}

func (m *MockEventPublisher) record(eventType EventType, inv *models.InvoiceDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, &InvoiceEvent{
		Type:          eventType,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
	})
	return nil
}

func (m *MockEventPublisher) PublishInvoiceCreated(ctx context.Context, inv *models.InvoiceDetail) error {
	return m.record(EventTypeInvoiceCreated, inv)
}

func (m *MockEventPublisher) PublishInvoiceDeleted(ctx context.Context, inv *models.InvoiceDetail) error {
	return m.record(EventTypeInvoiceDeleted, inv)
}

func (m *MockEventPublisher) PublishInvoiceStatusChanged(ctx context.Context, inv *models.InvoiceDetail, previous models.InvoiceStatus) error {
	return m.record(EventTypeInvoiceStatusChanged, inv)
}

// Types returns the recorded event types in order.
func (m *MockEventPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}
