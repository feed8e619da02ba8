package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventCompleted PaymentEventType = "payment.completed"
	PaymentEventFailed    PaymentEventType = "payment.failed"
	PaymentEventCancelled PaymentEventType = "payment.cancelled"
)

// PaymentEvent is a message on the payments topic that refers to an invoice.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	PaymentID string           `json:"payment_id"`
	InvoiceID int64            `json:"invoice_id"`
	Timestamp time.Time        `json:"timestamp"`
}

// StatusForPayment maps a payment event to the invoice status it implies.
func StatusForPayment(t PaymentEventType) (models.InvoiceStatus, bool) {
	switch t {
	case PaymentEventCompleted:
		return models.InvoiceStatusPaid, true
	case PaymentEventFailed:
		return models.InvoiceStatusPending, true
	case PaymentEventCancelled:
		return models.InvoiceStatusCancelled, true
	}
	return "", false
}

// StatusUpdater applies a status change to a stored invoice.
type StatusUpdater interface {
	UpdateInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) (*models.InvoiceDetail, error)
}

// KafkaConsumer consumes payment events and syncs invoice status.
type KafkaConsumer struct {
	reader   *kafka.Reader
	invoices StatusUpdater
	logger   *logging.Logger
	stop     context.Context
	cancel   context.CancelFunc
}

// NewKafkaConsumer creates a consumer for the payments topic.
func NewKafkaConsumer(cfg config.KafkaConfig, invoices StatusUpdater, logger *logging.Logger) *KafkaConsumer {
	stop, cancel := context.WithCancel(context.Background())
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.PaymentsTopic,
			GroupID:  cfg.ConsumerGroup,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		}),
		invoices: invoices,
		logger:   logger,
		stop:     stop,
		cancel:   cancel,
	}
}

// Start consumes until ctx is cancelled or Stop is called. A Stop is not
// reported as an error.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stop.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	c.logger.Info("Payment consumer started", logging.Fields{"topic": c.reader.Config().Topic})
	for {
		msg, err := c.reader.ReadMessage(ctx)
		switch {
		case err == nil:
			c.handleMessage(ctx, msg)
		case c.stop.Err() != nil:
			c.logger.Info("Payment consumer stopped")
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
		}
	}
}

// Stop ends a running Start and closes the reader.
func (c *KafkaConsumer) Stop() {
	c.cancel()
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("Failed to close payment reader", logging.Fields{"error": err.Error()})
	}
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	status, ok := StatusForPayment(event.Type)
	if !ok {
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
		return
	}
	if event.InvoiceID <= 0 {
		c.logger.Warn("Payment event without invoice", logging.Fields{"payment_id": event.PaymentID})
		return
	}

	metrics.PaymentEvents.WithLabelValues(string(event.Type)).Inc()
	c.logger.Info("Handling payment event", logging.Fields{
		"type":       event.Type,
		"payment_id": event.PaymentID,
		"invoice_id": event.InvoiceID,
		"status":     status,
	})

	if _, err := c.invoices.UpdateInvoiceStatus(ctx, event.InvoiceID, status); err != nil {
		c.logger.Error("Failed to update invoice status", logging.Fields{
			"invoice_id": event.InvoiceID,
			"error":      err.Error(),
		})
	}
}
