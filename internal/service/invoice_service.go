package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/pdf"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/storage"
)

var _ events.StatusUpdater = (*InvoiceService)(nil)

// InvoiceService handles invoice business logic.
type InvoiceService struct {
	invoices  repository.InvoiceRepository
	clients   repository.ClientRepository
	cache     repository.Cache
	publisher events.Publisher
	archive   storage.PDFArchive
	config    *config.Config
	logger    *logging.Logger
}

// NewInvoiceService creates a new invoice service. cache, publisher and
// archive are optional and may be nil.
func NewInvoiceService(
	invoices repository.InvoiceRepository,
	clients repository.ClientRepository,
	cache repository.Cache,
	publisher events.Publisher,
	archive storage.PDFArchive,
	cfg *config.Config,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		clients:   clients,
		cache:     cache,
		publisher: publisher,
		archive:   archive,
		config:    cfg,
		logger:    logging.NewLogger("invoice-service"),
	}
}

func (s *InvoiceService) caching() bool {
	return s.cache != nil && s.config.Features.EnableCaching
}

func (s *InvoiceService) publishing() bool {
	return s.publisher != nil && s.config.Features.EnableEvents
}

func (s *InvoiceService) archiving() bool {
	return s.archive != nil && s.config.Features.EnablePDFArchive
}

// ListInvoices returns invoice summaries, newest first.
func (s *InvoiceService) ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error) {
	if s.caching() {
		if list, err := s.cache.GetInvoiceList(ctx); err == nil && list != nil {
			return list, nil
		}
	}

	list, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.SetInvoiceList(ctx, list); err != nil {
			s.logger.Warn("Failed to cache invoice list", logging.Fields{"error": err.Error()})
		}
	}
	return list, nil
}

// GetInvoice retrieves an invoice with its client and lines.
func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	s.logger.Debug("Getting invoice", logging.Fields{"invoice_id": id})

	if s.caching() {
		if inv, err := s.cache.GetInvoice(ctx, id); err == nil && inv != nil {
			return inv, nil
		}
	}

	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.SetInvoice(ctx, inv); err != nil {
			s.logger.Warn("Failed to cache invoice", logging.Fields{
				"invoice_id": id,
				"error":      err.Error(),
			})
		}
	}
	return inv, nil
}

// CreateInvoice validates, prices and stores an invoice. Totals are always
// recomputed from the submitted lines.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreateInvoiceResult, error) {
	s.logger.Info("Creating invoice", logging.Fields{
		"client_id":  string(req.ClientID),
		"line_count": len(req.Items),
	})

	inv, err := ValidateCreateInvoiceRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.clients.Exists(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewValidationError("client_id", "Client not found")
	}

	result, err := s.invoices.Create(ctx, inv)
	if err != nil {
		s.logger.Error("Failed to create invoice", logging.Fields{
			"client_id": inv.ClientID,
			"error":     err.Error(),
		})
		return nil, err
	}

	metrics.InvoicesCreated.Inc()
	metrics.AmountBilled.Add(result.GrandTotal)
	s.invalidateList(ctx)

	if s.publishing() {
		if detail, err := s.invoices.GetByID(ctx, result.InvoiceID); err != nil {
			s.logger.Error("Failed to load invoice for event", logging.Fields{
				"invoice_id": result.InvoiceID,
				"error":      err.Error(),
			})
		} else if err := s.publisher.PublishInvoiceCreated(ctx, detail); err != nil {
			s.logger.Error("Failed to publish invoice created event", logging.Fields{
				"invoice_id": result.InvoiceID,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("Invoice created successfully", logging.Fields{
		"invoice_id":     result.InvoiceID,
		"invoice_number": result.InvoiceNumber,
		"grand_total":    result.GrandTotal,
	})
	return result, nil
}

// UpdateInvoiceStatus moves an invoice to a new lifecycle status. Setting
// the current status again is a no-op.
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) (*models.InvoiceDetail, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := inv.Status
	if previous == status {
		return inv, nil
	}

	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	inv.Status = status

	metrics.StatusChanges.WithLabelValues(string(status)).Inc()
	if s.caching() {
		if err := s.cache.SetInvoice(ctx, inv); err != nil {
			s.logger.Warn("Failed to cache invoice", logging.Fields{"invoice_id": id, "error": err.Error()})
		}
	}
	s.invalidateList(ctx)

	if s.publishing() {
		if err := s.publisher.PublishInvoiceStatusChanged(ctx, inv, previous); err != nil {
			s.logger.Error("Failed to publish status changed event", logging.Fields{
				"invoice_id": id,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("Invoice status updated", logging.Fields{
		"invoice_id":      id,
		"previous_status": previous,
		"new_status":      status,
	})
	return inv, nil
}

// DeleteInvoice removes an invoice and its lines. Deleting an invoice that
// does not exist succeeds.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id int64) error {
	inv, err := s.invoices.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Debug("Invoice already absent", logging.Fields{"invoice_id": id})
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.invoices.Delete(ctx, id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Error("Failed to delete invoice", logging.Fields{
			"invoice_id": id,
			"error":      err.Error(),
		})
		return err
	}

	metrics.InvoicesDeleted.Inc()
	if s.caching() {
		if err := s.cache.DeleteInvoice(ctx, id); err != nil {
			s.logger.Warn("Failed to evict invoice", logging.Fields{"invoice_id": id, "error": err.Error()})
		}
	}
	s.invalidateList(ctx)

	if s.publishing() {
		if err := s.publisher.PublishInvoiceDeleted(ctx, inv); err != nil {
			s.logger.Error("Failed to publish invoice deleted event", logging.Fields{
				"invoice_id": id,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("Invoice deleted", logging.Fields{
		"invoice_id":     id,
		"invoice_number": inv.InvoiceNumber,
	})
	return nil
}

// ExportPDF renders the invoice document. When archiving is enabled the
// document is also uploaded; upload failures are logged, not returned.
func (s *InvoiceService) ExportPDF(ctx context.Context, id int64) (*models.InvoiceDetail, []byte, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := pdf.Bytes(inv, s.config.Company.Name)
	if err != nil {
		metrics.PDFExports.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}
	metrics.PDFExports.WithLabelValues("ok").Inc()

	if s.archiving() {
		if _, err := s.archive.Archive(ctx, inv.InvoiceNumber, data); err != nil {
			s.logger.Error("Failed to archive invoice PDF", logging.Fields{
				"invoice_id": id,
				"error":      err.Error(),
			})
		}
	}
	return inv, data, nil
}

func (s *InvoiceService) invalidateList(ctx context.Context) {
	if !s.caching() {
		return
	}
	if err := s.cache.InvalidateInvoiceList(ctx); err != nil {
		s.logger.Warn("Failed to invalidate invoice list", logging.Fields{"error": err.Error()})
	}
}
