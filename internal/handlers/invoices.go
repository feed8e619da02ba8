package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/pdf"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/preview"
)

const invoiceNotFound = "Invoice not found"

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context())
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}
	if invoices == nil {
		invoices = []models.InvoiceSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "invoices": invoices})
}

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind request", logging.Fields{"error": err.Error()})
		invalidBody(c)
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        "Invoice created successfully",
		"invoice_id":     result.InvoiceID,
		"invoice_number": result.InvoiceNumber,
		"subtotal":       result.Subtotal,
		"tax_total":      result.TaxTotal,
		"grand_total":    result.GrandTotal,
	})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invoice deleted"})
}

// UpdateInvoiceStatus handles PATCH /api/invoices/:id/status
func (h *Handlers) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	invoice, err := h.invoiceService.UpdateInvoiceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// PreviewInvoice handles GET /api/invoices/:id/preview
func (h *Handlers) PreviewInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	var buf bytes.Buffer
	if err := preview.HTML(&buf, invoice, h.config.Company.Name); err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ExportInvoicePDF handles GET /api/invoices/:id/pdf
func (h *Handlers) ExportInvoicePDF(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, data, err := h.invoiceService.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, invoiceNotFound)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(invoice)))
	c.Data(http.StatusOK, "application/pdf", data)
}
