package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
)

const (
	minNameLength = 2
	maxGSTPercent = 100
)

// ValidateCreateClientRequest validates a new client and normalizes its
// fields. Blank optional fields become nil.
func ValidateCreateClientRequest(req *models.CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, apperrors.NewValidationError("name", "Client name must be at least 2 characters")
	}

	return &models.Client{
		Name:    name,
		Email:   optional(req.Email),
		Address: optional(req.Address),
	}, nil
}

// ValidateCreateItemRequest validates a new catalog item.
func ValidateCreateItemRequest(req *models.CreateItemRequest) (*models.Item, error) {
	name := strings.TrimSpace(req.Name)

	price, err := req.UnitPrice.Float()
	if err != nil {
		return nil, apperrors.NewValidationError("unit_price", "Invalid price or GST")
	}
	gst, err := req.GSTPercent.Float()
	if err != nil {
		return nil, apperrors.NewValidationError("gst_percent", "Invalid price or GST")
	}

	if utf8.RuneCountInString(name) < minNameLength {
		return nil, apperrors.NewValidationError("name", "Item name must be at least 2 characters")
	}
	if price < 0 {
		return nil, apperrors.NewValidationError("unit_price", "Price cannot be negative")
	}
	if gst < 0 || gst > maxGSTPercent {
		return nil, apperrors.NewValidationError("gst_percent", "GST percent must be between 0 and 100")
	}

	return &models.Item{Name: name, UnitPrice: price, GSTPercent: gst}, nil
}

// ValidateCreateInvoiceRequest validates an invoice submission and prices
// it. Unlike the editing form, which drops bad lines, any invalid line
// rejects the whole request.
func ValidateCreateInvoiceRequest(req *models.CreateInvoiceRequest) (*repository.NewInvoice, error) {
	clientID, err := req.ClientID.Int()
	if err != nil || clientID <= 0 {
		return nil, apperrors.NewValidationError("client_id", "Invalid client id")
	}

	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("items", "At least one line item is required")
	}

	if !isDate(req.InvoiceDate) || !isDate(req.DueDate) {
		return nil, apperrors.NewValidationError("invoice_date", "Dates must be in YYYY-MM-DD format")
	}

	status := models.InvoiceStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	if !status.IsKnown() {
		return nil, apperrors.NewValidationError("status", "Invalid status")
	}

	lines := make([]models.InvoiceLine, 0, len(req.Items))
	for i := range req.Items {
		line, err := validateInvoiceLine(&req.Items[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	priced := PriceLines(lines)

	return &repository.NewInvoice{
		ClientID:       clientID,
		InvoiceDate:    req.InvoiceDate,
		DueDate:        req.DueDate,
		Status:         status,
		BillingAddress: strings.TrimSpace(req.BillingAddress),
		Notes:          optional(req.Notes),
		Subtotal:       priced.Subtotal,
		TaxTotal:       priced.TaxTotal,
		GrandTotal:     priced.GrandTotal,
		Lines:          lines,
	}, nil
}

func validateInvoiceLine(item *models.InvoiceLineRequest) (models.InvoiceLine, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return models.InvoiceLine{}, apperrors.NewValidationError("items", "Item name is required for all lines")
	}

	qty, errQty := item.Quantity.Float()
	price, errPrice := item.UnitPrice.Float()
	gst, errGST := item.GSTPercent.Float()
	if errQty != nil || errPrice != nil || errGST != nil {
		return models.InvoiceLine{}, apperrors.NewValidationError("items", "Invalid quantity/price/GST in items")
	}

	if qty <= 0 || price < 0 {
		return models.InvoiceLine{}, apperrors.NewValidationError("items", "Quantity must be >0 and price >=0")
	}
	if gst < 0 || gst > maxGSTPercent {
		return models.InvoiceLine{}, apperrors.NewValidationError("items", "GST percent must be between 0 and 100")
	}

	return models.InvoiceLine{
		ItemID:     item.ItemID,
		ItemName:   name,
		Quantity:   qty,
		UnitPrice:  price,
		GSTPercent: gst,
	}, nil
}

// ValidateStatus rejects unknown invoice statuses.
func ValidateStatus(status models.InvoiceStatus) error {
	if !status.IsKnown() {
		return apperrors.NewValidationError("status", "Invalid status")
	}
	return nil
}

func isDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
