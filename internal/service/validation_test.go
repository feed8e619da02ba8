package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Message
}

func TestValidateCreateItemRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateItemRequest
		message string
	}{
		{"valid", models.CreateItemRequest{Name: "Widget", UnitPrice: "10", GSTPercent: "18"}, ""},
		{"missing price", models.CreateItemRequest{Name: "Widget", GSTPercent: "18"}, "Invalid price or GST"},
		{"text gst", models.CreateItemRequest{Name: "Widget", UnitPrice: "1", GSTPercent: "high"}, "Invalid price or GST"},
		{"short name", models.CreateItemRequest{Name: "W", UnitPrice: "1", GSTPercent: "5"}, "Item name must be at least 2 characters"},
		{"negative price", models.CreateItemRequest{Name: "Widget", UnitPrice: "-1", GSTPercent: "5"}, "Price cannot be negative"},
		{"gst over 100", models.CreateItemRequest{Name: "Widget", UnitPrice: "1", GSTPercent: "101"}, "GST percent must be between 0 and 100"},
		{"gst boundary", models.CreateItemRequest{Name: "Widget", UnitPrice: "0", GSTPercent: "100"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := ValidateCreateItemRequest(&tt.req)
			if tt.message == "" {
				require.NoError(t, err)
				assert.Equal(t, "Widget", item.Name)
				return
			}
			assert.Equal(t, tt.message, validationMessage(t, err))
		})
	}
}

func TestValidateCreateInvoiceRequest(t *testing.T) {
	valid := func() models.CreateInvoiceRequest {
		return models.CreateInvoiceRequest{
			ClientID:    "3",
			InvoiceDate: "2025-12-19",
			DueDate:     "2025-12-31",
			Items: []models.InvoiceLineRequest{
				{Name: "Widget", Quantity: "2", UnitPrice: "100", GSTPercent: "18"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *models.CreateInvoiceRequest)
		message string
	}{
		{"bad client", func(r *models.CreateInvoiceRequest) { r.ClientID = "abc" }, "Invalid client id"},
		{"zero client", func(r *models.CreateInvoiceRequest) { r.ClientID = "0" }, "Invalid client id"},
		{"no items", func(r *models.CreateInvoiceRequest) { r.Items = nil }, "At least one line item is required"},
		{"bad date", func(r *models.CreateInvoiceRequest) { r.DueDate = "31/12/2025" }, "Dates must be in YYYY-MM-DD format"},
		{"bad status", func(r *models.CreateInvoiceRequest) { r.Status = "Overdue" }, "Invalid status"},
		{"blank line name", func(r *models.CreateInvoiceRequest) { r.Items[0].Name = "  " }, "Item name is required for all lines"},
		{"text quantity", func(r *models.CreateInvoiceRequest) { r.Items[0].Quantity = "two" }, "Invalid quantity/price/GST in items"},
		{"zero quantity", func(r *models.CreateInvoiceRequest) { r.Items[0].Quantity = "0" }, "Quantity must be >0 and price >=0"},
		{"negative price", func(r *models.CreateInvoiceRequest) { r.Items[0].UnitPrice = "-5" }, "Quantity must be >0 and price >=0"},
		{"gst range", func(r *models.CreateInvoiceRequest) { r.Items[0].GSTPercent = "-1" }, "GST percent must be between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := ValidateCreateInvoiceRequest(&req)
			assert.Equal(t, tt.message, validationMessage(t, err))
		})
	}
}

func TestValidateCreateInvoiceRequest_Normalizes(t *testing.T) {
	itemID := int64(4)
	req := &models.CreateInvoiceRequest{
		ClientID:       "3.0",
		InvoiceDate:    "2025-12-19",
		DueDate:        "2025-12-31",
		BillingAddress: "  12 MG Road  ",
		Notes:          "   ",
		Items: []models.InvoiceLineRequest{
			{ItemID: &itemID, Name: " Widget ", Quantity: "2", UnitPrice: "100", GSTPercent: "18"},
			{Name: "Consulting", Quantity: "1.5", UnitPrice: "1000", GSTPercent: "0"},
		},
	}

	inv, err := ValidateCreateInvoiceRequest(req)
	require.NoError(t, err)

	assert.Equal(t, int64(3), inv.ClientID)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, "12 MG Road", inv.BillingAddress)
	assert.Nil(t, inv.Notes)
	assert.Equal(t, "Widget", inv.Lines[0].ItemName)
	assert.Equal(t, &itemID, inv.Lines[0].ItemID)
	assert.Equal(t, 1700.0, inv.Subtotal)
	assert.Equal(t, 36.0, inv.TaxTotal)
	assert.Equal(t, 1736.0, inv.GrandTotal)
}

func TestPriceLines(t *testing.T) {
	got := PriceLines([]models.InvoiceLine{
		{Quantity: 2, UnitPrice: 100, GSTPercent: 18},
		{Quantity: 1, UnitPrice: 50, GSTPercent: 0},
	})

	assert.Equal(t, 250.0, got.Subtotal)
	assert.Equal(t, 36.0, got.TaxTotal)
	assert.Equal(t, 286.0, got.GrandTotal)
	assert.Len(t, got.Lines, 2)
}
