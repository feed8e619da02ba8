package models

import (
	"time"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// IsKnown reports whether s is one of the defined statuses.
func (s InvoiceStatus) IsKnown() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// DateLayout is the wire format of invoice and due dates.
const DateLayout = "2006-01-02"

type Client struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type Item struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	GSTPercent float64 `json:"gst_percent"`
}

// InvoiceSummary is a row of the invoice list.
type InvoiceSummary struct {
	ID            int64         `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"`
	DueDate       string        `json:"due_date"`
	Status        InvoiceStatus `json:"status"`
	Subtotal      float64       `json:"subtotal"`
	TaxTotal      float64       `json:"tax_total"`
	GrandTotal    float64       `json:"grand_total"`
	ClientName    string        `json:"client_name"`
}

// InvoiceLine is a persisted invoice line.
type InvoiceLine struct {
	ID         int64   `json:"id"`
	ItemID     *int64  `json:"item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	GSTPercent float64 `json:"gst_percent"`
}

// LineItem converts the stored line back into an engine line.
func (l InvoiceLine) LineItem() totals.LineItem {
	return totals.LineItem{
		ItemRef:    l.ItemID,
		Name:       l.ItemName,
		Quantity:   l.Quantity,
		UnitPrice:  l.UnitPrice,
		TaxPercent: l.GSTPercent,
	}
}

// InvoiceDetail is a full invoice with its client and lines.
type InvoiceDetail struct {
	ID             int64         `json:"id"`
	InvoiceNumber  string        `json:"invoice_number"`
	ClientID       int64         `json:"client_id"`
	InvoiceDate    string        `json:"invoice_date"`
	DueDate        string        `json:"due_date"`
	Status         InvoiceStatus `json:"status"`
	BillingAddress string        `json:"billing_address"`
	Notes          *string       `json:"notes"`
	Subtotal       float64       `json:"subtotal"`
	TaxTotal       float64       `json:"tax_total"`
	GrandTotal     float64       `json:"grand_total"`
	CreatedAt      time.Time     `json:"created_at"`
	ClientName     string        `json:"client_name"`
	ClientEmail    *string       `json:"client_email"`
	ClientAddress  *string       `json:"client_address"`
	Items          []InvoiceLine `json:"items"`
}

// Lines returns the invoice lines as engine lines.
func (d *InvoiceDetail) Lines() []totals.LineItem {
	out := make([]totals.LineItem, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.LineItem()
	}
	return out
}
