package models

// CreateClientRequest is the body of POST /api/clients.
type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	Name       string     `json:"name"`
	UnitPrice  FlexNumber `json:"unit_price"`
	GSTPercent FlexNumber `json:"gst_percent"`
}

// InvoiceLineRequest is one line of an invoice submission.
type InvoiceLineRequest struct {
	ItemID     *int64     `json:"item_id"`
	Name       string     `json:"name"`
	Quantity   FlexNumber `json:"quantity"`
	UnitPrice  FlexNumber `json:"unit_price"`
	GSTPercent FlexNumber `json:"gst_percent"`
}

// CreateInvoiceRequest is the invoice submission payload.
type CreateInvoiceRequest struct {
	ClientID       FlexNumber           `json:"client_id"`
	InvoiceDate    string               `json:"invoice_date"`
	DueDate        string               `json:"due_date"`
	Status         string               `json:"status"`
	BillingAddress string               `json:"billing_address"`
	Notes          string               `json:"notes"`
	Items          []InvoiceLineRequest `json:"items"`
}

// UpdateInvoiceStatusRequest is the body of PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status"`
}

// CreateInvoiceResult is returned after an invoice is stored.
type CreateInvoiceResult struct {
	InvoiceID     int64   `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Subtotal      float64 `json:"subtotal"`
	TaxTotal      float64 `json:"tax_total"`
	GrandTotal    float64 `json:"grand_total"`
}
