package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// ClientRepository persists billable clients.
type ClientRepository interface {
	List(ctx context.Context) ([]models.Client, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
}

// ItemRepository persists the reusable item catalog.
type ItemRepository interface {
	List(ctx context.Context) ([]models.Item, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, item *models.Item) error
}

// InvoiceRepository persists invoices and their lines.
type InvoiceRepository interface {
	List(ctx context.Context) ([]models.InvoiceSummary, error)
	GetByID(ctx context.Context, id int64) (*models.InvoiceDetail, error)
	Create(ctx context.Context, inv *NewInvoice) (*models.CreateInvoiceResult, error)
	UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus) error
	Delete(ctx context.Context, id int64) error
}

// NewInvoice is a validated invoice ready to be stored. Totals are
// computed by the caller.
type NewInvoice struct {
	ClientID       int64
	InvoiceDate    string
	DueDate        string
	Status         models.InvoiceStatus
	BillingAddress string
	Notes          *string
	Subtotal       float64
	TaxTotal       float64
	GrandTotal     float64
	Lines          []models.InvoiceLine
}

// Cache holds read models in front of the repositories. Every value is
// replaced as a whole; entries are never patched in place.
type Cache interface {
	GetClients(ctx context.Context) ([]models.Client, error)
	SetClients(ctx context.Context, clients []models.Client) error
	InvalidateClients(ctx context.Context) error

	GetItems(ctx context.Context) ([]models.Item, error)
	SetItems(ctx context.Context, items []models.Item) error
	InvalidateItems(ctx context.Context) error

	GetInvoiceList(ctx context.Context) ([]models.InvoiceSummary, error)
	SetInvoiceList(ctx context.Context, invoices []models.InvoiceSummary) error
	InvalidateInvoiceList(ctx context.Context) error

	GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error)
	SetInvoice(ctx context.Context, inv *models.InvoiceDetail) error
	DeleteInvoice(ctx context.Context, id int64) error
}
