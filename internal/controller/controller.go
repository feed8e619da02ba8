// Package controller drives the invoicing workflow on the client side. It
// holds the fetched clients, items and invoices, the invoice draft being
// edited, and the invoice currently open, and turns every failure into a
// user-visible notice.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/draft"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/pdf"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/preview"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

// ErrNoInvoiceOpen is returned by the export operations when no invoice
// has been opened.
var ErrNoInvoiceOpen = errors.New("no invoice open")

// API is the subset of the invoices API the controller uses.
type API interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error)
	ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error)
	CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreateInvoiceResult, error)
	GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error)
}

// State is the data last fetched from the API. Each fetch replaces the
// whole slice; nothing is merged.
type State struct {
	Clients        []models.Client
	Items          []models.Item
	Invoices       []models.InvoiceSummary
	CurrentInvoice *models.InvoiceDetail
}

// Controller coordinates the API, the draft and the notices.
type Controller struct {
	api      API
	messages Messages
	title    string
	now      func() time.Time
	logger   *logging.Logger

	state State
	draft *draft.Draft
}

// New creates a controller with an empty state and a fresh draft. title
// heads exported documents.
func New(api API, messages Messages, title string) *Controller {
	c := &Controller{
		api:      api,
		messages: messages,
		title:    title,
		now:      time.Now,
		logger:   logging.NewLogger("controller"),
	}
	c.draft = draft.New(c.now())
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Draft returns the invoice being edited.
func (c *Controller) Draft() *draft.Draft { return c.draft }

func (c *Controller) notify(area Area, level Level, text string) {
	if c.messages != nil {
		c.messages.Notify(Message{Area: area, Level: level, Text: text})
	}
}

// Init loads the catalog and the dashboard and starts a blank draft.
// Failures are notified and logged; the first one is returned.
func (c *Controller) Init(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if err := c.LoadClients(ctx); err != nil {
		c.notify(AreaClients, LevelError, "Failed to load clients: "+err.Error())
		keep(err)
	}
	if err := c.LoadItems(ctx); err != nil {
		c.notify(AreaItems, LevelError, "Failed to load items: "+err.Error())
		keep(err)
	}
	keep(c.RefreshDashboard(ctx))
	c.ResetDraft()
	return first
}

// LoadClients replaces the client list.
func (c *Controller) LoadClients(ctx context.Context) error {
	clients, err := c.api.ListClients(ctx)
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.state.Clients = clients
	return nil
}

// LoadItems replaces the item catalog.
func (c *Controller) LoadItems(ctx context.Context) error {
	items, err := c.api.ListItems(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.Item{}
	}
	c.state.Items = items
	return nil
}

// AddClient creates a client and reloads the client list.
func (c *Controller) AddClient(ctx context.Context, name, email, address string) error {
	req := &models.CreateClientRequest{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Address: strings.TrimSpace(address),
	}
	if req.Name == "" {
		c.notify(AreaClients, LevelError, "Client name is required")
		return apperrors.NewValidationError("name", "Client name is required")
	}

	if _, err := c.api.CreateClient(ctx, req); err != nil {
		c.notify(AreaClients, LevelError, "Failed to add client: "+err.Error())
		return err
	}
	if err := c.LoadClients(ctx); err != nil {
		c.notify(AreaClients, LevelError, "Failed to add client: "+err.Error())
		return err
	}

	c.notify(AreaClients, LevelSuccess, "Client added successfully")
	return nil
}

// AddItem checks the typed values, creates the item and reloads the
// catalog. Price and GST are read the way a number field is: a leading
// numeric prefix counts, anything else is rejected.
func (c *Controller) AddItem(ctx context.Context, name, unitPrice, gstPercent string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		c.notify(AreaItems, LevelError, "Item name is required")
		return apperrors.NewValidationError("name", "Item name is required")
	}

	price := totals.ParseNumericOrDefault(unitPrice, math.NaN())
	if math.IsNaN(price) || price < 0 {
		c.notify(AreaItems, LevelError, "Enter a valid unit price")
		return apperrors.NewValidationError("unit_price", "Enter a valid unit price")
	}
	gst := totals.ParseNumericOrDefault(gstPercent, math.NaN())
	if math.IsNaN(gst) || gst < 0 || gst > 100 {
		c.notify(AreaItems, LevelError, "Enter a valid GST % (0-100)")
		return apperrors.NewValidationError("gst_percent", "Enter a valid GST % (0-100)")
	}

	req := &models.CreateItemRequest{
		Name:       name,
		UnitPrice:  models.NumberFromFloat(price),
		GSTPercent: models.NumberFromFloat(gst),
	}
	if _, err := c.api.CreateItem(ctx, req); err != nil {
		c.notify(AreaItems, LevelError, "Failed to add item: "+err.Error())
		return err
	}
	if err := c.LoadItems(ctx); err != nil {
		c.notify(AreaItems, LevelError, "Failed to add item: "+err.Error())
		return err
	}

	c.notify(AreaItems, LevelSuccess, "Item added successfully")
	return nil
}

// SelectItem links draft row i to the catalog item with the given id. An
// id of zero, or one missing from the catalog, turns the row back into a
// custom line.
func (c *Controller) SelectItem(row int, itemID int64) bool {
	for _, it := range c.state.Items {
		if it.ID == itemID {
			return c.draft.SelectItem(row, it)
		}
	}
	return c.draft.ClearItem(row)
}

// ResetDraft starts a blank draft dated today and closes the open invoice.
func (c *Controller) ResetDraft() {
	c.draft.Reset(c.now())
	c.state.CurrentInvoice = nil
}

// SubmitDraft sends the draft, then refreshes the dashboard and opens the
// new invoice. Rows that cannot be billed are left out; the draft itself
// is not modified.
func (c *Controller) SubmitDraft(ctx context.Context) (*models.CreateInvoiceResult, error) {
	payload, err := c.draft.Payload()
	switch {
	case errors.Is(err, draft.ErrNoClient):
		c.notify(AreaInvoice, LevelError, "Please select a client")
		return nil, err
	case errors.Is(err, draft.ErrNoValidLines):
		c.notify(AreaInvoice, LevelError, "Add at least one valid item")
		return nil, err
	case err != nil:
		return nil, err
	}

	result, err := c.api.CreateInvoice(ctx, &payload)
	if err != nil {
		c.notify(AreaInvoice, LevelError, "Failed to save invoice: "+err.Error())
		return nil, err
	}
	c.notify(AreaInvoice, LevelSuccess, fmt.Sprintf("Invoice %s created successfully", result.InvoiceNumber))

	if err := c.RefreshDashboard(ctx); err != nil {
		c.logger.Warn("Dashboard refresh failed", logging.Fields{"error": err.Error()})
	}
	if _, err := c.OpenInvoice(ctx, result.InvoiceID); err != nil {
		c.notify(AreaInvoice, LevelError, "Failed to load invoice: "+err.Error())
	}
	return result, nil
}

// RefreshDashboard replaces the invoice list. Failures are logged only.
func (c *Controller) RefreshDashboard(ctx context.Context) error {
	invoices, err := c.api.ListInvoices(ctx)
	if err != nil {
		c.logger.Error("Dashboard error", logging.Fields{"error": err.Error()})
		return err
	}
	if invoices == nil {
		invoices = []models.InvoiceSummary{}
	}
	c.state.Invoices = invoices
	return nil
}

// Stats summarizes the loaded invoice list.
func (c *Controller) Stats() preview.Stats {
	return preview.ComputeStats(c.state.Invoices)
}

// Recent returns the newest loaded invoices shown on the dashboard.
func (c *Controller) Recent() []models.InvoiceSummary {
	return preview.Recent(c.state.Invoices)
}

// WriteDashboard renders the dashboard for the loaded invoices.
func (c *Controller) WriteDashboard(w io.Writer) error {
	return preview.Dashboard(w, c.state.Invoices)
}

// OpenInvoice fetches an invoice and makes it the current one.
func (c *Controller) OpenInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	inv, err := c.api.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	c.state.CurrentInvoice = inv
	return inv, nil
}

// WritePreview renders the current invoice as a printable HTML page.
func (c *Controller) WritePreview(w io.Writer) error {
	if c.state.CurrentInvoice == nil {
		return ErrNoInvoiceOpen
	}
	return preview.HTML(w, c.state.CurrentInvoice, c.title)
}

// ExportPDF renders the current invoice as a PDF.
func (c *Controller) ExportPDF(w io.Writer) error {
	if c.state.CurrentInvoice == nil {
		return ErrNoInvoiceOpen
	}
	return pdf.Render(w, c.state.CurrentInvoice, c.title)
}

// PDFFileName is the download name of the current invoice.
func (c *Controller) PDFFileName() string {
	if c.state.CurrentInvoice == nil {
		return ""
	}
	return pdf.FileName(c.state.CurrentInvoice)
}
