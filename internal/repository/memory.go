package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

var (
	_ ClientRepository  = (*MemoryClients)(nil)
	_ ItemRepository    = (*MemoryItems)(nil)
	_ InvoiceRepository = (*MemoryInvoices)(nil)
)

// MemoryStore keeps every record in process memory. It backs the
// DB_DRIVER=memory development mode and the package tests.
type MemoryStore struct {
	mu       sync.RWMutex
	clients  map[int64]models.Client
	items    map[int64]models.Item
	invoices map[int64]*memoryInvoice
	nextID   map[string]int64
	now      func() time.Time
}

type memoryInvoice struct {
	detail models.InvoiceDetail
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:  make(map[int64]models.Client),
		items:    make(map[int64]models.Item),
		invoices: make(map[int64]*memoryInvoice),
		nextID:   make(map[string]int64),
		now:      time.Now,
	}
}

func (m *MemoryStore) next(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

// Clients returns the client repository view of the store.
func (m *MemoryStore) Clients() *MemoryClients { return &MemoryClients{m} }

// Items returns the item repository view of the store.
func (m *MemoryStore) Items() *MemoryItems { return &MemoryItems{m} }

// Invoices returns the invoice repository view of the store.
func (m *MemoryStore) Invoices() *MemoryInvoices { return &MemoryInvoices{m} }

type MemoryClients struct{ s *MemoryStore }

func (r *MemoryClients) List(ctx context.Context) ([]models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryClients) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.clients[id]
	return ok, nil
}

func (r *MemoryClients) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.hasName(name), nil
}

func (r *MemoryClients) hasName(name string) bool {
	for _, c := range r.s.clients {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *MemoryClients) Create(ctx context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.hasName(client.Name) {
		return apperrors.NewConflictError("Client already exists")
	}
	client.ID = r.s.next("clients")
	r.s.clients[client.ID] = *client
	return nil
}

type MemoryItems struct{ s *MemoryStore }

func (r *MemoryItems) List(ctx context.Context) ([]models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryItems) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.hasName(name), nil
}

func (r *MemoryItems) hasName(name string) bool {
	for _, it := range r.s.items {
		if strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}

func (r *MemoryItems) Create(ctx context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.hasName(item.Name) {
		return apperrors.NewConflictError("Item already exists")
	}
	item.ID = r.s.next("items")
	r.s.items[item.ID] = *item
	return nil
}

type MemoryInvoices struct{ s *MemoryStore }

func (r *MemoryInvoices) List(ctx context.Context) ([]models.InvoiceSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.InvoiceSummary, 0, len(r.s.invoices))
	for _, inv := range r.s.invoices {
		d := inv.detail
		out = append(out, models.InvoiceSummary{
			ID:            d.ID,
			InvoiceNumber: d.InvoiceNumber,
			InvoiceDate:   d.InvoiceDate,
			DueDate:       d.DueDate,
			Status:        d.Status,
			Subtotal:      d.Subtotal,
			TaxTotal:      d.TaxTotal,
			GrandTotal:    d.GrandTotal,
			ClientName:    r.s.clients[d.ClientID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryInvoices) GetByID(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	d := inv.detail
	client := r.s.clients[d.ClientID]
	d.ClientName = client.Name
	d.ClientEmail = client.Email
	d.ClientAddress = client.Address
	d.Items = append([]models.InvoiceLine(nil), inv.detail.Items...)
	return &d, nil
}

func (r *MemoryInvoices) Create(ctx context.Context, in *NewInvoice) (*models.CreateInvoiceResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[in.ClientID]; !ok {
		return nil, fmt.Errorf("client %d: %w", in.ClientID, apperrors.ErrNotFound)
	}

	id := r.s.next("invoices")
	number := fmt.Sprintf(InvoiceNumberFormat, id)

	lines := make([]models.InvoiceLine, len(in.Lines))
	for i, l := range in.Lines {
		l.ID = r.s.next("invoice_items")
		lines[i] = l
	}

	r.s.invoices[id] = &memoryInvoice{detail: models.InvoiceDetail{
		ID:             id,
		InvoiceNumber:  number,
		ClientID:       in.ClientID,
		InvoiceDate:    in.InvoiceDate,
		DueDate:        in.DueDate,
		Status:         in.Status,
		BillingAddress: in.BillingAddress,
		Notes:          in.Notes,
		Subtotal:       in.Subtotal,
		TaxTotal:       in.TaxTotal,
		GrandTotal:     in.GrandTotal,
		CreatedAt:      r.s.now().UTC(),
		Items:          lines,
	}}

	return &models.CreateInvoiceResult{
		InvoiceID:     id,
		InvoiceNumber: number,
		Subtotal:      in.Subtotal,
		TaxTotal:      in.TaxTotal,
		GrandTotal:    in.GrandTotal,
	}, nil
}

func (r *MemoryInvoices) UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	inv.detail.Status = status
	return nil
}

func (r *MemoryInvoices) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.invoices[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.invoices, id)
	return nil
}
