package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/draft"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

type fakeAPI struct {
	clients  []models.Client
	items    []models.Item
	invoices []models.InvoiceSummary
	details  map[int64]*models.InvoiceDetail

	created   []models.CreateInvoiceRequest
	listErr   error
	createErr error
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{details: make(map[int64]*models.InvoiceDetail)}
}

func (f *fakeAPI) ListClients(ctx context.Context) ([]models.Client, error) {
	f.calls = append(f.calls, "ListClients")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Client(nil), f.clients...), nil
}

func (f *fakeAPI) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	f.calls = append(f.calls, "CreateClient")
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := models.Client{ID: int64(len(f.clients) + 1), Name: req.Name}
	f.clients = append(f.clients, c)
	return &c, nil
}

func (f *fakeAPI) ListItems(ctx context.Context) ([]models.Item, error) {
	f.calls = append(f.calls, "ListItems")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Item(nil), f.items...), nil
}

func (f *fakeAPI) CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	f.calls = append(f.calls, "CreateItem")
	if f.createErr != nil {
		return nil, f.createErr
	}
	price, _ := req.UnitPrice.Float()
	gst, _ := req.GSTPercent.Float()
	it := models.Item{ID: int64(len(f.items) + 1), Name: req.Name, UnitPrice: price, GSTPercent: gst}
	f.items = append(f.items, it)
	return &it, nil
}

func (f *fakeAPI) ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error) {
	f.calls = append(f.calls, "ListInvoices")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.InvoiceSummary(nil), f.invoices...), nil
}

func (f *fakeAPI) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreateInvoiceResult, error) {
	f.calls = append(f.calls, "CreateInvoice")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *req)

	id := int64(len(f.created))
	number := fmt.Sprintf("INV-%05d", id)
	f.invoices = append([]models.InvoiceSummary{{ID: id, InvoiceNumber: number, Status: models.InvoiceStatusPending, GrandTotal: 236}}, f.invoices...)
	f.details[id] = &models.InvoiceDetail{ID: id, InvoiceNumber: number, ClientName: "Acme", GrandTotal: 236}
	return &models.CreateInvoiceResult{InvoiceID: id, InvoiceNumber: number, Subtotal: 200, TaxTotal: 36, GrandTotal: 236}, nil
}

func (f *fakeAPI) GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	f.calls = append(f.calls, "GetInvoice")
	inv, ok := f.details[id]
	if !ok {
		return nil, errors.New("Invoice not found")
	}
	return inv, nil
}

func newTestController(api *fakeAPI) (*Controller, *Recorder) {
	rec := &Recorder{}
	c := New(api, rec, "Invoice Hub")
	c.now = func() time.Time { return time.Date(2025, 12, 19, 10, 0, 0, 0, time.UTC) }
	c.ResetDraft()
	return c, rec
}

func TestInit(t *testing.T) {
	api := newFakeAPI()
	api.clients = []models.Client{{ID: 1, Name: "Acme"}}
	api.items = []models.Item{{ID: 1, Name: "Widget", UnitPrice: 100, GSTPercent: 18}}
	c, rec := newTestController(api)

	require.NoError(t, c.Init(context.Background()))

	st := c.State()
	assert.Len(t, st.Clients, 1)
	assert.Len(t, st.Items, 1)
	assert.NotNil(t, st.Invoices)
	assert.Empty(t, rec.Messages)
	assert.Equal(t, "2025-12-19", c.Draft().InvoiceDate)
	assert.Equal(t, 1, c.Draft().Len())
}

func TestInit_Failure(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("HTTP 500")
	c, rec := newTestController(api)

	err := c.Init(context.Background())
	assert.EqualError(t, err, "HTTP 500")
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, Message{Area: AreaClients, Level: LevelError, Text: "Failed to load clients: HTTP 500"}, rec.Messages[0])
	assert.Equal(t, AreaItems, rec.Messages[1].Area)
}

func TestLoadClients_ReplacesWholeList(t *testing.T) {
	api := newFakeAPI()
	api.clients = []models.Client{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}
	c, _ := newTestController(api)
	require.NoError(t, c.LoadClients(context.Background()))
	assert.Len(t, c.State().Clients, 2)

	api.clients = api.clients[:1]
	require.NoError(t, c.LoadClients(context.Background()))
	assert.Len(t, c.State().Clients, 1)

	api.listErr = errors.New("offline")
	assert.Error(t, c.LoadClients(context.Background()))
	assert.Len(t, c.State().Clients, 1)
}

func TestAddClient(t *testing.T) {
	api := newFakeAPI()
	c, rec := newTestController(api)
	ctx := context.Background()

	assert.Error(t, c.AddClient(ctx, "   ", "", ""))
	assert.Equal(t, "Client name is required", rec.Last().Text)
	assert.Empty(t, api.calls)

	require.NoError(t, c.AddClient(ctx, " Acme ", "", ""))
	assert.Equal(t, Message{Area: AreaClients, Level: LevelSuccess, Text: "Client added successfully"}, rec.Last())
	assert.Equal(t, []string{"CreateClient", "ListClients"}, api.calls)
	assert.Equal(t, "Acme", c.State().Clients[0].Name)

	api.createErr = errors.New("Client already exists")
	assert.Error(t, c.AddClient(ctx, "Acme", "", ""))
	assert.Equal(t, "Failed to add client: Client already exists", rec.Last().Text)
	assert.Equal(t, LevelError, rec.Last().Level)
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name    string
		item    [3]string
		message string
		level   Level
	}{
		{"valid", [3]string{"Widget", "100", "18"}, "Item added successfully", LevelSuccess},
		{"blank name", [3]string{" ", "100", "18"}, "Item name is required", LevelError},
		{"text price", [3]string{"Widget", "abc", "18"}, "Enter a valid unit price", LevelError},
		{"negative price", [3]string{"Widget", "-1", "18"}, "Enter a valid unit price", LevelError},
		{"empty gst", [3]string{"Widget", "10", ""}, "Enter a valid GST % (0-100)", LevelError},
		{"gst over 100", [3]string{"Widget", "10", "101"}, "Enter a valid GST % (0-100)", LevelError},
		{"numeric prefix", [3]string{"Widget", "12.5kg", "5%"}, "Item added successfully", LevelSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			c, rec := newTestController(api)

			err := c.AddItem(context.Background(), tt.item[0], tt.item[1], tt.item[2])
			assert.Equal(t, tt.level == LevelSuccess, err == nil)
			assert.Equal(t, tt.message, rec.Last().Text)
			assert.Equal(t, tt.level, rec.Last().Level)
		})
	}
}

func TestAddItem_ParsedValues(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestController(api)

	require.NoError(t, c.AddItem(context.Background(), "Widget", "12.5kg", "5%"))
	require.Len(t, c.State().Items, 1)
	assert.Equal(t, 12.5, c.State().Items[0].UnitPrice)
	assert.Equal(t, 5.0, c.State().Items[0].GSTPercent)
}

func TestSelectItem(t *testing.T) {
	api := newFakeAPI()
	api.items = []models.Item{{ID: 7, Name: "Widget", UnitPrice: 100, GSTPercent: 12}}
	c, _ := newTestController(api)
	require.NoError(t, c.LoadItems(context.Background()))

	require.True(t, c.SelectItem(0, 7))
	row := c.Draft().Rows()[0]
	require.NotNil(t, row.ItemRef)
	assert.Equal(t, int64(7), *row.ItemRef)
	assert.Equal(t, "Widget", row.Name)
	assert.Equal(t, 112.0, c.Draft().Totals().GrandTotal)

	require.True(t, c.SelectItem(0, 0))
	assert.Nil(t, c.Draft().Rows()[0].ItemRef)
	assert.Equal(t, "Widget", c.Draft().Rows()[0].Name)

	assert.False(t, c.SelectItem(5, 7))
}

func TestSubmitDraft(t *testing.T) {
	api := newFakeAPI()
	c, rec := newTestController(api)
	ctx := context.Background()
	d := c.Draft()

	_, err := c.SubmitDraft(ctx)
	assert.ErrorIs(t, err, draft.ErrNoClient)
	assert.Equal(t, "Please select a client", rec.Last().Text)

	d.ClientID = 1
	_, err = c.SubmitDraft(ctx)
	assert.ErrorIs(t, err, draft.ErrNoValidLines)
	assert.Equal(t, "Add at least one valid item", rec.Last().Text)
	assert.Empty(t, api.created)

	d.SetName(0, "Widget")
	d.SetQuantity(0, "2")
	d.SetUnitPrice(0, "100")
	i := d.AddRow(nil)
	d.SetName(i, "Freebie")
	d.SetQuantity(i, "0")

	res, err := c.SubmitDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", res.InvoiceNumber)
	assert.Equal(t, Message{Area: AreaInvoice, Level: LevelSuccess, Text: "Invoice INV-00001 created successfully"}, rec.Last())

	require.Len(t, api.created, 1)
	assert.Len(t, api.created[0].Items, 1)
	assert.Equal(t, 2, d.Len())

	st := c.State()
	require.NotNil(t, st.CurrentInvoice)
	assert.Equal(t, "INV-00001", st.CurrentInvoice.InvoiceNumber)
	assert.Len(t, st.Invoices, 1)
	assert.Equal(t, 1, c.Stats().Count)
}

func TestSubmitDraft_ServerError(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("Client not found")
	c, rec := newTestController(api)
	c.Draft().ClientID = 9
	c.Draft().SetName(0, "Widget")

	_, err := c.SubmitDraft(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "Failed to save invoice: Client not found", rec.Last().Text)
	assert.Equal(t, 1, c.Draft().Len())
	assert.Nil(t, c.State().CurrentInvoice)
}

func TestRefreshDashboard(t *testing.T) {
	api := newFakeAPI()
	for i := 1; i <= 7; i++ {
		api.invoices = append(api.invoices, models.InvoiceSummary{ID: int64(8 - i), Status: models.InvoiceStatusPending, GrandTotal: 10})
	}
	c, _ := newTestController(api)

	require.NoError(t, c.RefreshDashboard(context.Background()))
	assert.Len(t, c.Recent(), 5)
	assert.Equal(t, 7, c.Stats().Count)
	assert.Equal(t, 70.0, c.Stats().Pending)

	var buf bytes.Buffer
	require.NoError(t, c.WriteDashboard(&buf))
	assert.Contains(t, buf.String(), "Total invoices: 7")

	api.listErr = errors.New("offline")
	assert.Error(t, c.RefreshDashboard(context.Background()))
	assert.Len(t, c.State().Invoices, 7)
}

func TestExport(t *testing.T) {
	api := newFakeAPI()
	api.details[3] = &models.InvoiceDetail{
		ID:            3,
		InvoiceNumber: "INV-00003",
		InvoiceDate:   "2025-12-19",
		DueDate:       "2025-12-31",
		ClientName:    "Acme",
		Items:         []models.InvoiceLine{{ItemName: "Widget", Quantity: 2, UnitPrice: 100, GSTPercent: 18}},
		Subtotal:      200,
		TaxTotal:      36,
		GrandTotal:    236,
	}
	c, _ := newTestController(api)

	var buf bytes.Buffer
	assert.ErrorIs(t, c.ExportPDF(&buf), ErrNoInvoiceOpen)
	assert.ErrorIs(t, c.WritePreview(&buf), ErrNoInvoiceOpen)
	assert.Equal(t, "", c.PDFFileName())

	_, err := c.OpenInvoice(context.Background(), 3)
	require.NoError(t, err)

	require.NoError(t, c.ExportPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "INV-00003.pdf", c.PDFFileName())

	buf.Reset()
	require.NoError(t, c.WritePreview(&buf))
	assert.Contains(t, buf.String(), "INV-00003")

	c.ResetDraft()
	assert.Nil(t, c.State().CurrentInvoice)
}
