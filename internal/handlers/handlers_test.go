package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/service"
)

func newTestHandlers() *Handlers {
	store := repository.NewMemoryStore()
	cfg := &config.Config{Company: config.CompanyConfig{Name: "Invoice Hub"}}
	return NewHandlers(
		service.NewClientService(store.Clients(), nil, cfg),
		service.NewItemService(store.Items(), nil, cfg),
		service.NewInvoiceService(store.Invoices(), store.Clients(), nil, nil, nil, cfg),
		cfg,
	)
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ready", h.Ready)
	api := r.Group("/api")
	api.GET("/clients", h.ListClients)
	api.POST("/clients", h.CreateClient)
	api.GET("/items", h.ListItems)
	api.POST("/items", h.CreateItem)
	api.GET("/invoices", h.ListInvoices)
	api.POST("/invoices", h.CreateInvoice)
	api.GET("/invoices/:id", h.GetInvoice)
	api.DELETE("/invoices/:id", h.DeleteInvoice)
	api.PATCH("/invoices/:id/status", h.UpdateInvoiceStatus)
	api.GET("/invoices/:id/preview", h.PreviewInvoice)
	api.GET("/invoices/:id/pdf", h.ExportInvoicePDF)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

const invoiceBody = `{
	"client_id": 1,
	"invoice_date": "2025-12-19",
	"due_date": "2026-01-18",
	"status": "Pending",
	"items": [
		{"item_id": null, "name": "Widget", "quantity": 2, "unit_price": 100, "gst_percent": 18},
		{"name": "Service", "quantity": "1", "unit_price": "50", "gst_percent": "0"}
	]
}`

func seedInvoice(t *testing.T, r http.Handler) {
	t.Helper()
	w, _ := do(t, r, http.MethodPost, "/api/clients", `{"name":"Acme Corp","address":"12 MG Road"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/invoices", invoiceBody)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "invoices-service", resp["service"])
}

func TestLive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Live(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady(t *testing.T) {
	h := newTestHandlers()
	h.AddReadinessCheck("database", func(ctx context.Context) error { return nil })
	r := newTestRouter(h)

	w, resp := do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", resp["status"])

	h.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	w, resp = do(t, r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", resp["status"])
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandlers()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "Invoice not found"},
		{"wrapped not found", errors.Join(errors.New("lookup"), apperrors.ErrNotFound), http.StatusNotFound, "Invoice not found"},
		{"conflict", apperrors.NewConflictError("Client already exists"), http.StatusConflict, "Client already exists"},
		{"validation", apperrors.NewValidationError("name", "Client name must be at least 2 characters"), http.StatusBadRequest, "Client name must be at least 2 characters"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/invoices/1", nil)

			h.handleError(c, tt.err, "Invoice not found")

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.message, resp["message"])
		})
	}
}

func TestClients(t *testing.T) {
	r := newTestRouter(newTestHandlers())

	w, resp := do(t, r, http.MethodGet, "/api/clients", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Empty(t, resp["clients"])

	w, resp = do(t, r, http.MethodPost, "/api/clients", `{"name":"Acme Corp","email":"a@acme.test"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Client added successfully", resp["message"])
	client := resp["client"].(map[string]interface{})
	assert.Equal(t, float64(1), client["id"])
	assert.Nil(t, client["address"])

	w, resp = do(t, r, http.MethodPost, "/api/clients", `{"name":"ACME CORP"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Client already exists", resp["message"])

	w, resp = do(t, r, http.MethodPost, "/api/clients", `{"name":"A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Client name must be at least 2 characters", resp["message"])

	w, resp = do(t, r, http.MethodPost, "/api/clients", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON body", resp["message"])

	_, resp = do(t, r, http.MethodGet, "/api/clients", "")
	assert.Len(t, resp["clients"], 1)
}

func TestItems(t *testing.T) {
	r := newTestRouter(newTestHandlers())

	w, resp := do(t, r, http.MethodPost, "/api/items", `{"name":"Widget","unit_price":"100","gst_percent":18}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Item added successfully", resp["message"])
	item := resp["item"].(map[string]interface{})
	assert.Equal(t, 100.0, item["unit_price"])

	w, resp = do(t, r, http.MethodPost, "/api/items", `{"name":"Gadget","unit_price":"abc","gst_percent":18}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid price or GST", resp["message"])

	w, _ = do(t, r, http.MethodPost, "/api/items", `{"name":"widget","unit_price":1,"gst_percent":5}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	_, resp = do(t, r, http.MethodGet, "/api/items", "")
	assert.Len(t, resp["items"], 1)
}

func TestCreateAndGetInvoice(t *testing.T) {
	r := newTestRouter(newTestHandlers())
	w, _ := do(t, r, http.MethodPost, "/api/clients", `{"name":"Acme Corp"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := do(t, r, http.MethodPost, "/api/invoices", invoiceBody)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Invoice created successfully", resp["message"])
	assert.Equal(t, "INV-00001", resp["invoice_number"])
	assert.Equal(t, 250.0, resp["subtotal"])
	assert.Equal(t, 36.0, resp["tax_total"])
	assert.Equal(t, 286.0, resp["grand_total"])

	w, resp = do(t, r, http.MethodGet, "/api/invoices/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	invoice := resp["invoice"].(map[string]interface{})
	assert.Equal(t, "Acme Corp", invoice["client_name"])
	assert.Len(t, invoice["items"], 2)

	_, resp = do(t, r, http.MethodGet, "/api/invoices", "")
	assert.Len(t, resp["invoices"], 1)
}

func TestCreateInvoice_Validation(t *testing.T) {
	r := newTestRouter(newTestHandlers())

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `not json`, "Invalid JSON body"},
		{"no client", `{"items":[]}`, "Invalid client id"},
		{"no items", `{"client_id":1,"items":[]}`, "At least one line item is required"},
		{"unknown client", strings.Replace(invoiceBody, `"client_id": 1`, `"client_id": 9`, 1), "Client not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, r, http.MethodPost, "/api/invoices", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, resp["message"])
		})
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	r := newTestRouter(newTestHandlers())

	for _, path := range []string{"/api/invoices/7", "/api/invoices/abc", "/api/invoices/7/pdf", "/api/invoices/7/preview"} {
		w, resp := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Invoice not found", resp["message"], path)
	}
}

func TestDeleteInvoice(t *testing.T) {
	r := newTestRouter(newTestHandlers())
	seedInvoice(t, r)

	w, resp := do(t, r, http.MethodDelete, "/api/invoices/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invoice deleted", resp["message"])

	w, _ = do(t, r, http.MethodGet, "/api/invoices/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/invoices/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	r := newTestRouter(newTestHandlers())
	seedInvoice(t, r)

	w, resp := do(t, r, http.MethodPatch, "/api/invoices/1/status", `{"status":"Paid"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paid", resp["invoice"].(map[string]interface{})["status"])

	w, resp = do(t, r, http.MethodPatch, "/api/invoices/1/status", `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", resp["message"])

	w, _ = do(t, r, http.MethodPatch, "/api/invoices/5/status", `{"status":"Paid"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewInvoice(t *testing.T) {
	r := newTestRouter(newTestHandlers())
	seedInvoice(t, r)

	w, _ := do(t, r, http.MethodGet, "/api/invoices/1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "INV-00001")
	assert.Contains(t, w.Body.String(), "Thank you for your business!")
}

func TestExportInvoicePDF(t *testing.T) {
	r := newTestRouter(newTestHandlers())
	seedInvoice(t, r)

	w, _ := do(t, r, http.MethodGet, "/api/invoices/1/pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="INV-00001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}
