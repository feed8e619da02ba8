package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// APIError is a failed API call. Message is the server's message, or
// "HTTP <status>" when the response carried none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// envelope is the common part of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPInvoicesClient talks to the invoices API.
type HTTPInvoicesClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPInvoicesClient creates a new HTTP-based invoices API client.
func NewHTTPInvoicesClient(cfg config.ServiceConfig, logger *logging.Logger) *HTTPInvoicesClient {
	return &HTTPInvoicesClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// ListClients fetches every client, ordered by name.
func (c *HTTPInvoicesClient) ListClients(ctx context.Context) ([]models.Client, error) {
	var out struct {
		Clients []models.Client `json:"clients"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/clients", nil, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// CreateClient adds a client.
func (c *HTTPInvoicesClient) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	var out struct {
		Client *models.Client `json:"client"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/clients", req, &out); err != nil {
		return nil, err
	}
	return out.Client, nil
}

// ListItems fetches the item catalog, ordered by name.
func (c *HTTPInvoicesClient) ListItems(ctx context.Context) ([]models.Item, error) {
	var out struct {
		Items []models.Item `json:"items"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/items", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateItem adds a catalog item.
func (c *HTTPInvoicesClient) CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	var out struct {
		Item *models.Item `json:"item"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/items", req, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

// ListInvoices fetches invoice summaries, newest first.
func (c *HTTPInvoicesClient) ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error) {
	var out struct {
		Invoices []models.InvoiceSummary `json:"invoices"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/invoices", nil, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

// CreateInvoice submits an invoice.
func (c *HTTPInvoicesClient) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreateInvoiceResult, error) {
	var out models.CreateInvoiceResult
	if err := c.call(ctx, http.MethodPost, "/api/invoices", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInvoice fetches one invoice with its lines.
func (c *HTTPInvoicesClient) GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	var out struct {
		Invoice *models.InvoiceDetail `json:"invoice"`
	}
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/invoices/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

// DeleteInvoice removes an invoice.
func (c *HTTPInvoicesClient) DeleteInvoice(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", id), nil, nil)
}

// UpdateInvoiceStatus moves an invoice to status.
func (c *HTTPInvoicesClient) UpdateInvoiceStatus(ctx context.Context, id int64, status models.InvoiceStatus) (*models.InvoiceDetail, error) {
	var out struct {
		Invoice *models.InvoiceDetail `json:"invoice"`
	}
	body := models.UpdateInvoiceStatusRequest{Status: status}
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/api/invoices/%d/status", id), body, &out); err != nil {
		return nil, err
	}
	return out.Invoice, nil
}

// DownloadPDF fetches the server-rendered PDF of an invoice.
func (c *HTTPInvoicesClient) DownloadPDF(ctx context.Context, id int64) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/api/invoices/%d/pdf", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *HTTPInvoicesClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if resp.StatusCode < 200 || resp.StatusCode > 299 || json.Unmarshal(data, &env) != nil || !env.Success {
		return apiError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPInvoicesClient) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.setHeaders(ctx, req, body != nil)

	c.logger.Debug("Calling invoices API", logging.Fields{"method": method, "path": path})
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Invoices API request failed", logging.Fields{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, err
	}
	return resp, nil
}

func (c *HTTPInvoicesClient) setHeaders(ctx context.Context, req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := middleware.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(middleware.RequestIDHeader, requestID)
}

func apiError(status int, body []byte) *APIError {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return &APIError{Status: status, Message: env.Message}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("HTTP %d", status)}
}
