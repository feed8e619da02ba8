package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/service"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Handlers holds all HTTP handlers for the invoices service.
type Handlers struct {
	clientService  *service.ClientService
	itemService    *service.ItemService
	invoiceService *service.InvoiceService
	config         *config.Config
	logger         *logging.Logger
	checks         map[string]Check
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	clientService *service.ClientService,
	itemService *service.ItemService,
	invoiceService *service.InvoiceService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		clientService:  clientService,
		itemService:    itemService,
		invoiceService: invoiceService,
		config:         cfg,
		logger:         logging.NewLogger("handlers"),
		checks:         make(map[string]Check),
	}
}

// AddReadinessCheck registers a dependency probed by GET /ready.
func (h *Handlers) AddReadinessCheck(name string, check Check) {
	h.checks[name] = check
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func invalidBody(c *gin.Context) {
	fail(c, http.StatusBadRequest, "Invalid JSON body")
}

// invoiceID parses the :id path parameter. Non-numeric ids cannot name an
// invoice and are answered as not found.
func invoiceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, "Invoice not found")
		return 0, false
	}
	return id, true
}

func (h *Handlers) handleError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		fail(c, http.StatusNotFound, notFound)
		return
	}

	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		fail(c, http.StatusConflict, conflictErr.Message)
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		fail(c, http.StatusBadRequest, validationErr.Message)
		return
	}

	h.logger.Error("Request failed", logging.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": middleware.RequestIDFromContext(c.Request.Context()),
		"error":      err.Error(),
	})
	fail(c, http.StatusInternalServerError, "Server error")
}
