package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// ListClients handles GET /api/clients
func (h *Handlers) ListClients(c *gin.Context) {
	clients, err := h.clientService.ListClients(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Client not found")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "clients": clients})
}

// CreateClient handles POST /api/clients
func (h *Handlers) CreateClient(c *gin.Context) {
	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind request", logging.Fields{"error": err.Error()})
		invalidBody(c)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Client not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Client added successfully",
		"client":  client,
	})
}

// ListItems handles GET /api/items
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.itemService.ListItems(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Item not found")
		return
	}
	if items == nil {
		items = []models.Item{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// CreateItem handles POST /api/items
func (h *Handlers) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind request", logging.Fields{"error": err.Error()})
		invalidBody(c)
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err, "Item not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Item added successfully",
		"item":    item,
	})
}
