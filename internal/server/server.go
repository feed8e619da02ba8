package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/middleware"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	http     *http.Server
	logger   *logging.Logger
}

func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())
	if cfg.Features.EnableMetrics {
		router.Use(metrics.Middleware())
	}

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logging.NewLogger("server"),
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	if s.config.Features.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.GET("/clients", s.handlers.ListClients)
		api.POST("/clients", s.handlers.CreateClient)

		api.GET("/items", s.handlers.ListItems)
		api.POST("/items", s.handlers.CreateItem)

		api.GET("/invoices", s.handlers.ListInvoices)
		api.POST("/invoices", s.handlers.CreateInvoice)
		api.GET("/invoices/:id", s.handlers.GetInvoice)
		api.DELETE("/invoices/:id", s.handlers.DeleteInvoice)
		api.PATCH("/invoices/:id/status", s.handlers.UpdateInvoiceStatus)
		api.GET("/invoices/:id/preview", s.handlers.PreviewInvoice)
		api.GET("/invoices/:id/pdf", s.handlers.ExportInvoicePDF)
	}
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called; it then returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Listening", logging.Fields{"addr": s.http.Addr})
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
