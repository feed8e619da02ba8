package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/storage"

	_ "github.com/lib/pq"
)

type repositories struct {
	clients  repository.ClientRepository
	items    repository.ItemRepository
	invoices repository.InvoiceRepository
}

func main() {
	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)

	logger := logging.NewLogger("invoices-service")
	logging.Infof("Starting invoices-service on port %d", cfg.Server.Port)

	ctx := context.Background()
	checks := map[string]handlers.Check{}

	var repos repositories
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory storage; data is lost on restart")
		store := repository.NewMemoryStore()
		repos = repositories{store.Clients(), store.Items(), store.Invoices()}
	default:
		db, err := initDatabase(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
		}
		defer db.Close()

		repos = repositories{
			clients:  repository.NewPostgresClientRepository(db, logger),
			items:    repository.NewPostgresItemRepository(db, logger),
			invoices: repository.NewPostgresInvoiceRepository(db, logger),
		}
		checks["database"] = db.PingContext
	}

	var cache repository.Cache
	if cfg.Features.EnableCaching {
		redisCache := repository.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable; cache lookups will miss", logging.Fields{"error": err.Error()})
		}
		cache = redisCache
		checks["redis"] = redisCache.Ping
	}

	var publisher events.Publisher
	if cfg.Features.EnableEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var archive storage.PDFArchive
	if cfg.Features.EnablePDFArchive {
		s3Archive, err := storage.NewS3Archive(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to configure PDF archive", logging.Fields{"error": err.Error()})
		}
		archive = s3Archive
	}

	clientService := service.NewClientService(repos.clients, cache, cfg)
	itemService := service.NewItemService(repos.items, cache, cfg)
	invoiceService := service.NewInvoiceService(repos.invoices, repos.clients, cache, publisher, archive, cfg)

	h := handlers.NewHandlers(clientService, itemService, invoiceService, cfg)
	for name, check := range checks {
		h.AddReadinessCheck(name, check)
	}

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":            cfg.Server.Port,
			"db_driver":       cfg.Database.Driver,
			"enable_caching":  cfg.Features.EnableCaching,
			"enable_events":   cfg.Features.EnableEvents,
			"enable_archive":  cfg.Features.EnablePDFArchive,
			"enable_pay_sync": cfg.Features.EnablePaymentSync,
			"enable_metrics":  cfg.Features.EnableMetrics,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var consumer *events.KafkaConsumer
	if cfg.Features.EnablePaymentSync {
		consumer = events.NewKafkaConsumer(cfg.Kafka, invoiceService, logger)
		go func() {
			if err := consumer.Start(context.Background()); err != nil {
				logger.Error("Payment consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := repository.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return db, nil
}
