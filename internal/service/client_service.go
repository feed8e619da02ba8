package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
)

// ClientService handles client business logic.
type ClientService struct {
	repo   repository.ClientRepository
	cache  repository.Cache
	config *config.Config
	logger *logging.Logger
}

// NewClientService creates a new client service. cache may be nil.
func NewClientService(repo repository.ClientRepository, cache repository.Cache, cfg *config.Config) *ClientService {
	return &ClientService{
		repo:   repo,
		cache:  cache,
		config: cfg,
		logger: logging.NewLogger("client-service"),
	}
}

func (s *ClientService) caching() bool {
	return s.cache != nil && s.config.Features.EnableCaching
}

// ListClients returns every client ordered by name.
func (s *ClientService) ListClients(ctx context.Context) ([]models.Client, error) {
	if s.caching() {
		if clients, err := s.cache.GetClients(ctx); err == nil && clients != nil {
			return clients, nil
		}
	}

	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.SetClients(ctx, clients); err != nil {
			s.logger.Warn("Failed to cache clients", logging.Fields{"error": err.Error()})
		}
	}
	return clients, nil
}

// CreateClient validates and stores a new client.
func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	client, err := ValidateCreateClientRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, client.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Client already exists")
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.InvalidateClients(ctx); err != nil {
			s.logger.Warn("Failed to invalidate client cache", logging.Fields{"error": err.Error()})
		}
	}

	s.logger.Info("Client created", logging.Fields{
		"client_id": client.ID,
		"name":      client.Name,
	})
	return client, nil
}
