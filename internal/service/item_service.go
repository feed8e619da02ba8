package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/repository"
)

// ItemService handles the reusable item catalog.
type ItemService struct {
	repo   repository.ItemRepository
	cache  repository.Cache
	config *config.Config
	logger *logging.Logger
}

// NewItemService creates a new item service. cache may be nil.
func NewItemService(repo repository.ItemRepository, cache repository.Cache, cfg *config.Config) *ItemService {
	return &ItemService{
		repo:   repo,
		cache:  cache,
		config: cfg,
		logger: logging.NewLogger("item-service"),
	}
}

func (s *ItemService) caching() bool {
	return s.cache != nil && s.config.Features.EnableCaching
}

// ListItems returns the catalog ordered by name.
func (s *ItemService) ListItems(ctx context.Context) ([]models.Item, error) {
	if s.caching() {
		if items, err := s.cache.GetItems(ctx); err == nil && items != nil {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.SetItems(ctx, items); err != nil {
			s.logger.Warn("Failed to cache items", logging.Fields{"error": err.Error()})
		}
	}
	return items, nil
}

// CreateItem validates and stores a catalog item.
func (s *ItemService) CreateItem(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	item, err := ValidateCreateItemRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, item.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Item already exists")
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	if s.caching() {
		if err := s.cache.InvalidateItems(ctx); err != nil {
			s.logger.Warn("Failed to invalidate item cache", logging.Fields{"error": err.Error()})
		}
	}

	s.logger.Info("Item created", logging.Fields{
		"item_id":     item.ID,
		"unit_price":  item.UnitPrice,
		"gst_percent": item.GSTPercent,
	})
	return item, nil
}
