package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

const (
	clientsKey       = "clients:all"
	itemsKey         = "items:all"
	invoiceListKey   = "invoices:all"
	invoiceKeyPrefix = "invoice:"
	defaultCacheTTL  = 5 * time.Minute
)

var _ Cache = (*RedisCache)(nil)

// RedisCache implements Cache using Redis. A miss returns a nil value and
// a nil error.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisCache creates a Redis-backed cache from configuration.
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheWithClient(client, cfg.TTL)
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("invoice-cache"),
	}
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	ok, err := c.get(ctx, clientsKey, &clients)
	if !ok || err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *RedisCache) SetClients(ctx context.Context, clients []models.Client) error {
	return c.set(ctx, clientsKey, clients)
}

func (c *RedisCache) InvalidateClients(ctx context.Context) error {
	return c.del(ctx, clientsKey)
}

func (c *RedisCache) GetItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	ok, err := c.get(ctx, itemsKey, &items)
	if !ok || err != nil {
		return nil, err
	}
	return items, nil
}

func (c *RedisCache) SetItems(ctx context.Context, items []models.Item) error {
	return c.set(ctx, itemsKey, items)
}

func (c *RedisCache) InvalidateItems(ctx context.Context) error {
	return c.del(ctx, itemsKey)
}

func (c *RedisCache) GetInvoiceList(ctx context.Context) ([]models.InvoiceSummary, error) {
	var invoices []models.InvoiceSummary
	ok, err := c.get(ctx, invoiceListKey, &invoices)
	if !ok || err != nil {
		return nil, err
	}
	return invoices, nil
}

func (c *RedisCache) SetInvoiceList(ctx context.Context, invoices []models.InvoiceSummary) error {
	return c.set(ctx, invoiceListKey, invoices)
}

func (c *RedisCache) InvalidateInvoiceList(ctx context.Context) error {
	return c.del(ctx, invoiceListKey)
}

// GetInvoice retrieves a full invoice from cache.
func (c *RedisCache) GetInvoice(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	var inv models.InvoiceDetail
	ok, err := c.get(ctx, invoiceKey(id), &inv)
	if !ok || err != nil {
		return nil, err
	}
	return &inv, nil
}

// SetInvoice stores a full invoice in cache.
func (c *RedisCache) SetInvoice(ctx context.Context, inv *models.InvoiceDetail) error {
	return c.set(ctx, invoiceKey(inv.ID), inv)
}

// DeleteInvoice removes a full invoice from cache.
func (c *RedisCache) DeleteInvoice(ctx context.Context, id int64) error {
	return c.del(ctx, invoiceKey(id))
}

func invoiceKey(id int64) string {
	return invoiceKeyPrefix + strconv.FormatInt(id, 10)
}

// keyFamily drops per-record suffixes so metric labels stay bounded.
func keyFamily(key string) string {
	if strings.HasPrefix(key, invoiceKeyPrefix) {
		return strings.TrimSuffix(invoiceKeyPrefix, ":")
	}
	return key
}

func (c *RedisCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.CacheResult(keyFamily(key), false)
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}

	metrics.CacheResult(keyFamily(key), true)
	c.logger.Debug("Cache hit", logging.Fields{"key": key})
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}

	c.logger.Debug("Cached", logging.Fields{
		"key": key,
		"ttl": c.ttl.String(),
	})
	return nil
}

func (c *RedisCache) del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return nil
}
