package repository

import (
	"context"
	"database/sql"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

var _ ItemRepository = (*PostgresItemRepository)(nil)

// PostgresItemRepository implements ItemRepository using PostgreSQL.
type PostgresItemRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresItemRepository(db *sql.DB, logger *logging.Logger) *PostgresItemRepository {
	return &PostgresItemRepository{db: db, logger: logger}
}

func (r *PostgresItemRepository) List(ctx context.Context) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, unit_price, gst_percent FROM items ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to list items", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.UnitPrice, &it.GSTPercent); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresItemRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM items WHERE LOWER(name) = LOWER($1)`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) error {
	err := r.db.QueryRowContext(
		ctx,
		`INSERT INTO items (name, unit_price, gst_percent) VALUES ($1, $2, $3) RETURNING id`,
		item.Name, item.UnitPrice, item.GSTPercent,
	).Scan(&item.ID)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("Item already exists")
	}
	if err != nil {
		r.logger.Error("Failed to create item", logging.Fields{
			"name":  item.Name,
			"error": err.Error(),
		})
		return err
	}

	r.logger.Info("Item created", logging.Fields{"item_id": item.ID})
	return nil
}
