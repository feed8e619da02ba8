package repository

import (
	"context"
	"database/sql"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

var _ ClientRepository = (*PostgresClientRepository)(nil)

// PostgresClientRepository implements ClientRepository using PostgreSQL.
type PostgresClientRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresClientRepository creates a new PostgreSQL client repository.
func NewPostgresClientRepository(db *sql.DB, logger *logging.Logger) *PostgresClientRepository {
	return &PostgresClientRepository{db: db, logger: logger}
}

// List returns every client ordered by name.
func (r *PostgresClientRepository) List(ctx context.Context) ([]models.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, address FROM clients ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to list clients", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var c models.Client
		var email, address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &email, &address); err != nil {
			return nil, err
		}
		c.Email = stringPtr(email)
		c.Address = stringPtr(address)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Exists reports whether a client with the id exists.
func (r *PostgresClientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM clients WHERE id = $1`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsByName matches names case-insensitively.
func (r *PostgresClientRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM clients WHERE LOWER(name) = LOWER($1)`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts the client and sets its ID.
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	r.logger.Debug("Creating client", logging.Fields{"name": client.Name})

	err := r.db.QueryRowContext(
		ctx,
		`INSERT INTO clients (name, email, address) VALUES ($1, $2, $3) RETURNING id`,
		client.Name, nullableString(client.Email), nullableString(client.Address),
	).Scan(&client.ID)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("Client already exists")
	}
	if err != nil {
		r.logger.Error("Failed to create client", logging.Fields{
			"name":  client.Name,
			"error": err.Error(),
		})
		return err
	}

	r.logger.Info("Client created", logging.Fields{"client_id": client.ID})
	return nil
}
