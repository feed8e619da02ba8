package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// InvoiceNumberFormat derives the human invoice number from the row id.
const InvoiceNumberFormat = "INV-%05d"

var _ InvoiceRepository = (*PostgresInvoiceRepository)(nil)

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL.
type PostgresInvoiceRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository.
func NewPostgresInvoiceRepository(db *sql.DB, logger *logging.Logger) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db, logger: logger}
}

// List returns invoice summaries, newest first.
func (r *PostgresInvoiceRepository) List(ctx context.Context) ([]models.InvoiceSummary, error) {
	query := `
		SELECT i.id, COALESCE(i.invoice_number, ''), i.invoice_date, i.due_date, i.status,
		       i.subtotal, i.tax_total, i.grand_total, c.name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		ORDER BY i.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list invoices", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	invoices := make([]models.InvoiceSummary, 0)
	for rows.Next() {
		var s models.InvoiceSummary
		var invoiceDate, dueDate time.Time
		if err := rows.Scan(
			&s.ID, &s.InvoiceNumber, &invoiceDate, &dueDate, &s.Status,
			&s.Subtotal, &s.TaxTotal, &s.GrandTotal, &s.ClientName,
		); err != nil {
			return nil, err
		}
		s.InvoiceDate = invoiceDate.Format(models.DateLayout)
		s.DueDate = dueDate.Format(models.DateLayout)
		invoices = append(invoices, s)
	}
	return invoices, rows.Err()
}

// GetByID loads an invoice with its client and lines.
func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	query := `
		SELECT i.id, COALESCE(i.invoice_number, ''), i.client_id, i.invoice_date, i.due_date,
		       i.status, i.billing_address, i.notes, i.subtotal, i.tax_total, i.grand_total,
		       i.created_at, c.name, c.email, c.address
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1
	`

	var d models.InvoiceDetail
	var invoiceDate, dueDate time.Time
	var notes, email, address sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.InvoiceNumber, &d.ClientID, &invoiceDate, &dueDate,
		&d.Status, &d.BillingAddress, &notes, &d.Subtotal, &d.TaxTotal, &d.GrandTotal,
		&d.CreatedAt, &d.ClientName, &email, &address,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", logging.Fields{
			"invoice_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	d.InvoiceDate = invoiceDate.Format(models.DateLayout)
	d.DueDate = dueDate.Format(models.DateLayout)
	d.Notes = stringPtr(notes)
	d.ClientEmail = stringPtr(email)
	d.ClientAddress = stringPtr(address)

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = lines

	return &d, nil
}

func (r *PostgresInvoiceRepository) getLines(ctx context.Context, invoiceID int64) ([]models.InvoiceLine, error) {
	query := `
		SELECT id, item_id, item_name, quantity, unit_price, gst_percent
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]models.InvoiceLine, 0)
	for rows.Next() {
		var l models.InvoiceLine
		var itemID sql.NullInt64
		if err := rows.Scan(&l.ID, &itemID, &l.ItemName, &l.Quantity, &l.UnitPrice, &l.GSTPercent); err != nil {
			return nil, err
		}
		l.ItemID = intPtr(itemID)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Create stores the invoice and its lines in one transaction and assigns
// the invoice number.
func (r *PostgresInvoiceRepository) Create(ctx context.Context, inv *NewInvoice) (*models.CreateInvoiceResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invoices (client_id, invoice_date, due_date, status, billing_address, notes,
		                      subtotal, tax_total, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		inv.ClientID, inv.InvoiceDate, inv.DueDate, string(inv.Status), inv.BillingAddress,
		nullableString(inv.Notes), inv.Subtotal, inv.TaxTotal, inv.GrandTotal,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert invoice", logging.Fields{
			"client_id": inv.ClientID,
			"error":     err.Error(),
		})
		return nil, err
	}

	number := fmt.Sprintf(InvoiceNumberFormat, id)
	if _, err := tx.ExecContext(ctx, `UPDATE invoices SET invoice_number = $1 WHERE id = $2`, number, id); err != nil {
		return nil, err
	}

	for _, line := range inv.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, item_id, item_name, quantity, unit_price, gst_percent)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, nullableInt(line.ItemID), line.ItemName, line.Quantity, line.UnitPrice, line.GSTPercent)
		if err != nil {
			r.logger.Error("Failed to insert invoice line", logging.Fields{
				"invoice_id": id,
				"error":      err.Error(),
			})
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("Invoice created", logging.Fields{
		"invoice_id":     id,
		"invoice_number": number,
		"lines":          len(inv.Lines),
	})

	return &models.CreateInvoiceResult{
		InvoiceID:     id,
		InvoiceNumber: number,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		GrandTotal:    inv.GrandTotal,
	}, nil
}

// UpdateStatus changes the lifecycle status of an invoice.
func (r *PostgresInvoiceRepository) UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		r.logger.Error("Failed to update invoice status", logging.Fields{
			"invoice_id": id,
			"status":     status,
			"error":      err.Error(),
		})
		return err
	}
	return requireAffected(result)
}

// Delete removes an invoice; its lines cascade.
func (r *PostgresInvoiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete invoice", logging.Fields{
			"invoice_id": id,
			"error":      err.Error(),
		})
		return err
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
