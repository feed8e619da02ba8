package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
)

const uniqueViolation = "23505"

// Schema creates the tables used by the service. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT,
	address    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS clients_name_lower_idx ON clients (LOWER(name));

CREATE TABLE IF NOT EXISTS items (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	unit_price  DOUBLE PRECISION NOT NULL CHECK (unit_price >= 0),
	gst_percent DOUBLE PRECISION NOT NULL CHECK (gst_percent BETWEEN 0 AND 100),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS items_name_lower_idx ON items (LOWER(name));

CREATE TABLE IF NOT EXISTS invoices (
	id              BIGSERIAL PRIMARY KEY,
	invoice_number  TEXT UNIQUE,
	client_id       BIGINT NOT NULL REFERENCES clients (id),
	invoice_date    DATE NOT NULL,
	due_date        DATE NOT NULL,
	status          TEXT NOT NULL DEFAULT 'Draft',
	billing_address TEXT NOT NULL DEFAULT '',
	notes           TEXT,
	subtotal        DOUBLE PRECISION NOT NULL DEFAULT 0,
	tax_total       DOUBLE PRECISION NOT NULL DEFAULT 0,
	grand_total     DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS invoice_items (
	id          BIGSERIAL PRIMARY KEY,
	invoice_id  BIGINT NOT NULL REFERENCES invoices (id) ON DELETE CASCADE,
	item_id     BIGINT REFERENCES items (id) ON DELETE SET NULL,
	item_name   TEXT NOT NULL,
	quantity    DOUBLE PRECISION NOT NULL,
	unit_price  DOUBLE PRECISION NOT NULL,
	gst_percent DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS invoice_items_invoice_idx ON invoice_items (invoice_id);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	logging.Infof("Applying database schema")
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// nullableString stores blank strings as NULL.
func nullableString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
