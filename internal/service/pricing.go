package service

import (
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

// PriceLines computes invoice totals for stored lines with the same engine
// the editing form uses, so server and client figures agree.
func PriceLines(lines []models.InvoiceLine) totals.Totals {
	items := make([]totals.LineItem, len(lines))
	for i, l := range lines {
		items[i] = l.LineItem()
	}
	return totals.Compute(items)
}
