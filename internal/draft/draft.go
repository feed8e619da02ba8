// Package draft holds the state of an invoice being edited: the header
// fields and the editable line table. Every mutation recomputes the totals
// so Totals always reflects the current rows.
package draft

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

var (
	// ErrNoClient is returned by Payload when no client is selected.
	ErrNoClient = errors.New("no client selected")

	// ErrNoValidLines is returned by Payload when every row was dropped.
	ErrNoValidLines = errors.New("no valid line items")
)

// Default values of a new row.
const (
	DefaultQuantity   = "1"
	DefaultUnitPrice  = "0"
	DefaultTaxPercent = "18"
)

// Row is one editable line with its fields exactly as typed.
type Row struct {
	ItemRef    *int64
	Name       string
	Quantity   string
	UnitPrice  string
	TaxPercent string
}

func (r Row) raw() totals.RawLine {
	return totals.RawLine{
		ItemRef:    r.ItemRef,
		Name:       r.Name,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		TaxPercent: r.TaxPercent,
	}
}

// Prefill seeds a new row.
type Prefill struct {
	Quantity   float64
	UnitPrice  float64
	TaxPercent float64
}

// Draft is an invoice form.
type Draft struct {
	ClientID       int64
	InvoiceDate    string
	DueDate        string
	Status         models.InvoiceStatus
	BillingAddress string
	Notes          string

	rows   []Row
	totals totals.Totals
}

// New returns a draft dated today with one default row.
func New(today time.Time) *Draft {
	d := &Draft{}
	d.Reset(today)
	return d
}

// Reset clears the form back to a single default row.
func (d *Draft) Reset(today time.Time) {
	date := today.Format(models.DateLayout)
	*d = Draft{
		InvoiceDate: date,
		DueDate:     date,
		Status:      models.InvoiceStatusPending,
	}
	d.AddRow(nil)
}

// Rows returns a copy of the current rows.
func (d *Draft) Rows() []Row {
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Len returns the number of rows.
func (d *Draft) Len() int { return len(d.rows) }

// Totals returns the amounts for the current rows.
func (d *Draft) Totals() totals.Totals { return d.totals }

// Lines returns the current rows as engine lines, including invalid ones.
func (d *Draft) Lines() []totals.LineItem {
	lines := make([]totals.LineItem, len(d.rows))
	for i, r := range d.rows {
		lines[i] = totals.FromRaw(r.raw())
	}
	return lines
}

func (d *Draft) recompute() {
	d.totals = totals.Compute(d.Lines())
}

// AddRow appends a row, using defaults when prefill is nil.
func (d *Draft) AddRow(prefill *Prefill) int {
	r := Row{
		Quantity:   DefaultQuantity,
		UnitPrice:  DefaultUnitPrice,
		TaxPercent: DefaultTaxPercent,
	}
	if prefill != nil {
		r.Quantity = formatFloat(prefill.Quantity)
		r.UnitPrice = formatFloat(prefill.UnitPrice)
		r.TaxPercent = formatFloat(prefill.TaxPercent)
	}
	d.rows = append(d.rows, r)
	d.recompute()
	return len(d.rows) - 1
}

// RemoveRow deletes row i. Out-of-range indexes are ignored.
func (d *Draft) RemoveRow(i int) {
	if !d.valid(i) {
		return
	}
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	d.recompute()
}

func (d *Draft) valid(i int) bool { return i >= 0 && i < len(d.rows) }

func (d *Draft) update(i int, fn func(r *Row)) bool {
	if !d.valid(i) {
		return false
	}
	fn(&d.rows[i])
	d.recompute()
	return true
}

// SetName sets the description of row i.
func (d *Draft) SetName(i int, v string) bool {
	return d.update(i, func(r *Row) { r.Name = v })
}

// SetQuantity sets the quantity text of row i.
func (d *Draft) SetQuantity(i int, v string) bool {
	return d.update(i, func(r *Row) { r.Quantity = v })
}

// SetUnitPrice sets the unit price text of row i.
func (d *Draft) SetUnitPrice(i int, v string) bool {
	return d.update(i, func(r *Row) { r.UnitPrice = v })
}

// SetTaxPercent sets the GST text of row i.
func (d *Draft) SetTaxPercent(i int, v string) bool {
	return d.update(i, func(r *Row) { r.TaxPercent = v })
}

// SelectItem links row i to a catalog item and copies its name, price and
// GST. The quantity is kept.
func (d *Draft) SelectItem(i int, item models.Item) bool {
	return d.update(i, func(r *Row) {
		id := item.ID
		r.ItemRef = &id
		r.Name = strings.TrimSpace(item.Name)
		r.UnitPrice = formatFloat(item.UnitPrice)
		r.TaxPercent = formatFloat(item.GSTPercent)
	})
}

// ClearItem turns row i back into a custom line, keeping typed values.
func (d *Draft) ClearItem(i int) bool {
	return d.update(i, func(r *Row) { r.ItemRef = nil })
}

// Payload builds the submission body. Rows without a name, with a
// quantity of zero or less, or with a negative price are left out.
func (d *Draft) Payload() (models.CreateInvoiceRequest, error) {
	if d.ClientID <= 0 {
		return models.CreateInvoiceRequest{}, ErrNoClient
	}

	var items []models.InvoiceLineRequest
	for _, l := range d.Lines() {
		if !l.Valid() {
			continue
		}
		items = append(items, models.InvoiceLineRequest{
			ItemID:     l.ItemRef,
			Name:       l.Name,
			Quantity:   models.NumberFromFloat(l.Quantity),
			UnitPrice:  models.NumberFromFloat(l.UnitPrice),
			GSTPercent: models.NumberFromFloat(l.TaxPercent),
		})
	}
	if len(items) == 0 {
		return models.CreateInvoiceRequest{}, ErrNoValidLines
	}

	return models.CreateInvoiceRequest{
		ClientID:       models.NumberFromInt(d.ClientID),
		InvoiceDate:    d.InvoiceDate,
		DueDate:        d.DueDate,
		Status:         string(d.Status),
		BillingAddress: strings.TrimSpace(d.BillingAddress),
		Notes:          strings.TrimSpace(d.Notes),
		Items:          items,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
