// Package pdf renders a stored invoice as a one-or-more page A4 document.
package pdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

// DefaultTitle heads the document when no company name is configured.
const DefaultTitle = "Invoice Hub"

// Layout in millimetres.
const (
	marginX    = 10.0
	billToX    = 120.0
	ruleEndX   = 200.0
	qtyX       = 90.0
	unitX      = 110.0
	gstX       = 140.0
	totalX     = 170.0
	qtyRight   = 90.0
	unitRight  = 125.0
	gstRight   = 150.0
	totalRight = 190.0
	pageBreakY = 270.0
)

// FileName is the download name of an invoice PDF.
func FileName(inv *models.InvoiceDetail) string {
	return inv.InvoiceNumber + ".pdf"
}

// Render writes the invoice PDF to w. Line totals are recomputed from the
// stored lines; the aggregate figures are the stored ones.
func Render(w io.Writer, inv *models.InvoiceDetail, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	text := func(x, y float64, s string) { doc.Text(x, y, tr(s)) }
	right := func(xRight, y float64, s string) {
		s = tr(s)
		doc.Text(xRight-doc.GetStringWidth(s), y, s)
	}
	rule := func(y float64) { doc.Line(marginX, y, ruleEndX, y) }

	doc.AddPage()

	y := 10.0
	doc.SetFont("Helvetica", "B", 16)
	text(marginX, y, title)
	y += 8
	doc.SetFont("Helvetica", "", 11)
	text(marginX, y, "Invoice #: "+inv.InvoiceNumber)
	y += 6
	text(marginX, y, "Date: "+inv.InvoiceDate)
	y += 6
	text(marginX, y, "Due: "+inv.DueDate)

	y = 12
	text(billToX, y, "Bill To:")
	y += 6
	text(billToX, y, inv.ClientName)
	y += 6
	if inv.ClientEmail != nil && *inv.ClientEmail != "" {
		text(billToX, y, *inv.ClientEmail)
		y += 6
	}
	if inv.ClientAddress != nil && *inv.ClientAddress != "" {
		for _, line := range strings.Split(*inv.ClientAddress, "\n") {
			text(billToX, y, line)
			y += 5
		}
	}

	y += 4
	rule(y)
	y += 6

	doc.SetFontSize(10)
	text(marginX, y, "Item")
	text(qtyX, y, "Qty")
	text(unitX, y, "Unit")
	text(gstX, y, "GST%")
	text(totalX, y, "Total")
	y += 4
	rule(y)
	y += 6

	for _, it := range inv.Items {
		b := totals.ComputeLine(it.LineItem())
		text(marginX, y, it.ItemName)
		right(qtyRight, y, format.Number(it.Quantity))
		right(unitRight, y, format.Number(it.UnitPrice))
		right(gstRight, y, format.Number(it.GSTPercent))
		right(totalRight, y, format.Amount(b.LineGrandTotal))
		y += 6
		if y > pageBreakY {
			doc.AddPage()
			y = 10
		}
	}

	y += 4
	rule(y)
	y += 6

	text(gstX, y, "Subtotal:")
	right(totalRight, y, format.Amount(inv.Subtotal))
	y += 6
	text(gstX, y, "GST:")
	right(totalRight, y, format.Amount(inv.TaxTotal))
	y += 6
	doc.SetFontSize(11)
	text(gstX, y, "Grand Total:")
	right(totalRight, y, format.Amount(inv.GrandTotal))

	return doc.Output(w)
}

// Bytes renders the invoice into memory.
func Bytes(inv *models.InvoiceDetail, title string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, inv, title); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
