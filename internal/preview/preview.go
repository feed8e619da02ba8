// Package preview renders invoices for people: a printable HTML page and
// a terminal dashboard.
package preview

import (
	"html/template"
	"io"
	"strings"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

// DefaultTitle heads the preview when no company name is configured.
const DefaultTitle = "Invoice Hub"

var funcs = template.FuncMap{
	"currency": format.Currency,
	"date":     format.Date,
	"number":   format.Number,
	"percent":  format.Percent,
	"lineTotal": func(l models.InvoiceLine) float64 {
		return totals.ComputeLine(l.LineItem()).LineGrandTotal
	},
	"lines": func(s *string) []string {
		if s == nil || *s == "" {
			return nil
		}
		return strings.Split(*s, "\n")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Invoice.InvoiceNumber}}</title>
<style>
body{font-family:system-ui,sans-serif;color:#111827;max-width:800px;margin:2rem auto;font-size:0.9rem}
.preview-header{display:flex;justify-content:space-between}
table{width:100%;border-collapse:collapse}
th,td{padding:0.35rem 0.5rem;border-bottom:1px solid #e5e7eb}
.num{text-align:right}.mid{text-align:center}
.totals-box{margin-left:auto;width:260px;margin-top:0.75rem}
.totals-line{display:flex;justify-content:space-between}
.grand{font-weight:700;border-top:1px solid #111827;margin-top:0.25rem;padding-top:0.25rem}
.thanks{margin-top:0.75rem;font-size:0.8rem;color:#6b7280}
@media print{body{margin:0}}
</style>
</head>
<body>
<div class="preview-header">
  <div>
    <h3>{{.Title}}</h3>
    <p>Invoice #: <strong>{{.Invoice.InvoiceNumber}}</strong></p>
    <p>Date: {{date .Invoice.InvoiceDate}}</p>
    <p>Due: {{date .Invoice.DueDate}}</p>
    <p>Status: {{.Invoice.Status}}</p>
  </div>
  <div>
    <p><strong>Bill To:</strong></p>
    <p>{{.Invoice.ClientName}}</p>
    <p>{{deref .Invoice.ClientEmail}}</p>
    <p>{{range $i, $l := lines .Invoice.ClientAddress}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
  </div>
</div>
<hr>
<table>
  <thead>
    <tr>
      <th>Description</th>
      <th class="mid">Qty</th>
      <th class="num">Unit</th>
      <th class="mid">GST %</th>
      <th class="num">Total</th>
    </tr>
  </thead>
  <tbody>
{{- range .Invoice.Items}}
    <tr>
      <td>{{.ItemName}}</td>
      <td class="mid">{{number .Quantity}}</td>
      <td class="num">{{currency .UnitPrice}}</td>
      <td class="mid">{{percent .GSTPercent}}</td>
      <td class="num">{{currency (lineTotal .)}}</td>
    </tr>
{{- end}}
  </tbody>
</table>
<div class="totals-box">
  <div class="totals-line"><span>Subtotal</span><span>{{currency .Invoice.Subtotal}}</span></div>
  <div class="totals-line"><span>GST</span><span>{{currency .Invoice.TaxTotal}}</span></div>
  <div class="totals-line grand"><span>Grand Total</span><span>{{currency .Invoice.GrandTotal}}</span></div>
</div>
{{- with .Invoice.Notes}}
<p>Notes: {{.}}</p>
{{- end}}
<p class="thanks">Thank you for your business!</p>
</body>
</html>
`))

// HTML writes a printable invoice page.
func HTML(w io.Writer, inv *models.InvoiceDetail, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	return invoiceTemplate.Execute(w, struct {
		Title   string
		Invoice *models.InvoiceDetail
	}{title, inv})
}
