package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/controller"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/totals"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// printer writes controller notices, successes to out and errors to errOut.
type printer struct {
	out    io.Writer
	errOut io.Writer
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, errOut: errOut}
}

func (p *printer) Notify(m controller.Message) {
	if m.Level == controller.LevelError {
		fmt.Fprintln(p.errOut, errorStyle.Render(m.Text))
		return
	}
	fmt.Fprintln(p.out, successStyle.Render(m.Text))
}

func writeClients(w io.Writer, list []models.Client) error {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No clients yet."))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tADDRESS")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, deref(c.Email), oneLine(deref(c.Address)))
	}
	return tw.Flush()
}

func writeItems(w io.Writer, list []models.Item) error {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No items yet."))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUNIT PRICE\tGST")
	for _, it := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Name, format.Currency(it.UnitPrice), format.Percent(it.GSTPercent))
	}
	return tw.Flush()
}

func writeInvoice(w io.Writer, inv *models.InvoiceDetail) error {
	fmt.Fprintln(w, titleStyle.Render(inv.InvoiceNumber)+"  "+mutedStyle.Render(string(inv.Status)))
	fmt.Fprintf(w, "Client: %s\n", inv.ClientName)
	fmt.Fprintf(w, "Date:   %s\n", format.Date(inv.InvoiceDate))
	fmt.Fprintf(w, "Due:    %s\n\n", format.Date(inv.DueDate))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DESCRIPTION\tQTY\tUNIT\tGST\tTOTAL\t")
	for _, l := range inv.Items {
		total := totals.ComputeLine(l.LineItem()).LineGrandTotal
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			l.ItemName,
			format.Number(l.Quantity),
			format.Currency(l.UnitPrice),
			format.Percent(l.GSTPercent),
			format.Currency(total),
		)
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\t\n", format.Currency(inv.Subtotal))
	fmt.Fprintf(tw, "\t\t\tGST\t%s\t\n", format.Currency(inv.TaxTotal))
	fmt.Fprintf(tw, "\t\t\tGrand Total\t%s\t\n", format.Currency(inv.GrandTotal))
	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func oneLine(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '\n' || r == '\r' {
			out[i] = ' '
		}
	}
	return string(out)
}
