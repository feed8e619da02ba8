package preview

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
)

// RecentLimit is the number of invoices listed on the dashboard.
const RecentLimit = 5

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Stats summarizes an invoice list.
type Stats struct {
	Count   int
	Revenue float64
	// Pending sums grand totals of invoices in status Pending.
	Pending float64
}

// ComputeStats aggregates every invoice in the list.
func ComputeStats(invoices []models.InvoiceSummary) Stats {
	s := Stats{Count: len(invoices)}
	for _, inv := range invoices {
		s.Revenue += inv.GrandTotal
		if inv.Status == models.InvoiceStatusPending {
			s.Pending += inv.GrandTotal
		}
	}
	return s
}

// Recent returns the first RecentLimit invoices. The list is expected
// newest first, as the API returns it.
func Recent(invoices []models.InvoiceSummary) []models.InvoiceSummary {
	if len(invoices) > RecentLimit {
		return invoices[:RecentLimit]
	}
	return invoices
}

// Dashboard writes the stats block and the recent invoices table.
func Dashboard(w io.Writer, invoices []models.InvoiceSummary) error {
	stats := ComputeStats(invoices)

	fmt.Fprintln(w, headingStyle.Render("Dashboard"))
	fmt.Fprintf(w, "Total invoices: %d\n", stats.Count)
	fmt.Fprintf(w, "Total revenue:  %s\n", format.Currency(stats.Revenue))
	fmt.Fprintf(w, "Pending amount: %s\n\n", format.Currency(stats.Pending))

	fmt.Fprintln(w, headingStyle.Render("Recent invoices"))
	if len(invoices) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No invoices yet."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tCLIENT\tDATE\tSTATUS\tTOTAL")
	for _, inv := range Recent(invoices) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID,
			inv.InvoiceNumber,
			inv.ClientName,
			format.Date(inv.InvoiceDate),
			inv.Status,
			format.Currency(inv.GrandTotal),
		)
	}
	return tw.Flush()
}
