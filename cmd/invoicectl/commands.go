package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/draft"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/format"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/models"
	"github.com/urfave/cli/v2"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "show invoice totals and the most recent invoices",
		Action: func(c *cli.Context) error {
			a := newApp(c)
			if err := a.ctrl.RefreshDashboard(c.Context); err != nil {
				return err
			}
			return a.ctrl.WriteDashboard(c.App.Writer)
		},
	}
}

func clientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "clients",
		Usage: "list or add clients",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list clients",
				Action: func(c *cli.Context) error {
					a := newApp(c)
					if err := a.ctrl.LoadClients(c.Context); err != nil {
						return err
					}
					return writeClients(c.App.Writer, a.ctrl.State().Clients)
				},
			},
			{
				Name:  "add",
				Usage: "add a client",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "address"},
				},
				Action: func(c *cli.Context) error {
					a := newApp(c)
					return silent(a.ctrl.AddClient(c.Context, c.String("name"), c.String("email"), c.String("address")))
				},
			},
		},
	}
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "list or add catalog items",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list items",
				Action: func(c *cli.Context) error {
					a := newApp(c)
					if err := a.ctrl.LoadItems(c.Context); err != nil {
						return err
					}
					return writeItems(c.App.Writer, a.ctrl.State().Items)
				},
			},
			{
				Name:  "add",
				Usage: "add an item",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true, Usage: "unit price"},
					&cli.StringFlag{Name: "gst", Value: draft.DefaultTaxPercent, Usage: "GST percent"},
				},
				Action: func(c *cli.Context) error {
					a := newApp(c)
					return silent(a.ctrl.AddItem(c.Context, c.String("name"), c.String("price"), c.String("gst")))
				},
			},
		},
	}
}

func invoiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "invoice",
		Usage: "create, inspect and manage invoices",
		Subcommands: []*cli.Command{
			invoiceCreateCommand(),
			{
				Name:      "show",
				Usage:     "print an invoice",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "html", Usage: "also write a printable HTML preview to `FILE`"},
				},
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					a := newApp(c)
					inv, err := a.ctrl.OpenInvoice(c.Context, id)
					if err != nil {
						return err
					}
					if err := writeInvoice(c.App.Writer, inv); err != nil {
						return err
					}
					if path := c.String("html"); path != "" {
						return writeFile(path, a.ctrl.WritePreview)
					}
					return nil
				},
			},
			{
				Name:      "pdf",
				Usage:     "download an invoice as PDF",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output `FILE` (default <invoice number>.pdf)"},
					&cli.BoolFlag{Name: "local", Usage: "render locally instead of downloading the server copy"},
				},
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					a := newApp(c)
					inv, err := a.ctrl.OpenInvoice(c.Context, id)
					if err != nil {
						return err
					}

					path := c.String("out")
					if path == "" {
						path = a.ctrl.PDFFileName()
					}

					if c.Bool("local") {
						err = writeFile(path, a.ctrl.ExportPDF)
					} else {
						var data []byte
						if data, err = a.api.DownloadPDF(c.Context, inv.ID); err == nil {
							err = os.WriteFile(path, data, 0o644)
						}
					}
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, successStyle.Render("Saved "+path))
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete an invoice",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					a := newApp(c)
					if err := a.api.DeleteInvoice(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, successStyle.Render("Invoice deleted"))
					return nil
				},
			},
			{
				Name:      "status",
				Usage:     "change an invoice status (Draft, Pending, Paid, Cancelled)",
				ArgsUsage: "ID STATUS",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					status := models.InvoiceStatus(c.Args().Get(1))
					if status == "" {
						return errors.New("missing STATUS")
					}
					a := newApp(c)
					inv, err := a.api.UpdateInvoiceStatus(c.Context, id, status)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, successStyle.Render(fmt.Sprintf("%s is now %s", inv.InvoiceNumber, inv.Status)))
					return nil
				},
			},
		},
	}
}

func invoiceCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create an invoice",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "client", Required: true, Usage: "client id"},
			&cli.StringFlag{Name: "date", Usage: "invoice date, YYYY-MM-DD (default today)"},
			&cli.StringFlag{Name: "due", Usage: "due date, YYYY-MM-DD (default today)"},
			&cli.StringFlag{Name: "status", Value: string(models.InvoiceStatusPending)},
			&cli.StringFlag{Name: "billing-address"},
			&cli.StringFlag{Name: "notes"},
			&cli.StringSliceFlag{Name: "item", Usage: "catalog line `ID[:QTY]`, repeatable"},
			&cli.StringSliceFlag{Name: "line", Usage: "custom line `NAME:QTY:PRICE:GST`, repeatable"},
		},
		Action: func(c *cli.Context) error {
			a := newApp(c)
			if err := a.ctrl.LoadItems(c.Context); err != nil {
				return err
			}

			d := a.ctrl.Draft()
			d.ClientID = c.Int64("client")
			d.Status = models.InvoiceStatus(c.String("status"))
			d.BillingAddress = c.String("billing-address")
			d.Notes = c.String("notes")
			if v := c.String("date"); v != "" {
				d.InvoiceDate = v
			}
			if v := c.String("due"); v != "" {
				d.DueDate = v
			}

			// Drop the blank starting row.
			d.RemoveRow(0)
			for _, spec := range c.StringSlice("item") {
				id, qty, err := parseItemSpec(spec)
				if err != nil {
					return err
				}
				if !hasItem(a.ctrl.State().Items, id) {
					return fmt.Errorf("item %d not found", id)
				}
				row := d.AddRow(nil)
				a.ctrl.SelectItem(row, id)
				d.SetQuantity(row, qty)
			}
			for _, spec := range c.StringSlice("line") {
				if err := addLine(d, spec); err != nil {
					return err
				}
			}

			t := d.Totals()
			fmt.Fprintf(c.App.Writer, "Subtotal %s  GST %s  Total %s\n",
				format.Currency(t.Subtotal), format.Currency(t.TaxTotal), format.Currency(t.GrandTotal))

			return silentResult(a.ctrl.SubmitDraft(c.Context))
		},
	}
}

// parseItemSpec reads "ID" or "ID:QTY".
func parseItemSpec(spec string) (int64, string, error) {
	idPart, qty, found := strings.Cut(spec, ":")
	if !found || strings.TrimSpace(qty) == "" {
		qty = draft.DefaultQuantity
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid item %q, want ID[:QTY]", spec)
	}
	return id, strings.TrimSpace(qty), nil
}

// addLine appends a custom row from "NAME:QTY:PRICE:GST". The name may
// itself contain colons; the last three fields are the numbers.
func addLine(d *draft.Draft, spec string) error {
	parts := strings.Split(spec, ":")
	if len(parts) < 4 {
		return fmt.Errorf("invalid line %q, want NAME:QTY:PRICE:GST", spec)
	}
	n := len(parts)
	row := d.AddRow(nil)
	d.SetName(row, strings.Join(parts[:n-3], ":"))
	d.SetQuantity(row, parts[n-3])
	d.SetUnitPrice(row, parts[n-2])
	d.SetTaxPercent(row, parts[n-1])
	return nil
}

func hasItem(items []models.Item, id int64) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func idArg(c *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid invoice id %q", c.Args().First())
	}
	return id, nil
}

func writeFile(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// errNotified marks a failure the controller already reported.
var errNotified = cli.Exit("", 1)

func silent(err error) error {
	if err != nil {
		return errNotified
	}
	return nil
}

func silentResult[T any](_ T, err error) error {
	return silent(err)
}
