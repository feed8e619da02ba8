package main

import (
	"fmt"
	"os"

	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/controller"
	"github.com/tm-acme-shop/acme-shop-invoices-service/internal/logging"
	"github.com/urfave/cli/v2"
)

type app struct {
	api  *clients.HTTPInvoicesClient
	ctrl *controller.Controller
}

func newApp(c *cli.Context) *app {
	cfg := config.Load()
	if url := c.String("api"); url != "" {
		cfg.API.BaseURL = url
	}

	logging.UseTextFormat()
	logging.SetOutput(os.Stderr)
	if c.Bool("verbose") {
		logging.SetLevel("debug")
	} else {
		logging.SetLevel("warn")
	}

	api := clients.NewHTTPInvoicesClient(cfg.API, logging.NewLogger("invoicectl"))
	return &app{
		api:  api,
		ctrl: controller.New(api, newPrinter(c.App.Writer, c.App.ErrWriter), cfg.Company.Name),
	}
}

func main() {
	cliApp := &cli.App{
		Name:  "invoicectl",
		Usage: "manage clients, items and invoices through the invoices API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "base URL of the invoices API",
				EnvVars: []string{"INVOICES_API_URL"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log API calls",
			},
		},
		Commands: []*cli.Command{
			dashboardCommand(),
			clientsCommand(),
			itemsCommand(),
			invoiceCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
