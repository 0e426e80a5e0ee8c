package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/Simplici0/oro-invoice/internal/export"
	"github.com/Simplici0/oro-invoice/internal/form"
	"github.com/Simplici0/oro-invoice/internal/pricing"
	"github.com/Simplici0/oro-invoice/internal/render"
)

var (
	inFlag = &cli.StringFlag{
		Name:     "in",
		Aliases:  []string{"i"},
		Usage:    "invoice file (YAML or JSON)",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "output directory (export) or file (preview)",
	}
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("invoicegen: %v", err)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:  "invoicegen",
		Usage: "compute, preview and export ORO MANTRA invoices without a browser",
		Commands: []*cli.Command{
			{
				Name:  "totals",
				Usage: "print subtotal, tax and total",
				Flags: []cli.Flag{inFlag},
				Action: func(c *cli.Context) error {
					ctrl, err := load(c.String("in"), nil)
					if err != nil {
						return err
					}
					state := ctrl.State()
					totals := ctrl.Totals()
					fmt.Fprintf(stdout, "Items:    %d\n", state.Items.Len())
					fmt.Fprintf(stdout, "Subtotal: %s\n", pricing.FormatMoney(totals.Subtotal))
					fmt.Fprintf(stdout, "Tax:      %s\n", pricing.FormatMoney(totals.Tax))
					fmt.Fprintf(stdout, "Total:    %s\n", pricing.FormatMoney(totals.Total))
					return nil
				},
			},
			{
				Name:  "preview",
				Usage: "render the invoice preview as HTML",
				Flags: []cli.Flag{inFlag, outFlag},
				Action: func(c *cli.Context) error {
					ctrl, err := load(c.String("in"), nil)
					if err != nil {
						return err
					}

					w := stdout
					if out := c.String("out"); out != "" {
						f, err := os.Create(out)
						if err != nil {
							return fmt.Errorf("create %s: %w", out, err)
						}
						defer f.Close()
						w = f
					}
					return render.HTML(w, ctrl.Preview())
				},
			},
			{
				Name:  "export",
				Usage: "write the invoice PDF",
				Flags: []cli.Flag{inFlag, outFlag},
				Action: func(c *cli.Context) error {
					dir := c.String("out")
					if dir == "" {
						dir = "."
					}

					var failure string
					notify := form.NotifierFunc(func(n form.Notification) {
						if n.Kind == form.KindError {
							failure = n.Message
						}
					})

					ctrl, err := load(c.String("in"), &loadOptions{
						exporter: export.NewDefaultPipeline(export.DirSink{Dir: dir}),
						notifier: notify,
					})
					if err != nil {
						return err
					}

					res, err := ctrl.Export(c.Context)
					if err != nil {
						if failure != "" {
							return fmt.Errorf("%s: %w", failure, err)
						}
						return err
					}
					path, _ := filepath.Abs(res.Path)
					fmt.Fprintf(stdout, "wrote %s (%s)\n", path, humanize.Bytes(uint64(len(res.Data))))
					return nil
				},
			},
		},
	}
}

type loadOptions struct {
	exporter form.Exporter
	notifier form.Notifier
}

func load(path string, opts *loadOptions) (*form.Controller, error) {
	file, err := readInvoiceFile(path)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &loadOptions{}
	}

	fields := form.NewMapFields()
	ctrl := form.New(form.Options{
		Fields:   fields,
		Exporter: opts.exporter,
		Notifier: opts.notifier,
	})
	file.apply(ctrl, fields)
	return ctrl, nil
}
