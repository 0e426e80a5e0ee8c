package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/oro-invoice/internal/invoice"
	"github.com/Simplici0/oro-invoice/internal/pricing"
)

const (
	// Tagline is printed under the company name.
	Tagline = "Experience luxury in every day"

	longDateLayout = "January 2, 2006"
	footerPrefix   = "Generated by ORO MANTRA Invoice Generator • "
)

// Input is everything a view is derived from.
type Input struct {
	Meta        invoice.Meta
	Items       []invoice.LineItem
	Totals      pricing.Totals
	GeneratedAt time.Time
}

// InputFromState collects an Input from the current form state.
func InputFromState(s *invoice.State, generatedAt time.Time) Input {
	return Input{
		Meta:        s.Meta,
		Items:       s.Items.All(),
		Totals:      pricing.CalculateState(s),
		GeneratedAt: generatedAt,
	}
}

// Party is one address block.
type Party struct {
	Name    string
	Email   string
	Address string
	City    string
	Phone   string
}

// Row is one formatted line of the items table.
type Row struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

// Labels are the fixed captions of an invoice.
type Labels struct {
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	GSTNumber     string
	Email         string
	Business      string
	Customer      string
	Description   string
	Quantity      string
	Rate          string
	Amount        string
	Subtotal      string
	Tax           string
	Total         string
	Notes         string
}

// View is a fully formatted invoice, ready to be laid out.
type View struct {
	Profile Profile
	Labels  Labels

	CompanyName   string
	Tagline       string
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	GSTNumber     string

	Business Party
	Customer Party

	Rows []Row

	TaxRate  string
	Subtotal string
	Tax      string
	Total    string

	Notes  string
	Footer string
}

// Build formats an invoice for the given profile. It is a pure function of
// its arguments; blank fields show their sample value.
func Build(in Input, p Profile) View {
	m := in.Meta
	company := orSample(m.CompanyName, invoice.CompanyName)

	v := View{
		Profile:       p,
		Labels:        labelsFor(m.TaxRatePercent()),
		CompanyName:   company,
		Tagline:       Tagline,
		InvoiceNumber: orSample(m.InvoiceNumber, invoice.InvoiceNumber),
		InvoiceDate:   FormatDate(m.InvoiceDate),
		DueDate:       FormatDate(m.DueDate),
		GSTNumber:     orSample(m.GSTNumber, invoice.GSTNumber),
		Business: Party{
			Name:    company,
			Email:   orSample(m.BusinessEmail, invoice.BusinessEmail),
			Address: orSample(m.BusinessAddress, invoice.BusinessAddress),
			City:    orSample(m.BusinessCity, invoice.BusinessCity),
			Phone:   orSample(m.BusinessPhone, invoice.BusinessPhone),
		},
		Customer: Party{
			Name:    orSample(m.CustomerName, invoice.CustomerName),
			Email:   orSample(m.CustomerEmail, invoice.CustomerEmail),
			Address: orSample(m.CustomerAddress, invoice.CustomerAddress),
			City:    orSample(m.CustomerCity, invoice.CustomerCity),
			Phone:   orSample(m.CustomerPhone, invoice.CustomerPhone),
		},
		Rows:     make([]Row, 0, len(in.Items)),
		TaxRate:  invoice.FormatNumber(m.TaxRatePercent()),
		Subtotal: pricing.FormatMoney(in.Totals.Subtotal),
		Tax:      pricing.FormatMoney(in.Totals.Tax),
		Total:    pricing.FormatMoney(in.Totals.Total),
		Notes:    orSample(m.Notes, invoice.Notes),
		Footer:   footerPrefix + in.GeneratedAt.Format(longDateLayout),
	}

	for i, item := range in.Items {
		desc := item.Description
		if isBlank(desc) {
			desc = fmt.Sprintf("Item %d", i+1)
		}
		v.Rows = append(v.Rows, Row{
			Description: desc,
			Quantity:    invoice.FormatNumber(item.Quantity),
			Rate:        pricing.FormatMoney(item.Rate),
			Amount:      pricing.FormatMoney(item.Amount()),
		})
	}

	return v
}

func labelsFor(taxRate float64) Labels {
	return Labels{
		InvoiceNumber: "Invoice #:",
		InvoiceDate:   "Date:",
		DueDate:       "Due Date:",
		GSTNumber:     "GST Number:",
		Email:         "Email:",
		Business:      "Business Details",
		Customer:      "Bill To",
		Description:   "DESCRIPTION",
		Quantity:      "QTY",
		Rate:          "RATE (" + pricing.Currency + ")",
		Amount:        "AMOUNT (" + pricing.Currency + ")",
		Subtotal:      "Subtotal:",
		Tax:           "Tax (" + invoice.FormatNumber(taxRate) + "%):",
		Total:         "Total Amount:",
		Notes:         "Notes",
	}
}

// FormatDate renders a YYYY-MM-DD value as "October 5, 2025". Blank or
// unparseable input yields "".
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(invoice.DateLayout, raw)
	if err != nil {
		return ""
	}
	return t.Format(longDateLayout)
}

func orSample(value string, id invoice.FieldID) string {
	if isBlank(value) {
		return invoice.Sample(id)
	}
	return value
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
