package pricing

import "github.com/Simplici0/oro-invoice/internal/invoice"

// Totals contains the roll-up values of an invoice.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Calculate computes invoice totals from the line items and a tax
// percentage. No rounding is applied; use FormatAmount at display time.
func Calculate(items []invoice.LineItem, taxRatePercent float64) Totals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Amount()
	}

	tax := subtotal * (taxRatePercent / 100.0)
	total := subtotal + tax

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
	}
}

// CalculateState is Calculate over the current contents of a state.
func CalculateState(s *invoice.State) Totals {
	return Calculate(s.Items.All(), s.Meta.TaxRatePercent())
}
