package invoice

import (
	"fmt"
	"time"
)

// DueDays is the distance in days between the invoice date and the due date.
const DueDays = 30

// State is everything the form currently holds.
type State struct {
	Meta  Meta
	Items Items
}

// NewState returns the state of a freshly opened form: dates set to today
// and today+30 days, one default item, every other field blank.
func NewState(now time.Time) State {
	var s State
	s.Meta.InvoiceDate = now.Format(DateLayout)
	s.Meta.DueDate = now.AddDate(0, 0, DueDays).Format(DateLayout)
	s.Items.Add()
	return s
}

// Reset restores defaults. disambiguator is the random suffix of the
// generated invoice number and is expected in [0, 1000).
func (s *State) Reset(now time.Time, disambiguator int) {
	var m Meta
	for _, id := range MetaFields {
		if v := Sample(id); v != "" {
			m.SetValue(id, v)
		}
	}
	m.InvoiceNumber = NewInvoiceNumber(now, disambiguator)
	m.InvoiceDate = now.Format(DateLayout)
	m.DueDate = now.AddDate(0, 0, DueDays).Format(DateLayout)
	m.TaxRate = DefaultTaxRate
	s.Meta = m

	s.Items.Clear()
	s.Items.Add()
}

// Snapshot returns a deep copy that later edits cannot reach.
func (s *State) Snapshot() State {
	return State{Meta: s.Meta, Items: s.Items.clone()}
}

// NewInvoiceNumber builds "INV-<yyyymm>-<n>".
func NewInvoiceNumber(now time.Time, n int) string {
	return fmt.Sprintf("INV-%04d%02d-%d", now.Year(), int(now.Month()), n)
}
