package invoice

// FieldID identifies a form field. Values match the element ids of the form.
type FieldID string

const (
	CompanyName     FieldID = "companyName"
	BusinessEmail   FieldID = "businessEmail"
	BusinessAddress FieldID = "businessAddress"
	BusinessCity    FieldID = "businessCity"
	BusinessPhone   FieldID = "businessPhone"
	GSTNumber       FieldID = "gstNumber"
	CustomerName    FieldID = "customerName"
	CustomerEmail   FieldID = "customerEmail"
	CustomerAddress FieldID = "customerAddress"
	CustomerCity    FieldID = "customerCity"
	CustomerPhone   FieldID = "customerPhone"
	InvoiceNumber   FieldID = "invoiceNumber"
	InvoiceDate     FieldID = "invoiceDate"
	DueDate         FieldID = "dueDate"
	TaxRate         FieldID = "taxRate"
	Notes           FieldID = "notes"
)

// MetaFields lists every meta field in form order.
var MetaFields = []FieldID{
	CompanyName, BusinessEmail, BusinessAddress, BusinessCity, BusinessPhone, GSTNumber,
	CustomerName, CustomerEmail, CustomerAddress, CustomerCity, CustomerPhone,
	InvoiceNumber, InvoiceDate, DueDate, TaxRate, Notes,
}

// DateLayout is the wire format of date fields (HTML date input).
const DateLayout = "2006-01-02"

// DefaultTaxRate is applied by Reset.
const DefaultTaxRate = "18"

// sample holds the values a blank field displays as, and that Reset restores.
var sample = map[FieldID]string{
	CompanyName:     "ORO MANTRA",
	BusinessEmail:   "hello@oromantra.com",
	BusinessAddress: "123 Business Street",
	BusinessCity:    "Mumbai, Maharashtra 400001",
	BusinessPhone:   "+91 98765 43210",
	GSTNumber:       "22AAAAA0000A1Z5",
	CustomerName:    "John Doe",
	CustomerEmail:   "customer@email.com",
	CustomerAddress: "456 Customer Lane",
	CustomerCity:    "Colombo, 00100",
	CustomerPhone:   "+94 11 234 5678",
	InvoiceNumber:   "INV-2602-220",
	Notes:           "Thank you for your business! Please make payment within the due date.",
}

// Sample returns the documented sample value for a field, or "" for fields
// without one (dates and tax rate).
func Sample(id FieldID) string {
	return sample[id]
}

// Meta holds the free-form invoice fields exactly as entered.
type Meta struct {
	CompanyName     string `json:"companyName"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessAddress string `json:"businessAddress"`
	BusinessCity    string `json:"businessCity"`
	BusinessPhone   string `json:"businessPhone"`
	GSTNumber       string `json:"gstNumber"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerAddress string `json:"customerAddress"`
	CustomerCity    string `json:"customerCity"`
	CustomerPhone   string `json:"customerPhone"`
	InvoiceNumber   string `json:"invoiceNumber"`
	InvoiceDate     string `json:"invoiceDate"`
	DueDate         string `json:"dueDate"`
	TaxRate         string `json:"taxRate"`
	Notes           string `json:"notes"`
}

// TaxRatePercent returns the coerced tax rate.
func (m Meta) TaxRatePercent() float64 {
	return ParseNumber(m.TaxRate)
}

// Value returns the raw value of a field. Unknown ids yield "", false.
func (m *Meta) Value(id FieldID) (string, bool) {
	p := m.field(id)
	if p == nil {
		return "", false
	}
	return *p, true
}

// SetValue stores a raw value. Unknown ids are ignored.
func (m *Meta) SetValue(id FieldID, value string) bool {
	p := m.field(id)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (m *Meta) field(id FieldID) *string {
	switch id {
	case CompanyName:
		return &m.CompanyName
	case BusinessEmail:
		return &m.BusinessEmail
	case BusinessAddress:
		return &m.BusinessAddress
	case BusinessCity:
		return &m.BusinessCity
	case BusinessPhone:
		return &m.BusinessPhone
	case GSTNumber:
		return &m.GSTNumber
	case CustomerName:
		return &m.CustomerName
	case CustomerEmail:
		return &m.CustomerEmail
	case CustomerAddress:
		return &m.CustomerAddress
	case CustomerCity:
		return &m.CustomerCity
	case CustomerPhone:
		return &m.CustomerPhone
	case InvoiceNumber:
		return &m.InvoiceNumber
	case InvoiceDate:
		return &m.InvoiceDate
	case DueDate:
		return &m.DueDate
	case TaxRate:
		return &m.TaxRate
	case Notes:
		return &m.Notes
	}
	return nil
}
