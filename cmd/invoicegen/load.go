package main

import (
	"fmt"
	"os"
	"strconv"

	"sigs.k8s.io/yaml"

	"github.com/Simplici0/oro-invoice/internal/form"
	"github.com/Simplici0/oro-invoice/internal/invoice"
)

// invoiceFile is an invoice read from YAML or JSON. Keys are the form field
// ids; values are kept as text exactly like form input.
type invoiceFile struct {
	meta     map[invoice.FieldID]string
	items    []map[invoice.ItemField]string
	hasItems bool
}

func readInvoiceFile(path string) (invoiceFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return invoiceFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return parseInvoiceFile(raw)
}

func parseInvoiceFile(raw []byte) (invoiceFile, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return invoiceFile{}, fmt.Errorf("parse invoice file: %w", err)
	}

	f := invoiceFile{meta: make(map[invoice.FieldID]string)}
	for _, id := range invoice.MetaFields {
		if v, ok := doc[string(id)]; ok {
			f.meta[id] = text(v)
		}
	}

	rawItems, ok := doc["items"]
	if !ok {
		return f, nil
	}
	f.hasItems = true

	list, ok := rawItems.([]any)
	if !ok && rawItems != nil {
		return invoiceFile{}, fmt.Errorf("items must be a list")
	}
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return invoiceFile{}, fmt.Errorf("item %d must be a mapping", i+1)
		}
		item := make(map[invoice.ItemField]string)
		for _, field := range []invoice.ItemField{invoice.ItemDescription, invoice.ItemQuantity, invoice.ItemRate} {
			if v, ok := m[string(field)]; ok {
				item[field] = text(v)
			}
		}
		f.items = append(f.items, item)
	}
	return f, nil
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// apply feeds the file through the controller the same way form edits arrive.
func (f invoiceFile) apply(c *form.Controller, fields form.FieldAccessor) {
	for _, id := range invoice.MetaFields {
		v, ok := f.meta[id]
		if !ok {
			continue
		}
		fields.SetValue(string(id), v)
		c.FieldChanged(string(id))
	}

	if !f.hasItems {
		return
	}
	state := c.State()
	for _, item := range state.Items.All() {
		c.RemoveItem(item.ID)
	}
	for _, values := range f.items {
		item := c.AddItem()
		for field, v := range values {
			c.ItemChanged(item.ID, field, v)
		}
	}
}
