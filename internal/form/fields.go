package form

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Simplici0/oro-invoice/internal/invoice"
)

// FieldAccessor reads and writes form values by field id. It is the only
// way the controller touches the UI.
type FieldAccessor interface {
	Value(id string) string
	SetValue(id, value string)
}

// MapFields is an in-memory FieldAccessor.
type MapFields struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapFields() *MapFields {
	return &MapFields{values: make(map[string]string)}
}

func (f *MapFields) Value(id string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[id]
}

func (f *MapFields) SetValue(id, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[id] = value
}

// Delete drops a field, used when an item row disappears.
func (f *MapFields) Delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, id)
}

// Snapshot returns a copy of every field value.
func (f *MapFields) Snapshot() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// ItemFieldID is the accessor id of one cell of an item row: "item-3-rate".
func ItemFieldID(itemID int, field invoice.ItemField) string {
	return fmt.Sprintf("item-%d-%s", itemID, field)
}

// ParseItemFieldID is the inverse of ItemFieldID.
func ParseItemFieldID(id string) (int, invoice.ItemField, bool) {
	rest, ok := strings.CutPrefix(id, "item-")
	if !ok {
		return 0, "", false
	}
	num, field, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, "", false
	}
	itemID, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", false
	}
	switch f := invoice.ItemField(field); f {
	case invoice.ItemDescription, invoice.ItemQuantity, invoice.ItemRate, invoice.ItemAmount:
		return itemID, f, true
	}
	return 0, "", false
}

type deleter interface {
	Delete(id string)
}
