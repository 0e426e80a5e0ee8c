package invoice

import "fmt"

// ItemField names an editable column of a line item.
type ItemField string

const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemRate        ItemField = "rate"
	// ItemAmount is derived and read-only; it only exists as a display field.
	ItemAmount ItemField = "amount"
)

// LineItem is one row of the invoice.
type LineItem struct {
	ID          int
	Description string
	Quantity    float64
	Rate        float64
}

// Amount returns quantity × rate without rounding.
func (li LineItem) Amount() float64 {
	return li.Quantity * li.Rate
}

// Items is the ordered line item collection of a single invoice.
// Ids increase monotonically and are never reused, not even across Clear.
// The default "Item N" label follows its own sequence, which Clear restarts.
type Items struct {
	lastID   int
	labelSeq int
	list     []LineItem
}

// Add appends a new item with default values and returns it.
func (s *Items) Add() LineItem {
	s.lastID++
	s.labelSeq++
	item := LineItem{
		ID:          s.lastID,
		Description: fmt.Sprintf("Item %d", s.labelSeq),
		Quantity:    1,
		Rate:        0,
	}
	s.list = append(s.list, item)
	return item
}

// Remove deletes the item with the given id. Unknown ids are a no-op.
func (s *Items) Remove(id int) bool {
	idx := s.index(id)
	if idx < 0 {
		return false
	}
	s.list = append(s.list[:idx], s.list[idx+1:]...)
	return true
}

// Update applies an in-place edit. Numeric fields are coerced with ParseNumber.
func (s *Items) Update(id int, field ItemField, value string) bool {
	idx := s.index(id)
	if idx < 0 {
		return false
	}

	item := &s.list[idx]
	switch field {
	case ItemDescription:
		item.Description = value
	case ItemQuantity:
		item.Quantity = ParseNumber(value)
	case ItemRate:
		item.Rate = ParseNumber(value)
	default:
		return false
	}
	return true
}

// Get returns the item with the given id.
func (s *Items) Get(id int) (LineItem, bool) {
	idx := s.index(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return s.list[idx], true
}

// All returns a copy of the items in display order.
func (s *Items) All() []LineItem {
	out := make([]LineItem, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Items) Len() int { return len(s.list) }

// Clear drops every item and restarts the default labels. Ids keep counting.
func (s *Items) Clear() {
	s.list = nil
	s.labelSeq = 0
}

func (s *Items) clone() Items {
	return Items{lastID: s.lastID, labelSeq: s.labelSeq, list: s.All()}
}

func (s *Items) index(id int) int {
	for i := range s.list {
		if s.list[i].ID == id {
			return i
		}
	}
	return -1
}
