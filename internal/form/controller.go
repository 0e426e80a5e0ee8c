package form

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Simplici0/oro-invoice/internal/export"
	"github.com/Simplici0/oro-invoice/internal/invoice"
	"github.com/Simplici0/oro-invoice/internal/pricing"
	"github.com/Simplici0/oro-invoice/internal/render"
)

// Display fields the controller keeps up to date next to the totals box.
const (
	SubtotalDisplay = "subtotalDisplay"
	TaxRateDisplay  = "taxRateDisplay"
	TaxDisplay      = "taxDisplay"
	TotalDisplay    = "totalDisplay"
)

// ResetPrompt is shown before the form is reset.
const ResetPrompt = "Are you sure you want to reset all fields to default values?"

const (
	msgReset         = "Form reset successfully!"
	msgExported      = "Invoice PDF downloaded successfully!"
	msgExportFailed  = "Error generating PDF. Please try again."
	msgExportBusy    = "PDF generation already in progress."
	msgPreviewUpdate = "Preview updated!"
	msgItemAdded     = "New item added!"
)

// Keyboard shortcuts.
const (
	ShortcutRefresh = "ctrl+s"
	ShortcutExport  = "ctrl+d"
	ShortcutAddItem = "ctrl+n"
)

// Exporter turns a snapshot into a document.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// Confirmer guards destructive actions.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Options configures a Controller. Only Fields is required.
type Options struct {
	Fields   FieldAccessor
	Exporter Exporter
	Notifier Notifier
	Now      func() time.Time
	// IntN returns a number in [0, n); it picks the invoice number suffix.
	IntN func(n int) int
}

// Controller owns the invoice state of one form. Every mutation is followed
// by a recompute of the totals and a re-render of the preview.
type Controller struct {
	mu       sync.Mutex
	fields   FieldAccessor
	exporter Exporter
	notifier Notifier
	now      func() time.Time
	intN     func(n int) int

	state  invoice.State
	totals pricing.Totals
	view   render.View

	busy atomic.Bool
}

// New initialises the form the way a fresh page load does: dates set,
// one default item, everything else blank.
func New(opts Options) *Controller {
	c := &Controller{
		fields:   opts.Fields,
		exporter: opts.Exporter,
		notifier: opts.Notifier,
		now:      opts.Now,
		intN:     opts.IntN,
	}
	if c.fields == nil {
		c.fields = NewMapFields()
	}
	if c.notifier == nil {
		c.notifier = discard{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.intN == nil {
		c.intN = rand.Intn
	}

	c.state = invoice.NewState(c.now())
	c.pushAll()
	c.recompute()
	return c
}

// FieldChanged pulls the current value of id from the accessor into the
// state. Item cells ("item-3-rate") are accepted as well; unknown ids are ignored.
func (c *Controller) FieldChanged(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value := c.fields.Value(id)
	if c.state.Meta.SetValue(invoice.FieldID(id), value) {
		c.recompute()
		return
	}
	if itemID, field, ok := ParseItemFieldID(id); ok {
		c.applyItemChange(itemID, field, value)
	}
}

// ItemChanged edits one cell of an item row and refreshes its amount.
// Ids that no longer exist are ignored.
func (c *Controller) ItemChanged(itemID int, field invoice.ItemField, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.Items.Get(itemID); !ok {
		return false
	}
	c.fields.SetValue(ItemFieldID(itemID, field), value)
	return c.applyItemChange(itemID, field, value)
}

func (c *Controller) applyItemChange(itemID int, field invoice.ItemField, value string) bool {
	if !c.state.Items.Update(itemID, field, value) {
		return false
	}
	if item, ok := c.state.Items.Get(itemID); ok {
		c.fields.SetValue(ItemFieldID(itemID, invoice.ItemAmount), pricing.FormatAmount(item.Amount()))
	}
	c.recompute()
	return true
}

// AddItem appends a default row.
func (c *Controller) AddItem() invoice.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.state.Items.Add()
	c.pushItem(item)
	c.recompute()
	return item
}

// RemoveItem drops a row. Removing an unknown id is a no-op.
func (c *Controller) RemoveItem(itemID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Items.Remove(itemID) {
		return false
	}
	c.dropItemFields(itemID)
	c.recompute()
	return true
}

// Refresh recomputes and re-renders without a mutation.
func (c *Controller) Refresh() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recompute()
	return c.view
}

// Reset restores every field to its default once confirm agrees.
func (c *Controller) Reset(confirm Confirmer) bool {
	if confirm == nil || !confirm.Confirm(ResetPrompt) {
		return false
	}

	c.mu.Lock()
	for _, item := range c.state.Items.All() {
		c.dropItemFields(item.ID)
	}
	c.state.Reset(c.now(), c.intN(1000))
	c.pushAll()
	c.recompute()
	c.mu.Unlock()

	c.notifier.Notify(Notification{Kind: KindSuccess, Message: msgReset})
	return true
}

// Export captures the current invoice and hands it to the exporter. The
// state is copied before the lock is released, so edits made while the
// document is produced do not leak into it. Only one export runs at a time.
func (c *Controller) Export(ctx context.Context) (export.Result, error) {
	if c.exporter == nil {
		return export.Result{}, errors.New("no exporter configured")
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.notifier.Notify(Notification{Kind: KindInfo, Message: msgExportBusy})
		return export.Result{}, export.ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	snap := c.state.Snapshot()
	in := render.InputFromState(&snap, c.now())
	c.mu.Unlock()

	res, err := c.exporter.Export(ctx, export.Request{Input: in})
	if err != nil {
		if errors.Is(err, export.ErrBusy) {
			c.notifier.Notify(Notification{Kind: KindInfo, Message: msgExportBusy})
			return export.Result{}, err
		}
		log.Printf("[ERROR] PDF generation: %v", err)
		c.notifier.Notify(Notification{Kind: KindError, Message: msgExportFailed})
		return export.Result{}, err
	}

	c.notifier.Notify(Notification{Kind: KindSuccess, Message: msgExported})
	return res, nil
}

// Busy reports whether an export is in flight. Advisory only.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Shortcut runs the action bound to a key chord and reports whether one was bound.
func (c *Controller) Shortcut(ctx context.Context, key string) bool {
	switch key {
	case ShortcutRefresh:
		c.Refresh()
		c.notifier.Notify(Notification{Kind: KindInfo, Message: msgPreviewUpdate})
	case ShortcutExport:
		_, _ = c.Export(ctx)
	case ShortcutAddItem:
		c.AddItem()
		c.notifier.Notify(Notification{Kind: KindInfo, Message: msgItemAdded})
	default:
		return false
	}
	return true
}

// Preview returns the last rendered on-screen view.
func (c *Controller) Preview() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) Totals() pricing.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

// State returns a copy of the current state.
func (c *Controller) State() invoice.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

func (c *Controller) recompute() {
	c.totals = pricing.CalculateState(&c.state)
	c.view = render.Build(render.Input{
		Meta:        c.state.Meta,
		Items:       c.state.Items.All(),
		Totals:      c.totals,
		GeneratedAt: c.now(),
	}, render.Screen)

	c.fields.SetValue(SubtotalDisplay, pricing.FormatMoney(c.totals.Subtotal))
	c.fields.SetValue(TaxRateDisplay, invoice.FormatNumber(c.state.Meta.TaxRatePercent()))
	c.fields.SetValue(TaxDisplay, pricing.FormatMoney(c.totals.Tax))
	c.fields.SetValue(TotalDisplay, pricing.FormatMoney(c.totals.Total))
}

func (c *Controller) pushAll() {
	for _, id := range invoice.MetaFields {
		value, _ := c.state.Meta.Value(id)
		c.fields.SetValue(string(id), value)
	}
	for _, item := range c.state.Items.All() {
		c.pushItem(item)
	}
}

func (c *Controller) pushItem(item invoice.LineItem) {
	c.fields.SetValue(ItemFieldID(item.ID, invoice.ItemDescription), item.Description)
	c.fields.SetValue(ItemFieldID(item.ID, invoice.ItemQuantity), invoice.FormatNumber(item.Quantity))
	c.fields.SetValue(ItemFieldID(item.ID, invoice.ItemRate), invoice.FormatNumber(item.Rate))
	c.fields.SetValue(ItemFieldID(item.ID, invoice.ItemAmount), pricing.FormatAmount(item.Amount()))
}

func (c *Controller) dropItemFields(itemID int) {
	d, ok := c.fields.(deleter)
	if !ok {
		return
	}
	for _, f := range []invoice.ItemField{invoice.ItemDescription, invoice.ItemQuantity, invoice.ItemRate, invoice.ItemAmount} {
		d.Delete(ItemFieldID(itemID, f))
	}
}
