package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/oro-invoice/internal/export"
	"github.com/Simplici0/oro-invoice/internal/form"
	"github.com/Simplici0/oro-invoice/internal/invoice"
	"github.com/Simplici0/oro-invoice/internal/render"
)

type fieldInput struct {
	ID          string
	Label       string
	Type        string
	Value       string
	Placeholder string
}

type fieldGroup struct {
	Title  string
	Inputs []fieldInput
}

type itemRow struct {
	ID          int
	Description string
	Quantity    string
	Rate        string
	Amount      string
	AmountID    string
}

type indexViewData struct {
	Notice         *form.Notification
	Groups         []fieldGroup
	Items          []itemRow
	Subtotal       string
	TaxRate        string
	Tax            string
	Total          string
	Preview        template.HTML
	ShowOnboarding bool
	Busy           bool
	ResetPrompt    string
}

type fieldLayout struct {
	id    invoice.FieldID
	label string
	kind  string
}

var formLayout = []struct {
	title  string
	fields []fieldLayout
}{
	{"Business", []fieldLayout{
		{invoice.CompanyName, "Company name", "text"},
		{invoice.BusinessEmail, "Email", "email"},
		{invoice.BusinessAddress, "Address", "text"},
		{invoice.BusinessCity, "City", "text"},
		{invoice.BusinessPhone, "Phone", "tel"},
		{invoice.GSTNumber, "GST number", "text"},
	}},
	{"Customer", []fieldLayout{
		{invoice.CustomerName, "Name", "text"},
		{invoice.CustomerEmail, "Email", "email"},
		{invoice.CustomerAddress, "Address", "text"},
		{invoice.CustomerCity, "City", "text"},
		{invoice.CustomerPhone, "Phone", "tel"},
	}},
	{"Invoice", []fieldLayout{
		{invoice.InvoiceNumber, "Invoice number", "text"},
		{invoice.InvoiceDate, "Invoice date", "date"},
		{invoice.DueDate, "Due date", "date"},
		{invoice.TaxRate, "Tax rate (%)", "number"},
		{invoice.Notes, "Notes", "textarea"},
	}},
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	seen, err := s.prefs.OnboardingSeen(r.Context())
	if err != nil {
		log.Printf("[ERROR] read onboarding flag: %v", err)
		seen = true
	}

	preview, err := render.HTMLString(sess.form.Preview())
	if err != nil {
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}

	values := sess.fields.Snapshot()
	data := indexViewData{
		Groups:         buildGroups(values),
		Items:          buildItemRows(sess.form, values),
		Subtotal:       values[form.SubtotalDisplay],
		TaxRate:        values[form.TaxRateDisplay],
		Tax:            values[form.TaxDisplay],
		Total:          values[form.TotalDisplay],
		Preview:        preview,
		ShowOnboarding: !seen,
		Busy:           sess.form.Busy(),
		ResetPrompt:    form.ResetPrompt,
	}
	if n, ok := sess.flash.Take(); ok {
		data.Notice = &n
	}

	s.renderTemplate(w, data)
}

func buildGroups(values map[string]string) []fieldGroup {
	groups := make([]fieldGroup, 0, len(formLayout))
	for _, g := range formLayout {
		group := fieldGroup{Title: g.title}
		for _, f := range g.fields {
			group.Inputs = append(group.Inputs, fieldInput{
				ID:          string(f.id),
				Label:       f.label,
				Type:        f.kind,
				Value:       values[string(f.id)],
				Placeholder: invoice.Sample(f.id),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func buildItemRows(c *form.Controller, values map[string]string) []itemRow {
	state := c.State()
	items := state.Items.All()
	rows := make([]itemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, itemRow{
			ID:          item.ID,
			Description: values[form.ItemFieldID(item.ID, invoice.ItemDescription)],
			Quantity:    values[form.ItemFieldID(item.ID, invoice.ItemQuantity)],
			Rate:        values[form.ItemFieldID(item.ID, invoice.ItemRate)],
			Amount:      values[form.ItemFieldID(item.ID, invoice.ItemAmount)],
			AmountID:    form.ItemFieldID(item.ID, invoice.ItemAmount),
		})
	}
	return rows
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, sess.form.Preview()); err != nil {
		log.Printf("[ERROR] render preview: %v", err)
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
	}
}

// handleFields applies every meta field present in the posted form.
func (s *server) handleFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r)
	for _, id := range invoice.MetaFields {
		key := string(id)
		if _, ok := r.PostForm[key]; !ok {
			continue
		}
		sess.fields.SetValue(key, r.PostForm.Get(key))
		sess.form.FieldChanged(key)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).form.AddItem()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r)
	state := sess.form.State()
	if _, exists := state.Items.Get(id); !exists {
		http.NotFound(w, r)
		return
	}

	for _, field := range []invoice.ItemField{invoice.ItemDescription, invoice.ItemQuantity, invoice.ItemRate} {
		key := string(field)
		if _, present := r.PostForm[key]; !present {
			continue
		}
		sess.form.ItemChanged(id, field, r.PostForm.Get(key))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	sessionFrom(r).form.RemoveItem(id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// handleReset needs confirm=yes, which the page only sends after the
// browser confirmation dialog was accepted.
func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	confirmed := r.PostForm.Get("confirm") == "yes"
	sessionFrom(r).form.Reset(form.ConfirmFunc(func(string) bool { return confirmed }))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).form.Export(r.Context())
	if errors.Is(err, export.ErrBusy) {
		// Browsers go back to the form, where the busy notice is waiting.
		if acceptsHTML(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.Error(w, "export already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if _, err := w.Write(res.Data); err != nil {
		log.Printf("[ERROR] write export %s: %v", res.ID, err)
	}
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (s *server) handleShortcut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == form.ShortcutExport {
		s.handleExport(w, r)
		return
	}
	if !sessionFrom(r).form.Shortcut(r.Context(), key) {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleDismissOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.prefs.MarkOnboardingSeen(r.Context()); err != nil {
		log.Printf("[ERROR] store onboarding flag: %v", err)
		http.Error(w, "failed to save preference", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) renderTemplate(w http.ResponseWriter, data indexViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Printf("[ERROR] render page: %v", err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}
