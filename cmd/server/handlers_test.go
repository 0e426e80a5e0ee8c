package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Simplici0/oro-invoice/internal/db"
	"github.com/Simplici0/oro-invoice/internal/export"
	"github.com/Simplici0/oro-invoice/internal/form"
	"github.com/Simplici0/oro-invoice/internal/invoice"
	"github.com/Simplici0/oro-invoice/internal/migrations"
	"github.com/Simplici0/oro-invoice/internal/prefs"
)

type blockingExporter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingExporter) Export(ctx context.Context, req export.Request) (export.Result, error) {
	b.started <- struct{}{}
	<-b.release
	return export.Result{Filename: export.Filename(req.Input.Meta.InvoiceNumber), Data: []byte("%PDF-stub")}, nil
}

// testClient replays the session cookie between requests.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
	accept  string
}

func newTestServer(t *testing.T, exporter form.Exporter) (*testClient, *prefs.Store) {
	t.Helper()

	database, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	if err := migrations.Up(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := prefs.NewStore(database)
	srv, err := newServer(store, exporter, "test-secret")
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}

	return &testClient{t: t, handler: srv.routes()}, store
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	for _, ck := range rr.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	return rr
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestIndexCreatesSessionAndShowsOnboarding(t *testing.T) {
	client, _ := newTestServer(t, nil)

	rr := client.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if client.cookie == nil {
		t.Fatalf("expected a session cookie")
	}

	body := rr.Body.String()
	for _, expected := range []string{"onboarding-title", "ORO MANTRA", "Item 1", "LKR 0.00", "invoice-preview"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestOnboardingDismissPersists(t *testing.T) {
	client, store := newTestServer(t, nil)

	expectRedirect(t, client.do(http.MethodPost, "/onboarding/dismiss", url.Values{}))

	seen, err := store.OnboardingSeen(context.Background())
	if err != nil {
		t.Fatalf("OnboardingSeen: %v", err)
	}
	if !seen {
		t.Fatalf("expected flag to be stored")
	}

	body := client.do(http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, "onboarding-title") {
		t.Fatalf("overlay shown after dismissal")
	}
}

func TestFieldsAndItemsUpdateTotals(t *testing.T) {
	client, _ := newTestServer(t, nil)
	client.do(http.MethodGet, "/", nil)

	expectRedirect(t, client.do(http.MethodPost, "/fields", url.Values{
		string(invoice.CompanyName): {"Acme Jewels"},
		string(invoice.TaxRate):     {"10"},
	}))
	expectRedirect(t, client.do(http.MethodPost, "/items/1", url.Values{
		"description": {"Widget"},
		"quantity":    {"3"},
		"rate":        {"100"},
	}))

	preview := client.do(http.MethodGet, "/preview", nil).Body.String()
	for _, expected := range []string{"Acme Jewels", "Widget", "LKR 300.00", "LKR 30.00", "LKR 330.00"} {
		if !strings.Contains(preview, expected) {
			t.Fatalf("expected preview to contain %q, got: %s", expected, preview)
		}
	}
}

func TestItemsAddAndRemove(t *testing.T) {
	client, _ := newTestServer(t, nil)
	client.do(http.MethodGet, "/", nil)

	expectRedirect(t, client.do(http.MethodPost, "/items", url.Values{}))
	body := client.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, `action="/items/2"`) {
		t.Fatalf("expected a second item row")
	}

	expectRedirect(t, client.do(http.MethodPost, "/items/2/delete", url.Values{}))
	expectRedirect(t, client.do(http.MethodPost, "/items/1/delete", url.Values{}))

	body = client.do(http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, `action="/items/1"`) {
		t.Fatalf("expected item rows to be gone")
	}

	if rr := client.do(http.MethodPost, "/items/1", url.Values{"rate": {"5"}}); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for removed item, got %d", rr.Code)
	}
	if rr := client.do(http.MethodPost, "/items/abc", url.Values{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rr.Code)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	client, _ := newTestServer(t, nil)
	client.do(http.MethodGet, "/", nil)

	expectRedirect(t, client.do(http.MethodPost, "/reset", url.Values{}))
	body := client.do(http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, "Form reset successfully!") {
		t.Fatalf("reset applied without confirmation")
	}

	expectRedirect(t, client.do(http.MethodPost, "/reset", url.Values{"confirm": {"yes"}}))
	body = client.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "Form reset successfully!") {
		t.Fatalf("expected reset notification")
	}
	if !strings.Contains(body, `value="18"`) {
		t.Fatalf("expected default tax rate after reset")
	}
}

func TestExportReturnsPDF(t *testing.T) {
	client, _ := newTestServer(t, export.NewDefaultPipeline(nil))
	client.do(http.MethodGet, "/", nil)
	client.do(http.MethodPost, "/fields", url.Values{string(invoice.InvoiceNumber): {"INV-7"}})

	rr := client.do(http.MethodPost, "/export", url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type=%q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "ORO-MANTRA-Invoice-INV-7.pdf") {
		t.Fatalf("content disposition=%q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestExportConflictsWhileBusy(t *testing.T) {
	exp := &blockingExporter{started: make(chan struct{}), release: make(chan struct{})}
	client, _ := newTestServer(t, exp)
	client.do(http.MethodGet, "/", nil)

	done := make(chan int, 1)
	first := &testClient{t: t, handler: client.handler, cookie: client.cookie}
	go func() {
		done <- first.do(http.MethodPost, "/export", url.Values{}).Code
	}()
	<-exp.started

	if rr := client.do(http.MethodPost, "/export", url.Values{}); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while busy, got %d", rr.Code)
	}

	close(exp.release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first export status=%d", code)
	}
}

func TestExportWhileBusyRedirectsBrowsers(t *testing.T) {
	exp := &blockingExporter{started: make(chan struct{}), release: make(chan struct{})}
	client, _ := newTestServer(t, exp)
	client.do(http.MethodGet, "/", nil)

	done := make(chan int, 1)
	first := &testClient{t: t, handler: client.handler, cookie: client.cookie}
	go func() {
		done <- first.do(http.MethodPost, "/export", url.Values{}).Code
	}()
	<-exp.started

	browser := &testClient{t: t, handler: client.handler, cookie: client.cookie, accept: "text/html,application/xhtml+xml"}
	expectRedirect(t, browser.do(http.MethodPost, "/export", url.Values{}))

	close(exp.release)
	<-done

	body := browser.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "PDF generation already in progress.") && !strings.Contains(body, "Invoice PDF downloaded successfully!") {
		t.Fatalf("expected a notification on the form page")
	}
	if !strings.Contains(body, `id="meta-form"`) {
		t.Fatalf("expected the editor to be rendered")
	}
}

func TestResetInvalidatesOldItemRows(t *testing.T) {
	client, _ := newTestServer(t, nil)
	client.do(http.MethodGet, "/", nil)

	expectRedirect(t, client.do(http.MethodPost, "/reset", url.Values{"confirm": {"yes"}}))

	if rr := client.do(http.MethodPost, "/items/1", url.Values{"rate": {"999"}}); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a pre-reset row, got %d", rr.Code)
	}
	body := client.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, `action="/items/2"`) || !strings.Contains(body, `value="Item 1"`) {
		t.Fatalf("expected fresh row with id 2 labelled Item 1")
	}
}

func TestShortcuts(t *testing.T) {
	client, _ := newTestServer(t, nil)
	client.do(http.MethodGet, "/", nil)

	expectRedirect(t, client.do(http.MethodPost, "/shortcuts/ctrl+n", url.Values{}))
	body := client.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "New item added!") || !strings.Contains(body, `action="/items/2"`) {
		t.Fatalf("ctrl+n did not add an item")
	}

	expectRedirect(t, client.do(http.MethodPost, "/shortcuts/ctrl+s", url.Values{}))
	if rr := client.do(http.MethodPost, "/shortcuts/ctrl+q", url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unbound shortcut, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	client, _ := newTestServer(t, nil)

	rr := client.do(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d: %s", rr.Code, rr.Body.String())
	}
}
