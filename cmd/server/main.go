package main

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/oro-invoice/internal/config"
	"github.com/Simplici0/oro-invoice/internal/db"
	"github.com/Simplici0/oro-invoice/internal/export"
	"github.com/Simplici0/oro-invoice/internal/form"
	"github.com/Simplici0/oro-invoice/internal/migrations"
	"github.com/Simplici0/oro-invoice/internal/prefs"
	"github.com/Simplici0/oro-invoice/web"
)

type server struct {
	prefs    *prefs.Store
	sessions *sessionStore
	pages    *template.Template
}

func newServer(store *prefs.Store, exporter form.Exporter, sessionSecret string) (*server, error) {
	pages, err := web.Templates()
	if err != nil {
		return nil, err
	}

	sessions := newSessionStore(sessionSecret, func(fields *form.MapFields, flash *form.Flash) *form.Controller {
		return form.New(form.Options{
			Fields:   fields,
			Exporter: exporter,
			Notifier: flash,
		})
	})

	return &server{prefs: store, sessions: sessions, pages: pages}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.middleware)
		r.Get("/", s.handleIndex)
		r.Get("/preview", s.handlePreview)
		r.Post("/fields", s.handleFields)
		r.Post("/items", s.handleAddItem)
		r.Post("/items/{id}", s.handleUpdateItem)
		r.Post("/items/{id}/delete", s.handleRemoveItem)
		r.Post("/reset", s.handleReset)
		r.Post("/export", s.handleExport)
		r.Post("/shortcuts/{key}", s.handleShortcut)
		r.Post("/onboarding/dismiss", s.handleDismissOnboarding)
	})

	return r
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	var sink export.Sink
	if cfg.ExportDir != "" {
		sink = export.DirSink{Dir: cfg.ExportDir}
		log.Printf("[INFO] keeping exported PDFs in %s", cfg.ExportDir)
	}

	srv, err := newServer(prefs.NewStore(database), export.NewDefaultPipeline(sink), cfg.SessionSecret)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
