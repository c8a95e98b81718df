package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler holds the dependencies shared by all routes. Everything here is
// set once at startup and only read afterwards.
type Handler struct {
	Store  store.Opener
	Hasher *auth.Hasher
	Tokens *auth.TokenManager
	Tmpl   *template.Template
}

// NewHandler - creates a Handler and parses the page templates
func NewHandler(opener store.Opener, hasher *auth.Hasher, tokens *auth.TokenManager) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	log.Printf("Templates loaded: %d", len(tmpl.Templates()))

	return &Handler{
		Store:  opener,
		Hasher: hasher,
		Tokens: tokens,
		Tmpl:   tmpl,
	}, nil
}

// Routes - registers every page on a gorilla/mux router
func (h *Handler) Routes(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/", h.HomeHandler).Methods(http.MethodGet)

	r.HandleFunc("/tasks", h.protected(h.TasksHandler)).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.protected(h.AddTaskHandler)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/delete/{id}", h.protected(h.DeleteTaskHandler)).Methods(http.MethodGet)

	r.HandleFunc("/login", h.LoginPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", h.withConn(h.LoginHandler)).Methods(http.MethodPost)
	r.HandleFunc("/register", h.RegisterPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/register", h.withConn(h.RegisterHandler)).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.LogoutHandler).Methods(http.MethodGet)

	if staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
	}

	return r
}

// HomeHandler - home page
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, models.PageData{
		Title:       "Home",
		CurrentPage: "home",
		User:        h.currentUser(r),
	})
}

// render executes the page into a buffer first so a template failure
// still produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, data models.PageData) {
	var buf bytes.Buffer
	if err := h.Tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		h.serverError(w, "render "+data.CurrentPage, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("❌ %s: %v", op, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
