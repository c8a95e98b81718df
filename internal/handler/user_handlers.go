package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

// LoginPageHandler - login form
func (h *Handler) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, models.PageData{Title: "Login", CurrentPage: "login", User: h.currentUser(r)})
}

// LoginHandler - checks credentials, sets the session cookie and sends the user to /tasks.
// Unknown usernames and wrong passwords get the same 401 page. The username is
// trimmed the same way RegisterHandler trims it; the password never is.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request, conn store.Conn) {
	parseErr := r.ParseForm()
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	invalid := func() {
		h.render(w, http.StatusUnauthorized, models.PageData{
			Title:       "Login",
			CurrentPage: "login",
			Invalid:     true,
			Username:    username,
		})
	}

	if parseErr != nil || username == "" || password == "" {
		invalid()
		return
	}

	user, err := conn.Users().GetByUsername(r.Context(), username)
	if err != nil {
		h.serverError(w, "login lookup", err)
		return
	}
	if user == nil || !h.Hasher.Verify(password, user.HashedPassword) {
		log.Printf("Failed login for %q", username)
		invalid()
		return
	}

	token, err := h.Tokens.Issue(user.Username)
	if err != nil {
		h.serverError(w, "issue session token", err)
		return
	}

	h.Tokens.SetCookie(w, token)
	log.Printf("✅ %s logged in", user.Username)
	http.Redirect(w, r, "/tasks", http.StatusFound)
}

// RegisterPageHandler - registration form
func (h *Handler) RegisterPageHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, models.PageData{Title: "Register", CurrentPage: "register", User: h.currentUser(r)})
}

// RegisterHandler - creates an account and sends the user to /login.
// Missing fields or a taken username/email re-render the form with 400.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request, conn store.Conn) {
	parseErr := r.ParseForm()
	form := models.RegisterForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
	}
	password := r.PostForm.Get("password")

	invalid := func() {
		h.render(w, http.StatusBadRequest, models.PageData{
			Title:       "Register",
			CurrentPage: "register",
			Invalid:     true,
			Register:    form,
		})
	}

	if parseErr != nil || form.Username == "" || form.Email == "" || form.Name == "" || password == "" {
		invalid()
		return
	}

	taken, err := h.registrationTaken(r, conn.Users(), form)
	if err != nil {
		h.serverError(w, "registration lookup", err)
		return
	}
	if taken {
		invalid()
		return
	}

	hashed, err := h.Hasher.Hash(password)
	if err != nil {
		h.serverError(w, "hash password", err)
		return
	}

	user := &models.User{
		Username:       form.Username,
		Email:          form.Email,
		Name:           form.Name,
		HashedPassword: hashed,
	}
	// a concurrent registration can still win between the check and the
	// insert; the unique constraint turns that into ErrDuplicate
	if err := conn.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			invalid()
			return
		}
		h.serverError(w, "create user", err)
		return
	}

	log.Printf("✅ Registered %s (id %d)", user.Username, user.ID)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) registrationTaken(r *http.Request, users store.Users, form models.RegisterForm) (bool, error) {
	byName, err := users.GetByUsername(r.Context(), form.Username)
	if err != nil {
		return false, err
	}
	byEmail, err := users.GetByEmail(r.Context(), form.Email)
	if err != nil {
		return false, err
	}
	return byName != nil || byEmail != nil, nil
}

// LogoutHandler - clears the session cookie
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.Tokens.SetCookie(w, "")
	http.Redirect(w, r, "/", http.StatusFound)
}
