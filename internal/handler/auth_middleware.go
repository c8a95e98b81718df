package handler

import (
	"log"
	"net/http"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

type authState int

const (
	unauthenticated authState = iota
	authenticated
)

// authResult is either authenticated with a user or unauthenticated.
type authResult struct {
	state authState
	user  *models.User
}

// authenticate resolves the session cookie to a user. A missing, invalid or
// expired token, or a token for a user that no longer exists, is simply
// unauthenticated; only storage failures are returned as errors.
func (h *Handler) authenticate(r *http.Request, users store.Users) (authResult, error) {
	token := h.Tokens.TokenFromRequest(r)
	if token == "" {
		return authResult{state: unauthenticated}, nil
	}

	username, err := h.Tokens.Verify(token)
	if err != nil {
		log.Printf("Rejected session token: %v", err)
		return authResult{state: unauthenticated}, nil
	}

	user, err := users.GetByUsername(r.Context(), username)
	if err != nil {
		return authResult{}, err
	}
	if user == nil {
		return authResult{state: unauthenticated}, nil
	}

	return authResult{state: authenticated, user: user}, nil
}

// currentUser - the logged in user for pages that also work anonymously.
// Nothing is redirected here; storage failures just leave the page anonymous.
func (h *Handler) currentUser(r *http.Request) *models.User {
	if h.Tokens.TokenFromRequest(r) == "" {
		return nil
	}

	conn, err := h.Store.Open(r.Context())
	if err != nil {
		log.Printf("Session lookup skipped: %v", err)
		return nil
	}
	defer conn.Close()

	result, err := h.authenticate(r, conn.Users())
	if err != nil {
		log.Printf("Session lookup failed: %v", err)
		return nil
	}
	return result.user
}

type connHandler func(w http.ResponseWriter, r *http.Request, conn store.Conn)

type userHandler func(w http.ResponseWriter, r *http.Request, conn store.Conn, user *models.User)

// withConn acquires the request's storage connection and releases it when
// the handler returns, whatever the outcome.
func (h *Handler) withConn(next connHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.Store.Open(r.Context())
		if err != nil {
			h.serverError(w, "open storage", err)
			return
		}
		defer conn.Close()

		next(w, r, conn)
	}
}

// protected - pages that need a logged in user; anyone else is sent to /login
func (h *Handler) protected(next userHandler) http.HandlerFunc {
	return h.withConn(func(w http.ResponseWriter, r *http.Request, conn store.Conn) {
		result, err := h.authenticate(r, conn.Users())
		if err != nil {
			h.serverError(w, "resolve session user", err)
			return
		}

		switch result.state {
		case authenticated:
			next(w, r, conn, result.user)
		default:
			http.Redirect(w, r, "/login", http.StatusFound)
		}
	})
}
