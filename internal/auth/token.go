package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultCookieName = "auth"

var ErrInvalidToken = errors.New("invalid session token")

// TokenManager issues and verifies signed session tokens and moves them
// in and out of the session cookie. It is built once at startup and is
// read-only afterwards.
type TokenManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string

	// Now is the clock used for issuing and validating tokens.
	Now func() time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration, cookieName string) *TokenManager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &TokenManager{
		secret:     secret,
		ttl:        ttl,
		cookieName: cookieName,
		Now:        time.Now,
	}
}

func (m *TokenManager) CookieName() string { return m.cookieName }

// Issue - creates a token for subject valid for the configured ttl
func (m *TokenManager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("empty token subject")
	}
	now := m.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify - checks signature and expiry and returns the token subject
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// SetCookie - attaches the token to the response; an empty token clears the cookie
func (m *TokenManager) SetCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

// TokenFromRequest - reads the token from the session cookie, then from
// an Authorization: Bearer header
func (m *TokenManager) TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
