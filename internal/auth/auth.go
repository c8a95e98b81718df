package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher - salted bcrypt hashing with a cost fixed at startup
type Hasher struct {
	cost int
}

// NewHasher - creates a hasher; cost outside bcrypt's range falls back to the default
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash - hashes a plaintext password
func (h *Hasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Verify - checks a plaintext password against a stored hash
func (h *Hasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
