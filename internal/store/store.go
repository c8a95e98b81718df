// Package store persists users and their tasks.
//
// Handlers never hold a store across requests: every request opens its own
// Conn and closes it when done.
package store

import (
	"context"
	"errors"

	"taskboard/internal/models"
)

var (
	// ErrDuplicate - username or email already taken
	ErrDuplicate = errors.New("username or email already registered")
	// ErrEmptyText - task text is empty after trimming
	ErrEmptyText = errors.New("task text is empty")
	// ErrUnknownOwner - task owner does not reference an existing user
	ErrUnknownOwner = errors.New("task owner does not exist")
)

// Users - credential store. Lookups return (nil, nil) on a miss.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Tasks - task store. Delete does not check ownership.
type Tasks interface {
	ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error)
	Add(ctx context.Context, text string, ownerID int) (*models.Task, error)
	Delete(ctx context.Context, id int) error
}

// Conn is storage scoped to a single request.
type Conn interface {
	Users() Users
	Tasks() Tasks
	Close() error
}

// Opener acquires a Conn for one request.
type Opener interface {
	Open(ctx context.Context) (Conn, error)
}
