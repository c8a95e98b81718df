package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"taskboard/internal/models"
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

// Postgres hands out one pooled connection per request.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Open(ctx context.Context) (Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &pgConn{conn: conn}, nil
}

type pgConn struct {
	conn *sql.Conn
}

func (c *pgConn) Users() Users { return pgUsers{conn: c.conn} }
func (c *pgConn) Tasks() Tasks { return pgTasks{conn: c.conn} }
func (c *pgConn) Close() error { return c.conn.Close() }

type pgUsers struct {
	conn *sql.Conn
}

func (u pgUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u.getOne(ctx, "username", username)
}

func (u pgUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.getOne(ctx, "email", email)
}

// column is one of the fixed names above, never user input
func (u pgUsers) getOne(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	err := u.conn.QueryRowContext(ctx,
		`SELECT id, username, email, name, hashed_password FROM users WHERE `+column+` = $1`,
		value,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.HashedPassword)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &user, nil
}

func (u pgUsers) Create(ctx context.Context, user *models.User) error {
	err := u.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, email, name, hashed_password)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Username, user.Email, user.Name, user.HashedPassword,
	).Scan(&user.ID)

	if isPQError(err, uniqueViolation) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

type pgTasks struct {
	conn *sql.Conn
}

func (t pgTasks) ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	rows, err := t.conn.QueryContext(ctx,
		`SELECT id, text, owner_id FROM tasks WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Text, &task.OwnerID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (t pgTasks) Add(ctx context.Context, text string, ownerID int) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	task := models.Task{Text: text, OwnerID: ownerID}
	err := t.conn.QueryRowContext(ctx,
		`INSERT INTO tasks (text, owner_id) VALUES ($1, $2) RETURNING id`,
		text, ownerID,
	).Scan(&task.ID)

	if isPQError(err, foreignKeyViolation) {
		return nil, ErrUnknownOwner
	}
	if err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	return &task, nil
}

func (t pgTasks) Delete(ctx context.Context, id int) error {
	if _, err := t.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
