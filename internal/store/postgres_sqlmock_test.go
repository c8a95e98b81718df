package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"taskboard/internal/models"
)

var userColumns = []string{"id", "username", "email", "name", "hashed_password"}

func newMockConn(t *testing.T) (Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn, err := NewPostgres(db).Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet SQL expectations: %v", err)
	}
}

func TestPostgresGetUser(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "alice", "a@x.com", "Alice", "hash"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := conn.Users().GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user == nil || user.ID != 1 || user.Email != "a@x.com" || user.HashedPassword != "hash" {
		t.Fatalf("unexpected user: %+v", user)
	}

	user, err = conn.Users().GetByEmail(ctx, "nobody@x.com")
	if err != nil || user != nil {
		t.Fatalf("GetByEmail(missing) = %+v, %v; want nil, nil", user, err)
	}

	expectationsMet(t, mock)
}

func TestPostgresGetUserError(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnError(errors.New("connection refused"))

	if _, err := conn.Users().GetByUsername(context.Background(), "alice"); err == nil {
		t.Fatal("GetByUsername swallowed a storage error")
	}
	expectationsMet(t, mock)
}

func TestPostgresCreateUser(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "a@x.com", "Alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "a@x.com", "Alice", "hash").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	user := &models.User{Username: "alice", Email: "a@x.com", Name: "Alice", HashedPassword: "hash"}
	if err := conn.Users().Create(ctx, user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("ID = %d, want 7", user.ID)
	}

	again := &models.User{Username: "alice", Email: "a@x.com", Name: "Alice", HashedPassword: "hash"}
	if err := conn.Users().Create(ctx, again); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create error = %v, want ErrDuplicate", err)
	}

	expectationsMet(t, mock)
}

func TestPostgresAddTask(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks (text, owner_id) VALUES ($1, $2) RETURNING id")).
		WithArgs("buy milk", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("orphan", int64(42)).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	task, err := conn.Tasks().Add(ctx, "  buy milk ", 1)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if task.ID != 3 || task.Text != "buy milk" || task.OwnerID != 1 {
		t.Fatalf("unexpected task: %+v", task)
	}

	if _, err := conn.Tasks().Add(ctx, "orphan", 42); !errors.Is(err, ErrUnknownOwner) {
		t.Fatalf("Add error = %v, want ErrUnknownOwner", err)
	}

	expectationsMet(t, mock)
}

func TestPostgresAddEmptyTaskRunsNoSQL(t *testing.T) {
	conn, mock := newMockConn(t)

	for _, text := range []string{"", "  \t "} {
		if _, err := conn.Tasks().Add(context.Background(), text, 1); !errors.Is(err, ErrEmptyText) {
			t.Fatalf("Add(%q) error = %v, want ErrEmptyText", text, err)
		}
	}
	expectationsMet(t, mock)
}

func TestPostgresListTasks(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, text, owner_id FROM tasks WHERE owner_id = $1 ORDER BY id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "owner_id"}).
			AddRow(int64(2), "first", int64(1)).
			AddRow(int64(5), "second", int64(1)))

	tasks, err := conn.Tasks().ListByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != 2 || tasks[1].Text != "second" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	expectationsMet(t, mock)
}

func TestPostgresListTasksRowError(t *testing.T) {
	conn, mock := newMockConn(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE owner_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "owner_id"}).
			AddRow(int64(2), "first", int64(1)).
			AddRow(int64(5), "second", int64(1)).
			RowError(1, errors.New("connection reset")))

	tasks, err := conn.Tasks().ListByOwner(context.Background(), 1)
	if err == nil {
		t.Fatalf("ListByOwner returned %+v without the row error", tasks)
	}
	expectationsMet(t, mock)
}

func TestPostgresDeleteTask(t *testing.T) {
	ctx := context.Background()
	conn, mock := newMockConn(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(int64(9999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(errors.New("connection reset"))

	if err := conn.Tasks().Delete(ctx, 9999); err != nil {
		t.Fatalf("Delete(missing) returned error: %v", err)
	}
	if err := conn.Tasks().Delete(ctx, 3); err == nil {
		t.Fatal("Delete swallowed a storage error")
	}
	expectationsMet(t, mock)
}
