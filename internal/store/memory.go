package store

import (
	"context"
	"strings"
	"sync"

	"taskboard/internal/models"
)

// Memory keeps everything in process. It enforces the same constraints as
// the Postgres schema and is used by tests and DB_DRIVER=memory.
type Memory struct {
	mu         sync.RWMutex
	users      map[int]models.User
	byUsername map[string]int
	byEmail    map[string]int
	tasks      map[int]models.Task
	lastUserID int
	lastTaskID int
	open       int
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int]models.User),
		byUsername: make(map[string]int),
		byEmail:    make(map[string]int),
		tasks:      make(map[int]models.Task),
	}
}

func (m *Memory) Open(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.open++
	m.mu.Unlock()
	return &memConn{m: m}, nil
}

// OpenConns - connections opened and not yet closed
func (m *Memory) OpenConns() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

type memConn struct {
	m    *Memory
	once sync.Once
}

func (c *memConn) Users() Users { return memUsers{m: c.m} }
func (c *memConn) Tasks() Tasks { return memTasks{m: c.m} }

func (c *memConn) Close() error {
	c.once.Do(func() {
		c.m.mu.Lock()
		c.m.open--
		c.m.mu.Unlock()
	})
	return nil
}

type memUsers struct {
	m *Memory
}

func (u memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	return u.m.lookup(u.m.byUsername, username), nil
}

func (u memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()
	return u.m.lookup(u.m.byEmail, email), nil
}

func (m *Memory) lookup(index map[string]int, key string) *models.User {
	id, exists := index[key]
	if !exists {
		return nil
	}
	user := m.users[id]
	return &user
}

func (u memUsers) Create(ctx context.Context, user *models.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	if _, exists := u.m.byUsername[user.Username]; exists {
		return ErrDuplicate
	}
	if _, exists := u.m.byEmail[user.Email]; exists {
		return ErrDuplicate
	}

	u.m.lastUserID++
	user.ID = u.m.lastUserID
	u.m.users[user.ID] = *user
	u.m.byUsername[user.Username] = user.ID
	u.m.byEmail[user.Email] = user.ID
	return nil
}

type memTasks struct {
	m *Memory
}

func (t memTasks) ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	var tasks []models.Task
	// ids are handed out in increasing order, so walking them keeps insertion order
	for id := 1; id <= t.m.lastTaskID; id++ {
		if task, exists := t.m.tasks[id]; exists && task.OwnerID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (t memTasks) Add(ctx context.Context, text string, ownerID int) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if _, exists := t.m.users[ownerID]; !exists {
		return nil, ErrUnknownOwner
	}

	t.m.lastTaskID++
	task := models.Task{ID: t.m.lastTaskID, Text: text, OwnerID: ownerID}
	t.m.tasks[task.ID] = task
	return &task, nil
}

func (t memTasks) Delete(ctx context.Context, id int) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	delete(t.m.tasks, id)
	return nil
}
