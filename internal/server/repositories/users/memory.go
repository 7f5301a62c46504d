package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// MemoryTable holds users of the in-memory store. Ids come from a sequence
// that, as in PostgreSQL, is not rolled back by Restore.
type MemoryTable struct {
	rows map[int64]*models.User
	seq  int64
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{rows: make(map[int64]*models.User)}
}

func (t *MemoryTable) Snapshot() *MemoryTable {
	s := &MemoryTable{rows: make(map[int64]*models.User, len(t.rows)), seq: t.seq}
	for id, u := range t.rows {
		c := *u
		s.rows[id] = &c
	}
	return s
}

func (t *MemoryTable) Restore(s *MemoryTable) {
	t.rows = s.rows
}

// MemoryRepository serves a MemoryTable; a nil mu means the caller already
// holds the lock.
type MemoryRepository struct {
	mu  *sync.RWMutex
	t   *MemoryTable
	now func() time.Time
}

func NewMemoryRepository(mu *sync.RWMutex, t *MemoryTable) *MemoryRepository {
	return &MemoryRepository{mu: mu, t: t, now: time.Now}
}

func (r *MemoryRepository) rlock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *MemoryRepository) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	defer r.lock()()

	if r.find(user.UserName) != nil {
		return nil, ErrUserNameTaken
	}

	r.t.seq++
	user.ID = r.t.seq
	user.CreatedAt = r.now().UTC()

	c := *user
	r.t.rows[user.ID] = &c
	return user, nil
}

func (r *MemoryRepository) find(userName string) *models.User {
	for _, u := range r.t.rows {
		if u.UserName == userName {
			return u
		}
	}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	defer r.rlock()()

	u, ok := r.t.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) GetUserByLogin(_ context.Context, userName string) (*models.User, error) {
	defer r.rlock()()

	u := r.find(userName)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepository) Exists(_ context.Context, userName string) (bool, error) {
	defer r.rlock()()

	return r.find(userName) != nil, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	defer r.rlock()()

	items := make([]*models.User, 0, len(r.t.rows))
	for _, u := range r.t.rows {
		c := *u
		items = append(items, &c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	defer r.rlock()()

	return len(r.t.rows), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	defer r.lock()()

	if _, ok := r.t.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.t.rows, id)
	return nil
}
