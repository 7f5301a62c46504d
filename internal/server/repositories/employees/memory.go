package employees

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/server/conflicts"
	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// MemoryTable holds the rows of the in-memory store. It has no locking of its
// own; access goes through a MemoryRepository.
type MemoryTable struct {
	rows map[string]*models.Employee
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{rows: make(map[string]*models.Employee)}
}

// Snapshot returns a deep copy used to roll back a failed transaction.
func (t *MemoryTable) Snapshot() *MemoryTable {
	s := NewMemoryTable()
	for id, e := range t.rows {
		s.rows[id] = e.Clone()
	}
	return s
}

// Restore replaces the rows with those of s.
func (t *MemoryTable) Restore(s *MemoryTable) {
	t.rows = s.rows
}

// MemoryRepository serves a MemoryTable. When mu is nil the caller is
// expected to hold the table's lock already (transaction scope).
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

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Employee, error) {
	defer r.rlock()()

	e, ok := r.t.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Employee, error) {
	defer r.rlock()()

	return r.sorted(), nil
}

func (r *MemoryRepository) Window(_ context.Context, offset, limit int) ([]*models.Employee, error) {
	defer r.rlock()()

	all := r.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *MemoryRepository) sorted() []*models.Employee {
	items := make([]*models.Employee, 0, len(r.t.rows))
	for _, e := range r.t.rows {
		items = append(items, e.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	defer r.rlock()()

	return len(r.t.rows), nil
}

func (r *MemoryRepository) EmailExists(_ context.Context, email string) (bool, error) {
	defer r.rlock()()

	return r.collides("", email, nil)&conflicts.FieldEmail != 0, nil
}

func (r *MemoryRepository) CodeExists(_ context.Context, code int) (bool, error) {
	defer r.rlock()()

	return r.collides("", "", &code)&conflicts.FieldCode != 0, nil
}

// collides reports which natural keys of another row (id excluded) match.
func (r *MemoryRepository) collides(id, email string, code *int) conflicts.Field {
	var f conflicts.Field
	for _, e := range r.t.rows {
		if e.ID == id {
			continue
		}
		if email != "" && e.Email == email {
			f |= conflicts.FieldEmail
		}
		if code != nil && e.Code == *code {
			f |= conflicts.FieldCode
		}
	}
	return f
}

func (r *MemoryRepository) Create(_ context.Context, e *models.Employee) (*models.Employee, error) {
	defer r.lock()()

	if _, ok := r.t.rows[e.ID]; ok {
		return nil, common.NewError(common.ErrorConflict, "")
	}
	if f := r.collides(e.ID, e.Email, &e.Code); f != 0 {
		return nil, &conflicts.ConflictError{Fields: f}
	}

	e.CreatedAt = r.now().UTC()
	r.t.rows[e.ID] = e.Clone()
	return e, nil
}

func (r *MemoryRepository) Update(_ context.Context, e *models.Employee) error {
	defer r.lock()()

	stored, ok := r.t.rows[e.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if f := r.collides(e.ID, e.Email, &e.Code); f != 0 {
		return &conflicts.ConflictError{Fields: f}
	}

	conflicts.Apply(stored, e.Clone())
	stored.ImageKey = e.ImageKey
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	defer r.lock()()

	if _, ok := r.t.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.t.rows, id)
	return nil
}
