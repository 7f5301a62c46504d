package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/employees"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/users"
)

// countingStore wraps the in-memory manager and counts every write that
// reaches a repository.
type countingStore struct {
	*repomanager.MemoryRepositoryManager

	mu     sync.Mutex
	writes int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
}

func (s *countingStore) inc() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *countingStore) Reset() {
	s.mu.Lock()
	s.writes = 0
	s.mu.Unlock()
}

func (s *countingStore) Employees() employees.Repository {
	return &countingEmployees{Repository: s.MemoryRepositoryManager.Employees(), s: s}
}

func (s *countingStore) Users() users.Repository {
	return &countingUsers{Repository: s.MemoryRepositoryManager.Users(), s: s}
}

func (s *countingStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos) error) error {
	return s.MemoryRepositoryManager.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		return fn(ctx, countingRepos{inner: r, s: s})
	})
}

type countingRepos struct {
	inner repomanager.Repos
	s     *countingStore
}

func (r countingRepos) Employees() employees.Repository {
	return &countingEmployees{Repository: r.inner.Employees(), s: r.s}
}

func (r countingRepos) Users() users.Repository {
	return &countingUsers{Repository: r.inner.Users(), s: r.s}
}

type countingEmployees struct {
	employees.Repository
	s *countingStore
}

func (r *countingEmployees) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	r.s.inc()
	return r.Repository.Create(ctx, e)
}

func (r *countingEmployees) Update(ctx context.Context, e *models.Employee) error {
	r.s.inc()
	return r.Repository.Update(ctx, e)
}

func (r *countingEmployees) Delete(ctx context.Context, id string) error {
	r.s.inc()
	return r.Repository.Delete(ctx, id)
}

type countingUsers struct {
	users.Repository
	s *countingStore
}

func (r *countingUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.inc()
	return r.Repository.Create(ctx, u)
}

func (r *countingUsers) Delete(ctx context.Context, id int64) error {
	r.s.inc()
	return r.Repository.Delete(ctx, id)
}

// fakeRecorder captures what the services report.
type fakeRecorder struct {
	mu        sync.Mutex
	logins    []bool
	conflicts [][]string
}

func (f *fakeRecorder) RecordRPC(string, string, time.Duration) {}
func (f *fakeRecorder) RecordRateLimited(string)                {}

func (f *fakeRecorder) RecordLogin(ok bool) {
	f.mu.Lock()
	f.logins = append(f.logins, ok)
	f.mu.Unlock()
}

func (f *fakeRecorder) RecordConflict(fields []string) {
	f.mu.Lock()
	f.conflicts = append(f.conflicts, fields)
	f.mu.Unlock()
}
