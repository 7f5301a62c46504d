package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/simplog/internal/dbx"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/employees"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Transactions
// hold the write lock for their whole duration and restore a snapshot when
// fn fails or panics. Transaction hooks run after the lock is released.
type MemoryRepositoryManager struct {
	mu        sync.RWMutex
	employees *employees.MemoryTable
	users     *users.MemoryTable
	opts      options
}

func NewMemoryRepositoryManager(opts ...Option) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		employees: employees.NewMemoryTable(),
		users:     users.NewMemoryTable(),
		opts:      buildOptions(opts),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return users.NewMemoryRepository(&m.mu, m.users)
}

func (m *MemoryRepositoryManager) Employees() employees.Repository {
	return m.opts.wrapEmployees(employees.NewMemoryRepository(&m.mu, m.employees), nil)
}

type memTxRepos struct {
	m     *MemoryRepositoryManager
	hooks *dbx.TxHooks
}

func (r memTxRepos) Users() users.Repository {
	return users.NewMemoryRepository(nil, r.m.users)
}

func (r memTxRepos) Employees() employees.Repository {
	return r.m.opts.wrapEmployees(employees.NewMemoryRepository(nil, r.m.employees), r.hooks)
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) (err error) {
	hooks := &dbx.TxHooks{}
	committed := false
	defer func() { hooks.Finish(ctx, committed) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	empSnap := m.employees.Snapshot()
	usrSnap := m.users.Snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.employees.Restore(empSnap)
			m.users.Restore(usrSnap)
			panic(p)
		}
		if err != nil {
			m.employees.Restore(empSnap)
			m.users.Restore(usrSnap)
		}
	}()

	err = fn(ctx, memTxRepos{m: m, hooks: hooks})
	committed = err == nil
	return err
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
