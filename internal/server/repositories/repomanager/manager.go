package repomanager

import (
	"context"

	"github.com/dmitrijs2005/simplog/internal/dbx"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/employees"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/users"
)

// Repos vends the repositories bound to one handle: either the pool or an
// open transaction.
type Repos interface {
	Users() users.Repository
	Employees() employees.Repository
}

// RepositoryManager is the record store used by the services. WithTx runs fn
// atomically: every write done through the Repos passed to fn is committed
// when fn returns nil and discarded otherwise.
type RepositoryManager interface {
	Repos
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Option configures a manager.
type Option func(*options)

type options struct {
	images employees.ImageStore
}

// WithImageStore offloads employee images to s. Objects are only removed once
// the transaction that stopped referencing them has committed.
func WithImageStore(s employees.ImageStore) Option {
	return func(o *options) { o.images = s }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// wrapEmployees adds image offloading when configured. hooks is the current
// transaction's, or nil outside one.
func (o options) wrapEmployees(r employees.Repository, hooks *dbx.TxHooks) employees.Repository {
	if o.images == nil {
		return r
	}
	return employees.NewImageOffloadingRepository(r, o.images, hooks)
}
