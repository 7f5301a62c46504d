// Package repomanager provides the record store behind the services: a
// PostgreSQL manager (pgx driver, goose migrations) and an in-memory one.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/simplog/internal/dbx"
	"github.com/dmitrijs2005/simplog/internal/server/migrations"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/employees"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct {
	db   *sql.DB
	opts options
}

// pgRepos binds repositories to a DBTX. hooks is set inside a transaction.
type pgRepos struct {
	db    dbx.DBTX
	opts  options
	hooks *dbx.TxHooks
}

func (r pgRepos) Users() users.Repository {
	return users.NewPostgresRepository(r.db)
}

func (r pgRepos) Employees() employees.Repository {
	return r.opts.wrapEmployees(employees.NewPostgresRepository(r.db), r.hooks)
}

// Users returns a users.Repository bound to the pool.
func (m *PostgresRepositoryManager) Users() users.Repository {
	return pgRepos{db: m.db, opts: m.opts}.Users()
}

// Employees returns an employees.Repository bound to the pool.
func (m *PostgresRepositoryManager) Employees() employees.Repository {
	return pgRepos{db: m.db, opts: m.opts}.Employees()
}

// WithTx runs fn in a transaction. Hooks registered by the repositories run
// once the outcome is known; a failed commit counts as a rollback.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	hooks := &dbx.TxHooks{}
	committed := false
	defer func() { hooks.Finish(ctx, committed) }()

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, pgRepos{db: tx, opts: m.opts, hooks: hooks})
	})
	committed = err == nil
	return err
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

// NewPostgresRepositoryManager wraps an open pool.
func NewPostgresRepositoryManager(db *sql.DB, opts ...Option) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, opts: buildOptions(opts)}
}

// OpenPostgres opens a pgx pool for dsn and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepositoryManager(db, opts...), nil
}
