package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/dbx"
	"github.com/dmitrijs2005/simplog/internal/server/conflicts"
	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// Names of the unique constraints created by the migrations.
const (
	emailConstraint = "employees_email_key"
	codeConstraint  = "employees_code_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (*models.Employee, error) {
	e := &models.Employee{}
	if err := s.Scan(&e.ID, &e.Name, &e.Email, &e.Code, &e.TaxCode, &e.Image, &e.ImageKey, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Employee, error) {
	query :=
		`SELECT id, name, email, code, tax_code, image, image_key, created_at FROM employees
		 WHERE id = $1
		 `

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Employee, error) {
	query :=
		`SELECT id, name, email, code, tax_code, image, image_key, created_at FROM employees
		 ORDER BY created_at, id
		 `

	return r.query(ctx, query)
}

func (r *PostgresRepository) Window(ctx context.Context, offset, limit int) ([]*models.Employee, error) {
	query :=
		`SELECT id, name, email, code, tax_code, image, image_key, created_at FROM employees
		 ORDER BY created_at, id
		 LIMIT $1 OFFSET $2
		 `

	return r.query(ctx, query, limit, offset)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`, email)
}

func (r *PostgresRepository) CodeExists(ctx context.Context, code int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE code = $1)`, code)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	query :=
		`INSERT INTO employees (id, name, email, code, tax_code, image, image_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.Name, e.Email, e.Code, e.TaxCode, e.Image, e.ImageKey).Scan(&e.CreatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	return e, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Employee) error {
	query :=
		`UPDATE employees SET name = $2, email = $3, code = $4, tax_code = $5, image = $6, image_key = $7
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Email, e.Code, e.TaxCode, e.Image, e.ImageKey)
	if err != nil {
		return mapWriteError(err)
	}

	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// mapWriteError turns a unique violation into the same conflict the resolver
// reports, so a lost race across processes looks like a regular conflict.
func mapWriteError(err error) error {
	constraint, ok := dbx.UniqueViolation(err)
	if !ok {
		return fmt.Errorf("db error: %w", err)
	}

	switch constraint {
	case emailConstraint:
		return &conflicts.ConflictError{Fields: conflicts.FieldEmail}
	case codeConstraint:
		return &conflicts.ConflictError{Fields: conflicts.FieldCode}
	default:
		return common.NewError(common.ErrorConflict, "")
	}
}
