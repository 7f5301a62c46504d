// Package employees stores employee records. Email and code are unique across
// the table; a write that would break that returns *conflicts.ConflictError.
package employees

import (
	"context"

	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// Repository is implemented by the PostgreSQL and in-memory stores and by
// ImageOffloadingRepository.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	// Window returns up to limit records after skipping offset, ordered by
	// (created_at, id).
	Window(ctx context.Context, offset, limit int) ([]*models.Employee, error)
	Count(ctx context.Context) (int, error)

	EmailExists(ctx context.Context, email string) (bool, error)
	CodeExists(ctx context.Context, code int) (bool, error)

	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Delete(ctx context.Context, id string) error
}
