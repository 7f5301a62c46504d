package users

import (
	"context"

	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// Repository stores login accounts. Usernames are unique; Create on a taken
// username returns an error matching common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	Exists(ctx context.Context, login string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}
