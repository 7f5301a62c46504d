package employees

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/simplog/internal/dbx"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/google/uuid"
)

// ImageStore keeps image blobs outside the database. Get returns nil, nil
// for a key that was never written.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ImageKey is the object key of one version of an employee's image.
func ImageKey(id, version string) string {
	return "employees/" + id + "/image/" + version
}

// ImageOffloadingRepository stores employee rows without their image bytes.
// Every image write goes to a fresh key that the row records in ImageKey,
// and the upload happens before the row write. An object is removed only
// once no committed row points at it: superseded and deleted images after
// the commit, fresh uploads after a rollback. A row therefore always points
// at an image that exists.
//
// hooks is nil for a repository bound to the pool; each statement then
// commits on its own and cleanup follows it directly.
type ImageOffloadingRepository struct {
	Repository
	images ImageStore
	hooks  *dbx.TxHooks
	newKey func(id string) string
}

func NewImageOffloadingRepository(inner Repository, images ImageStore, hooks *dbx.TxHooks) *ImageOffloadingRepository {
	return &ImageOffloadingRepository{
		Repository: inner,
		images:     images,
		hooks:      hooks,
		newKey: func(id string) string {
			return ImageKey(id, uuid.NewString())
		},
	}
}

// hydrate loads the image of a row. Rows without a key keep whatever image
// the row itself holds.
func (r *ImageOffloadingRepository) hydrate(ctx context.Context, e *models.Employee) error {
	if e.ImageKey == "" {
		return nil
	}
	img, err := r.images.Get(ctx, e.ImageKey)
	if err != nil {
		return fmt.Errorf("image fetch: %w", err)
	}
	e.Image = img
	return nil
}

func (r *ImageOffloadingRepository) hydrateAll(ctx context.Context, items []*models.Employee) ([]*models.Employee, error) {
	for _, e := range items {
		if err := r.hydrate(ctx, e); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *ImageOffloadingRepository) Get(ctx context.Context, id string) (*models.Employee, error) {
	e, err := r.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ImageOffloadingRepository) List(ctx context.Context) ([]*models.Employee, error) {
	items, err := r.Repository.List(ctx)
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, items)
}

func (r *ImageOffloadingRepository) Window(ctx context.Context, offset, limit int) ([]*models.Employee, error) {
	items, err := r.Repository.Window(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, items)
}

func (r *ImageOffloadingRepository) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	row, err := r.offload(ctx, e)
	if err != nil {
		return nil, err
	}

	created, err := r.Repository.Create(ctx, row)
	if err != nil {
		r.discard(ctx, row.ImageKey)
		return nil, err
	}
	r.discardOnRollback(row.ImageKey)

	created.Image = e.Image
	e.ImageKey = row.ImageKey
	return created, nil
}

func (r *ImageOffloadingRepository) Update(ctx context.Context, e *models.Employee) error {
	current, err := r.Repository.Get(ctx, e.ID)
	if err != nil {
		return err
	}

	row, err := r.offload(ctx, e)
	if err != nil {
		return err
	}

	if err := r.Repository.Update(ctx, row); err != nil {
		r.discard(ctx, row.ImageKey)
		return err
	}
	r.discardOnRollback(row.ImageKey)
	r.discardOnCommit(ctx, current.ImageKey)

	e.ImageKey = row.ImageKey
	return nil
}

func (r *ImageOffloadingRepository) Delete(ctx context.Context, id string) error {
	current, err := r.Repository.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.discardOnCommit(ctx, current.ImageKey)
	return nil
}

// offload uploads the image of e under a new key and returns the row to
// write in its place. An empty image gives a row without a key.
func (r *ImageOffloadingRepository) offload(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	row := e.Clone()
	row.Image = nil
	row.ImageKey = ""

	if len(e.Image) == 0 {
		return row, nil
	}

	key := r.newKey(e.ID)
	if err := r.images.Put(ctx, key, e.Image); err != nil {
		return nil, fmt.Errorf("image upload: %w", err)
	}
	row.ImageKey = key
	return row, nil
}

// discard removes an object that no committed row references. A failure
// leaves an unreachable object behind, so it is not reported.
func (r *ImageOffloadingRepository) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	_ = r.images.Delete(ctx, key)
}

func (r *ImageOffloadingRepository) discardOnRollback(key string) {
	if key == "" || r.hooks == nil {
		return
	}
	r.hooks.OnRollback(func(ctx context.Context) { r.discard(ctx, key) })
}

func (r *ImageOffloadingRepository) discardOnCommit(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if r.hooks == nil {
		r.discard(ctx, key)
		return
	}
	r.hooks.OnCommit(func(ctx context.Context) { r.discard(ctx, key) })
}
