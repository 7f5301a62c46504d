// Package services holds the server's business operations. EmployeeService
// guards the email/code uniqueness of employee records and serves paged
// reads; UserService handles accounts, credential checks and token issuance.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/keylock"
	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/server/conflicts"
	"github.com/dmitrijs2005/simplog/internal/server/metrics"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/dmitrijs2005/simplog/internal/server/paging"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UpdateOutcome tells a successful update from a no-op one.
type UpdateOutcome int

const (
	OutcomeUpdated UpdateOutcome = iota
	OutcomeUnchanged
)

func (o UpdateOutcome) String() string {
	if o == OutcomeUnchanged {
		return "Nothing has changed"
	}
	return "updated"
}

// EmployeePage is one page of employees in (created_at, id) order.
type EmployeePage struct {
	Page       int
	TotalPages int
	Employees  []*models.Employee
}

type EmployeeTotals struct {
	TotalEntries int
	TotalPages   int
	PageSize     int
}

type EmployeeService struct {
	store   repomanager.RepositoryManager
	locks   *keylock.Locker
	log     logging.Logger
	metrics metrics.Recorder
	newID   func() string
}

func NewEmployeeService(store repomanager.RepositoryManager, locks *keylock.Locker, log logging.Logger, rec metrics.Recorder) *EmployeeService {
	if log == nil {
		log = logging.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &EmployeeService{
		store:   store,
		locks:   locks,
		log:     log.With("module", "employees"),
		metrics: rec,
		newID:   uuid.NewString,
	}
}

func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	return s.store.Employees().List(ctx)
}

// Page returns the requested page. A page number ≤ 0 means the first page.
func (s *EmployeeService) Page(ctx context.Context, page, size int) (*EmployeePage, error) {
	if size <= 0 {
		return nil, paging.ErrInvalidPageSize
	}

	repo := s.store.Employees()

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	p, err := paging.Paginate(total, size, page)
	if err != nil {
		return nil, err
	}

	items, err := repo.Window(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &EmployeePage{Page: p.Number, TotalPages: p.TotalPages, Employees: items}, nil
}

func (s *EmployeeService) Totals(ctx context.Context, size int) (*EmployeeTotals, error) {
	if size <= 0 {
		return nil, paging.ErrInvalidPageSize
	}

	total, err := s.store.Employees().Count(ctx)
	if err != nil {
		return nil, err
	}

	pages, err := paging.TotalPages(total, size)
	if err != nil {
		return nil, err
	}

	return &EmployeeTotals{TotalEntries: total, TotalPages: pages, PageSize: size}, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	e, err := s.store.Employees().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEmployeeNotFound)
	}
	return e, nil
}

// Create stores candidate under a freshly generated id. The candidate's own
// ID is ignored.
func (s *EmployeeService) Create(ctx context.Context, candidate *models.Employee) (*models.Employee, error) {
	if err := validateEmployee(candidate); err != nil {
		return nil, err
	}

	e := candidate.Clone()
	e.ID = s.newID()

	unlock := s.locks.Lock(emailKey(e.Email), codeKey(e.Code))
	defer unlock()

	var created *models.Employee
	err := s.store.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		repo := r.Employees()

		res, err := conflicts.CheckCreate(ctx, repo, e)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}

		created, err = repo.Create(ctx, e)
		return err
	})
	if err != nil {
		s.observeConflict(ctx, err)
		return nil, err
	}

	s.log.Info(ctx, "employee created", "id", created.ID, "code", created.Code)
	return created, nil
}

// Update replaces the mutable fields of employee id with those of candidate.
// candidate.ID must equal id. An identical candidate is reported as
// OutcomeUnchanged and nothing is written.
func (s *EmployeeService) Update(ctx context.Context, id string, candidate *models.Employee) (UpdateOutcome, error) {
	if id == "" {
		return 0, ErrEmployeeIDRequired
	}
	if candidate == nil || candidate.ID != id {
		return 0, ErrIdentityMismatch
	}
	if err := checkID(id); err != nil {
		return 0, err
	}
	if err := validateEmployee(candidate); err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(employeeKey(id), emailKey(candidate.Email), codeKey(candidate.Code))
	defer unlock()

	outcome := OutcomeUpdated
	err := s.store.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		repo := r.Employees()

		stored, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, ErrEmployeeNotFound)
		}

		res, err := conflicts.CheckUpdate(ctx, repo, stored, candidate)
		if err != nil {
			return err
		}
		if res.Unchanged {
			outcome = OutcomeUnchanged
			return nil
		}
		if err := res.Err(); err != nil {
			return err
		}

		conflicts.Apply(stored, candidate)
		return repo.Update(ctx, stored)
	})
	if err != nil {
		s.observeConflict(ctx, err)
		return 0, err
	}

	if outcome == OutcomeUpdated {
		s.log.Info(ctx, "employee updated", "id", id)
	}
	return outcome, nil
}

// Delete removes employee id and returns the record as it was.
func (s *EmployeeService) Delete(ctx context.Context, id string) (*models.Employee, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(employeeKey(id))
	defer unlock()

	var deleted *models.Employee
	err := s.store.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		repo := r.Employees()

		e, err := repo.Get(ctx, id)
		if err != nil {
			return notFound(err, ErrEmployeeNotFound)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFound(err, ErrEmployeeNotFound)
		}
		deleted = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "employee deleted", "id", id)
	return deleted, nil
}

func (s *EmployeeService) observeConflict(ctx context.Context, err error) {
	var ce *conflicts.ConflictError
	if errors.As(err, &ce) {
		s.metrics.RecordConflict(ce.Fields.Names())
		s.log.Debug(ctx, "employee write rejected", "fields", ce.Fields.Names())
	}
}

func validateEmployee(e *models.Employee) error {
	if e == nil {
		return common.NewError(common.ErrorValidation, "employee is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return required("name")
	}
	if strings.TrimSpace(e.Email) == "" {
		return required("email")
	}
	return nil
}

func checkID(id string) error {
	if id == "" {
		return ErrEmployeeIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidEmployeeID
	}
	return nil
}

// notFound swaps a bare common.ErrorNotFound for a descriptive one.
func notFound(err, replacement error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return replacement
	}
	return err
}

func emailKey(email string) string { return "email:" + email }
func codeKey(code int) string      { return "code:" + strconv.Itoa(code) }
func employeeKey(id string) string { return "employee:" + id }
