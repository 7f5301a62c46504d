// Package conflicts decides whether an employee create or update would break
// the email/code uniqueness invariant. It only reads through Lookup; the
// caller performs the write after a clean verdict.
package conflicts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/server/models"
)

// Lookup answers "does any stored employee have this value" per natural key.
type Lookup interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CodeExists(ctx context.Context, code int) (bool, error)
}

// Field is a bit set of natural keys.
type Field uint8

const (
	FieldEmail Field = 1 << iota
	FieldCode
)

func (f Field) Has(x Field) bool { return f&x != 0 }

func (f Field) Names() []string {
	var names []string
	if f.Has(FieldEmail) {
		names = append(names, "email")
	}
	if f.Has(FieldCode) {
		names = append(names, "code")
	}
	return names
}

// ConflictError names the natural keys that collided.
type ConflictError struct {
	Fields Field
}

func (e *ConflictError) Error() string {
	switch {
	case e.Fields.Has(FieldEmail) && e.Fields.Has(FieldCode):
		return "Employee's email and code have already existed"
	case e.Fields.Has(FieldEmail):
		return "Employee's email has already existed"
	case e.Fields.Has(FieldCode):
		return "Employee's code has already existed"
	default:
		return "Employee conflicts with an existing record"
	}
}

func (e *ConflictError) Unwrap() error {
	return common.ErrorConflict
}

// Result is the verdict for one candidate.
type Result struct {
	// Unchanged is set on update when the candidate equals the stored record.
	Unchanged bool
	// Fields holds the natural keys that collide with another record.
	Fields Field
}

// Err returns a *ConflictError when any field collided.
func (r Result) Err() error {
	if r.Fields == 0 {
		return nil
	}
	return &ConflictError{Fields: r.Fields}
}

// CheckCreate tests the candidate's email and code independently against
// every stored record.
func CheckCreate(ctx context.Context, lookup Lookup, candidate *models.Employee) (Result, error) {
	return check(ctx, lookup, candidate, true, true)
}

// CheckUpdate compares candidate with stored (same identity). An identical
// candidate short-circuits as Unchanged without touching the lookup. Otherwise
// a field is tested only when its value actually changed, so an untouched
// email is never blamed for a colliding code and vice versa.
func CheckUpdate(ctx context.Context, lookup Lookup, stored, candidate *models.Employee) (Result, error) {
	if Same(stored, candidate) {
		return Result{Unchanged: true}, nil
	}
	return check(ctx, lookup, candidate,
		stored.Email != candidate.Email,
		stored.Code != candidate.Code)
}

func check(ctx context.Context, lookup Lookup, candidate *models.Employee, email, code bool) (Result, error) {
	var r Result

	if email {
		taken, err := lookup.EmailExists(ctx, candidate.Email)
		if err != nil {
			return Result{}, fmt.Errorf("email lookup: %w", err)
		}
		if taken {
			r.Fields |= FieldEmail
		}
	}

	if code {
		taken, err := lookup.CodeExists(ctx, candidate.Code)
		if err != nil {
			return Result{}, fmt.Errorf("code lookup: %w", err)
		}
		if taken {
			r.Fields |= FieldCode
		}
	}

	return r, nil
}

// Same reports whether a and b carry the same identity and mutable fields.
func Same(a, b *models.Employee) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.Email == b.Email &&
		a.TaxCode == b.TaxCode &&
		a.Code == b.Code &&
		bytes.Equal(a.Image, b.Image)
}

// Apply copies the mutable fields of src onto dst. Identity and CreatedAt
// stay untouched.
func Apply(dst, src *models.Employee) {
	dst.Name = src.Name
	dst.Email = src.Email
	dst.Image = src.Image
	dst.TaxCode = src.TaxCode
	dst.Code = src.Code
}
