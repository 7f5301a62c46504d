package rpc

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func fieldError(key, want string) error {
	return common.NewError(common.ErrorValidation, fmt.Sprintf("field %q must be %s", key, want))
}

func lookup(s *structpb.Struct, key string) (*structpb.Value, bool) {
	v, ok := s.GetFields()[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

// String returns the string at key, or "" when absent.
func String(s *structpb.Struct, key string) (string, error) {
	v, ok := lookup(s, key)
	if !ok {
		return "", nil
	}
	sv, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", fieldError(key, "a string")
	}
	return sv.StringValue, nil
}

// Int returns the integral number at key, or def when absent.
func Int(s *structpb.Struct, key string, def int) (int, error) {
	v, ok := lookup(s, key)
	if !ok {
		return def, nil
	}
	nv, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return 0, fieldError(key, "a number")
	}
	n := nv.NumberValue
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fieldError(key, "a 32-bit integer")
	}
	return int(n), nil
}

// Struct returns the object at key, or nil when absent.
func Struct(s *structpb.Struct, key string) (*structpb.Struct, error) {
	v, ok := lookup(s, key)
	if !ok {
		return nil, nil
	}
	sv, isStruct := v.GetKind().(*structpb.Value_StructValue)
	if !isStruct {
		return nil, fieldError(key, "an object")
	}
	return sv.StructValue, nil
}

// EmployeeFields is the wire form of an employee. The image travels base64
// encoded.
func EmployeeFields(e *models.Employee) map[string]any {
	m := map[string]any{
		"id":      e.ID,
		"name":    e.Name,
		"email":   e.Email,
		"code":    e.Code,
		"taxCode": e.TaxCode,
	}
	if len(e.Image) > 0 {
		m["image"] = base64.StdEncoding.EncodeToString(e.Image)
	}
	if !e.CreatedAt.IsZero() {
		m["createdAt"] = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func EmployeeList(items []*models.Employee) []any {
	out := make([]any, 0, len(items))
	for _, e := range items {
		out = append(out, EmployeeFields(e))
	}
	return out
}

// EmployeeFromStruct decodes the wire form. createdAt is ignored when
// absent; the server never trusts it on input anyway.
func EmployeeFromStruct(s *structpb.Struct) (*models.Employee, error) {
	if s == nil {
		return nil, common.NewError(common.ErrorValidation, "employee is required")
	}

	var (
		e   models.Employee
		err error
	)
	if e.ID, err = String(s, "id"); err != nil {
		return nil, err
	}
	if e.Name, err = String(s, "name"); err != nil {
		return nil, err
	}
	if e.Email, err = String(s, "email"); err != nil {
		return nil, err
	}
	if e.Code, err = Int(s, "code", 0); err != nil {
		return nil, err
	}
	if e.TaxCode, err = Int(s, "taxCode", 0); err != nil {
		return nil, err
	}

	img, err := String(s, "image")
	if err != nil {
		return nil, err
	}
	if img != "" {
		if e.Image, err = base64.StdEncoding.DecodeString(img); err != nil {
			return nil, fieldError("image", "base64")
		}
	}

	created, err := String(s, "createdAt")
	if err != nil {
		return nil, err
	}
	if created != "" {
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fieldError("createdAt", "an RFC 3339 timestamp")
		}
	}

	return &e, nil
}

// NewStruct is structpb.NewStruct for values built by this package.
func NewStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}
