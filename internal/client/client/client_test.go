package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/simplog/internal/rpc"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

/*************
 * Fake invoker
 *************/

type fakeInvoker struct {
	lastMethod string
	lastReq    *structpb.Struct
	lastMD     metadata.MD

	resp map[string]any
	err  error
}

func (f *fakeInvoker) Call(ctx context.Context, method string, req *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastMethod = method
	f.lastReq = req
	f.lastMD, _ = metadata.FromOutgoingContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return structpb.NewStruct(f.resp)
}

func TestLogin_StoresTokenForLaterCalls(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"userId": 3, "token": "tok"}}
	c := New(f, "")

	res, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.UserID)
	assert.Equal(t, "tok", c.Token())
	assert.Equal(t, rpc.MethodLogin, f.lastMethod)
	assert.Empty(t, f.lastMD.Get("authorization"))

	f.resp = map[string]any{"employees": []any{}}
	_, err = c.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer tok"}, f.lastMD.Get("authorization"))
}

func TestPageEmployees_DecodesPage(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{
		"page":       2,
		"totalPages": 3,
		"employees": []any{
			map[string]any{"id": "a", "name": "Ann", "email": "ann@example.com", "code": 1, "taxCode": 9},
		},
	}}
	c := New(f, "tok")

	p, err := c.PageEmployees(context.Background(), Page(2), PageSize(5))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	require.Len(t, p.Employees, 1)
	assert.Equal(t, "Ann", p.Employees[0].Name)

	assert.Equal(t, float64(5), f.lastReq.GetFields()["pageSize"].GetNumberValue())
}

func TestPageEmployees_OmitsUnsetArguments(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"page": 1, "totalPages": 1, "employees": []any{}}}
	c := New(f, "tok")

	_, err := c.PageEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.lastReq.GetFields())

	_, err = c.PageEmployees(context.Background(), PageSize(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"pageSize"}, keys(f.lastReq))
}

func keys(s *structpb.Struct) []string {
	var out []string
	for k := range s.GetFields() {
		out = append(out, k)
	}
	return out
}

func TestEmployeeTotals(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"totalEntries": 12, "totalPages": 3, "pageSize": 5}}
	c := New(f, "tok")

	got, err := c.EmployeeTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &EmployeeTotals{TotalEntries: 12, TotalPages: 3, PageSize: 5}, got)
	assert.Equal(t, rpc.MethodEmployeeTotals, f.lastMethod)
	assert.Empty(t, f.lastReq.GetFields())
}

func TestCreateEmployee(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"employee": map[string]any{
		"id": "new-id", "name": "Ann", "email": "ann@example.com", "code": 7, "taxCode": 9,
	}}}
	c := New(f, "tok")

	got, err := c.CreateEmployee(context.Background(), &models.Employee{Name: "Ann", Email: "ann@example.com", Code: 7, TaxCode: 9})
	require.NoError(t, err)
	assert.Equal(t, "new-id", got.ID)
	assert.Equal(t, rpc.MethodCreateEmployee, f.lastMethod)

	sent := f.lastReq.GetFields()["employee"].GetStructValue().GetFields()
	assert.Equal(t, "ann@example.com", sent["email"].GetStringValue())
	assert.Equal(t, float64(7), sent["code"].GetNumberValue())
	assert.Equal(t, []string{"Bearer tok"}, f.lastMD.Get("authorization"))
}

func TestDeleteEmployee(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"employee": map[string]any{"id": "a", "name": "Ann", "email": "ann@example.com", "code": 1}}}
	c := New(f, "tok")

	got, err := c.DeleteEmployee(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, rpc.MethodDeleteEmployee, f.lastMethod)
	assert.Equal(t, "a", f.lastReq.GetFields()["id"].GetStringValue())

	f.err = status.Error(codes.NotFound, "Employee not found")
	_, err = c.DeleteEmployee(context.Background(), "a")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, codes.NotFound, re.Code)
}

func TestUpdateEmployee_Result(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"status": "Nothing has changed", "changed": false}}
	c := New(f, "tok")

	res, err := c.UpdateEmployee(context.Background(), "a", &models.Employee{ID: "a", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Nothing has changed", res.Status)
	assert.False(t, res.Changed)
	assert.Equal(t, "a", f.lastReq.GetFields()["employee"].GetStructValue().GetFields()["id"].GetStringValue())
}

func TestUsers(t *testing.T) {
	f := &fakeInvoker{resp: map[string]any{"users": []any{
		map[string]any{"id": 1, "username": "alice"},
		map[string]any{"id": 2, "username": "bob"},
	}}}
	c := New(f, "")

	list, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.UserSummary{{ID: 1, UserName: "alice"}, {ID: 2, UserName: "bob"}}, list)

	f.resp = map[string]any{"userId": 1, "username": "alice"}
	del, err := c.DeleteUser(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, &models.UserSummary{ID: 1, UserName: "alice"}, del)
	assert.Equal(t, rpc.MethodDeleteUser, f.lastMethod)
}

func TestGetEmployee_MissingBody(t *testing.T) {
	c := New(&fakeInvoker{resp: map[string]any{}}, "tok")
	_, err := c.GetEmployee(context.Background(), "a")
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	conflict, _ := status.New(codes.AlreadyExists, "Employee's code has already existed").
		WithDetails(&errdetails.ErrorInfo{Reason: "CONFLICT", Domain: "simplog"})

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "missing token"), ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"rate limited", status.Error(codes.ResourceExhausted, "slow"), ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	err := mapError(conflict.Err())
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, codes.AlreadyExists, re.Code)
	assert.Equal(t, "CONFLICT", re.Reason)
	assert.Equal(t, "Employee's code has already existed", err.Error())

	assert.NoError(t, mapError(nil))
}
