package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/simplog/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func call(t *testing.T, c *rpc.DirectoryClient, ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	msg, err := structpb.NewStruct(req)
	require.NoError(t, err)
	return c.Call(ctx, method, msg)
}

func login(t *testing.T, c *rpc.DirectoryClient, user, pass string) context.Context {
	t.Helper()
	ctx := context.Background()

	_, err := call(t, c, ctx, rpc.MethodRegisterUser, map[string]any{"username": user, "password": pass})
	require.NoError(t, err)

	resp, err := call(t, c, ctx, rpc.MethodLogin, map[string]any{"username": user, "password": pass})
	require.NoError(t, err)

	token := resp.GetFields()["token"].GetStringValue()
	require.NotEmpty(t, token)
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func employee(name, email string, code int) map[string]any {
	return map[string]any{"name": name, "email": email, "code": code, "taxCode": 100}
}

func TestDirectory_EmployeesRequireToken(t *testing.T) {
	c := startDirectory(t)

	_, err := call(t, c, context.Background(), rpc.MethodListEmployees, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err = call(t, c, bad, rpc.MethodListEmployees, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "INVALID_TOKEN", ErrorReason(err))
}

func TestDirectory_EmployeeLifecycle(t *testing.T) {
	c := startDirectory(t)
	ctx := login(t, c, "alice", "s3cret")

	resp, err := call(t, c, ctx, rpc.MethodCreateEmployee, map[string]any{"employee": employee("Ann", "ann@example.com", 7)})
	require.NoError(t, err)
	created := resp.GetFields()["employee"].GetStructValue()
	id := created.GetFields()["id"].GetStringValue()
	require.NotEmpty(t, id)
	assert.Equal(t, float64(7), created.GetFields()["code"].GetNumberValue())

	got, err := call(t, c, ctx, rpc.MethodGetEmployee, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.GetFields()["employee"].GetStructValue().GetFields()["email"].GetStringValue())

	// resubmitting the stored record changes nothing
	same := created.AsMap()
	upd, err := call(t, c, ctx, rpc.MethodUpdateEmployee, map[string]any{"id": id, "employee": same})
	require.NoError(t, err)
	assert.Equal(t, "Nothing has changed", upd.GetFields()["status"].GetStringValue())
	assert.False(t, upd.GetFields()["changed"].GetBoolValue())

	same["name"] = "Ann Smith"
	upd, err = call(t, c, ctx, rpc.MethodUpdateEmployee, map[string]any{"id": id, "employee": same})
	require.NoError(t, err)
	assert.True(t, upd.GetFields()["changed"].GetBoolValue())

	_, err = call(t, c, ctx, rpc.MethodDeleteEmployee, map[string]any{"id": id})
	require.NoError(t, err)

	_, err = call(t, c, ctx, rpc.MethodGetEmployee, map[string]any{"id": id})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDirectory_ConflictsAndMismatch(t *testing.T) {
	c := startDirectory(t)
	ctx := login(t, c, "alice", "s3cret")

	_, err := call(t, c, ctx, rpc.MethodCreateEmployee, map[string]any{"employee": employee("Ann", "ann@example.com", 7)})
	require.NoError(t, err)

	_, err = call(t, c, ctx, rpc.MethodCreateEmployee, map[string]any{"employee": employee("Bob", "ann@example.com", 7)})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.Equal(t, "Employee's email and code have already existed", st.Message())
	assert.Equal(t, "CONFLICT", ErrorReason(err))

	body := employee("Bob", "bob@example.com", 8)
	body["id"] = "11111111-1111-1111-1111-111111111111"
	_, err = call(t, c, ctx, rpc.MethodUpdateEmployee, map[string]any{"id": "22222222-2222-2222-2222-222222222222", "employee": body})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "IDENTITY_MISMATCH", ErrorReason(err))
}

func TestDirectory_Paging(t *testing.T) {
	c := startDirectory(t)
	ctx := login(t, c, "alice", "s3cret")

	for i := 0; i < 7; i++ {
		_, err := call(t, c, ctx, rpc.MethodCreateEmployee, map[string]any{
			"employee": employee("E", string(rune('a'+i))+"@example.com", i+1),
		})
		require.NoError(t, err)
	}

	resp, err := call(t, c, ctx, rpc.MethodPageEmployees, map[string]any{"page": 2})
	require.NoError(t, err)
	assert.Equal(t, float64(2), resp.GetFields()["totalPages"].GetNumberValue())
	assert.Len(t, resp.GetFields()["employees"].GetListValue().GetValues(), 2)

	totals, err := call(t, c, ctx, rpc.MethodEmployeeTotals, map[string]any{"pageSize": 3})
	require.NoError(t, err)
	assert.Equal(t, float64(7), totals.GetFields()["totalEntries"].GetNumberValue())
	assert.Equal(t, float64(3), totals.GetFields()["totalPages"].GetNumberValue())

	_, err = call(t, c, ctx, rpc.MethodPageEmployees, map[string]any{"page": 3})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "page number (3) exceeded totalPages (2)", st.Message())
}

func TestDirectory_Users(t *testing.T) {
	c := startDirectory(t)
	ctx := context.Background()
	login(t, c, "alice", "s3cret")

	_, err := call(t, c, ctx, rpc.MethodRegisterUser, map[string]any{"username": "alice", "password": "other"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	assert.Equal(t, "ALREADY_EXISTS", ErrorReason(err))

	_, err = call(t, c, ctx, rpc.MethodLogin, map[string]any{"username": "alice", "password": "wrong"})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "wrong username or password", st.Message())

	list, err := call(t, c, ctx, rpc.MethodListUsers, nil)
	require.NoError(t, err)
	users := list.GetFields()["users"].GetListValue().GetValues()
	require.Len(t, users, 1)
	id := users[0].GetStructValue().GetFields()["id"].GetNumberValue()

	u, err := call(t, c, ctx, rpc.MethodGetUser, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.GetFields()["username"].GetStringValue())

	_, err = call(t, c, ctx, rpc.MethodGetUser, map[string]any{"id": 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = call(t, c, ctx, rpc.MethodDeleteUser, map[string]any{"username": "alice", "password": "wrong"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	del, err := call(t, c, ctx, rpc.MethodDeleteUser, map[string]any{"username": "alice", "password": "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", del.GetFields()["username"].GetStringValue())
}

func TestDirectory_CredentialRateLimit(t *testing.T) {
	c := startDirectory(t, WithAuthRateLimit(2))
	ctx := context.Background()
	req := map[string]any{"username": "ghost", "password": "x"}

	for i := 0; i < 2; i++ {
		_, err := call(t, c, ctx, rpc.MethodLogin, req)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	}

	_, err := call(t, c, ctx, rpc.MethodLogin, req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestDirectory_HealthServing(t *testing.T) {
	conn := startBufconn(t, newTestServer())

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
