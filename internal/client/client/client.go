// Package client is a typed wrapper over the simplog.v1.Directory gRPC
// service. It attaches the bearer token to every call and converts status
// errors into the errors declared in this package.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/rpc"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Invoker sends one request; *rpc.DirectoryClient implements it.
type Invoker interface {
	Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	api     Invoker
	token   string
	timeout time.Duration
}

type LoginResult struct {
	UserID int64
	Token  string
}

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

// UpdateResult carries the server's outcome text ("updated" or
// "Nothing has changed").
type UpdateResult struct {
	Status  string
	Changed bool
}

// Dial connects to the server at addr. The connection is lazy; the first
// call fails if the server is unreachable. A positive timeout bounds each
// call.
func Dial(addr, token string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{token: token, timeout: timeout}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = rpc.NewDirectoryClient(conn)
	return c, nil
}

// New wraps an existing invoker; the caller owns its connection.
func New(api Invoker, token string) *GRPCClient {
	return &GRPCClient{api: api, token: token}
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) Token() string { return c.token }

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	msg, err := rpc.NewStruct(req)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		ctx = withAccessToken(ctx, c.token)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.Call(ctx, method, msg)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) Register(ctx context.Context, username, password string) (int64, error) {
	resp, err := c.call(ctx, rpc.MethodRegisterUser, map[string]any{"username": username, "password": password})
	if err != nil {
		return 0, err
	}
	id, err := rpc.Int(resp, "userId", 0)
	return int64(id), err
}

// Login authenticates and keeps the issued token for later calls.
func (c *GRPCClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	resp, err := c.call(ctx, rpc.MethodLogin, map[string]any{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	id, err := rpc.Int(resp, "userId", 0)
	if err != nil {
		return nil, err
	}
	token, err := rpc.String(resp, "token")
	if err != nil {
		return nil, err
	}
	c.token = token
	return &LoginResult{UserID: int64(id), Token: token}, nil
}

func (c *GRPCClient) DeleteUser(ctx context.Context, username, password string) (*models.UserSummary, error) {
	resp, err := c.call(ctx, rpc.MethodDeleteUser, map[string]any{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	id, err := rpc.Int(resp, "userId", 0)
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{ID: int64(id), UserName: resp.GetFields()["username"].GetStringValue()}, nil
}

func (c *GRPCClient) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	resp, err := c.call(ctx, rpc.MethodListUsers, nil)
	if err != nil {
		return nil, err
	}
	values := resp.GetFields()["users"].GetListValue().GetValues()
	out := make([]models.UserSummary, 0, len(values))
	for _, v := range values {
		u, err := userFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (c *GRPCClient) GetUser(ctx context.Context, id int64) (*models.UserSummary, error) {
	resp, err := c.call(ctx, rpc.MethodGetUser, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return userFromStruct(resp)
}

func (c *GRPCClient) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	resp, err := c.call(ctx, rpc.MethodListEmployees, nil)
	if err != nil {
		return nil, err
	}
	return employeeList(resp)
}

// PageOption sets one paging argument of a request. Arguments left unset are
// filled in by the server.
type PageOption func(req map[string]any)

// Page selects the page number.
func Page(n int) PageOption {
	return func(req map[string]any) { req["page"] = n }
}

// PageSize selects the number of employees per page.
func PageSize(n int) PageOption {
	return func(req map[string]any) { req["pageSize"] = n }
}

func pageRequest(opts []PageOption) map[string]any {
	req := map[string]any{}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

func (c *GRPCClient) PageEmployees(ctx context.Context, opts ...PageOption) (*EmployeePage, error) {
	resp, err := c.call(ctx, rpc.MethodPageEmployees, pageRequest(opts))
	if err != nil {
		return nil, err
	}
	p := &EmployeePage{}
	if p.Page, err = rpc.Int(resp, "page", 0); err != nil {
		return nil, err
	}
	if p.TotalPages, err = rpc.Int(resp, "totalPages", 0); err != nil {
		return nil, err
	}
	if p.Employees, err = employeeList(resp); err != nil {
		return nil, err
	}
	return p, nil
}

// EmployeeTotals reports the record count and the number of pages for the
// page size set with PageSize. Page is ignored.
func (c *GRPCClient) EmployeeTotals(ctx context.Context, opts ...PageOption) (*EmployeeTotals, error) {
	resp, err := c.call(ctx, rpc.MethodEmployeeTotals, pageRequest(opts))
	if err != nil {
		return nil, err
	}
	t := &EmployeeTotals{}
	if t.TotalEntries, err = rpc.Int(resp, "totalEntries", 0); err != nil {
		return nil, err
	}
	if t.TotalPages, err = rpc.Int(resp, "totalPages", 0); err != nil {
		return nil, err
	}
	if t.PageSize, err = rpc.Int(resp, "pageSize", 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *GRPCClient) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	resp, err := c.call(ctx, rpc.MethodGetEmployee, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return employeeField(resp)
}

func (c *GRPCClient) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	resp, err := c.call(ctx, rpc.MethodCreateEmployee, map[string]any{"employee": rpc.EmployeeFields(e)})
	if err != nil {
		return nil, err
	}
	return employeeField(resp)
}

func (c *GRPCClient) UpdateEmployee(ctx context.Context, id string, e *models.Employee) (*UpdateResult, error) {
	resp, err := c.call(ctx, rpc.MethodUpdateEmployee, map[string]any{"id": id, "employee": rpc.EmployeeFields(e)})
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		Status:  resp.GetFields()["status"].GetStringValue(),
		Changed: resp.GetFields()["changed"].GetBoolValue(),
	}, nil
}

func (c *GRPCClient) DeleteEmployee(ctx context.Context, id string) (*models.Employee, error) {
	resp, err := c.call(ctx, rpc.MethodDeleteEmployee, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return employeeField(resp)
}

func userFromStruct(s *structpb.Struct) (*models.UserSummary, error) {
	id, err := rpc.Int(s, "id", 0)
	if err != nil {
		return nil, err
	}
	name, err := rpc.String(s, "username")
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{ID: int64(id), UserName: name}, nil
}

func employeeField(resp *structpb.Struct) (*models.Employee, error) {
	body, err := rpc.Struct(resp, "employee")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("malformed response: employee missing")
	}
	return rpc.EmployeeFromStruct(body)
}

func employeeList(resp *structpb.Struct) ([]*models.Employee, error) {
	values := resp.GetFields()["employees"].GetListValue().GetValues()
	out := make([]*models.Employee, 0, len(values))
	for _, v := range values {
		e, err := rpc.EmployeeFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
