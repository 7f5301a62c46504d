// Package rpc defines the simplog.v1.Directory gRPC contract shared by the
// server and the client. Messages are google.protobuf.Struct values, so the
// service needs no generated code; this file plays the role protoc-gen-go-grpc
// output would.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "simplog.v1.Directory"

// Method names.
const (
	MethodListEmployees  = "ListEmployees"
	MethodPageEmployees  = "PageEmployees"
	MethodEmployeeTotals = "EmployeeTotals"
	MethodGetEmployee    = "GetEmployee"
	MethodCreateEmployee = "CreateEmployee"
	MethodUpdateEmployee = "UpdateEmployee"
	MethodDeleteEmployee = "DeleteEmployee"

	MethodListUsers    = "ListUsers"
	MethodGetUser      = "GetUser"
	MethodRegisterUser = "RegisterUser"
	MethodLogin        = "Login"
	MethodDeleteUser   = "DeleteUser"
)

// FullMethod returns "/simplog.v1.Directory/<name>".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// DirectoryServer is implemented by the server transport.
type DirectoryServer interface {
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PageEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EmployeeTotals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DirectoryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DirectoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DirectoryServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes simplog.v1.Directory for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodListEmployees, DirectoryServer.ListEmployees),
		method(MethodPageEmployees, DirectoryServer.PageEmployees),
		method(MethodEmployeeTotals, DirectoryServer.EmployeeTotals),
		method(MethodGetEmployee, DirectoryServer.GetEmployee),
		method(MethodCreateEmployee, DirectoryServer.CreateEmployee),
		method(MethodUpdateEmployee, DirectoryServer.UpdateEmployee),
		method(MethodDeleteEmployee, DirectoryServer.DeleteEmployee),
		method(MethodListUsers, DirectoryServer.ListUsers),
		method(MethodGetUser, DirectoryServer.GetUser),
		method(MethodRegisterUser, DirectoryServer.RegisterUser),
		method(MethodLogin, DirectoryServer.Login),
		method(MethodDeleteUser, DirectoryServer.DeleteUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "simplog/v1/directory",
}

func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DirectoryClient calls the Directory service by method name.
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

// Call invokes method with req (nil sends an empty struct).
func (c *DirectoryClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
