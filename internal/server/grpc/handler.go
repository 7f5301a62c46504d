package grpc

import (
	"context"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/rpc"
	"github.com/dmitrijs2005/simplog/internal/server/paging"
	"github.com/dmitrijs2005/simplog/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

// directoryHandler implements rpc.DirectoryServer on top of the services.
type directoryHandler struct {
	s *GRPCServer
}

func (h *directoryHandler) fail(ctx context.Context, err error) (*structpb.Struct, error) {
	return nil, toStatus(ctx, h.s.logger, err)
}

func (h *directoryHandler) reply(ctx context.Context, m map[string]any) (*structpb.Struct, error) {
	out, err := rpc.NewStruct(m)
	if err != nil {
		return h.fail(ctx, err)
	}
	return out, nil
}

func (h *directoryHandler) ListEmployees(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	items, err := h.s.employees.List(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"employees": rpc.EmployeeList(items)})
}

func (h *directoryHandler) PageEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := rpc.Int(req, "page", paging.DefaultPage)
	if err != nil {
		return h.fail(ctx, err)
	}
	size, err := rpc.Int(req, "pageSize", paging.DefaultSize)
	if err != nil {
		return h.fail(ctx, err)
	}

	p, err := h.s.employees.Page(ctx, page, size)
	if err != nil {
		return h.fail(ctx, err)
	}

	return h.reply(ctx, map[string]any{
		"page":       p.Page,
		"totalPages": p.TotalPages,
		"employees":  rpc.EmployeeList(p.Employees),
	})
}

func (h *directoryHandler) EmployeeTotals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	size, err := rpc.Int(req, "pageSize", paging.DefaultSize)
	if err != nil {
		return h.fail(ctx, err)
	}

	t, err := h.s.employees.Totals(ctx, size)
	if err != nil {
		return h.fail(ctx, err)
	}

	return h.reply(ctx, map[string]any{
		"totalEntries": t.TotalEntries,
		"totalPages":   t.TotalPages,
		"pageSize":     t.PageSize,
	})
}

func (h *directoryHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return h.fail(ctx, err)
	}

	e, err := h.s.employees.Get(ctx, id)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"employee": rpc.EmployeeFields(e)})
}

func (h *directoryHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	body, err := rpc.Struct(req, "employee")
	if err != nil {
		return h.fail(ctx, err)
	}
	candidate, err := rpc.EmployeeFromStruct(body)
	if err != nil {
		return h.fail(ctx, err)
	}

	e, err := h.s.employees.Create(ctx, candidate)
	if err != nil {
		return h.fail(ctx, err)
	}

	subject, _ := SubjectFromContext(ctx)
	h.s.logger.Info(ctx, "employee created via rpc", "id", e.ID, "by", subject)
	return h.reply(ctx, map[string]any{"employee": rpc.EmployeeFields(e)})
}

func (h *directoryHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return h.fail(ctx, err)
	}
	body, err := rpc.Struct(req, "employee")
	if err != nil {
		return h.fail(ctx, err)
	}
	candidate, err := rpc.EmployeeFromStruct(body)
	if err != nil {
		return h.fail(ctx, err)
	}

	outcome, err := h.s.employees.Update(ctx, id, candidate)
	if err != nil {
		return h.fail(ctx, err)
	}

	return h.reply(ctx, map[string]any{
		"status":  outcome.String(),
		"changed": outcome == services.OutcomeUpdated,
	})
}

func (h *directoryHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.String(req, "id")
	if err != nil {
		return h.fail(ctx, err)
	}

	e, err := h.s.employees.Delete(ctx, id)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"employee": rpc.EmployeeFields(e)})
}

func (h *directoryHandler) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := h.s.users.List(ctx)
	if err != nil {
		return h.fail(ctx, err)
	}

	out := make([]any, 0, len(list))
	for _, u := range list {
		out = append(out, map[string]any{"id": u.ID, "username": u.UserName})
	}
	return h.reply(ctx, map[string]any{"users": out})
}

func (h *directoryHandler) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(req, "id", 0)
	if err != nil {
		return h.fail(ctx, err)
	}
	if id <= 0 {
		return h.fail(ctx, common.NewError(common.ErrorValidation, "user id must be positive"))
	}

	u, err := h.s.users.Get(ctx, int64(id))
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"id": u.ID, "username": u.UserName})
}

func credentials(req *structpb.Struct) (string, string, error) {
	username, err := rpc.String(req, "username")
	if err != nil {
		return "", "", err
	}
	password, err := rpc.String(req, "password")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (h *directoryHandler) RegisterUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password, err := credentials(req)
	if err != nil {
		return h.fail(ctx, err)
	}

	h.s.logger.Info(ctx, "Registration request")

	id, err := h.s.users.Register(ctx, username, password)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"userId": id})
}

func (h *directoryHandler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password, err := credentials(req)
	if err != nil {
		return h.fail(ctx, err)
	}

	res, err := h.s.users.Login(ctx, username, password)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"userId": res.UserID, "token": res.Token})
}

func (h *directoryHandler) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username, password, err := credentials(req)
	if err != nil {
		return h.fail(ctx, err)
	}

	u, err := h.s.users.Delete(ctx, username, password)
	if err != nil {
		return h.fail(ctx, err)
	}
	return h.reply(ctx, map[string]any{"userId": u.ID, "username": u.UserName})
}
