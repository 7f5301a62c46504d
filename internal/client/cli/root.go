// Package cli implements the simplog command-line client.
//
//	simplog-cli [-a addr] [-t token] [--timeout 10s] [-c cli.json] <command> [args]
//
// Commands:
//
//	register                 create an account (prompts for credentials)
//	login                    print a bearer token for employee commands
//	users                    list user ids and names
//	user <id>                show one user
//	employees [page [size]]  show a page of employees
//	totals [size]            count employees and pages
//	employee <id>            show one employee
//	employee create          create an employee from --name, --email, --code, ...
//	employee update <id>     change the fields given as flags
//	employee delete <id>     delete an employee
//	delete-user              delete an account (prompts for credentials)
//
// Employee commands need a token from login, passed with -t or SIMPLOG_TOKEN.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/simplog/internal/client/client"
	"github.com/dmitrijs2005/simplog/internal/client/config"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/spf13/cobra"
)

// API is the part of client.GRPCClient the commands use.
type API interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*client.LoginResult, error)
	DeleteUser(ctx context.Context, username, password string) (*models.UserSummary, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	GetUser(ctx context.Context, id int64) (*models.UserSummary, error)
	PageEmployees(ctx context.Context, opts ...client.PageOption) (*client.EmployeePage, error)
	EmployeeTotals(ctx context.Context, opts ...client.PageOption) (*client.EmployeeTotals, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, id string, e *models.Employee) (*client.UpdateResult, error)
	DeleteEmployee(ctx context.Context, id string) (*models.Employee, error)
}

// Dialer connects to the server described by cfg. It runs after flags are
// parsed, so cfg holds the final settings.
type Dialer func(cfg *config.Config) (API, error)

type App struct {
	api    API
	reader *bufio.Reader
	out    io.Writer
}

// NewRootCommand builds the command tree. Flags are bound to cfg, whose
// current values (defaults, environment, JSON) become the flag defaults.
func NewRootCommand(cfg *config.Config, dial Dialer, in io.Reader, out io.Writer) *cobra.Command {
	a := &App{reader: bufio.NewReader(in), out: out}

	root := &cobra.Command{
		Use:           "simplog-cli",
		Short:         "Client for the simplog employee directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if dial == nil {
				return errors.New("no dialer configured")
			}
			api, err := dial(cfg)
			if err != nil {
				return err
			}
			a.api = api
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.ServerEndpointAddr, "addr", "a", cfg.ServerEndpointAddr, "address and port of the server")
	pf.StringVarP(&cfg.Token, "token", "t", cfg.Token, "bearer token (or "+config.EnvToken+")")
	pf.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	// read by config.Load before the command tree is built
	pf.StringP("config", "c", "", "JSON config file")

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.deleteUserCommand(),
		a.usersCommand(),
		a.userCommand(),
		a.employeesCommand(),
		a.totalsCommand(),
		a.employeeCommand(),
	)
	return root
}
