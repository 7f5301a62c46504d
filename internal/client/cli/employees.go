package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/simplog/internal/client/client"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/spf13/cobra"
)

// readFile loads --image files; tests replace it.
var readFile = os.ReadFile

func atoiArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return n, nil
}

func (a *App) employeesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "employees [page [size]]",
		Short: "Show a page of employees",
		Long:  "Show a page of employees. Omitted arguments are chosen by the server.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []client.PageOption
			if len(args) > 0 {
				n, err := atoiArg("page", args[0])
				if err != nil {
					return err
				}
				opts = append(opts, client.Page(n))
			}
			if len(args) > 1 {
				n, err := atoiArg("size", args[1])
				if err != nil {
					return err
				}
				opts = append(opts, client.PageSize(n))
			}

			p, err := a.api.PageEmployees(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			printEmployees(a.out, p.Employees)
			fmt.Fprintf(a.out, "page %d of %d\n", p.Page, p.TotalPages)
			return nil
		},
	}
}

func (a *App) totalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "totals [size]",
		Short: "Count employees and pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []client.PageOption
			if len(args) == 1 {
				n, err := atoiArg("size", args[0])
				if err != nil {
					return err
				}
				opts = append(opts, client.PageSize(n))
			}

			t, err := a.api.EmployeeTotals(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d employees, %d pages of %d\n", t.TotalEntries, t.TotalPages, t.PageSize)
			return nil
		},
	}
}

func (a *App) employeeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee <id>",
		Short: "Show one employee, or manage employees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.api.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEmployee(a.out, e)
			return nil
		},
	}
	cmd.AddCommand(
		a.employeeCreateCommand(),
		a.employeeUpdateCommand(),
		a.employeeDeleteCommand(),
	)
	return cmd
}

// employeeFlags are the editable fields of an employee. Only flags given on
// the command line are applied.
type employeeFlags struct {
	name       string
	email      string
	code       int
	taxCode    int
	image      string
	clearImage bool
}

var errImageFlags = errors.New("--image and --clear-image are mutually exclusive")

func (f *employeeFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "full name")
	fs.StringVar(&f.email, "email", "", "email address, unique")
	fs.IntVar(&f.code, "code", 0, "employee code, unique")
	fs.IntVar(&f.taxCode, "tax-code", 0, "tax code")
	fs.StringVar(&f.image, "image", "", "path of an image file")
	fs.BoolVar(&f.clearImage, "clear-image", false, "remove the stored image")
}

func (f *employeeFlags) apply(cmd *cobra.Command, e *models.Employee) error {
	changed := cmd.Flags().Changed

	if changed("name") {
		e.Name = f.name
	}
	if changed("email") {
		e.Email = f.email
	}
	if changed("code") {
		e.Code = f.code
	}
	if changed("tax-code") {
		e.TaxCode = f.taxCode
	}

	switch {
	case changed("image") && f.clearImage:
		return errImageFlags
	case changed("image"):
		data, err := readFile(f.image)
		if err != nil {
			return fmt.Errorf("image: %w", err)
		}
		e.Image = data
	case f.clearImage:
		e.Image = nil
	}
	return nil
}

func (a *App) employeeCreateCommand() *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "create --name N --email E --code C [--tax-code T] [--image file]",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := &models.Employee{}
			if err := f.apply(cmd, e); err != nil {
				return err
			}

			created, err := a.api.CreateEmployee(cmd.Context(), e)
			if err != nil {
				return err
			}
			printEmployee(a.out, created)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

// employeeUpdateCommand loads the employee, applies the given flags and sends
// the whole record back, since an update replaces every editable field.
func (a *App) employeeUpdateCommand() *cobra.Command {
	var f employeeFlags
	cmd := &cobra.Command{
		Use:   "update <id> [--name N] [--email E] [--code C] [--tax-code T] [--image file | --clear-image]",
		Short: "Change an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.api.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, e); err != nil {
				return err
			}

			res, err := a.api.UpdateEmployee(cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res.Status)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *App) employeeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.api.DeleteEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s (%s)\n", e.Name, e.ID)
			return nil
		},
	}
}
