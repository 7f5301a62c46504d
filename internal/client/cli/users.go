package cli

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/spf13/cobra"
)

func (a *App) registerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userName, password, err := a.credentials()
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			id, err := a.api.Register(cmd.Context(), userName, string(password))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s (id %d)\n", userName, id)
			return nil
		},
	}
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userName, password, err := a.credentials()
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			res, err := a.api.Login(cmd.Context(), userName, string(password))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (id %d)\n", userName, res.UserID)
			fmt.Fprintf(a.out, "export SIMPLOG_TOKEN=%s\n", res.Token)
			return nil
		},
	}
}

func (a *App) deleteUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user",
		Short: "Delete an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userName, password, err := a.credentials()
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			u, err := a.api.DeleteUser(cmd.Context(), userName, string(password))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s (id %d)\n", u.UserName, u.ID)
			return nil
		},
	}
}

func (a *App) usersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.api.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			printUsers(a.out, list)
			return nil
		},
	}
}

func (a *App) userCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("user id: %w", err)
			}
			u, err := a.api.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			printUsers(a.out, []models.UserSummary{*u})
			return nil
		},
	}
}
