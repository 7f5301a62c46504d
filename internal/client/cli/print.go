package cli

import (
	"io"
	"time"

	"github.com/dmitrijs2005/simplog/internal/server/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func printUsers(w io.Writer, list []models.UserSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Username"})
	for _, u := range list {
		t.AppendRow(table.Row{u.ID, u.UserName})
	}
	t.Render()
}

func printEmployees(w io.Writer, list []*models.Employee) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Email", "Code", "Tax code"})
	for _, e := range list {
		t.AppendRow(table.Row{e.ID, e.Name, e.Email, e.Code, e.TaxCode})
	}
	t.Render()
}

func printEmployee(w io.Writer, e *models.Employee) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"ID", e.ID},
		{"Name", e.Name},
		{"Email", e.Email},
		{"Code", e.Code},
		{"Tax code", e.TaxCode},
	})
	if len(e.Image) > 0 {
		t.AppendRow(table.Row{"Image", len(e.Image)})
	}
	if !e.CreatedAt.IsZero() {
		t.AppendRow(table.Row{"Created", e.CreatedAt.Format(time.RFC3339)})
	}
	t.Render()
}
