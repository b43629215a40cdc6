package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"notebook-console/internal/apiclient"
	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
	"notebook-console/internal/view"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const maxColWidth = 60

func printList(w io.Writer, m view.ListModel) {
	title := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprintln(w, title.Sprint(m.Plural))

	if m.Empty {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(w, f.Sprintf("No %s found", m.Plural))
		return
	}

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxColWidth
	tbl.Wrap = true

	header := []interface{}{bold.Sprint("ID")}
	for _, c := range m.Columns {
		header = append(header, bold.Sprint(c.Label))
	}
	tbl.AddRow(header...)

	for _, r := range m.Rows {
		row := []interface{}{r.ID}
		for _, c := range r.Cells {
			row = append(row, c.Text)
		}
		tbl.AddRow(row...)
	}

	_, _ = fmt.Fprintln(w, tbl)
}

func printDetail(w io.Writer, m view.DetailModel) {
	title := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprintln(w, title.Sprint(m.Title))

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = maxColWidth
	tbl.Wrap = true

	tbl.AddRow(bold.Sprint("ID"), m.ID)
	for _, f := range m.Fields {
		tbl.AddRow(bold.Sprint(f.Label), f.Value)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(w, tbl)
}

// printAlert reports a finished write. The API's alert is preferred; a
// plain confirmation stands in when it sent none.
func printAlert(w io.Writer, alert *apiclient.Alert, title, id string) {
	msg := view.AlertText(alert, title)
	if msg == "" {
		msg = fmt.Sprintf("%s %s saved", title, id)
	}
	_, _ = fmt.Fprintln(w, color.New(color.FgGreen).Sprint(msg))
}

func printFieldErrors[T domain.Entity](w io.Writer, res *resource.Resource[T], errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	red := color.New(color.FgRed)
	for _, name := range names {
		label := name
		if f, ok := res.Field(name); ok {
			label = f.Label
		}
		_, _ = fmt.Fprintln(w, red.Sprintf("%s: %s", label, errs[name]))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
