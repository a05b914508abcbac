package ioreport

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Render prints a table with one line per manifest entry followed by the
// totals of the run.
func Render(w io.Writer, m *Manifest) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Table", "Format", "Rows", "Status", "Notes"})
	tw.SetBorder(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	var rows int
	for _, e := range m.Tables {
		if e.Status == Written || e.Status == Fallback {
			rows += e.Rows
		}
		tw.Append([]string{
			e.Table,
			e.Format,
			humanize.Comma(int64(e.Rows)),
			statusString(e.Status),
			notes(e),
		})
	}
	tw.Render()

	fmt.Fprintf(w, "\n%s tables, %s rows written in %s\n",
		humanize.Comma(int64(m.Count(Written)+m.Count(Fallback))),
		humanize.Comma(int64(rows)),
		m.Duration,
	)
}

func statusString(s Status) string {
	switch s {
	case Written:
		return color.GreenString(string(s))
	case Fallback:
		return color.YellowString(string(s))
	case Failed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

func notes(e *Entry) string {
	var res []string
	if len(e.Missing) > 0 {
		res = append(res, "missing: "+strings.Join(e.Missing, ","))
	}
	res = append(res, e.Notes...)
	return strings.Join(res, "; ")
}
