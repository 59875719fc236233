package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/olekukonko/tablewriter"
)

var titleColor = color.New(color.FgCyan, color.Bold)

// RenderTable prints a coloured title, the rows as a bordered table and a
// row count
func RenderTable(w io.Writer, title string, rs analytics.ResultSet) {
	if title != "" {
		_, _ = titleColor.Fprintln(w, title)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(rs.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rs.Rows {
		table.Append(formatRow(row))
	}
	table.Render()

	_, _ = fmt.Fprintf(w, "(%d rows)\n", rs.Len())
}
