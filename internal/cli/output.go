package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wlrecon/pkg/contracts/domain"
)

// tableData is a titled block of text output
type tableData struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTables(w io.Writer, tables ...tableData) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if t.Title != "" {
			fmt.Fprintln(w, t.Title)
		}
		if err := writeTable(w, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, data tableData) error {
	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))

	headers := make([]any, len(data.Headers))
	for i, h := range data.Headers {
		headers[i] = h
	}
	table.Header(headers...)

	for _, row := range data.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// statisticsTable lists the run statistics
func statisticsTable(s domain.Statistics) tableData {
	data := tableData{Title: "Summary", Headers: []string{"Metric", "Value"}}
	for _, line := range s.Lines() {
		data.Rows = append(data.Rows, []string{line.Metric, line.Value})
	}
	return data
}

// domainTable renders up to limit rows of t; limit <= 0 renders all rows
func domainTable(title string, t domain.Table, limit int) tableData {
	data := tableData{Title: title, Headers: t.Columns}
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		data.Title = fmt.Sprintf("%s (first %d of %d)", title, limit, t.Len())
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

var titleCaser = cases.Title(language.English)

// statusLabel prints a check or file status in title case
func statusLabel(s string) string {
	return titleCaser.String(s)
}
