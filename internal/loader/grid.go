package loader

import (
	"fmt"
	"strings"

	"wlrecon/pkg/contracts/domain"
)

// tableFromGrid builds a table from raw cell text. The first row with any
// non-blank cell is the header. Header cells that are blank get a
// positional name, and rows wider than the header extend it the same way.
func tableFromGrid(name string, grid [][]string) domain.Table {
	start := -1
	for i, row := range grid {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return domain.NewTable(name, nil)
	}

	width := 0
	for _, row := range grid[start:] {
		if len(row) > width {
			width = len(row)
		}
	}

	header := grid[start]
	columns := make([]string, width)
	for i := range columns {
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			columns[i] = header[i]
			continue
		}
		columns[i] = fmt.Sprintf("unnamed_%d", i)
	}

	body := grid[start+1:]
	for len(body) > 0 && blankRow(body[len(body)-1]) {
		body = body[:len(body)-1]
	}

	t := domain.NewTable(name, columns)
	t.Rows = make([][]domain.Value, 0, len(body))
	for _, raw := range body {
		row := make([]domain.Value, width)
		for i, cell := range raw {
			row[i] = domain.CellValue(cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
