package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/matzehuels/photobook/pkg/book"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders rows as a rounded table. Short rows are padded.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// pageTable renders one row per page of b.
func pageTable(b *book.Book) string {
	headers := []string{"Page", "Template", "Photos", "Placed", "Score", "Notes"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(b.Pages))
	for _, p := range b.Pages {
		var notes []string
		if p.Fallback {
			notes = append(notes, "fallback")
		}
		if p.Override {
			notes = append(notes, "override")
		}
		if len(p.Unplaced) > 0 {
			notes = append(notes, fmt.Sprintf("%d unplaced", len(p.Unplaced)))
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Number),
			p.TemplateID,
			strconv.Itoa(len(p.Photos)),
			strconv.Itoa(len(p.Items)),
			strconv.FormatFloat(p.Score, 'f', 3, 64),
			strings.Join(notes, ", "),
		})
	}
	return renderTable(headers, rows, aligns)
}
