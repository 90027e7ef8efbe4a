package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/raaihank/deidentify/internal/batch"
	"github.com/raaihank/deidentify/internal/privacy"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary lists each processed document with its per-category counts
// and a totals row
func renderSummary(result *batch.RunResult) string {
	headers := []string{"Document", "Output"}
	aligns := []columnAlignment{alignLeft, alignLeft}
	for _, c := range privacy.Categories {
		headers = append(headers, string(c))
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "total")
	aligns = append(aligns, alignRight)

	rows := make([][]string, 0, len(result.Processed)+1)
	for _, fr := range result.Processed {
		counts := make(map[privacy.Category]int, len(fr.Findings))
		total := 0
		for _, f := range fr.Findings {
			counts[f.Category] = f.Count
			total += f.Count
		}

		output := filepath.Base(fr.Output)
		if !fr.Written {
			output += " (not written)"
		}
		row := []string{filepath.Base(fr.Input), output}
		for _, c := range privacy.Categories {
			row = append(row, strconv.Itoa(counts[c]))
		}
		rows = append(rows, append(row, strconv.Itoa(total)))
	}

	totals := []string{"TOTAL", ""}
	for _, c := range privacy.Categories {
		totals = append(totals, strconv.Itoa(result.Totals[c]))
	}
	rows = append(rows, append(totals, strconv.Itoa(result.Replacements())))

	return renderTable(headers, rows, aligns)
}

func summaryLine(result *batch.RunResult, dryRun bool) string {
	line := fmt.Sprintf("Processed %d file(s), %d failed, %d replacement(s) in %s",
		len(result.Processed),
		len(result.Failed),
		result.Replacements(),
		result.Duration.Round(time.Millisecond),
	)
	if dryRun {
		line += " (dry run, nothing written)"
	}
	return line
}
