package commands

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.yaml.in/yaml/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RenderSummaryTable renders a table of results.
// In quiet mode, headers are omitted and rows are tab-separated for piping.
func RenderSummaryTable(w io.Writer, headers []string, rows [][]string, quiet bool) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		for i, cell := range cells {
			switch {
			case quiet && i > 0:
				Writef(w, "\t%s", cell)
			case quiet:
				Writef(w, "%s", cell)
			case i == len(cells)-1:
				// no padding on the last column
				Writef(w, "%s%s", sep(i), cell)
			default:
				Writef(w, "%s%-*s", sep(i), widths[i], cell)
			}
		}
		Writef(w, "\n")
	}

	if !quiet {
		writeRow(headers)
	}
	for _, row := range rows {
		writeRow(row)
	}
}

func sep(i int) string {
	if i == 0 {
		return ""
	}
	return "  "
}

// RenderDetail renders node as JSON or YAML.
func RenderDetail(w io.Writer, node any, format string) error {
	var data []byte
	var err error

	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(node, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(node)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	if _, err := fmt.Fprintln(w, strings.TrimRight(string(data), "\n")); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
