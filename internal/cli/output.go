package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/shelf/internal/inventory"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (use table, json or yaml)", s)
	}
}

func render(w io.Writer, f outputFormat, books []inventory.Book) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(books); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, books)
	}
}

func renderTable(w io.Writer, books []inventory.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tTITLE\tAUTHORS\tRATING")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\n", b.ISBN, truncate(b.Title, 45), truncate(b.Authors, 30), b.Rating, maxRating)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d book(s)\n", len(books))
	return err
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
