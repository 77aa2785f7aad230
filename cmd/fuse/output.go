package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"

	"github.com/vegarsti/fuse"
)

// regionTable lays out doc's regions one per row, with line breaks in the
// text shown as ⏎ to keep each region on one line.
func regionTable(doc *fuse.Document) [][]string {
	table := [][]string{{"#", "LABEL", "BOX", "TEXT"}}
	for i, r := range doc.Regions {
		table = append(table, []string{
			fmt.Sprint(i + 1),
			r.Label,
			fmt.Sprintf("%.3f %.3f %.3f %.3f", r.Box.XLeft, r.Box.YTop, r.Box.XRight, r.Box.YBottom),
			strings.ReplaceAll(r.Text, "\n", " ⏎ "),
		})
	}
	return table
}

func writeTable(out io.Writer, table [][]string) {
	w := tabwriter.NewWriter(out, 4, 4, 2, ' ', tabwriter.Debug)
	for _, row := range table {
		for j, cell := range row {
			fmt.Fprint(w, cell)
			if j < len(row)-1 {
				fmt.Fprintf(w, "\t")
			}
		}
		fmt.Fprintf(w, "\n")
	}
	w.Flush()
}

func printYAML(out io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	_, err = out.Write(data)
	return err
}
