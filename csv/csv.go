// Package csv writes the regions of a fused document as CSV.
package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/vegarsti/fuse"
)

var header = []string{"label", "left", "top", "right", "bottom", "text"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FromDocument returns one row per region in reading order, after a header row.
func FromDocument(doc *fuse.Document) string {
	s := &bytes.Buffer{}
	writer := csv.NewWriter(s)
	writer.Write(header)
	for _, r := range doc.Regions {
		writer.Write([]string{
			r.Label,
			formatFloat(r.Box.XLeft),
			formatFloat(r.Box.YTop),
			formatFloat(r.Box.XRight),
			formatFloat(r.Box.YBottom),
			r.Text,
		})
	}
	writer.Flush()
	return s.String()
}
