// Package xlsx writes a workbook summarizing a fused dataset.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vegarsti/fuse"
)

const (
	documentsSheet = "Documents"
	regionsSheet   = "Regions"

	// Excel refuses longer cell values.
	maxCellText = 32767
)

var (
	documentHeaders = []string{"Document", "Width", "Height", "Tokens", "Regions"}
	regionHeaders   = []string{"Document", "Order", "Label", "Left", "Top", "Right", "Bottom", "Text"}
)

// FromDocuments returns an XLSX workbook with one row per document on the
// Documents sheet and one row per region on the Regions sheet.
func FromDocuments(docs []*fuse.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), documentsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(regionsSheet); err != nil {
		return nil, err
	}
	index, _ := f.GetSheetIndex(documentsSheet)
	f.SetActiveSheet(index)

	if err := writeRow(f, documentsSheet, 1, documentHeaders); err != nil {
		return nil, err
	}
	if err := writeRow(f, regionsSheet, 1, regionHeaders); err != nil {
		return nil, err
	}

	regionRow := 2
	for i, doc := range docs {
		err := writeRow(f, documentsSheet, i+2, []any{
			doc.ImageFilename, doc.Width, doc.Height, doc.TokenCount, len(doc.Regions),
		})
		if err != nil {
			return nil, err
		}
		for j, r := range doc.Regions {
			err := writeRow(f, regionsSheet, regionRow, []any{
				doc.ImageFilename, j + 1, r.Label,
				r.Box.XLeft, r.Box.YTop, r.Box.XRight, r.Box.YBottom,
				truncate(r.Text, maxCellText),
			})
			if err != nil {
				return nil, err
			}
			regionRow++
		}
	}

	_ = f.SetColWidth(documentsSheet, "A", "A", 32)
	_ = f.SetColWidth(regionsSheet, "A", "A", 32)
	_ = f.SetColWidth(regionsSheet, "C", "C", 18)
	_ = f.SetColWidth(regionsSheet, "H", "H", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
