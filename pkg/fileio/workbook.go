// pkg/fileio/workbook.go
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// MaxSheetNameLength is the longest sheet name a workbook accepts
const MaxSheetNameLength = 31

var sheetNameReplacer = strings.NewReplacer(
	"[", "_", "]", "_", "*", "_", "?", "_", ":", "_", `\`, "_", "/", "_",
)

// CleanSheetName replaces forbidden characters, truncates to 31 characters
// and falls back to Sheet1 when nothing is left
func CleanSheetName(name string) string {
	clean := sheetNameReplacer.Replace(name)
	if utf8Len(clean) > MaxSheetNameLength {
		clean = string([]rune(clean)[:MaxSheetNameLength])
	}
	if clean == "" {
		clean = "Sheet1"
	}
	return clean
}

// SheetNames cleans every name and resolves collisions, which workbooks
// treat case-insensitively, by replacing the tail with ~2, ~3 ...
func SheetNames(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]struct{}, len(names))
	for i, name := range names {
		candidate := CleanSheetName(name)
		for n := 2; ; n++ {
			if _, clash := taken[strings.ToLower(candidate)]; !clash {
				break
			}
			suffix := fmt.Sprintf("~%d", n)
			base := []rune(CleanSheetName(name))
			if keep := MaxSheetNameLength - utf8Len(suffix); len(base) > keep {
				base = base[:keep]
			}
			candidate = string(base) + suffix
		}
		out[i] = candidate
		taken[strings.ToLower(candidate)] = struct{}{}
	}
	return out
}

// WriteWorkbook writes one sheet per table: a header row then the values,
// with missing cells left empty. Parent directories are created.
func WriteWorkbook(c *model.Collection, path string) error {
	if c.Len() == 0 {
		return errors.New("no tables to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	names := c.Names()
	sheets := SheetNames(names)
	for i, name := range names {
		table, _ := c.Get(name)
		sheet := sheets[i]

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, table); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *model.Table) error {
	header := make([]interface{}, t.NumColumns())
	for j, name := range t.ColumnNames() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, t.NumColumns())
		for j, v := range t.Row(i) {
			row[j] = v.Interface()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func utf8Len(s string) int {
	return len([]rune(s))
}
