// pkg/fileio/text.go
package fileio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// WriteCSV writes a table as a delimited file with a header row
func WriteCSV(t *model.Table, path, delimiter string) error {
	if delimiter == "" {
		delimiter = ","
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma, _ = utf8.DecodeRuneInString(delimiter)
	if err := w.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(t.StringRows()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return file.Close()
}

// SaveText writes report or log text as UTF-8, creating parent directories
func SaveText(text, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
