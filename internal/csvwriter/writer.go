// =============================================================================
// DTB to X Converter - CSV Writer Module
// =============================================================================
//
// This module writes converted rows as delimited text. It follows the Excel
// CSV dialect: fields containing the delimiter, a quote or a line break are
// quoted, and quotes are doubled.
//
// OUTPUT EXAMPLE (default ';' delimiter):
//   Název, Oddíl;Poznámka, Oddíl;Název, Družstvo;...
//   group_name;group_note;;;;;;;
//   group_name;group_note;team_name;team_note;;;;;
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/ginjaninja78/dtb2x/internal/dtb"
)

// Writer is a converter.Sink producing CSV.
type Writer struct {
	csv *csv.Writer
}

// New creates a Writer on w using the delimiter and line ending from settings.
// The caller keeps ownership of w.
func New(w io.Writer, settings config.CSVSettings) *Writer {
	csvWriter := csv.NewWriter(w)

	if r, _ := utf8.DecodeRuneInString(settings.Delimiter); r != utf8.RuneError {
		csvWriter.Comma = r
	} else {
		csvWriter.Comma = ';'
	}
	csvWriter.UseCRLF = settings.UseCRLF

	return &Writer{csv: csvWriter}
}

// WriteHeader writes the column labels.
func (w *Writer) WriteHeader(header []string) error {
	if err := w.csv.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return nil
}

// WriteRecord writes one row.
func (w *Writer) WriteRecord(_ dtb.Record, cells []string) error {
	if err := w.csv.Write(cells); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	return nil
}

// Close flushes buffered rows.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
