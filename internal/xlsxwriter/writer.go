// =============================================================================
// DTB to X Converter - XLSX Writer Module
// =============================================================================
//
// This module writes converted rows to an Excel workbook with a single
// worksheet. Rows are streamed, so memory use does not grow with the number
// of players.
//
// WORKBOOK LAYOUT:
//   - One worksheet, named from config (default "DTB")
//   - Row 1: bold header labels
//   - Row 2 onward: one row per record, in document order
//   - The pane is frozen below the header (A2) unless disabled
//
// Every cell is written as a string. Registration numbers such as
// "000000001" keep their leading zeros; Excel would otherwise show 1.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/ginjaninja78/dtb2x/internal/dtb"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the worksheet every new excelize workbook starts with.
const defaultSheet = "Sheet1"

// columnWidth is the width applied to every data column.
const columnWidth = 18

// Writer is a converter.Sink producing an XLSX workbook.
type Writer struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
	sheet  string
	freeze bool
}

// New creates a Writer that saves the workbook to out on Close.
// The caller keeps ownership of out.
func New(out io.Writer, settings config.XLSXSettings) (*Writer, error) {
	sheet := settings.SheetName
	if sheet == "" {
		sheet = "DTB"
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name worksheet %q: %w", sheet, err)
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create worksheet writer: %w", err)
	}

	return &Writer{
		out:    out,
		file:   f,
		stream: stream,
		sheet:  sheet,
		freeze: settings.FreezeHeaderEnabled(),
	}, nil
}

// WriteHeader sets up the sheet layout and writes the header row.
// Pane and column settings must precede the first row in a stream.
func (w *Writer) WriteHeader(header []string) error {
	if w.freeze {
		err := w.stream.SetPanes(&excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
			Selection: []excelize.Selection{
				{SQRef: "A2", ActiveCell: "A2", Pane: "bottomLeft"},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to freeze header row: %w", err)
		}
	}

	if len(header) > 0 {
		if err := w.stream.SetColWidth(1, len(header), columnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	values := make([]interface{}, len(header))
	for i, label := range header {
		values[i] = excelize.Cell{StyleID: style, Value: label}
	}
	return w.writeRow(values)
}

// WriteRecord appends one row. Empty cells are left blank.
func (w *Writer) WriteRecord(_ dtb.Record, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		if cell != "" {
			values[i] = cell
		}
	}
	return w.writeRow(values)
}

func (w *Writer) writeRow(values []interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", w.row, err)
	}
	if err := w.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.row, err)
	}
	return nil
}

// Close finishes the worksheet and saves the workbook.
func (w *Writer) Close() error {
	defer w.file.Close()

	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to finish worksheet: %w", err)
	}
	if err := w.file.Write(w.out); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
