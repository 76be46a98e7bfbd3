package xlsxwriter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/ginjaninja78/dtb2x/internal/converter"
	"github.com/ginjaninja78/dtb2x/internal/dtb"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

var _ converter.Sink = (*Writer)(nil)

func convert(t *testing.T, input string, settings config.XLSXSettings) *excelize.File {
	t.Helper()

	var out bytes.Buffer
	w, err := New(&out, settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := converter.New().Run(context.Background(), strings.NewReader(input), w)
	if !result.Success {
		t.Fatalf("conversion failed: %v", result.Error)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// cells reads a rectangular block of cell values.
func cells(t *testing.T, f *excelize.File, sheet string, rows, cols int) [][]string {
	t.Helper()
	got := make([][]string, rows)
	for r := 0; r < rows; r++ {
		got[r] = make([]string, cols)
		for c := 0; c < cols; c++ {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if got[r][c], err = f.GetCellValue(sheet, name); err != nil {
				t.Fatalf("GetCellValue(%s): %v", name, err)
			}
		}
	}
	return got
}

func TestConvertToXLSX(t *testing.T) {
	input := "group_name - group_note\n" +
		"\tteam_name - team_note\n" +
		"\t\t000000001 - player_surname player_name, 01.01.1900 , player_note\n" +
		"- \n"

	f := convert(t, input, config.Default().XLSX)

	if diff := cmp.Diff([]string{"DTB"}, f.GetSheetList()); diff != "" {
		t.Errorf("sheet list mismatch (-want +got):\n%s", diff)
	}

	width := len(dtb.Header())
	want := [][]string{
		dtb.Header(),
		converter.PadRow([]string{"group_name", "group_note"}, width),
		converter.PadRow([]string{"group_name", "group_note", "team_name", "team_note"}, width),
		{"group_name", "group_note", "team_name", "team_note", "000000001", "player_name", "player_surname", "01.01.1900", "player_note"},
		converter.PadRow(nil, width),
	}
	if diff := cmp.Diff(want, cells(t, f, "DTB", len(want), width)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertToXLSX_FrozenHeader(t *testing.T) {
	f := convert(t, "g - n\n", config.Default().XLSX)

	panes, err := f.GetPanes("DTB")
	if err != nil {
		t.Fatalf("GetPanes: %v", err)
	}
	if !panes.Freeze || panes.TopLeftCell != "A2" || panes.YSplit != 1 {
		t.Errorf("expected header frozen at A2, got %+v", panes)
	}
}

func TestConvertToXLSX_Settings(t *testing.T) {
	freeze := false
	f := convert(t, "g - n\n", config.XLSXSettings{SheetName: "Soupiska", FreezeHeader: &freeze})

	if diff := cmp.Diff([]string{"Soupiska"}, f.GetSheetList()); diff != "" {
		t.Errorf("sheet list mismatch (-want +got):\n%s", diff)
	}

	panes, err := f.GetPanes("Soupiska")
	if err != nil {
		t.Fatalf("GetPanes: %v", err)
	}
	if panes.Freeze {
		t.Errorf("expected no frozen pane, got %+v", panes)
	}

	value, err := f.GetCellValue("Soupiska", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if value != "g" {
		t.Errorf("A2 = %q, want %q", value, "g")
	}
}

func TestNew_InvalidSheetName(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, config.XLSXSettings{SheetName: strings.Repeat("x", 40)}); err == nil {
		t.Errorf("expected an error for a sheet name longer than 31 characters")
	}
}
