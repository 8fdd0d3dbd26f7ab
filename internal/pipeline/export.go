package pipeline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"shotlist/internal"
)

const setsSheet = "Sets"

// ExportXLSX writes the shot table to the first sheet of a workbook. When
// sets is non-empty a "Sets" sheet lists each master set.
func ExportXLSX(shots []*internal.NormalizedShot, sets map[string]*internal.MasterSet, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Shots"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	header := Header(shots)
	writeSheetRow(f, sheet, 1, header)
	for i, row := range Rows(header, shots) {
		writeSheetRow(f, sheet, i+2, row)
	}
	if len(header) > 0 {
		_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: false, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	if len(sets) > 0 {
		if _, err := f.NewSheet(setsSheet); err != nil {
			return err
		}
		writeSheetRow(f, setsSheet, 1, []string{"main_set", "times_of_day", "all_dressing_items", "shot_indices"})
		for i, name := range SortedSetNames(sets) {
			h := Hierarchy(sets[name])
			indices := make([]string, 0, len(h.ShotIndices))
			for _, idx := range h.ShotIndices {
				indices = append(indices, strconv.Itoa(idx))
			}
			writeSheetRow(f, setsSheet, i+2, []string{
				h.MainSet,
				strings.Join(h.TimesOfDay, ", "),
				strings.Join(h.AllDressingItems, ", "),
				strings.Join(indices, ", "),
			})
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeSheetRow(f *excelize.File, sheet string, r int, values []string) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, r)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// WriteCSV stores the assembled table, creating parent directories.
func WriteCSV(shots []*internal.NormalizedShot, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(AssembleCSV(shots)), 0o644)
}
