package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mpapenbr/racelog-report/pkg/racelog"
)

const SheetName = "Report"

var xlsxHeader = []string{"Pos", "Code", "Driver", "Team", "Time"}

// XLSX writes the report as a single sheet workbook. Qualifying rows get a
// green background.
func XLSX(w io.Writer, r *racelog.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1c399e"}},
		Font: &excelize.Font{Bold: true, Color: "ffffff"},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return err
	}
	qualifiedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"3cb03a"}},
	})
	if err != nil {
		return err
	}

	for i, h := range xlsxHeader {
		if err := setCell(f, i+1, 1, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", headerStyle); err != nil {
		return err
	}

	for i := range r.Records {
		rec := &r.Records[i]
		row := i + 2
		values := []any{rec.Rank, rec.Code, rec.DriverName, rec.Team, rec.FormattedDuration()}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
		if rec.Qualified() {
			from, _ := excelize.CoordinatesToCellName(1, row)
			to, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(SheetName, from, to, qualifiedStyle); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(SheetName, "C", "D", 28); err != nil {
		return err
	}
	return f.Write(w)
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}
