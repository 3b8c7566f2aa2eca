package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"classroom-utilization-audit/internal/utilization"
)

var rowHeader = []string{
	"key",
	"weekday",
	"session",
	"classes",
	"total_enrollment",
	"total_capacity",
	"efficiency_pct",
}

func WriteJSON(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteRoomsCSV writes the room view. Undefined efficiencies are left blank.
func WriteRoomsCSV(report Report, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(rowHeader); err != nil {
		return err
	}
	for _, row := range report.Rooms {
		if err := writer.Write(csvRecord(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRecord(row utilization.AggregatedRow) []string {
	pct := ""
	if row.EfficiencyPct != nil {
		pct = strconv.FormatFloat(*row.EfficiencyPct, 'f', 2, 64)
	}
	return []string{
		row.Key,
		row.Weekday,
		row.Session,
		strconv.Itoa(row.Classes),
		strconv.FormatInt(row.TotalEnrollment, 10),
		strconv.FormatInt(row.TotalCapacity, 10),
		pct,
	}
}

func SaveXLSX(report Report, path string) error {
	f, err := workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func WriteXLSX(w io.Writer, report Report) error {
	f, err := workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func workbook(report Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows []utilization.AggregatedRow
	}{
		{"Rooms", report.Rooms},
		{"Programs", report.Programs},
		{"Day Sessions", report.DaySessions},
	}
	for i, sheet := range sheets {
		if i == 0 {
			err = f.SetSheetName("Sheet1", sheet.name)
		} else {
			_, err = f.NewSheet(sheet.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := fillSheet(f, sheet.name, sheet.rows, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func fillSheet(f *excelize.File, sheet string, rows []utilization.AggregatedRow, headerStyle int) error {
	for col, header := range rowHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{row.Key, row.Weekday, row.Session, row.Classes, row.TotalEnrollment, row.TotalCapacity, nil}
		if row.EfficiencyPct != nil {
			values[6] = *row.EfficiencyPct
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
