package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"classroom-utilization-audit/internal/utilization"
)

func sampleResult() utilization.Result {
	rooms := []utilization.Row{
		{"ruang": "A101", "kapasitas": "40"},
		{"ruang": "B201", "kapasitas": "20"},
		{"ruang": "C301", "kapasitas": "0"},
	}
	sections := []utilization.Row{
		{"ruang": "A101", "prodi": "TI", "hari": "SENIN", "sesi": "1", "peserta": "30", "th_ajaran": "2023/2024"},
		{"ruang": "B201", "prodi": "SI", "hari": "SELASA", "sesi": "2", "peserta": "5", "th_ajaran": "2023/2024"},
		{"ruang": "C301", "prodi": "SI", "hari": "SELASA", "sesi": "2", "peserta": "5", "th_ajaran": "2023/2024"},
		{"ruang": "X999", "prodi": "MI", "hari": "RABU", "sesi": "1", "peserta": "x", "th_ajaran": "2023/2024"},
	}
	return utilization.Compute(sections, rooms, "2023/2024")
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	report := Build(sampleResult(), []string{"2022/2023", "2023/2024"}, 1, now)

	_, err := uuid.Parse(report.RunID)
	require.NoError(t, err)
	require.Equal(t, "2026-02-01T08:00:00Z", report.GeneratedAt)
	require.Equal(t, "2023/2024", report.Period)
	require.False(t, report.Empty())

	require.Equal(t, 4, report.Summary.Sections)
	require.Equal(t, 1, report.Summary.UnmatchedRooms)
	require.Equal(t, 1, report.Summary.MalformedFields)
	require.Equal(t, 4, report.Summary.RoomGroups)
	require.NotNil(t, report.Summary.AvgRoomEfficiency)
	require.Equal(t, 50.0, *report.Summary.AvgRoomEfficiency)

	require.Len(t, report.TopRooms, 1)
	require.Equal(t, "A101", report.TopRooms[0].Key)
	require.Len(t, report.BottomRooms, 1)
	require.Equal(t, "B201", report.BottomRooms[0].Key)

	other := Build(sampleResult(), nil, 1, now)
	require.NotEqual(t, report.RunID, other.RunID)
	require.NotNil(t, other.Periods)
}

func TestPrintReport(t *testing.T) {
	report := Build(sampleResult(), nil, 10, time.Now())

	var buf bytes.Buffer
	Print(&buf, report, "ruang.csv + matkul.csv")
	out := buf.String()
	require.Contains(t, out, "Period: 2023/2024")
	require.Contains(t, out, "A101 | 75.00% | classes 1 | enrolled 30 / capacity 40")
	require.Contains(t, out, "MI | n/a | classes 1")
	require.Contains(t, out, "SELASA - 2 | 25.00%")
	require.Contains(t, out, "Sections without a matching room: 1")

	empty := Build(utilization.Compute(nil, nil, "1999/2000"), []string{"2023/2024"}, 10, time.Now())
	buf.Reset()
	Print(&buf, empty, "test")
	require.Contains(t, buf.String(), "No sections found for period 1999/2000.")
	require.Contains(t, buf.String(), "Available periods: 2023/2024")
}

func TestWriteExports(t *testing.T) {
	report := Build(sampleResult(), []string{"2023/2024"}, 10, time.Now())
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, WriteJSON(report, jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, report.RunID, decoded["run_id"])
	rooms := decoded["rooms"].([]any)
	require.Len(t, rooms, 4)
	require.Nil(t, rooms[2].(map[string]any)["efficiency_pct"])

	csvPath := filepath.Join(dir, "rooms.csv")
	require.NoError(t, WriteRoomsCSV(report, csvPath))
	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	require.Equal(t, []string{"A101", "", "", "1", "30", "40", "75.00"}, records[1])
	require.Equal(t, "", records[3][6])

	xlsxPath := filepath.Join(dir, "report.xlsx")
	require.NoError(t, SaveXLSX(report, xlsxPath))
	book, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer book.Close()
	require.Equal(t, []string{"Rooms", "Programs", "Day Sessions"}, book.GetSheetList())
	value, err := book.GetCellValue("Programs", "A2")
	require.NoError(t, err)
	require.Equal(t, "TI", value)
	value, err = book.GetCellValue("Day Sessions", "B3")
	require.NoError(t, err)
	require.Equal(t, "SELASA", value)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, report))
	require.NotZero(t, buf.Len())
}
