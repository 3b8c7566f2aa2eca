package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"classroom-utilization-audit/internal/utilization"
)

type Summary struct {
	utilization.Diagnostics
	RoomGroups        int      `json:"room_groups"`
	ProgramGroups     int      `json:"program_groups"`
	DaySessionGroups  int      `json:"day_session_groups"`
	AvgRoomEfficiency *float64 `json:"avg_room_efficiency_pct"`
}

type Report struct {
	RunID       string                      `json:"run_id"`
	Period      string                      `json:"period"`
	GeneratedAt string                      `json:"generated_at"`
	TopN        int                         `json:"top_n"`
	Periods     []string                    `json:"periods"`
	Summary     Summary                     `json:"summary"`
	Rooms       []utilization.AggregatedRow `json:"rooms"`
	TopRooms    []utilization.AggregatedRow `json:"top_rooms"`
	BottomRooms []utilization.AggregatedRow `json:"bottom_rooms"`
	Programs    []utilization.AggregatedRow `json:"programs"`
	DaySessions []utilization.AggregatedRow `json:"day_sessions"`
}

func Build(result utilization.Result, periods []string, topN int, now time.Time) Report {
	if periods == nil {
		periods = []string{}
	}
	return Report{
		RunID:       uuid.New().String(),
		Period:      result.Period,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		TopN:        topN,
		Periods:     periods,
		Summary: Summary{
			Diagnostics:       result.Diagnostics,
			RoomGroups:        len(result.Rooms),
			ProgramGroups:     len(result.Programs),
			DaySessionGroups:  len(result.DaySessions),
			AvgRoomEfficiency: averagePct(result.Rooms),
		},
		Rooms:       result.Rooms,
		TopRooms:    utilization.TopN(result.Rooms, topN),
		BottomRooms: utilization.BottomN(result.Rooms, topN),
		Programs:    result.Programs,
		DaySessions: result.DaySessions,
	}
}

func (r Report) Empty() bool {
	return r.Summary.Sections == 0
}

func averagePct(rows []utilization.AggregatedRow) *float64 {
	sum := 0.0
	count := 0
	for _, row := range rows {
		if row.EfficiencyPct == nil {
			continue
		}
		sum += *row.EfficiencyPct
		count++
	}
	if count == 0 {
		return nil
	}
	avg := utilization.Round2(sum / float64(count))
	return &avg
}

// FormatPct renders a percentage, or "n/a" when undefined.
func FormatPct(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *value)
}

func Print(w io.Writer, report Report, sourceLabel string) {
	fmt.Fprintln(w, "Classroom Utilization Audit")
	fmt.Fprintln(w, strings.Repeat("=", 38))
	fmt.Fprintf(w, "Source: %s\n", sourceLabel)
	fmt.Fprintf(w, "Period: %s\n", report.Period)
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Sections: %d | Rooms listed: %d\n", report.Summary.Sections, report.Summary.Rooms)
	fmt.Fprintf(w, "Average room efficiency: %s\n", FormatPct(report.Summary.AvgRoomEfficiency))
	if report.Summary.UnmatchedRooms > 0 {
		fmt.Fprintf(w, "Sections without a matching room: %d\n", report.Summary.UnmatchedRooms)
	}
	if report.Summary.MalformedFields > 0 {
		fmt.Fprintf(w, "Unparsable numeric cells: %d\n", report.Summary.MalformedFields)
	}
	if report.Summary.DuplicateRooms > 0 {
		fmt.Fprintf(w, "Duplicate room keys ignored: %d\n", report.Summary.DuplicateRooms)
	}

	if report.Empty() {
		fmt.Fprintf(w, "\nNo sections found for period %s.\n", report.Period)
		if len(report.Periods) > 0 {
			fmt.Fprintf(w, "Available periods: %s\n", strings.Join(report.Periods, ", "))
		}
		return
	}

	printRows(w, fmt.Sprintf("Top %d rooms", report.TopN), report.TopRooms)
	printRows(w, fmt.Sprintf("Bottom %d rooms", report.TopN), report.BottomRooms)
	printRows(w, "Program summary", report.Programs)
	printRows(w, "Day & session summary", report.DaySessions)
}

func printRows(w io.Writer, title string, rows []utilization.AggregatedRow) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", 38))
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rows.")
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s | %s | classes %d | enrolled %d / capacity %d\n",
			row.Key,
			FormatPct(row.EfficiencyPct),
			row.Classes,
			row.TotalEnrollment,
			row.TotalCapacity,
		)
	}
}
