// Package utilization computes room, program and weekday/session
// utilization from raw room and section tables.
//
// Every function is pure: the pipeline normalizes the rows, filters the
// sections by period, left-joins rooms, computes per-section efficiency and
// aggregates the joined table into ordered views. Nothing is cached between
// calls.
package utilization

// Result holds every view computed for one period.
type Result struct {
	Period      string          `json:"period"`
	Joined      []JoinedRecord  `json:"-"`
	Rooms       []AggregatedRow `json:"rooms"`
	Programs    []AggregatedRow `json:"programs"`
	DaySessions []AggregatedRow `json:"day_sessions"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}

// Empty reports whether no section matched the period.
func (r Result) Empty() bool {
	return len(r.Joined) == 0
}

// AggregateByRoom averages the per-section efficiency of every room and
// sorts rooms by descending percentage.
func AggregateByRoom(sections, rooms []Row, period string) []AggregatedRow {
	joined, _ := prepare(sections, rooms, period)
	result := groupByRoom(joined)
	sortByEfficiency(result)
	return result
}

// AggregateByProgram divides summed enrollment by summed capacity per
// program and sorts programs by descending percentage.
func AggregateByProgram(sections, rooms []Row, period string) []AggregatedRow {
	joined, _ := prepare(sections, rooms, period)
	result := groupByProgram(joined)
	sortByEfficiency(result)
	return result
}

// AggregateByDaySession divides summed enrollment by summed capacity per
// weekday and session, ordered by the categorical weekday order and then
// by session.
func AggregateByDaySession(sections, rooms []Row, period string, opts ...Option) []AggregatedRow {
	joined, _ := prepare(sections, rooms, period)
	result := groupByDaySession(joined)
	sortDaySessions(result, applyOptions(opts))
	return result
}

// Compute runs the pipeline once and returns all three views.
func Compute(sections, rooms []Row, period string, opts ...Option) Result {
	cfg := applyOptions(opts)
	joined, diag := prepare(sections, rooms, period)

	byRoom := groupByRoom(joined)
	sortByEfficiency(byRoom)
	byProgram := groupByProgram(joined)
	sortByEfficiency(byProgram)
	byDaySession := groupByDaySession(joined)
	sortDaySessions(byDaySession, cfg)

	return Result{
		Period:      NormalizePeriod(period),
		Joined:      joined,
		Rooms:       byRoom,
		Programs:    byProgram,
		DaySessions: byDaySession,
		Diagnostics: diag,
	}
}

func prepare(sectionRows, roomRows []Row, period string) ([]JoinedRecord, Diagnostics) {
	diag := Diagnostics{}
	rooms := normalizeRooms(roomRows, &diag)
	sections := FilterPeriod(normalizeSections(sectionRows, &diag), period)
	diag.Rooms = len(rooms)
	diag.Sections = len(sections)

	joined := join(sections, rooms, &diag)
	return computeEfficiency(joined, &diag), diag
}
