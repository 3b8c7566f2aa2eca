package utilization

import "math"

// AggregatedRow is one group of a utilization view. EfficiencyPct is nil
// when no record in the group had a defined efficiency.
type AggregatedRow struct {
	Key             string   `json:"key"`
	Weekday         string   `json:"weekday,omitempty"`
	Session         string   `json:"session,omitempty"`
	Classes         int      `json:"classes"`
	TotalEnrollment int64    `json:"total_enrollment"`
	TotalCapacity   int64    `json:"total_capacity"`
	EfficiencyPct   *float64 `json:"efficiency_pct"`
}

// Round2 rounds to two decimals, half away from zero.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

type bucket struct {
	row      AggregatedRow
	ratioSum float64
	ratios   int
}

func (b *bucket) add(record JoinedRecord) {
	b.row.Classes++
	if record.Efficiency == nil {
		return
	}
	b.row.TotalEnrollment = addCount(b.row.TotalEnrollment, *record.Enrollment)
	b.row.TotalCapacity = addCount(b.row.TotalCapacity, *record.Capacity)
	b.ratioSum += *record.Efficiency
	b.ratios++
}

// addCount saturates at MaxInt64 instead of wrapping.
func addCount(total, value int64) int64 {
	if value > 0 && total > math.MaxInt64-value {
		return math.MaxInt64
	}
	return total + value
}

type grouping struct {
	buckets map[string]*bucket
	order   []string
}

func newGrouping() *grouping {
	return &grouping{buckets: map[string]*bucket{}}
}

func (g *grouping) bucket(key string) *bucket {
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{row: AggregatedRow{Key: key}}
		g.buckets[key] = b
		g.order = append(g.order, key)
	}
	return b
}

func (g *grouping) rows(finish func(*bucket) *float64) []AggregatedRow {
	result := make([]AggregatedRow, 0, len(g.order))
	for _, key := range g.order {
		b := g.buckets[key]
		b.row.EfficiencyPct = finish(b)
		result = append(result, b.row)
	}
	return result
}

func meanOfRatios(b *bucket) *float64 {
	if b.ratios == 0 {
		return nil
	}
	pct := Round2(b.ratioSum / float64(b.ratios) * 100)
	return &pct
}

func ratioOfSums(b *bucket) *float64 {
	if b.row.TotalCapacity <= 0 {
		return nil
	}
	pct := Round2(float64(b.row.TotalEnrollment) / float64(b.row.TotalCapacity) * 100)
	return &pct
}

// Records with an empty grouping key are left out of every view.

func groupByRoom(records []JoinedRecord) []AggregatedRow {
	g := newGrouping()
	for _, record := range records {
		if record.RoomID == "" {
			continue
		}
		g.bucket(record.RoomID).add(record)
	}
	return g.rows(meanOfRatios)
}

func groupByProgram(records []JoinedRecord) []AggregatedRow {
	g := newGrouping()
	for _, record := range records {
		if record.Program == "" {
			continue
		}
		g.bucket(record.Program).add(record)
	}
	return g.rows(ratioOfSums)
}

func groupByDaySession(records []JoinedRecord) []AggregatedRow {
	g := newGrouping()
	for _, record := range records {
		if record.Weekday == "" && record.Session == "" {
			continue
		}
		b := g.bucket(record.Weekday + "\x00" + record.Session)
		b.row.Key = daySessionKey(record.Weekday, record.Session)
		b.row.Weekday = record.Weekday
		b.row.Session = record.Session
		b.add(record)
	}
	return g.rows(ratioOfSums)
}

func daySessionKey(weekday, session string) string {
	return weekday + " - " + session
}
