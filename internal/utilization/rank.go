package utilization

import "sort"

func sortByEfficiency(rows []AggregatedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].EfficiencyPct, rows[j].EfficiencyPct
		switch {
		case a == nil && b == nil:
			return rows[i].Key < rows[j].Key
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return rows[i].Key < rows[j].Key
		}
	})
}

func sortDaySessions(rows []AggregatedRow, cfg *config) {
	weekdays := rankIndex(cfg.weekdays)
	sessions := rankIndex(cfg.sessions)
	unknown := len(cfg.weekdays)

	weekdayRank := func(value string) int {
		if rank, ok := weekdays[value]; ok {
			return rank
		}
		return unknown
	}

	sort.SliceStable(rows, func(i, j int) bool {
		wi, wj := weekdayRank(rows[i].Weekday), weekdayRank(rows[j].Weekday)
		if wi != wj {
			return wi < wj
		}
		// Unknown weekdays keep first-encounter order.
		if wi == unknown {
			return false
		}
		return sessionLess(rows[i].Session, rows[j].Session, sessions)
	})
}

func sessionLess(a, b string, order map[string]int) bool {
	ra, okA := order[a]
	rb, okB := order[b]
	switch {
	case okA && okB:
		return ra < rb
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func rankIndex(values []string) map[string]int {
	index := make(map[string]int, len(values))
	for i, value := range values {
		if _, exists := index[value]; !exists {
			index[value] = i
		}
	}
	return index
}

// ranked returns a copy of the rows with a defined efficiency, sorted by
// descending efficiency. The input order is left untouched, so views kept
// in weekday order rank the same as efficiency-sorted ones.
func ranked(rows []AggregatedRow) []AggregatedRow {
	result := make([]AggregatedRow, 0, len(rows))
	for _, row := range rows {
		if row.EfficiencyPct != nil {
			result = append(result, row)
		}
	}
	sortByEfficiency(result)
	return result
}

// TopN returns the min(n, L) rows with the highest efficiency, L being the
// number of rows with a defined efficiency.
func TopN(rows []AggregatedRow, n int) []AggregatedRow {
	list := ranked(rows)
	if n <= 0 {
		return []AggregatedRow{}
	}
	if n < len(list) {
		list = list[:n]
	}
	return list
}

// BottomN returns the min(n, L) rows with the lowest efficiency, still in
// descending order. It may overlap with TopN when L < 2n; the overlap is kept.
func BottomN(rows []AggregatedRow, n int) []AggregatedRow {
	list := ranked(rows)
	if n <= 0 {
		return []AggregatedRow{}
	}
	if n < len(list) {
		list = list[len(list)-n:]
	}
	return list
}
