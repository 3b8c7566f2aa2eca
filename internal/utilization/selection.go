package utilization

import (
	"fmt"
	"strconv"
	"strings"
)

type SelectionKind int

const (
	SelectAll SelectionKind = iota
	SelectTop
	SelectBottom
	SelectKey
)

func (k SelectionKind) String() string {
	switch k {
	case SelectTop:
		return "top"
	case SelectBottom:
		return "bottom"
	case SelectKey:
		return "key"
	default:
		return "all"
	}
}

// Selection picks a subset of an already computed view.
type Selection struct {
	Kind SelectionKind
	N    int
	Key  string
}

func All() Selection             { return Selection{Kind: SelectAll} }
func Top(n int) Selection        { return Selection{Kind: SelectTop, N: n} }
func Bottom(n int) Selection     { return Selection{Kind: SelectBottom, N: n} }
func ByKey(key string) Selection { return Selection{Kind: SelectKey, Key: key} }

// ParseSelection reads "all", "top", "bottom" or "key". n is used by top and
// bottom, key by key.
func ParseSelection(kind string, n string, key string) (Selection, error) {
	count := 0
	if strings.TrimSpace(n) != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || parsed < 0 {
			return Selection{}, fmt.Errorf("invalid selection size: %q", n)
		}
		count = parsed
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "all":
		return All(), nil
	case "top":
		return Top(count), nil
	case "bottom":
		return Bottom(count), nil
	case "key":
		if NormalizeKey(key) == "" {
			return Selection{}, fmt.Errorf("selection key is required")
		}
		return ByKey(key), nil
	default:
		return Selection{}, fmt.Errorf("invalid selection: %q", kind)
	}
}

// Apply returns the selected rows as a new slice. A key selection matches
// the row key or, for day-session rows, the weekday.
func (s Selection) Apply(rows []AggregatedRow) []AggregatedRow {
	switch s.Kind {
	case SelectTop:
		return TopN(rows, s.N)
	case SelectBottom:
		return BottomN(rows, s.N)
	case SelectKey:
		key := NormalizeKey(s.Key)
		result := []AggregatedRow{}
		for _, row := range rows {
			if row.Key == key || (row.Weekday != "" && row.Weekday == key) {
				result = append(result, row)
			}
		}
		return result
	default:
		return append([]AggregatedRow{}, rows...)
	}
}
