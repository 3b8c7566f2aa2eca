package utilization

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Row is one raw record from a tabular source, keyed by column name.
type Row map[string]any

type RoomRecord struct {
	RoomID   string `json:"room_id"`
	Capacity *int64 `json:"capacity"`
}

type SectionRecord struct {
	RoomID     string `json:"room_id"`
	Program    string `json:"program"`
	Weekday    string `json:"weekday"`
	Session    string `json:"session"`
	Enrollment *int64 `json:"enrollment"`
	Period     string `json:"academic_period"`
}

var (
	roomColumns       = []string{"ruang", "room", "room_id", "kode_ruang"}
	capacityColumns   = []string{"kapasitas", "capacity"}
	programColumns    = []string{"prodi", "program", "program_studi"}
	weekdayColumns    = []string{"hari", "weekday", "day"}
	sessionColumns    = []string{"sesi", "session"}
	enrollmentColumns = []string{"peserta", "enrollment", "participants"}
	periodColumns     = []string{"th_ajaran", "academic_period", "period", "tahun_ajaran"}
)

// NormalizeKey upper-cases value, trims it and collapses every run of
// Unicode whitespace (NBSP included) into a single ASCII space.
func NormalizeKey(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), " "))
}

// NormalizePeriod trims the period value. Case is preserved.
func NormalizePeriod(value string) string {
	return strings.TrimSpace(value)
}

func NormalizeRooms(rows []Row) []RoomRecord {
	return normalizeRooms(rows, &Diagnostics{})
}

func NormalizeSections(rows []Row) []SectionRecord {
	return normalizeSections(rows, &Diagnostics{})
}

// FilterPeriod keeps the sections whose period equals the trimmed period.
func FilterPeriod(sections []SectionRecord, period string) []SectionRecord {
	period = NormalizePeriod(period)
	result := make([]SectionRecord, 0, len(sections))
	for _, section := range sections {
		if section.Period == period {
			result = append(result, section)
		}
	}
	return result
}

// Periods lists the distinct, non-empty periods of the raw section rows in
// ascending order.
func Periods(sections []Row) []string {
	seen := map[string]struct{}{}
	for _, row := range sections {
		period := NormalizePeriod(textValue(lookup(row, periodColumns)))
		if period == "" {
			continue
		}
		seen[period] = struct{}{}
	}
	result := make([]string, 0, len(seen))
	for period := range seen {
		result = append(result, period)
	}
	sort.Strings(result)
	return result
}

func normalizeRooms(rows []Row, diag *Diagnostics) []RoomRecord {
	result := make([]RoomRecord, 0, len(rows))
	for _, row := range rows {
		capacity, malformed := parseCount(lookup(row, capacityColumns))
		if malformed {
			diag.MalformedFields++
		}
		result = append(result, RoomRecord{
			RoomID:   NormalizeKey(textValue(lookup(row, roomColumns))),
			Capacity: capacity,
		})
	}
	return result
}

func normalizeSections(rows []Row, diag *Diagnostics) []SectionRecord {
	result := make([]SectionRecord, 0, len(rows))
	for _, row := range rows {
		enrollment, malformed := parseCount(lookup(row, enrollmentColumns))
		if malformed {
			diag.MalformedFields++
		}
		result = append(result, SectionRecord{
			RoomID:     NormalizeKey(textValue(lookup(row, roomColumns))),
			Program:    NormalizeKey(textValue(lookup(row, programColumns))),
			Weekday:    NormalizeKey(textValue(lookup(row, weekdayColumns))),
			Session:    NormalizeKey(textValue(lookup(row, sessionColumns))),
			Enrollment: enrollment,
			Period:     NormalizePeriod(textValue(lookup(row, periodColumns))),
		})
	}
	return result
}

func lookup(row Row, names []string) any {
	for _, name := range names {
		if value, ok := row[name]; ok {
			return value
		}
	}

	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, name := range names {
		want := normalizeHeader(name)
		for _, key := range keys {
			if normalizeHeader(key) == want {
				return row[key]
			}
		}
	}
	return nil
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return textValue(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}

// MaxCount is the largest capacity or enrollment accepted. Larger values
// are malformed, which keeps per-group sums far from int64 overflow.
const MaxCount int64 = 1 << 40

// parseCount coerces a raw cell into an integer in [0, MaxCount]. Blank and
// NA-style cells are undefined without being malformed.
func parseCount(value any) (*int64, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case int:
		return countFromInt(int64(v))
	case int8:
		return countFromInt(int64(v))
	case int16:
		return countFromInt(int64(v))
	case int32:
		return countFromInt(int64(v))
	case int64:
		return countFromInt(v)
	case uint:
		return countFromUint(uint64(v))
	case uint8:
		return countFromUint(uint64(v))
	case uint16:
		return countFromUint(uint64(v))
	case uint32:
		return countFromUint(uint64(v))
	case uint64:
		return countFromUint(v)
	case float32:
		return countFromFloat(float64(v))
	case float64:
		return countFromFloat(v)
	case string, []byte:
		text := strings.TrimSpace(textValue(v))
		if isBlank(text) {
			return nil, false
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, true
		}
		return countFromFloat(parsed)
	default:
		return nil, true
	}
}

func countFromInt(value int64) (*int64, bool) {
	if value < 0 || value > MaxCount {
		return nil, true
	}
	return &value, false
}

func countFromUint(value uint64) (*int64, bool) {
	if value > uint64(MaxCount) {
		return nil, true
	}
	return countFromInt(int64(value))
}

func countFromFloat(value float64) (*int64, bool) {
	if math.IsNaN(value) {
		return nil, false
	}
	if math.IsInf(value, 0) || value < 0 || value != math.Trunc(value) || value > float64(MaxCount) {
		return nil, true
	}
	return countFromInt(int64(value))
}

func isBlank(value string) bool {
	switch strings.ToLower(value) {
	case "", "nan", "na", "n/a", "null", "<nil>", "-":
		return true
	}
	return false
}
