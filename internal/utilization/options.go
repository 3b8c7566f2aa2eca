package utilization

// DefaultWeekdays is the Monday..Friday order of the source sheets.
var DefaultWeekdays = []string{"SENIN", "SELASA", "RABU", "KAMIS", "JUMAT"}

type Option func(*config)

type config struct {
	weekdays []string
	sessions []string
}

// WithWeekdayOrder replaces the categorical weekday order.
func WithWeekdayOrder(weekdays ...string) Option {
	return func(c *config) {
		c.weekdays = normalizeAll(weekdays)
	}
}

// WithSessionOrder ranks the listed sessions first, in the given order.
// Sessions not listed follow in lexicographic order.
func WithSessionOrder(sessions ...string) Option {
	return func(c *config) {
		c.sessions = normalizeAll(sessions)
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{weekdays: DefaultWeekdays}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func normalizeAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if key := NormalizeKey(value); key != "" {
			result = append(result, key)
		}
	}
	return result
}
