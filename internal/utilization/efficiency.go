package utilization

// Efficiency returns enrollment/capacity, or nil when either side is
// undefined or the capacity is zero.
func Efficiency(enrollment, capacity *int64) *float64 {
	if enrollment == nil || capacity == nil || *capacity <= 0 {
		return nil
	}
	ratio := float64(*enrollment) / float64(*capacity)
	return &ratio
}

// ComputeEfficiency returns a copy of records with Efficiency filled in.
func ComputeEfficiency(records []JoinedRecord) []JoinedRecord {
	return computeEfficiency(records, &Diagnostics{})
}

func computeEfficiency(records []JoinedRecord, diag *Diagnostics) []JoinedRecord {
	result := make([]JoinedRecord, len(records))
	for i, record := range records {
		record.Efficiency = Efficiency(record.Enrollment, record.Capacity)
		if record.Efficiency == nil {
			diag.UndefinedEfficiency++
		}
		result[i] = record
	}
	return result
}
