package utilization

// JoinedRecord is a section with the capacity of its room attached.
// Capacity is nil when the room was not found or had no usable capacity.
type JoinedRecord struct {
	SectionRecord
	Capacity   *int64   `json:"capacity"`
	Matched    bool     `json:"matched"`
	Efficiency *float64 `json:"efficiency"`
}

// Diagnostics counts the recoverable data-quality conditions met while
// running the pipeline.
type Diagnostics struct {
	Sections            int `json:"sections"`
	Rooms               int `json:"rooms"`
	MalformedFields     int `json:"malformed_fields"`
	UnmatchedRooms      int `json:"unmatched_rooms"`
	DuplicateRooms      int `json:"duplicate_rooms"`
	UndefinedEfficiency int `json:"undefined_efficiency"`
}

// Join left-joins sections with rooms on the normalized room key. When
// several rooms share a key the first one in source order wins.
func Join(sections []SectionRecord, rooms []RoomRecord) []JoinedRecord {
	return join(sections, rooms, &Diagnostics{})
}

func join(sections []SectionRecord, rooms []RoomRecord, diag *Diagnostics) []JoinedRecord {
	index := make(map[string]RoomRecord, len(rooms))
	for _, room := range rooms {
		if room.RoomID == "" {
			continue
		}
		if _, exists := index[room.RoomID]; exists {
			diag.DuplicateRooms++
			continue
		}
		index[room.RoomID] = room
	}

	result := make([]JoinedRecord, 0, len(sections))
	for _, section := range sections {
		record := JoinedRecord{SectionRecord: section}
		if room, ok := index[section.RoomID]; ok && section.RoomID != "" {
			record.Matched = true
			record.Capacity = room.Capacity
		} else {
			diag.UnmatchedRooms++
		}
		result = append(result, record)
	}
	return result
}
