package source

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"classroom-utilization-audit/internal/utilization"
)

// ParseCSV reads CSV bytes with a header line into rows. Every column is
// kept as a string; NA-style cells become nil. A header without records
// yields an empty, non-nil slice.
func ParseCSV(data []byte) ([]utilization.Row, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty CSV")
	}
	// gota refuses a frame without records; a header-only table is an
	// empty table.
	if !bytes.ContainsRune(trimmed, '\n') {
		return []utilization.Row{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("unable to parse CSV: %w", df.Err)
	}

	maps := df.Maps()
	rows := make([]utilization.Row, 0, len(maps))
	for _, m := range maps {
		rows = append(rows, utilization.Row(m))
	}
	return rows, nil
}
