// Package source loads the room and section tables the utilization
// pipeline consumes. Every failure to produce a complete table is reported
// as a *ProviderError, which matches ErrProviderFailure with errors.Is.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classroom-utilization-audit/internal/utilization"
)

const (
	SheetRooms    = "ruang"
	SheetSections = "matkul"
)

var ErrProviderFailure = errors.New("data provider failure")

type Tables struct {
	Rooms    []utilization.Row
	Sections []utilization.Row
}

type Provider interface {
	// Fetch returns both tables or fails outright.
	Fetch(ctx context.Context) (Tables, error)
	// FetchSheet returns one raw table by sheet name.
	FetchSheet(ctx context.Context, sheet string) ([]utilization.Row, error)
}

type ProviderError struct {
	Source string
	Sheet  string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s source: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s source: sheet %s: %v", e.Source, e.Sheet, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}

// ResolveSheet maps a requested sheet name to a known sheet. Unknown names
// fall back to the rooms sheet.
func ResolveSheet(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SheetSections, "sections", "courses":
		return SheetSections
	default:
		return SheetRooms
	}
}

func fetchBoth(ctx context.Context, fetch func(context.Context, string) ([]utilization.Row, error)) (Tables, error) {
	rooms, err := fetch(ctx, SheetRooms)
	if err != nil {
		return Tables{}, err
	}
	sections, err := fetch(ctx, SheetSections)
	if err != nil {
		return Tables{}, err
	}
	return Tables{Rooms: rooms, Sections: sections}, nil
}
