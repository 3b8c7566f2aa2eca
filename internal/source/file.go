package source

import (
	"context"
	"os"

	"classroom-utilization-audit/internal/utilization"
)

// FileProvider reads both tables from local CSV files.
type FileProvider struct {
	paths map[string]string
}

func NewFileProvider(roomsPath, sectionsPath string) *FileProvider {
	return &FileProvider{paths: map[string]string{
		SheetRooms:    roomsPath,
		SheetSections: sectionsPath,
	}}
}

func (p *FileProvider) Fetch(ctx context.Context) (Tables, error) {
	return fetchBoth(ctx, p.FetchSheet)
}

func (p *FileProvider) FetchSheet(ctx context.Context, sheet string) ([]utilization.Row, error) {
	sheet = ResolveSheet(sheet)
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Source: "file", Sheet: sheet, Err: err}
	}
	data, err := os.ReadFile(p.paths[sheet])
	if err != nil {
		return nil, &ProviderError{Source: "file", Sheet: sheet, Err: err}
	}
	rows, err := ParseCSV(data)
	if err != nil {
		return nil, &ProviderError{Source: "file", Sheet: sheet, Err: err}
	}
	return rows, nil
}
