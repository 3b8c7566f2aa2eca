package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"classroom-utilization-audit/internal/utilization"
)

// SheetProvider downloads both tables as CSV exports over HTTP.
type SheetProvider struct {
	client *resty.Client
	urls   map[string]string
	logger *zap.Logger
}

func NewSheetProvider(roomsURL, sectionsURL string, timeout time.Duration, retries int, logger *zap.Logger) *SheetProvider {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		}).
		SetHeader("Accept", "text/csv")

	return &SheetProvider{
		client: client,
		urls: map[string]string{
			SheetRooms:    roomsURL,
			SheetSections: sectionsURL,
		},
		logger: logger,
	}
}

func (p *SheetProvider) Fetch(ctx context.Context) (Tables, error) {
	return fetchBoth(ctx, p.FetchSheet)
}

func (p *SheetProvider) FetchSheet(ctx context.Context, sheet string) ([]utilization.Row, error) {
	sheet = ResolveSheet(sheet)
	url := p.urls[sheet]

	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		p.logger.Error("sheet download failed",
			zap.String("sheet", sheet),
			zap.Error(err),
		)
		return nil, &ProviderError{Source: "sheet", Sheet: sheet, Err: err}
	}
	if resp.IsError() {
		p.logger.Error("sheet download returned error status",
			zap.String("sheet", sheet),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, &ProviderError{Source: "sheet", Sheet: sheet, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}

	rows, err := ParseCSV(resp.Body())
	if err != nil {
		return nil, &ProviderError{Source: "sheet", Sheet: sheet, Err: err}
	}

	p.logger.Debug("sheet downloaded",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rows, nil
}
