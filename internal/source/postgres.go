package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"classroom-utilization-audit/internal/utilization"
)

const postgresTimeout = 12 * time.Second

// PostgresProvider reads the ruang and matkul tables of one schema. Column
// names are passed through unchanged, so the tables may use any of the
// header aliases the pipeline understands.
type PostgresProvider struct {
	db     *sql.DB
	schema string
	logger *zap.Logger
}

// OpenPostgres opens a pgx-backed pool and checks it. schema must already be
// validated by the caller.
func OpenPostgres(ctx context.Context, url string, schema string, logger *zap.Logger) (*PostgresProvider, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, &ProviderError{Source: "postgres", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &ProviderError{Source: "postgres", Err: err}
	}
	return NewPostgresProvider(db, schema, logger), nil
}

func NewPostgresProvider(db *sql.DB, schema string, logger *zap.Logger) *PostgresProvider {
	return &PostgresProvider{db: db, schema: schema, logger: logger}
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

func (p *PostgresProvider) Fetch(ctx context.Context) (Tables, error) {
	return fetchBoth(ctx, p.FetchSheet)
}

func (p *PostgresProvider) FetchSheet(ctx context.Context, sheet string) ([]utilization.Row, error) {
	sheet = ResolveSheet(sheet)
	rows, err := p.queryTable(ctx, sheet)
	if err != nil {
		p.logger.Error("table query failed",
			zap.String("schema", p.schema),
			zap.String("table", sheet),
			zap.Error(err),
		)
		return nil, &ProviderError{Source: "postgres", Sheet: sheet, Err: err}
	}
	return rows, nil
}

func (p *PostgresProvider) queryTable(ctx context.Context, table string) ([]utilization.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s.%s`, p.schema, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []utilization.Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		row := make(utilization.Row, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
