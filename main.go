package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classroom-utilization-audit/internal/config"
	"classroom-utilization-audit/internal/logging"
	"classroom-utilization-audit/internal/report"
	"classroom-utilization-audit/internal/server"
	"classroom-utilization-audit/internal/source"
	"classroom-utilization-audit/internal/utilization"
)

const serviceName = "classroom-utilization-audit"

type outputs struct {
	JSON string
	CSV  string
	XLSX string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Deferred cleanup runs before main
// exits.
func run(args []string) int {
	cfg := config.Default()
	if err := cfg.LoadFromEnv(config.EnvPrefix); err != nil {
		return reportError(err)
	}

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.StringVar(&cfg.RoomsURL, "rooms-url", cfg.RoomsURL, "CSV export URL of the room sheet")
	fs.StringVar(&cfg.SectionsURL, "sections-url", cfg.SectionsURL, "CSV export URL of the course section sheet")
	fs.StringVar(&cfg.RoomsFile, "rooms-file", cfg.RoomsFile, "Path to a local room CSV (overrides URLs)")
	fs.StringVar(&cfg.SectionsFile, "sections-file", cfg.SectionsFile, "Path to a local section CSV (overrides URLs)")
	fs.StringVar(&cfg.DBURL, "db", cfg.DBURL, "Postgres URL to read ruang/matkul tables from (overrides files and URLs)")
	fs.StringVar(&cfg.DBSchema, "db-schema", cfg.DBSchema, "Postgres schema holding the ruang and matkul tables")
	fs.StringVar(&cfg.Period, "period", cfg.Period, "Academic period to report, e.g. 2023/2024; default latest")
	fs.IntVar(&cfg.TopN, "top", cfg.TopN, "Top/bottom N rooms to show")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "Timeout for sheet downloads")
	fs.IntVar(&cfg.HTTPRetries, "http-retries", cfg.HTTPRetries, "Retries for sheet downloads")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error, off)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json, console)")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "Listen address for --serve")
	serve := fs.Bool("serve", false, "Serve the JSON API instead of printing a report")
	listPeriods := fs.Bool("list-periods", false, "Print the available periods and exit")
	weekdays := fs.String("weekdays", "", "Comma separated weekday order; default SENIN..JUMAT")
	sessions := fs.String("sessions", "", "Comma separated session order; default lexicographic")
	var out outputs
	fs.StringVar(&out.JSON, "json", "", "Optional JSON output path")
	fs.StringVar(&out.CSV, "csv", "", "Optional CSV output path for the room view")
	fs.StringVar(&out.XLSX, "xlsx", "", "Optional XLSX output path with all views")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := cfg.Validate(); err != nil {
		return reportError(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return reportError(err)
	}
	defer func() { _ = logger.Sync() }()

	opts := orderOptions(*weekdays, *sessions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeProvider, err := openProvider(ctx, cfg, logger)
	if err != nil {
		return reportError(err)
	}
	defer closeProvider()

	if *serve {
		if cfg.Period == "" {
			cfg.Period = config.DefaultPeriod
		}
		err = runServer(ctx, cfg, provider, logger, opts)
	} else {
		err = runReport(ctx, cfg, provider, logger, opts, *listPeriods, out)
	}
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return reportError(err)
	}
	return 0
}

func openProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (source.Provider, func(), error) {
	switch cfg.Source() {
	case "postgres":
		provider, err := source.OpenPostgres(ctx, cfg.DBURL, cfg.DBSchema, logger)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() { _ = provider.Close() }, nil
	case "file":
		return source.NewFileProvider(cfg.RoomsFile, cfg.SectionsFile), func() {}, nil
	default:
		return source.NewSheetProvider(cfg.RoomsURL, cfg.SectionsURL, cfg.HTTPTimeout, cfg.HTTPRetries, logger), func() {}, nil
	}
}

func runReport(ctx context.Context, cfg config.Config, provider source.Provider, logger *zap.Logger, opts []utilization.Option, listOnly bool, out outputs) error {
	tables, err := provider.Fetch(ctx)
	if err != nil {
		return err
	}
	periods := utilization.Periods(tables.Sections)

	if listOnly {
		for _, period := range periods {
			fmt.Println(period)
		}
		return nil
	}

	period := cfg.Period
	if period == "" {
		period = config.DefaultPeriod
		if len(periods) > 0 {
			period = periods[len(periods)-1]
		}
	}

	result := utilization.Compute(tables.Sections, tables.Rooms, period, opts...)
	logger.Info("utilization computed",
		zap.String("period", result.Period),
		zap.Int("sections", result.Diagnostics.Sections),
		zap.Int("unmatched_rooms", result.Diagnostics.UnmatchedRooms),
		zap.Int("malformed_fields", result.Diagnostics.MalformedFields),
	)

	built := report.Build(result, periods, cfg.TopN, time.Now())
	report.Print(os.Stdout, built, sourceLabel(cfg))

	if out.JSON != "" {
		if err := report.WriteJSON(built, out.JSON); err != nil {
			return err
		}
		fmt.Printf("\nJSON report saved to %s\n", out.JSON)
	}
	if out.CSV != "" {
		if err := report.WriteRoomsCSV(built, out.CSV); err != nil {
			return err
		}
		fmt.Printf("Room CSV saved to %s\n", out.CSV)
	}
	if out.XLSX != "" {
		if err := report.SaveXLSX(built, out.XLSX); err != nil {
			return err
		}
		fmt.Printf("Workbook saved to %s\n", out.XLSX)
	}
	return nil
}

func runServer(ctx context.Context, cfg config.Config, provider source.Provider, logger *zap.Logger, opts []utilization.Option) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(provider, logger, cfg.TopN, cfg.Period, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("source", cfg.Source()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func orderOptions(weekdays, sessions string) []utilization.Option {
	var opts []utilization.Option
	if list := splitList(weekdays); len(list) > 0 {
		opts = append(opts, utilization.WithWeekdayOrder(list...))
	}
	if list := splitList(sessions); len(list) > 0 {
		opts = append(opts, utilization.WithSessionOrder(list...))
	}
	return opts
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func sourceLabel(cfg config.Config) string {
	switch cfg.Source() {
	case "postgres":
		return "postgres schema " + cfg.DBSchema
	case "file":
		return filepath.Base(cfg.RoomsFile) + " + " + filepath.Base(cfg.SectionsFile)
	default:
		return "sheet export"
	}
}

func reportError(err error) int {
	if errors.Is(err, source.ErrProviderFailure) {
		fmt.Fprintln(os.Stderr, "Error: could not load source data:", err)
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}
