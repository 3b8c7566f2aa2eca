package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"classroom-utilization-audit/internal/report"
	"classroom-utilization-audit/internal/source"
	"classroom-utilization-audit/internal/utilization"
)

type view string

const (
	viewRooms       view = "rooms"
	viewPrograms    view = "programs"
	viewDaySessions view = "day_sessions"
)

type viewResponse struct {
	Period      string                      `json:"period"`
	View        view                        `json:"view"`
	Selection   string                      `json:"selection"`
	Rows        []utilization.AggregatedRow `json:"rows"`
	Diagnostics utilization.Diagnostics     `json:"diagnostics"`
}

type sheetResponse struct {
	Sheet string            `json:"sheet"`
	Rows  []utilization.Row `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	rows, err := s.provider.FetchSheet(r.Context(), source.SheetSections)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"periods": utilization.Periods(rows)})
}

func (s *Server) handleUtilization(w http.ResponseWriter, r *http.Request) {
	built, ok := s.buildReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, built)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	built, ok := s.buildReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="utilization.xlsx"`)
	if err := report.WriteXLSX(w, built); err != nil {
		s.logger.Error("workbook export failed", zap.Error(err))
	}
}

func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) (report.Report, bool) {
	topN := s.topN
	if value := strings.TrimSpace(r.URL.Query().Get("top")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid top: "+value)
			return report.Report{}, false
		}
		topN = parsed
	}

	tables, err := s.provider.Fetch(r.Context())
	if err != nil {
		s.writeFetchError(w, err)
		return report.Report{}, false
	}

	period := s.period(r)
	result := utilization.Compute(tables.Sections, tables.Rooms, period, s.options...)
	s.metrics.observeRun("report", result.Empty())
	return report.Build(result, utilization.Periods(tables.Sections), topN, s.now()), true
}

func (s *Server) handleView(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		kind, n := strings.ToLower(strings.TrimSpace(query.Get("select"))), query.Get("n")
		if v == viewRooms && kind == "" {
			kind = "top"
		}
		if n == "" && (kind == "top" || kind == "bottom") {
			n = strconv.Itoa(s.topN)
		}
		selection, err := utilization.ParseSelection(kind, n, query.Get("key"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tables, err := s.provider.Fetch(r.Context())
		if err != nil {
			s.writeFetchError(w, err)
			return
		}

		period := s.period(r)
		result := utilization.Compute(tables.Sections, tables.Rooms, period, s.options...)
		s.metrics.observeRun(string(v), result.Empty())

		var rows []utilization.AggregatedRow
		switch v {
		case viewRooms:
			rows = result.Rooms
		case viewPrograms:
			rows = result.Programs
		default:
			rows = result.DaySessions
		}

		writeJSON(w, http.StatusOK, viewResponse{
			Period:      result.Period,
			View:        v,
			Selection:   selection.Kind.String(),
			Rows:        selection.Apply(rows),
			Diagnostics: result.Diagnostics,
		})
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	sheet := source.ResolveSheet(mux.Vars(r)["sheet"])
	rows, err := s.provider.FetchSheet(r.Context(), sheet)
	if err != nil {
		s.writeFetchError(w, err)
		return
	}
	if rows == nil {
		rows = []utilization.Row{}
	}
	writeJSON(w, http.StatusOK, sheetResponse{Sheet: sheet, Rows: rows})
}

func (s *Server) period(r *http.Request) string {
	query := r.URL.Query()
	for _, name := range []string{"periode", "period"} {
		if value := strings.TrimSpace(query.Get(name)); value != "" {
			return value
		}
	}
	return s.defaultPeriod
}

func (s *Server) writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, source.ErrProviderFailure) {
		s.metrics.providerFailures.Inc()
		s.logger.Warn("source unavailable", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
