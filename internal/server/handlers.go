package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// refreshSeconds is the dashboard's meta refresh interval
const refreshSeconds = 30

type groupView struct {
	Label      string
	Logo       string
	Departures []models.FormattedDeparture
}

type pageData struct {
	Groups      []groupView
	GeneratedAt string
	Refresh     int
}

// DeparturesDocument is the JSON document served at /api/departures
type DeparturesDocument struct {
	Groups      map[string][]models.FormattedDeparture `json:"groups"`
	Order       []string                               `json:"order"`
	GeneratedAt time.Time                              `json:"generatedAt"`
	Skipped     int                                    `json:"skipped"`
	FailedStops []string                               `json:"failedStops"`
}

// buildReport runs the board. A failed run still yields a usable, empty
// report so that callers render "no departures" instead of an error.
func (s *Server) buildReport(r *http.Request) board.Report {
	report, err := s.board.Build(r.Context())
	if err != nil {
		s.logger.Printf("board build failed: %v", err)
	}
	if report.Result.Groups == nil {
		report.Result = models.NewAggregateResult()
	}
	return report
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	report := s.buildReport(r)

	data := pageData{
		GeneratedAt: report.GeneratedAt.Format("15:04"),
		Refresh:     refreshSeconds,
	}
	for _, label := range report.Result.Order {
		deps := report.Result.Group(label)
		if len(deps) == 0 {
			continue
		}
		data.Groups = append(data.Groups, groupView{
			Label:      label,
			Logo:       board.LogoRef(label),
			Departures: deps,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Printf("rendering board failed: %v", err)
	}
}

// NewDeparturesDocument flattens a report for JSON output
func NewDeparturesDocument(report board.Report) DeparturesDocument {
	result := report.Result
	if result.Groups == nil {
		result = models.NewAggregateResult()
	}
	failed := report.FailedStops
	if failed == nil {
		failed = []string{}
	}
	return DeparturesDocument{
		Groups:      result.Groups,
		Order:       result.Order,
		GeneratedAt: report.GeneratedAt,
		Skipped:     report.Skipped.Total(),
		FailedStops: failed,
	}
}

func (s *Server) departuresHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewDeparturesDocument(s.buildReport(r)))
}

func (s *Server) stationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	raw, err := s.stations.SearchStationsRaw(r.Context(), query)
	if err != nil {
		status := api.StatusCode(err)
		if status == 0 {
			status = http.StatusBadGateway
			var ve *api.ValidationError
			if errors.As(err, &ve) {
				status = http.StatusBadRequest
			}
		}
		s.logger.Printf("error fetching stations: %v", err)
		writeJSON(w, status, struct{}{})
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON is a helper for consistent JSON responses
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
