// Package api exposes leak-detector introspection over HTTP: registered
// detectors and their stats, the global detection level, and journaled leak
// reports.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/guileen/leakdetect/journal"
	"github.com/guileen/leakdetect/leak"
)

// RESTHandler serves the debug API. The journal is optional; without one,
// /api/reports responds 404.
type RESTHandler struct {
	journal *journal.Journal
}

// NewRESTHandler creates a handler. Pass a nil journal if report history is
// not persisted.
func NewRESTHandler(j *journal.Journal) *RESTHandler {
	return &RESTHandler{journal: j}
}

// RegisterRoutes mounts the API on r.
func (h *RESTHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/detectors", h.ListDetectors)
		r.Get("/level", h.GetLevel)
		r.Put("/level", h.SetLevel)
		r.Get("/reports", h.ListReports)
	})
}

type DetectorResponse struct {
	ResourceType     string     `json:"resource_type"`
	SamplingInterval int        `json:"sampling_interval"`
	Active           int        `json:"active"`
	Stats            leak.Stats `json:"stats"`
}

type LevelResponse struct {
	Level   string `json:"level"`
	Enabled bool   `json:"enabled"`
}

type SetLevelRequest struct {
	Level string `json:"level"`
}

type ReportsResponse struct {
	Reports []leak.Report `json:"reports"`
	Count   int           `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ListDetectors returns every registered detector with a stats snapshot.
func (h *RESTHandler) ListDetectors(w http.ResponseWriter, r *http.Request) {
	infos := leak.Detectors()
	response := make([]DetectorResponse, 0, len(infos))
	for _, d := range infos {
		response = append(response, DetectorResponse{
			ResourceType:     d.ResourceType(),
			SamplingInterval: d.SamplingInterval(),
			Active:           d.ActiveCount(),
			Stats:            d.Stats(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// GetLevel returns the global detection level.
func (h *RESTHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LevelResponse{
		Level:   leak.GetLevel().String(),
		Enabled: leak.Enabled(),
	})
}

// SetLevel changes the global detection level. Unlike leak.ParseLevel, an
// unknown level is rejected rather than mapped to the default.
func (h *RESTHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	lvl := leak.ParseLevel(req.Level)
	if !strings.EqualFold(strings.TrimSpace(req.Level), lvl.String()) &&
		strings.TrimSpace(req.Level) != strconv.Itoa(int(lvl)) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown level %q", req.Level))
		return
	}
	if err := leak.SetLevel(lvl); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, LevelResponse{
		Level:   lvl.String(),
		Enabled: leak.Enabled(),
	})
}

// ListReports returns journaled leak reports, newest first.
func (h *RESTHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("report journal not configured"))
		return
	}

	limit := getIntQueryParam(r, "limit", 50)
	reports, err := h.journal.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportsResponse{Reports: reports, Count: len(reports)})
}

func getIntQueryParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}
