package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/logging"
)

// handleCreateDataset ingests a multipart upload and returns its handle and
// profile.
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	filename, file, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	res, err := s.service.Ingest(r.Context(), filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleDatasetChart answers ?x=&y=&type=&agg= against a snapshot. The
// chart type defaults to bar.
func (s *Server) handleDatasetChart(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	params := r.URL.Query()

	chartType := params.Get("type")
	if chartType == "" {
		chartType = string(core.ChartBar)
	}
	q := chartQuery(chartType, params.Get("x"), params.Get("y"), params.Get("agg"))

	res, err := s.service.Chart(logging.WithHandle(r.Context(), handle), handle, q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDatasetProfile returns the profile of a snapshot.
func (s *Server) handleDatasetProfile(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	prof, err := s.service.Profile(logging.WithHandle(r.Context(), handle), handle)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// handleGetDashboard returns a saved configuration, as YAML with
// ?format=yaml.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		out, err := s.service.DashboardYAML(r.Context(), name)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(out)
		return
	}

	cfg, err := s.service.Dashboard(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(cfg)
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string                   `json:"status"`
	Ingest core.IngestLimiterStatus `json:"ingest"`
}

// handleHealth reports liveness and ingest slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Ingest: s.service.Limiter().Status(),
	})
}
