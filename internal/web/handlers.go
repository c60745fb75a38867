package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/web/templates"
)

// multipartMemory is how much of an upload is buffered in memory before
// the rest spills to a temp file.
const multipartMemory = 32 << 20

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, templates.Index(""))
}

// handleUpload ingests the posted file and renders its dashboard. Failures
// re-render the upload page with the user message, its code and action.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, file, err := s.readUpload(w, r)
	if err != nil {
		s.renderUploadError(w, r, err)
		return
	}
	defer file.Close()

	res, err := s.service.Ingest(r.Context(), filename, file)
	if err != nil {
		s.renderUploadError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, templates.Dashboard(templates.DashboardData{
		Handle:   res.Handle,
		Filename: res.Filename,
		Rows:     res.Rows,
		Profile:  res.Profile,
	}))
}

func (s *Server) renderUploadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logError(r, err, status)
	s.render(w, r, status, templates.Index(core.FormatUserError(err)))
}

// readUpload returns the "file" part of a multipart request. The body is
// capped at the configured maximum file size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, multipart.File, error) {
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return "", nil, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		case errors.Is(err, http.ErrNotMultipart):
			return "", nil, core.ErrNoFile
		}
		return "", nil, fmt.Errorf("parse upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, core.ErrNoFile
		}
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, file, nil
}

// handleGenerateChart answers the dashboard page's chart form. An unknown
// handle is reported as expired data.
func (s *Server) handleGenerateChart(w http.ResponseWriter, r *http.Request) {
	handle := r.FormValue("handle")
	q := chartQuery(r.FormValue("chart_type"), r.FormValue("x_col"), r.FormValue("y_col"), r.FormValue("agg"))

	res, err := s.service.Chart(r.Context(), handle, q)
	if err != nil {
		s.respondJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// chartQuery builds a query from request strings. Chart types that are not
// recognized are passed on and produce an empty chart.
func chartQuery(chartType, x, y, agg string) core.ChartQuery {
	ct, _ := core.ParseChartType(chartType)
	return core.ChartQuery{
		X:    x,
		Y:    y,
		Type: ct,
		Agg:  core.ParseAggFunc(agg),
	}
}

// handleSaveDashboard stores the posted chart configuration.
func (s *Server) handleSaveDashboard(w http.ResponseWriter, r *http.Request) {
	loc, err := s.service.SaveDashboard(r.Context(), r.FormValue("name"), []byte(r.FormValue("config")))
	if err != nil {
		s.respondJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": loc})
}

// handleListDashboards returns the saved dashboard names.
func (s *Server) handleListDashboards(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.ListDashboards(r.Context())
	if err != nil {
		s.respondJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dashboards": names})
}

// render writes a templ component as an HTML response. The page is built
// in memory first so a render failure can still become a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
