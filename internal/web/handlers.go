package web

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/itaxotools/abcd-validator/internal/core"
	"github.com/itaxotools/abcd-validator/internal/logging"
	"github.com/itaxotools/abcd-validator/internal/web/views"
)

// validateResponse wraps the engine report for the API, adding the run
// identifier when history is enabled.
type validateResponse struct {
	RunID  string       `json:"runId,omitempty"`
	Report *core.Report `json:"report"`
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Index().Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runFromRequest parses the three uploaded table files and executes a
// validation run. The multipart field names match the table roles.
func (s *Server) runFromRequest(w http.ResponseWriter, r *http.Request) (*core.Report, int, error) {
	maxSize := s.cfg.Validate.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, 3*maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, http.StatusBadRequest, err
	}

	delim, err := core.ParseDelimiter(r.FormValue("delimiter"))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	inputs := make(map[core.TableRole]core.Input, len(core.Roles()))
	var files []multipart.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	for _, role := range core.Roles() {
		file, _, err := r.FormFile(string(role))
		if err != nil {
			return nil, http.StatusBadRequest, &core.LoadError{Role: role, Reason: "no input provided", Err: err}
		}
		files = append(files, file)
		inputs[role] = core.Input{Reader: file, Delimiter: delim}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Validate.Timeout)
	defer cancel()

	report, err := s.runner.Run(ctx, inputs)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	return report, http.StatusOK, nil
}

// handleValidate runs the engine over the uploaded files and returns
// the report as JSON.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	report, status, err := s.runFromRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, status)
		return
	}

	resp := validateResponse{Report: report}
	if s.store != nil {
		runID, err := s.store.SaveRun(r.Context(), report)
		if err != nil {
			// Persistence failure must not hide a finished report.
			logging.FromContext(r.Context()).Error("save run", "error", err)
		} else {
			resp.RunID = runID.String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleValidatePage runs the engine and renders the report as HTML.
func (s *Server) handleValidatePage(w http.ResponseWriter, r *http.Request) {
	report, status, err := s.runFromRequest(w, r)
	if err != nil {
		userMsg := core.MapError(err)
		logging.FromContext(r.Context()).Error("validation failed",
			"error", err.Error(), "code", userMsg.Code)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if rerr := views.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); rerr != nil {
			logging.FromContext(r.Context()).Error("render error page", "error", rerr)
		}
		return
	}

	if s.store != nil {
		if _, err := s.store.SaveRun(r.Context(), report); err != nil {
			logging.FromContext(r.Context()).Error("save run", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ReportPage(report).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render report", "error", err)
	}
}

// handleListRuns returns the most recent stored validation runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one stored run with its findings.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	findings, err := s.store.GetRunFindings(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"run": run, "findings": findings})
}
