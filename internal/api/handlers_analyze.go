package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tanloong/neosca/internal/analyzer"
	"github.com/tanloong/neosca/internal/catalog"
	"github.com/tanloong/neosca/internal/pipeline"
	"github.com/tanloong/neosca/internal/reader"
)

// handleAnalyze accepts a multipart corpus upload (one or more files
// under the "files" field) and queues a single analysis job over them.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with slack for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		// Single-file form field as a convenience.
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var files []pipeline.FileUpload
	for _, fh := range headers {
		filename := sanitizeFilename(fh.Filename)
		if !reader.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open "+filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read "+filename, http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		files = append(files, pipeline.FileUpload{Name: filename, Data: data})
	}

	reserve := r.FormValue("reserve_matched") == "true"
	job := pipeline.NewJob(files, reserve)

	// Optional per-job catalog override, uploaded under the "catalog" field.
	if cats := r.MultipartForm.File["catalog"]; len(cats) > 0 {
		fh := cats[0]
		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open catalog upload", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read catalog upload", http.StatusInternalServerError)
			return
		}
		cat, err := catalog.LoadBytes(data, sanitizeFilename(fh.Filename))
		if err != nil {
			jsonError(w, "invalid catalog: "+err.Error(), http.StatusBadRequest)
			return
		}
		job.SetCatalog(cat)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeAccepted(w, job)
}

// batchRequest is the JSON body for /api/analyze/batch: file groups
// submitted as separate jobs, with inline text content.
type batchRequest struct {
	Jobs []struct {
		Files []struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		} `json:"files"`
		ReserveMatched bool `json:"reserve_matched"`
	} `json:"jobs"`
}

func (s *Server) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Jobs) == 0 {
		jsonError(w, "at least one job is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, group := range req.Jobs {
		var files []pipeline.FileUpload
		var badFile string
		for _, f := range group.Files {
			filename := sanitizeFilename(f.Name)
			if !reader.IsSupportedExtension(filename) {
				badFile = filename
				break
			}
			files = append(files, pipeline.FileUpload{Name: filename, Data: []byte(f.Content)})
		}
		if badFile != "" {
			results = append(results, map[string]any{
				"error": fmt.Sprintf("unsupported file type: %s", filepath.Ext(badFile)),
			})
			continue
		}
		if len(files) == 0 {
			results = append(results, map[string]any{"error": "at least one file is required"})
			continue
		}

		job := pipeline.NewJob(files, group.ReserveMatched)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"job_id":   job.ID,
			"status":   job.Status,
			"poll_url": fmt.Sprintf("/api/analyze/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleAnalyzeResult renders the finished job's per-file records plus
// the corpus record, as JSON (default) or CSV (?format=csv).
func (s *Server) handleAnalyzeResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	records, corpus := job.Results()
	if corpus == nil {
		jsonError(w, fmt.Sprintf("job not finished (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}
	rows := append(append([]*analyzer.Record{}, records...), corpus)

	cat := s.orchestrator.Catalog()
	if jc := job.Catalog(); jc != nil {
		cat = jc
	}
	measures := cat.Measures()
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := analyzer.WriteJSON(w, measures, rows...); err != nil {
			s.log.Error("write result", "job_id", jobID, "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, jobID+".csv"))
		if err := analyzer.WriteCSV(w, measures, rows...); err != nil {
			s.log.Error("write result", "job_id", jobID, "error", err)
		}
	default:
		jsonError(w, "unsupported format (want csv or json)", http.StatusBadRequest)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeAccepted(w http.ResponseWriter, job *pipeline.Job) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"poll_url":   fmt.Sprintf("/api/analyze/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/analyze/%s/result", job.ID),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
