package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tanloong/neosca/internal/catalog"
	"github.com/tanloong/neosca/internal/config"
	"github.com/tanloong/neosca/internal/nlp"
	"github.com/tanloong/neosca/internal/pipeline"
)

type stubParser struct{}

func (stubParser) ParseTrees(_ context.Context, text string) (string, error) {
	return "(ROOT (S (NP (PRP I)) (VP (VBP run))))", nil
}

func testServer(t *testing.T, apiKey string) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		APIKey:              apiKey,
		WorkerCount:         1,
		MaxQueueSize:        8,
		SentenceConcurrency: 1,
		MaxUploadBytes:      1 << 20,
		MaxSegmentChars:     4000,
		JobTTL:              time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, stubParser{}, catalog.Default(), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, nlp.NewParseStats(time.Hour), log, cfg), orch
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s, _ := testServer(t, "secret")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/structures", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/structures", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/structures", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", rec.Code)
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	s, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/structures", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected open access without configured key, got %d", rec.Code)
	}
}

func TestListStructures(t *testing.T) {
	s, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/structures", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Structures []structureInfo `json:"structures"`
		Measures   []string        `json:"measures"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	kinds := make(map[string]string)
	for _, st := range resp.Structures {
		kinds[st.Name] = st.Kind
	}
	if kinds["W"] != "counter" || kinds["S"] != "pattern" || kinds["MLS"] != "formula" {
		t.Errorf("unexpected kinds: %v", kinds)
	}
	if len(resp.Measures) != len(catalog.DefaultMeasures) {
		t.Errorf("expected %d measures, got %d", len(catalog.DefaultMeasures), len(resp.Measures))
	}
}

func multipartUpload(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func awaitResult(t *testing.T, s *Server, jobID string) *httptest.ResponseRecorder {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/"+jobID+"/result?format=csv", nil))
		if rec.Code == http.StatusOK {
			return rec
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestAnalyzeEndToEnd(t *testing.T) {
	s, _ := testServer(t, "")

	body, contentType := multipartUpload(t, "files", map[string]string{
		"corpus.trees": "(ROOT (S (NP (PRP I)) (VP (VBP run))))\n(ROOT (S (NP (PRP I)) (VP (VBP hide))))",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatal(err)
	}

	// Status is visible immediately.
	statusRec := httptest.NewRecorder()
	s.ServeHTTP(statusRec, httptest.NewRequest(http.MethodGet, "/api/analyze/"+accepted.JobID+"/status", nil))
	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected 200 status, got %d", statusRec.Code)
	}

	result := awaitResult(t, s, accepted.JobID)
	lines := strings.Split(strings.TrimSpace(result.Body.String()), "\n")
	// Header, one file row, one corpus row.
	if len(lines) != 3 {
		t.Fatalf("expected 3 csv lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "name,W,S,") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "corpus.trees,4,2,") {
		t.Errorf("unexpected file row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "corpus,4,2,") {
		t.Errorf("unexpected corpus row: %q", lines[2])
	}
}

func TestAnalyzeWithCatalogOverride(t *testing.T) {
	s, _ := testServer(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files", "corpus.trees")
	fw.Write([]byte("(ROOT (S (NP (PRP I)) (VP (VBP run))))"))
	cw, _ := mw.CreateFormFile("catalog", "custom.json")
	cw.Write([]byte(`{"structures":[
		{"name":"W","counter":"words"},
		{"name":"S","tregex_pattern":"S|SINV|SQ"},
		{"name":"MLS","value_source":"W / S"}
	],"measures":["S","MLS"]}`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatal(err)
	}

	result := awaitResult(t, s, accepted.JobID)
	lines := strings.Split(strings.TrimSpace(result.Body.String()), "\n")
	if lines[0] != "name,S,MLS" {
		t.Errorf("expected override measure columns, got header %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "corpus,1,2") {
		t.Errorf("unexpected corpus row: %q", lines[2])
	}
}

func TestAnalyzeRejectsBadCatalog(t *testing.T) {
	s, _ := testServer(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files", "a.txt")
	fw.Write([]byte("I run."))
	cw, _ := mw.CreateFormFile("catalog", "custom.json")
	cw.Write([]byte(`{"structures":[{"name":"X","value_source":"Y + 1"}]}`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unresolvable catalog, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeRejectsUnsupportedFile(t *testing.T) {
	s, _ := testServer(t, "")
	body, contentType := multipartUpload(t, "files", map[string]string{"x.exe": "nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatchAnalyze(t *testing.T) {
	s, _ := testServer(t, "")
	payload := `{"jobs":[{"files":[{"name":"a.txt","content":"I run."}]},{"files":[{"name":"b.exe","content":"x"}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/batch", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 job results, got %d", len(resp.Jobs))
	}
	if _, ok := resp.Jobs[0]["job_id"]; !ok {
		t.Errorf("expected first group accepted: %v", resp.Jobs[0])
	}
	if _, ok := resp.Jobs[1]["error"]; !ok {
		t.Errorf("expected second group rejected: %v", resp.Jobs[1])
	}
}

func TestResultNotFound(t *testing.T) {
	s, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/nope/result", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestParserStats(t *testing.T) {
	s, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/parser", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "stats") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
