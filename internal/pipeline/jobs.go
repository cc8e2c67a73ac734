package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanloong/neosca/internal/analyzer"
	"github.com/tanloong/neosca/internal/catalog"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusReading   JobStatus = "reading"
	StatusParsing   JobStatus = "parsing"
	StatusAnalyzing JobStatus = "analyzing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// FileUpload is one corpus file handed to a job.
type FileUpload struct {
	Name string
	Data []byte
}

// Job tracks the state of a single corpus analysis run.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	ReserveMatched bool `json:"reserve_matched"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files   []FileUpload
	cat     *catalog.Catalog
	records []*analyzer.Record
	corpus  *analyzer.Record
	errors  []string
}

// Progress tracks processing progress across corpus files.
type Progress struct {
	TotalFiles        int      `json:"total_files"`
	FilesProcessed    int      `json:"files_processed"`
	SentencesAnalyzed int      `json:"sentences_analyzed"`
	SentencesSkipped  int      `json:"sentences_skipped"`
	Errors            []string `json:"errors"`
}

// NewJob creates a queued job over the given corpus files.
func NewJob(files []FileUpload, reserveMatched bool) *Job {
	now := time.Now()
	return &Job{
		ID:             uuid.NewString(),
		Status:         StatusQueued,
		Phase:          "queued",
		ReserveMatched: reserveMatched,
		Progress:       Progress{TotalFiles: len(files)},
		CreatedAt:      now,
		UpdatedAt:      now,
		files:          files,
	}
}

// Files returns the corpus files for processing.
func (j *Job) Files() []FileUpload {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// SetCatalog overrides the structure catalog for this job. Set before
// submission; nil means the service default.
func (j *Job) SetCatalog(cat *catalog.Catalog) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cat = cat
}

// Catalog returns the job's catalog override, or nil.
func (j *Job) Catalog() *catalog.Catalog {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cat
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddRecord stores one file's analysis result and advances progress.
func (j *Job) AddRecord(rec *analyzer.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	j.Progress.FilesProcessed++
	j.Progress.SentencesAnalyzed += rec.Sentences
	j.Progress.SentencesSkipped += len(rec.Skipped)
	j.UpdatedAt = time.Now()
}

// IncrFilesProcessed advances file progress without a result, for files
// that were skipped entirely.
func (j *Job) IncrFilesProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesProcessed++
	j.UpdatedAt = time.Now()
}

// SetCorpus stores the aggregated corpus record and drops the raw file
// bytes, which are no longer needed.
func (j *Job) SetCorpus(rec *analyzer.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.corpus = rec
	j.files = nil
	j.UpdatedAt = time.Now()
}

// Results returns the per-file records and the corpus record. The corpus
// record is nil until the job finishes.
func (j *Job) Results() ([]*analyzer.Record, *analyzer.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records, j.corpus
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID             string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	Phase          string    `json:"phase"`
	ReserveMatched bool      `json:"reserve_matched"`
	Progress       Progress  `json:"progress"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:             j.ID,
		Status:         j.Status,
		Phase:          j.Phase,
		ReserveMatched: j.ReserveMatched,
		Progress: Progress{
			TotalFiles:        j.Progress.TotalFiles,
			FilesProcessed:    j.Progress.FilesProcessed,
			SentencesAnalyzed: j.Progress.SentencesAnalyzed,
			SentencesSkipped:  j.Progress.SentencesSkipped,
			Errors:            errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
// Identical file uploads within one job are detected by hash.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
