package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tanloong/neosca/internal/analyzer"
	"github.com/tanloong/neosca/internal/catalog"
	"github.com/tanloong/neosca/internal/nlp"
	"github.com/tanloong/neosca/internal/reader"
)

// Worker processes a single corpus analysis job.
type Worker struct {
	parser nlp.Parser
	cat    *catalog.Catalog
	log    *slog.Logger

	maxSegmentChars     int
	maxConcurrentParse  int
	sentenceConcurrency int
	pdfFallback         bool
}

func NewWorker(parser nlp.Parser, cat *catalog.Catalog, log *slog.Logger, maxSegmentChars, concurrency int, pdfFallback bool) *Worker {
	return &Worker{
		parser:              parser,
		cat:                 cat,
		log:                 log,
		maxSegmentChars:     maxSegmentChars,
		maxConcurrentParse:  concurrency,
		sentenceConcurrency: concurrency,
		pdfFallback:         pdfFallback,
	}
}

// Process runs the full analysis pipeline for a job: read each corpus
// file, parse its text into trees (unless pre-parsed), evaluate the
// catalog, then aggregate the per-file records into one corpus record.
// File-level failures are recorded and skipped, never fatal to the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	cat := w.cat
	if jc := job.Catalog(); jc != nil {
		cat = jc
	}
	an := analyzer.New(cat,
		analyzer.WithConcurrency(w.sentenceConcurrency),
		analyzer.WithReserveMatched(job.ReserveMatched),
		analyzer.WithLogger(log),
	)

	hadErrors := false
	seen := make(map[string]string) // content hash -> first filename

	for _, file := range job.Files() {
		rec, err := w.processFile(ctx, job, an, file, seen, log)
		if err != nil {
			log.Error("file failed", "file", file.Name, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", file.Name, err))
			job.IncrFilesProcessed()
			hadErrors = true
			continue
		}
		if rec == nil { // duplicate content
			job.IncrFilesProcessed()
			continue
		}
		if len(rec.Skipped) > 0 {
			hadErrors = true
		}
		job.AddRecord(rec)
	}

	records, _ := job.Results()
	job.SetStatus(StatusAnalyzing, "aggregating")
	job.SetCorpus(an.Combine("corpus", records...))
	if len(job.Snapshot().Progress.Errors) > 0 {
		hadErrors = true
	}
	log.Info("analysis complete", "files", len(records), "errors", hadErrors)

	switch {
	case len(records) == 0:
		job.SetStatus(StatusFailed, "done")
	case hadErrors:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) processFile(ctx context.Context, job *Job, an *analyzer.Analyzer, file FileUpload, seen map[string]string, log *slog.Logger) (*analyzer.Record, error) {
	job.SetStatus(StatusReading, "reading "+file.Name)

	if !reader.IsSupportedExtension(file.Name) {
		return nil, fmt.Errorf("unsupported file extension")
	}

	hash := ContentHashHex(file.Data)
	if first, dup := seen[hash]; dup {
		log.Info("duplicate file content, skipping", "file", file.Name, "same_as", first)
		job.AddError(fmt.Sprintf("%s: duplicate of %s, skipped", file.Name, first))
		return nil, nil
	}
	seen[hash] = file.Name

	rd, err := reader.ForFile(file.Name)
	if err != nil {
		return nil, err
	}
	if pr, ok := rd.(*reader.PDFReader); ok {
		pr.FallbackPdftotext = w.pdfFallback
	}

	doc, err := rd.Read(bytes.NewReader(file.Data), file.Name)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	treesText := doc.Trees
	if !doc.PreParsed() {
		segments := reader.Segment(doc.Blocks, w.maxSegmentChars)
		if len(segments) == 0 {
			return nil, fmt.Errorf("no extractable text")
		}
		job.SetStatus(StatusParsing, "parsing "+file.Name)
		treesText, err = w.parseSegments(ctx, job, file.Name, segments, log)
		if err != nil {
			return nil, err
		}
	}

	job.SetStatus(StatusAnalyzing, "analyzing "+file.Name)
	return an.AnalyzeText(ctx, file.Name, treesText), nil
}

// parseSegments sends the file's segments to the parse service with
// bounded concurrency and retry, and joins the returned trees back into
// original segment order. Failed segments are recorded and dropped; only
// a file with zero parsed segments is an error.
func (w *Worker) parseSegments(ctx context.Context, job *Job, filename string, segments []string, log *slog.Logger) (string, error) {
	type segResult struct {
		idx   int
		trees string
		err   error
	}
	results := make(chan segResult, len(segments))
	sem := make(chan struct{}, w.maxConcurrentParse)

	for i, seg := range segments {
		sem <- struct{}{}
		go func(i int, seg string) {
			defer func() { <-sem }()
			var trees string
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				trees, lastErr = w.parser.ParseTrees(ctx, seg)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable parse error", "file", filename, "segment", i, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- segResult{idx: i, err: ctx.Err()}
					return
				}
			}
			results <- segResult{idx: i, trees: trees, err: lastErr}
		}(i, seg)
	}

	ordered := make([]string, len(segments))
	parsed := 0
	for range segments {
		r := <-results
		if r.err != nil {
			log.Error("parse failed", "file", filename, "segment", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("%s: segment %d: %s", filename, r.idx, r.err))
			continue
		}
		ordered[r.idx] = r.trees
		parsed++
	}

	if parsed == 0 {
		return "", fmt.Errorf("all %d parse requests failed", len(segments))
	}

	var sb strings.Builder
	for _, trees := range ordered {
		if trees == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(trees)
	}
	return sb.String(), nil
}
