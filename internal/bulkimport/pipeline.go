package bulkimport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/domain"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// Stage identifies the stepper state. Transitions are forward-only; the only
// way back is Reset.
type Stage int

const (
	// StageUpload waits for a CSV file.
	StageUpload Stage = iota
	// StageReview holds a validation result for user confirmation.
	StageReview
	// StageDone is terminal: a processing task has been submitted.
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageReview:
		return "review"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Backend is the slice of the transport client the pipeline needs.
type Backend interface {
	BulkValidate(ctx context.Context, csvContent string, hasHeaders bool) (*domain.BulkValidationResult, error)
	BulkProcess(ctx context.Context, tickets []domain.BulkTicket, opts domain.ProcessingOptions) (*domain.ProcessingResult, error)
	BulkTemplate(ctx context.Context) (*domain.CSVTemplate, error)
}

// Pipeline drives the three-stage bulk CSV import: Upload, Review, Process.
// The server is the sole authority on row-level correctness; the pipeline
// never re-validates rows itself.
//
// Validate and Process run off the caller's UI loop, so all state behind mu
// may be read and written from different goroutines. The mutex is released
// around backend calls; the stage gate is re-checked before committing.
type Pipeline struct {
	backend Backend
	logger  *zap.Logger

	mu         sync.Mutex
	stage      Stage
	gen        int // bumped by Reset so in-flight calls cannot commit stale results
	fileName   string
	csvContent string
	hasHeaders bool
	validation *domain.BulkValidationResult
	processing *domain.ProcessingResult

	// allowPartial relaxes the process gate from "zero invalid rows" to
	// "at least one valid row".
	allowPartial bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPartialSubmission accepts batches that still contain invalid rows, as
// long as at least one row is valid. The invalid rows are excluded either way.
func WithPartialSubmission() Option {
	return func(p *Pipeline) { p.allowPartial = true }
}

// New constructs a pipeline in the Upload stage.
func New(backend Backend, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{backend: backend, logger: logger, hasHeaders: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage returns the current stepper state.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// FileName returns the selected file's name, if any.
func (p *Pipeline) FileName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fileName
}

// Validation returns the server verdict, available from StageReview on.
func (p *Pipeline) Validation() *domain.BulkValidationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validation
}

// Processing returns the job handle, available in StageDone.
func (p *Pipeline) Processing() *domain.ProcessingResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing
}

// LoadFile reads the selected CSV file into the pipeline. Only files with a
// .csv extension are accepted. The stage stays Upload until validation
// succeeds.
func (p *Pipeline) LoadFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return apperrors.NewValidationError("only .csv files are accepted", map[string]any{"file": filepath.Base(path)})
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewValidationError("could not read file", map[string]any{"file": filepath.Base(path)})
	}
	return p.SetContent(filepath.Base(path), string(content))
}

// SetContent supplies CSV content directly, bypassing the filesystem.
func (p *Pipeline) SetContent(name, content string) error {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return apperrors.NewValidationError("only .csv files are accepted", map[string]any{"file": name})
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StageUpload {
		return apperrors.NewStateError("a file is already being imported; reset first")
	}
	p.fileName = name
	p.csvContent = content
	return nil
}

// Validate submits the CSV for server-side validation and, on success,
// advances to StageReview.
func (p *Pipeline) Validate(ctx context.Context) (*domain.BulkValidationResult, error) {
	p.mu.Lock()
	if p.stage != StageUpload {
		p.mu.Unlock()
		return nil, apperrors.NewStateError("validation already completed; reset to start over")
	}
	if p.csvContent == "" {
		p.mu.Unlock()
		return nil, apperrors.NewValidationError("select a CSV file first", nil)
	}
	content, hasHeaders, fileName, gen := p.csvContent, p.hasHeaders, p.fileName, p.gen
	p.mu.Unlock()

	result, err := p.backend.BulkValidate(ctx, content, hasHeaders)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.stage != StageUpload || p.gen != gen {
		p.mu.Unlock()
		return nil, apperrors.NewStateError("import was reset while validating")
	}
	p.validation = result
	p.stage = StageReview
	p.mu.Unlock()

	p.logger.Info("bulk validation completed",
		zap.String("file", fileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("valid_rows", result.ValidRows),
		zap.Int("invalid_rows", result.InvalidRows))
	return result, nil
}

// Preview returns the first n valid rows for the review table.
func (p *Pipeline) Preview(n int) []domain.BulkTicket {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.validation == nil {
		return nil
	}
	if n <= 0 || n > len(p.validation.Tickets) {
		n = len(p.validation.Tickets)
	}
	return p.validation.Tickets[:n]
}

// CanProcess reports whether the gate into processing is open. The default
// gate requires a fully valid batch; WithPartialSubmission relaxes it to at
// least one valid row.
func (p *Pipeline) CanProcess() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canProcessLocked()
}

func (p *Pipeline) canProcessLocked() bool {
	if p.stage != StageReview || p.validation == nil {
		return false
	}
	if p.validation.ValidRows == 0 {
		return false
	}
	if p.allowPartial {
		return true
	}
	return p.validation.IsValid
}

// Process submits the valid subset for batch processing and advances to the
// terminal stage. The returned task is fire-and-forget: nothing here polls it.
func (p *Pipeline) Process(ctx context.Context, opts domain.ProcessingOptions) (*domain.ProcessingResult, error) {
	p.mu.Lock()
	if p.stage != StageReview {
		p.mu.Unlock()
		return nil, apperrors.NewStateError("validate a CSV before processing")
	}
	if !p.canProcessLocked() {
		err := apperrors.NewValidationError("batch contains invalid rows; fix them or allow partial submission", nil)
		if p.validation != nil && p.validation.ValidRows == 0 {
			err = apperrors.NewValidationError("no valid rows to process", nil)
		}
		p.mu.Unlock()
		return nil, err
	}
	tickets, gen := p.validation.Tickets, p.gen
	p.mu.Unlock()

	result, err := p.backend.BulkProcess(ctx, tickets, opts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.stage != StageReview || p.gen != gen {
		p.mu.Unlock()
		return nil, apperrors.NewStateError("import was reset while processing")
	}
	p.processing = result
	p.stage = StageDone
	p.mu.Unlock()

	p.logger.Info("bulk processing submitted",
		zap.String("task_id", result.TaskID),
		zap.Int("tickets", len(tickets)))
	return result, nil
}

// Reset clears file, validation result, and processing result, returning to
// the Upload stage so the same filename can be selected again.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.stage = StageUpload
	p.fileName = ""
	p.csvContent = ""
	p.validation = nil
	p.processing = nil
}

// DownloadTemplate fetches the CSV template and saves it under dir. It is a
// side channel: failure never affects pipeline state.
func (p *Pipeline) DownloadTemplate(ctx context.Context, dir string) (string, error) {
	template, err := p.backend.BulkTemplate(ctx)
	if err != nil {
		return "", err
	}
	name := template.Filename
	if name == "" {
		name = "bulk_template.csv"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(template.Content), 0o644); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return path, nil
}
