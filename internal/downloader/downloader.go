package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ytfetch/internal/format"
	"ytfetch/internal/logger"
	"ytfetch/pkg/models"
)

// JobState represents where a job is in its lifecycle
type JobState int

const (
	StatePending JobState = iota
	StateValidated
	StatePrepared
	StateExtracting
	StateResolved
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateValidated:
		return "validated"
	case StatePrepared:
		return "prepared"
	case StateExtracting:
		return "extracting"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is the working state of one Submit call. It is never shared.
type Job struct {
	ID           string
	Request      models.DownloadRequest
	Selector     format.Selector
	Steps        []Step
	Template     string
	State        JobState
	ResolvedPath string
	File         *models.StoredFile
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (j *Job) fail(err error) error {
	j.State = StateFailed
	j.Err = err
	j.FinishedAt = time.Now()
	return err
}

// Orchestrator turns download requests into stored files
type Orchestrator struct {
	engine  Engine
	probe   TranscoderProbe
	headers map[string]string
	log     *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithUserAgent sets the User-Agent header sent by the engine
func WithUserAgent(ua string) Option {
	return func(o *Orchestrator) {
		if ua != "" {
			o.headers["User-Agent"] = ua
		}
	}
}

// WithLogger sets the logger used for job lifecycle events
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOrchestrator creates an orchestrator around an engine and transcoder probe
func NewOrchestrator(engine Engine, probe TranscoderProbe, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:  engine,
		probe:   probe,
		headers: map[string]string{"User-Agent": models.DefaultUserAgent},
		log:     logger.L,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// TranscoderAvailable reports the probe's current answer
func (o *Orchestrator) TranscoderAvailable() bool {
	return o.probe != nil && o.probe.Available()
}

// Submit runs a download job to completion and returns the stored file.
// Errors always wrap one of the package's sentinel errors.
func (o *Orchestrator) Submit(ctx context.Context, req models.DownloadRequest) (*models.StoredFile, error) {
	job, err := o.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return job.File, nil
}

// Run is Submit for callers that also want the job record. The job is
// returned on failure too so its ID can be reported.
func (o *Orchestrator) Run(ctx context.Context, req models.DownloadRequest) (*Job, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		State:     StatePending,
		StartedAt: time.Now(),
	}

	log := o.log.With("job_id", job.ID)
	ctx = logger.WithContext(ctx, log)

	file, err := o.run(ctx, job)
	if err != nil {
		log.Warn("download failed", "url", req.URL, "kind", ErrorKind(err), "error", err)
		return job, err
	}

	job.File = file
	log.Info("download finished",
		"path", job.ResolvedPath,
		"size", file.Size,
		"duration", job.FinishedAt.Sub(job.StartedAt),
	)
	return job, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job) (*models.StoredFile, error) {
	req := job.Request
	log := logger.FromContext(ctx)

	if !IsAcceptedURL(req.URL) {
		return nil, job.fail(fmt.Errorf("%w: %q is not a YouTube URL", ErrInvalidURL, req.URL))
	}
	if err := req.Validate(); err != nil {
		return nil, job.fail(err)
	}

	// dependency check happens before anything touches the output directory
	steps, err := BuildSteps(req.MediaKind, req.Container, o.TranscoderAvailable())
	if err != nil {
		return nil, job.fail(err)
	}
	job.Steps = steps
	job.Selector = format.Resolve(req.MediaKind, req.Container, req.Quality)
	job.State = StateValidated

	outDir, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return nil, job.fail(fmt.Errorf("%w: resolve output directory: %w", ErrUnexpected, err))
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, job.fail(fmt.Errorf("%w: create output directory: %w", ErrUnexpected, err))
	}
	job.Template = OutputTemplate(outDir, req.CustomName)
	job.State = StatePrepared

	opts, err := NewEngineOptions(req.URL, job.Selector, job.Steps, job.Template, o.headers)
	if err != nil {
		return nil, job.fail(fmt.Errorf("%w: %w", ErrUnexpected, err))
	}

	log.Info("starting download",
		"url", req.URL,
		"format", job.Selector.Expression(),
		"steps", len(job.Steps),
		"template", job.Template,
	)
	if len(job.Steps) == 0 {
		log.Warn("ffmpeg not found, skipping metadata")
	}

	job.State = StateExtracting
	info, err := o.extract(ctx, opts)
	if err != nil {
		return nil, job.fail(err)
	}

	path, err := ResolveArtifact(job.Template, info)
	if err != nil {
		return nil, job.fail(err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, job.fail(fmt.Errorf("%w: %w", ErrArtifactMissing, err))
	}

	job.ResolvedPath = path
	job.State = StateResolved
	job.FinishedAt = time.Now()

	return &models.StoredFile{
		Dir:     filepath.Dir(path),
		Name:    filepath.Base(path),
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
	}, nil
}

type extractResult struct {
	info *EngineInfo
	err  error
}

// extract runs the engine in its own goroutine so a caller that stops
// waiting is released immediately. The engine shares ctx and is expected
// to stop on cancellation, but that is not guaranteed.
func (o *Orchestrator) extract(ctx context.Context, opts EngineOptions) (*EngineInfo, error) {
	done := make(chan extractResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- extractResult{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()

		info, err := o.engine.Extract(ctx, opts)
		done <- extractResult{info: info, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: job abandoned: %w", ErrUnexpected, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, classify(res.err)
		}
		if res.info == nil {
			return nil, fmt.Errorf("%w: video may be private or removed", ErrExtractionFailed)
		}
		return res.info, nil
	}
}
