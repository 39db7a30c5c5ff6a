package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/storage"
)

// Defaults for a batch run
const (
	DefaultPollInterval  = 10 * time.Second
	DefaultChunkDuration = 10 * time.Minute

	scratchPrefix = ".split_"
)

// Progress messages reported to Request.OnProgress
const (
	MsgInitFailed      = "Job initialization failed"
	MsgUploading       = "Uploading files..."
	MsgUploadFailed    = "Failed to upload files"
	MsgStarting        = "Starting job..."
	MsgStartFailed     = "Failed to start job"
	MsgJobStatusPrefix = "Job status: "
	MsgStatusFailed    = "Failed to get job status"
	MsgJobFailed       = "Job failed"
	MsgDownloading     = "Downloading results..."
	MsgListFailed      = "Failed to list results"
	MsgDownloadFailed  = "Failed to download results"
	MsgComplete        = "Transcription complete!"
	MsgCancelled       = "Transcription cancelled"
)

// Errors describing why a batch ended in Failed
var (
	ErrInitFailed   = errors.New("job initialization failed")
	ErrStartFailed  = errors.New("failed to start job")
	ErrStatusFailed = errors.New("failed to get job status")
	ErrJobFailed    = errors.New("remote job failed")
)

// JobAPI is the remote job lifecycle
type JobAPI interface {
	InitializeJob(ctx context.Context) (*model.TranscriptionJob, error)
	StartJob(ctx context.Context, jobID string) (*model.JobStatus, error)
	CheckJobStatus(ctx context.Context, jobID string) (*model.JobStatus, error)
}

// Store moves files to and from SAS directories
type Store interface {
	Upload(ctx context.Context, sasURL string, paths []string) ([]storage.Result, error)
	List(ctx context.Context, sasURL string) ([]string, error)
	Download(ctx context.Context, sasURL string, names []string, destDir string) ([]storage.Result, error)
}

// Splitter probes and chunks audio
type Splitter interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	Split(ctx context.Context, src string, chunkDuration time.Duration, destDir string) ([]model.AudioChunk, error)
}

// Request is one batch invocation
type Request struct {
	Files      []string
	DestDir    string
	OnProgress func(status string)
}

// Result is the terminal outcome of a batch
type Result struct {
	JobID       string
	State       model.BatchState
	Uploaded    []string
	Transcripts []string
	Err         error
}

// Transcriber runs init, upload, start, poll, download and convert for a set of files
type Transcriber struct {
	jobs          JobAPI
	store         Store
	splitter      Splitter
	pollInterval  time.Duration
	chunkDuration time.Duration
	workDir       string
	log           logger.Logger
}

// Option configures a Transcriber
type Option func(*Transcriber)

// WithPollInterval sets the delay between status checks
func WithPollInterval(d time.Duration) Option {
	return func(t *Transcriber) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithChunkDuration sets the split threshold and chunk length
func WithChunkDuration(d time.Duration) Option {
	return func(t *Transcriber) {
		if d > 0 {
			t.chunkDuration = d
		}
	}
}

// WithWorkDir sets where chunks are written; defaults to the request's DestDir
func WithWorkDir(dir string) Option {
	return func(t *Transcriber) { t.workDir = dir }
}

// WithLogger injects the logger
func WithLogger(l logger.Logger) Option {
	return func(t *Transcriber) { t.log = logger.OrNop(l) }
}

// New creates a Transcriber
func New(jobs JobAPI, store Store, splitter Splitter, opts ...Option) *Transcriber {
	t := &Transcriber{
		jobs:          jobs,
		store:         store,
		splitter:      splitter,
		pollInterval:  DefaultPollInterval,
		chunkDuration: DefaultChunkDuration,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// run carries the mutable state of one Run call
type run struct {
	*Transcriber
	req     Request
	result  Result
	chunks  []string
	scratch []string
}

func (r *run) report(msg string) {
	if r.req.OnProgress != nil {
		r.req.OnProgress(msg)
	}
}

func (r *run) fail(ctx context.Context, msg string, err error) Result {
	r.report(msg)
	r.log.Error(ctx, "Batch %s failed: %s: %v", r.result.JobID, msg, err)
	r.result.State = model.BatchStateFailed
	r.result.Err = err
	return r.result
}

func (r *run) cancelled(ctx context.Context) Result {
	return r.fail(ctx, MsgCancelled, ctx.Err())
}

// Run transcribes req.Files and leaves .txt transcripts in req.DestDir.
// The returned Result always has a terminal State.
func (t *Transcriber) Run(ctx context.Context, req Request) Result {
	r := &run{Transcriber: t, req: req, result: Result{State: model.BatchStateInit}}
	defer r.cleanup(ctx)

	t.log.Info(ctx, "Transcribing %d file(s) into %s (chunk %s)", len(req.Files), req.DestDir, t.chunkDuration)

	job, err := t.jobs.InitializeJob(ctx)
	if err != nil {
		return r.fail(ctx, MsgInitFailed, fmt.Errorf("%w: %v", ErrInitFailed, err))
	}
	r.result.JobID = job.JobID
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}

	uploads := r.prepare(ctx)
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}

	r.result.State = model.BatchStateUploading
	r.report(MsgUploading)
	results, err := t.store.Upload(ctx, job.InputStoragePath, uploads)
	if err != nil {
		return r.fail(ctx, MsgUploadFailed, err)
	}
	r.result.Uploaded = storage.Succeeded(results)
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}

	r.report(MsgStarting)
	if _, err := t.jobs.StartJob(ctx, job.JobID); err != nil {
		if ctx.Err() != nil {
			return r.cancelled(ctx)
		}
		return r.fail(ctx, MsgStartFailed, fmt.Errorf("%w: %v", ErrStartFailed, err))
	}
	r.result.State = model.BatchStateStarted

	state, err := r.poll(ctx, job.JobID)
	if err != nil {
		if ctx.Err() != nil {
			return r.cancelled(ctx)
		}
		return r.fail(ctx, MsgStatusFailed, fmt.Errorf("%w: %v", ErrStatusFailed, err))
	}
	if state == model.JobStateFailed {
		return r.fail(ctx, MsgJobFailed, ErrJobFailed)
	}

	return r.collect(ctx, job)
}

// prepare replaces every file longer than the chunk duration by its chunks
func (r *run) prepare(ctx context.Context) []string {
	workDir := r.workDir
	if workDir == "" {
		workDir = r.req.DestDir
	}

	taken := make(map[string]bool)
	uploads := make([]string, 0, len(r.req.Files))
	for _, file := range r.req.Files {
		info, err := r.splitter.Probe(ctx, file)
		if err != nil {
			r.log.Warn(ctx, "Could not probe %s, uploading whole: %v", file, err)
			uploads = append(uploads, file)
			continue
		}
		if info.Duration <= r.chunkDuration {
			uploads = append(uploads, file)
			continue
		}

		// sources sharing a base name are split aside and renamed
		dir, collides := workDir, false
		for i := range media.PlanChunks(info.Duration, r.chunkDuration) {
			collides = collides || taken[media.ChunkFileName(file, i)]
		}
		if collides {
			dir = filepath.Join(workDir, fmt.Sprintf("%s%d", scratchPrefix, len(r.scratch)+1))
			r.scratch = append(r.scratch, dir)
		}

		chunks, err := r.splitter.Split(ctx, file, r.chunkDuration, dir)
		if err == nil && collides {
			chunks = r.relocate(ctx, chunks, workDir, taken)
		}
		for _, chunk := range chunks {
			taken[filepath.Base(chunk.Path)] = true
		}
		if err != nil || len(chunks) == 0 {
			r.log.Warn(ctx, "Could not split %s, uploading whole: %v", file, err)
			uploads = append(uploads, file)
			continue
		}
		for _, chunk := range chunks {
			uploads = append(uploads, chunk.Path)
			r.chunks = append(r.chunks, chunk.Path)
		}
		r.log.Info(ctx, "Split %s (%s) into %d chunks", file, media.FormatClock(info.Duration), len(chunks))
	}
	return uploads
}

// relocate moves chunks out of a scratch directory into workDir under the
// first "<n>_" prefix whose names are all free
func (r *run) relocate(ctx context.Context, chunks []model.AudioChunk, workDir string, taken map[string]bool) []model.AudioChunk {
	prefix := ""
	for n := 2; prefix == ""; n++ {
		candidate := fmt.Sprintf("%d_", n)
		free := true
		for _, chunk := range chunks {
			free = free && !taken[candidate+filepath.Base(chunk.Path)]
		}
		if free {
			prefix = candidate
		}
	}

	for i, chunk := range chunks {
		target := filepath.Join(workDir, prefix+filepath.Base(chunk.Path))
		if err := os.Rename(chunk.Path, target); err != nil {
			r.log.Warn(ctx, "Failed to rename chunk %s: %v", chunk.Path, err)
			continue
		}
		chunks[i].Path = target
	}
	return chunks
}

// poll checks the job until it reaches a terminal state
func (r *run) poll(ctx context.Context, jobID string) (model.JobState, error) {
	r.result.State = model.BatchStatePolling
	for attempt := 1; ; attempt++ {
		r.log.Debug(ctx, "Status check attempt %d for job %s", attempt, jobID)
		status, err := r.jobs.CheckJobStatus(ctx, jobID)
		if err != nil {
			return "", err
		}

		r.report(MsgJobStatusPrefix + status.State.String())
		if status.State.IsTerminal() {
			r.log.Info(ctx, "Job %s finished with state %s", jobID, status.State)
			return status.State, nil
		}

		timer := time.NewTimer(r.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// collect downloads every output object and converts the JSON results
func (r *run) collect(ctx context.Context, job *model.TranscriptionJob) Result {
	r.report(MsgDownloading)

	names, err := r.store.List(ctx, job.OutputStoragePath)
	if err != nil {
		return r.fail(ctx, MsgListFailed, err)
	}
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}
	if _, err := r.store.Download(ctx, job.OutputStoragePath, names, r.req.DestDir); err != nil {
		if ctx.Err() != nil {
			return r.cancelled(ctx)
		}
		return r.fail(ctx, MsgDownloadFailed, err)
	}
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}
	r.log.Info(ctx, "Downloaded %d result file(s) to %s", len(names), r.req.DestDir)

	fileNames := map[string]string{}
	if status, err := r.jobs.CheckJobStatus(ctx, job.JobID); err != nil {
		r.log.Warn(ctx, "Could not fetch file names for job %s, keeping file ids: %v", job.JobID, err)
	} else {
		fileNames = status.FileNames()
	}
	if ctx.Err() != nil {
		return r.cancelled(ctx)
	}

	r.report(MsgComplete)
	transcripts, err := ConvertTranscripts(r.req.DestDir, fileNames, r.log)
	if err != nil {
		r.log.Error(ctx, "Converting transcripts in %s: %v", r.req.DestDir, err)
	}

	r.result.State = model.BatchStateCompleted
	r.result.Transcripts = transcripts
	return r.result
}

func (r *run) cleanup(ctx context.Context) {
	for _, path := range r.chunks {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.log.Warn(ctx, "Failed to remove chunk %s: %v", path, err)
		}
	}
	for _, dir := range r.scratch {
		if err := os.RemoveAll(dir); err != nil {
			r.log.Warn(ctx, "Failed to remove %s: %v", dir, err)
		}
	}
}
