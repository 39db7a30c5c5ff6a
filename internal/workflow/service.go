package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/platform"
	"github.com/ytget/media-magic/internal/sarvam"
	"github.com/ytget/media-magic/internal/worker"
)

// Progress messages
const (
	MsgMissingAPIKey = "SARVAM_API_KEY not set in environment."
	MsgTrimming      = "Trimming audio..."
	MsgDownloading   = "Downloading video..."
	MsgConverting    = "Converting to audio..."
	MsgTranscribing  = "Transcribing audio..."
)

// Errors
var (
	ErrMissingLink        = errors.New("no YouTube link provided")
	ErrMissingAPIKey      = sarvam.ErrMissingAPIKey
	ErrInvalidRange       = media.ErrInvalidRange
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// VideoExtensions are the files ConvertVideos picks up from a directory
var VideoExtensions = []string{".mp4", ".mkv", ".webm", ".mov", ".avi"}

// Transcriber runs one batch transcription
type Transcriber interface {
	Run(ctx context.Context, req batch.Request) batch.Result
}

// TranscriberFactory builds a Transcriber for an API key
type TranscriberFactory func(apiKey string) Transcriber

// MediaProcessor probes, trims and converts local media
type MediaProcessor interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	Trim(ctx context.Context, src string, start, end time.Duration, destDir string) (string, error)
	ExtractAudio(ctx context.Context, videoPath, destDir string) (string, error)
}

// VideoDownloader fetches a single video
type VideoDownloader interface {
	Download(ctx context.Context, url string) (*model.DownloadTask, error)
}

// Directories used by the workflows
type Directories struct {
	Temp        string
	Transcripts string
}

// Service runs the end-to-end transcription workflows
type Service struct {
	media          MediaProcessor
	downloader     VideoDownloader
	newTranscriber TranscriberFactory
	apiKey         func() string
	log            logger.Logger

	mu   sync.RWMutex
	dirs Directories
}

// NewService creates a workflow service
func NewService(mp MediaProcessor, dl VideoDownloader, factory TranscriberFactory, apiKey func() string, dirs Directories, log logger.Logger) *Service {
	return &Service{
		media:          mp,
		downloader:     dl,
		newTranscriber: factory,
		apiKey:         apiKey,
		dirs:           dirs,
		log:            logger.OrNop(log),
	}
}

// SetDirectories replaces the temp and transcripts directories
func (s *Service) SetDirectories(dirs Directories) {
	s.mu.Lock()
	s.dirs = dirs
	s.mu.Unlock()
}

// Directories returns the current directories
func (s *Service) Directories() Directories {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirs
}

// Handle implements worker.Handler
func (s *Service) Handle(ctx context.Context, cmd worker.Command, progress func(string)) batch.Result {
	switch c := cmd.(type) {
	case AudioRequest:
		return s.TranscribeAudio(ctx, c, progress)
	case *AudioRequest:
		return s.TranscribeAudio(ctx, *c, progress)
	case VideoRequest:
		return s.TranscribeVideo(ctx, c, progress)
	case *VideoRequest:
		return s.TranscribeVideo(ctx, *c, progress)
	case BatchRequest:
		return s.TranscribeFiles(ctx, c, progress)
	case *BatchRequest:
		return s.TranscribeFiles(ctx, *c, progress)
	default:
		return failed(fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd))
	}
}

// transcriber returns a batch runner for the current key, or false after
// reporting the missing key
func (s *Service) transcriber(ctx context.Context, report func(string)) (Transcriber, bool) {
	key := ""
	if s.apiKey != nil {
		key = strings.TrimSpace(s.apiKey())
	}
	if key == "" {
		report(MsgMissingAPIKey)
		s.log.Error(ctx, "%s", MsgMissingAPIKey)
		return nil, false
	}
	return s.newTranscriber(key), true
}

// TranscribeAudio trims a local file and transcribes the excerpt
func (s *Service) TranscribeAudio(ctx context.Context, req AudioRequest, progress func(string)) batch.Result {
	report := reporter(progress)
	dirs := s.Directories()

	t, ok := s.transcriber(ctx, report)
	if !ok {
		return failed(ErrMissingAPIKey)
	}
	if req.End > 0 && req.Start >= req.End {
		err := fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange, media.FormatClock(req.Start), media.FormatClock(req.End))
		report(err.Error())
		return failed(err)
	}

	report(MsgTrimming)
	trimmed, err := s.media.Trim(ctx, req.Path, req.Start, req.End, dirs.Temp)
	if err != nil {
		s.log.Error(ctx, "Failed to trim %s: %v", req.Path, err)
		report(err.Error())
		return failed(err)
	}
	defer platform.RemoveFiles(s.log, trimmed)

	return t.Run(ctx, batch.Request{Files: []string{trimmed}, DestDir: dirs.Transcripts, OnProgress: progress})
}

// TranscribeVideo downloads a video, extracts its audio and transcribes it
func (s *Service) TranscribeVideo(ctx context.Context, req VideoRequest, progress func(string)) batch.Result {
	report := reporter(progress)
	dirs := s.Directories()

	t, ok := s.transcriber(ctx, report)
	if !ok {
		return failed(ErrMissingAPIKey)
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		report(ErrMissingLink.Error())
		return failed(ErrMissingLink)
	}
	start, end := req.Bounds()
	if end > 0 && start >= end {
		err := fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange, media.FormatClock(start), media.FormatClock(end))
		report(err.Error())
		return failed(err)
	}

	var intermediate []string
	defer func() { platform.RemoveFiles(s.log, intermediate...) }()

	report(MsgDownloading)
	task, err := s.downloader.Download(ctx, req.URL)
	if task != nil && task.OutputPath != "" {
		intermediate = append(intermediate, task.OutputPath)
	}
	if err != nil {
		report(err.Error())
		return failed(err)
	}

	report(MsgConverting)
	audio, err := s.media.ExtractAudio(ctx, task.OutputPath, dirs.Temp)
	if err != nil {
		report(err.Error())
		return failed(err)
	}
	intermediate = append(intermediate, audio)

	if req.Trimmed() {
		report(MsgTrimming)
		trimmed, err := s.media.Trim(ctx, audio, start, end, dirs.Temp)
		if err != nil {
			report(err.Error())
			return failed(err)
		}
		intermediate = append(intermediate, trimmed)
		audio = trimmed
	}

	report(MsgTranscribing)
	return t.Run(ctx, batch.Request{Files: []string{audio}, DestDir: dirs.Transcripts, OnProgress: progress})
}

// TranscribeFiles transcribes prepared audio files as one batch
func (s *Service) TranscribeFiles(ctx context.Context, req BatchRequest, progress func(string)) batch.Result {
	report := reporter(progress)
	if len(req.Files) == 0 {
		err := errors.New("no audio files to transcribe")
		report(err.Error())
		return failed(err)
	}

	t, ok := s.transcriber(ctx, report)
	if !ok {
		return failed(ErrMissingAPIKey)
	}

	dest := req.DestDir
	if dest == "" {
		dest = s.Directories().Transcripts
	}
	return t.Run(ctx, batch.Request{Files: req.Files, DestDir: dest, OnProgress: progress})
}

// ConvertVideos extracts the audio of videos in videoDir into audioDir.
// With no names every video in videoDir is converted. Failures are
// collected and do not stop the remaining conversions.
func (s *Service) ConvertVideos(ctx context.Context, videoDir, audioDir string, names []string) ([]string, error) {
	if len(names) == 0 {
		var err error
		names, err = ListFiles(videoDir, VideoExtensions)
		if err != nil {
			return nil, err
		}
	}

	var converted []string
	var errs []error
	for _, name := range names {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		audio, err := s.media.ExtractAudio(ctx, filepath.Join(videoDir, name), audioDir)
		if err != nil {
			s.log.Error(ctx, "Failed to convert %s: %v", name, err)
			errs = append(errs, err)
			continue
		}
		converted = append(converted, audio)
	}
	return converted, errors.Join(errs...)
}

// ListFiles returns the sorted names of files in dir with one of exts
func ListFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, entry.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// AudioFiles returns the full paths of audio files in dir
func AudioFiles(dir string) ([]string, error) {
	names, err := ListFiles(dir, media.AudioExtensions)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

func failed(err error) batch.Result {
	return batch.Result{State: model.BatchStateFailed, Err: err}
}

func reporter(progress func(string)) func(string) {
	if progress == nil {
		return func(string) {}
	}
	return progress
}
