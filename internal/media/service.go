package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/model"
)

// FFmpeg constants for probing and exporting audio
const (
	// Executables
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"

	// ffprobe output selection
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"

	// Codecs
	WAVCodec       = "pcm_s16le"
	MP3Codec       = "libmp3lame"
	MP3Quality     = "2"
	OverwriteFlag  = "-y"
	NoVideoFlag    = "-vn"
	WAVExtension   = ".wav"
	MP3Extension   = ".mp3"
	OutputDirPerms = 0755
)

// Errors returned by the media service
var (
	ErrInvalidRange = errors.New("start time must be before end time")
	ErrEmptyMedia   = errors.New("media has zero duration")
)

// Info describes a probed media file
type Info struct {
	Path      string
	Duration  time.Duration
	Extension string
}

// Service wraps ffprobe/ffmpeg for probing, trimming, converting and splitting audio
type Service struct {
	runner commandRunner
	log    logger.Logger
}

// NewService creates a media service backed by the ffmpeg binaries on PATH
func NewService(log logger.Logger) *Service {
	return &Service{runner: execRunner{}, log: logger.OrNop(log)}
}

// Probe returns duration and extension of the file at path
func (s *Service) Probe(ctx context.Context, path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		return Info{}, fmt.Errorf("input file does not exist: %s", path)
	}

	out, err := s.runner.Run(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	durationStr := strings.TrimSpace(out)
	secs, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}

	return Info{
		Path:      path,
		Duration:  time.Duration(secs * float64(time.Second)).Round(time.Millisecond),
		Extension: strings.ToLower(filepath.Ext(path)),
	}, nil
}

// Split exports src as consecutive wav chunks of chunkDuration into destDir.
// On any failure no chunks are returned and partial output is removed.
func (s *Service) Split(ctx context.Context, src string, chunkDuration time.Duration, destDir string) ([]model.AudioChunk, error) {
	info, err := s.Probe(ctx, src)
	if err != nil {
		s.log.Error(ctx, "Cannot split %s: %v", src, err)
		return nil, err
	}

	if err := os.MkdirAll(destDir, OutputDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	planned := PlanChunks(info.Duration, chunkDuration)
	chunks := make([]model.AudioChunk, 0, len(planned))
	for _, chunk := range planned {
		chunk.Path = filepath.Join(destDir, ChunkFileName(src, chunk.Index))
		if _, err := s.runner.Run(ctx, FFmpegCommand, s.BuildChunkArgs(src, chunk)...); err != nil {
			s.log.Error(ctx, "Failed to export chunk %s of %s: %v", chunk, src, err)
			for _, written := range chunks {
				os.Remove(written.Path)
			}
			os.Remove(chunk.Path)
			return nil, fmt.Errorf("failed to export chunk %d: %w", chunk.Index+1, err)
		}
		s.log.Debug(ctx, "Exported chunk %s to %s", chunk, chunk.Path)
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// Trim cuts [start,end) of src into an mp3 in destDir.
// A zero or out of range end is clamped to the source duration.
func (s *Service) Trim(ctx context.Context, src string, start, end time.Duration, destDir string) (string, error) {
	info, err := s.Probe(ctx, src)
	if err != nil {
		return "", err
	}
	if info.Duration <= 0 {
		return "", ErrEmptyMedia
	}

	if end <= 0 || end > info.Duration {
		end = info.Duration
	}
	if start < 0 || start >= end {
		return "", fmt.Errorf("%w: %s >= %s", ErrInvalidRange, FormatClock(start), FormatClock(end))
	}

	if err := os.MkdirAll(destDir, OutputDirPerms); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	outputPath := filepath.Join(destDir, TrimmedFileName(src, start, end))
	if _, err := s.runner.Run(ctx, FFmpegCommand, s.BuildTrimArgs(src, outputPath, start, end)...); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to trim %s: %w", src, err)
	}

	s.log.Info(ctx, "Trimmed %s [%s-%s) to %s", src, FormatClock(start), FormatClock(end), outputPath)
	return outputPath, nil
}

// ExtractAudio converts a video file into <base>.mp3 in destDir
func (s *Service) ExtractAudio(ctx context.Context, videoPath, destDir string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("input file does not exist: %s", videoPath)
	}
	if err := os.MkdirAll(destDir, OutputDirPerms); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	outputPath := filepath.Join(destDir, baseName(videoPath)+MP3Extension)
	if _, err := s.runner.Run(ctx, FFmpegCommand, s.BuildExtractArgs(videoPath, outputPath)...); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to convert %s to audio: %w", videoPath, err)
	}

	s.log.Info(ctx, "Converted %s to %s", videoPath, outputPath)
	return outputPath, nil
}

// BuildChunkArgs builds the ffmpeg arguments exporting one chunk as PCM wav
func (s *Service) BuildChunkArgs(src string, chunk model.AudioChunk) []string {
	return []string{
		OverwriteFlag,
		"-ss", seconds(chunk.Start), // seek before input for speed
		"-t", seconds(chunk.Duration()),
		"-i", src,
		NoVideoFlag,
		"-acodec", WAVCodec,
		chunk.Path,
	}
}

// BuildTrimArgs builds the ffmpeg arguments for an mp3 trim
func (s *Service) BuildTrimArgs(src, outputPath string, start, end time.Duration) []string {
	return []string{
		OverwriteFlag,
		"-ss", seconds(start),
		"-t", seconds(end - start),
		"-i", src,
		NoVideoFlag,
		"-acodec", MP3Codec,
		"-q:a", MP3Quality,
		outputPath,
	}
}

// BuildExtractArgs builds the ffmpeg arguments for video to mp3 conversion
func (s *Service) BuildExtractArgs(videoPath, outputPath string) []string {
	return []string{
		OverwriteFlag,
		"-i", videoPath,
		NoVideoFlag,
		"-acodec", MP3Codec,
		"-q:a", MP3Quality,
		outputPath,
	}
}
