package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytget/media-magic/internal/model"
)

// AudioExtensions lists the extensions accepted as transcription input
var AudioExtensions = []string{".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a"}

// IsAudioFile reports whether path has a supported audio extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range AudioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// PlanChunks slices [0,total) into consecutive chunks of length chunk.
// The last chunk holds the remainder. Non-positive inputs produce no chunks.
func PlanChunks(total, chunk time.Duration) []model.AudioChunk {
	if total <= 0 || chunk <= 0 {
		return nil
	}

	count := int((total + chunk - 1) / chunk)
	chunks := make([]model.AudioChunk, 0, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * chunk
		end := start + chunk
		if end > total {
			end = total
		}
		chunks = append(chunks, model.AudioChunk{Index: i, Start: start, End: end})
	}
	return chunks
}

// ChunkFileName returns "<base>_chunk_<n>.wav" with a 1-based n
func ChunkFileName(src string, index int) string {
	return fmt.Sprintf("%s_chunk_%d%s", baseName(src), index+1, WAVExtension)
}

// TrimmedFileName returns "<base>_trimmed_<start>_<end>.mp3" in whole seconds
func TrimmedFileName(src string, start, end time.Duration) string {
	return fmt.Sprintf("%s_trimmed_%d_%d%s", baseName(src), int(start.Seconds()), int(end.Seconds()), MP3Extension)
}

// SplitClock breaks d into hours, minutes and seconds
func SplitClock(d time.Duration) (hours, minutes, seconds int) {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return total / 3600, (total % 3600) / 60, total % 60
}

// FormatClock renders d as HH:MM:SS
func FormatClock(d time.Duration) string {
	h, m, s := SplitClock(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ClockDuration is the inverse of SplitClock
func ClockDuration(hours, minutes, seconds int) time.Duration {
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// seconds formats d for ffmpeg's -ss / -t flags
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
