package workflow

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ytget/media-magic/internal/media"
)

// AudioRequest transcribes [Start,End) of a local audio file.
// A zero End means the end of the file.
type AudioRequest struct {
	Path  string
	Start time.Duration
	End   time.Duration
}

// Describe implements worker.Command
func (r AudioRequest) Describe() string {
	return fmt.Sprintf("audio %s [%s-%s)", filepath.Base(r.Path), media.FormatClock(r.Start), media.FormatClock(r.End))
}

// VideoRequest downloads a YouTube video and transcribes its audio.
// Start and End only apply when their Enforce flag is set.
type VideoRequest struct {
	URL          string
	Start        time.Duration
	End          time.Duration
	EnforceStart bool
	EnforceEnd   bool
}

// Describe implements worker.Command
func (r VideoRequest) Describe() string {
	return "video " + r.URL
}

// Trimmed reports whether the extracted audio has to be cut
func (r VideoRequest) Trimmed() bool {
	return r.EnforceStart || r.EnforceEnd
}

// Bounds returns the effective trim range. A zero end means the end of the file.
func (r VideoRequest) Bounds() (start, end time.Duration) {
	if r.EnforceStart {
		start = r.Start
	}
	if r.EnforceEnd {
		end = r.End
	}
	return start, end
}

// BatchRequest transcribes already prepared audio files into DestDir.
// An empty DestDir means the configured transcripts directory.
type BatchRequest struct {
	Files   []string
	DestDir string
}

// Describe implements worker.Command
func (r BatchRequest) Describe() string {
	if len(r.Files) == 1 {
		return "batch " + filepath.Base(r.Files[0])
	}
	return fmt.Sprintf("batch of %d files", len(r.Files))
}
