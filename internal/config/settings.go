package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

// Settings keys for Fyne preferences
const (
	KeyTranscriptsDir = "transcripts_directory"
	KeyTempDir        = "temp_directory"
	KeyDownloadDir    = "download_directory"
	KeyLanguageCode   = "sarvam_language_code"
	KeyChunkMinutes   = "chunk_minutes"
	KeyPollSeconds    = "poll_seconds"
	KeyMaxParallel    = "max_parallel_downloads"
	KeyLanguage       = "app_language"
)

// Default values
const (
	DefaultTranscriptsDir = "transcripts"
	DefaultTempDir        = "temp"
	DefaultDownloadDir    = "videos"
	DefaultLanguageCode   = "gu-IN"
	DefaultChunkMinutes   = 10
	DefaultPollSeconds    = 10
	DefaultMaxParallel    = 2
	DefaultLanguage       = "system"
)

// Limits
const (
	MinChunkMinutes = 1
	MaxChunkMinutes = 60
	MinPollSeconds  = 1
	MaxPollSeconds  = 300
	MinMaxParallel  = 1
	MaxMaxParallel  = 10
)

// Settings manages application configuration
type Settings struct {
	app     fyne.App
	baseDir string
}

// NewSettings creates a new settings manager. Relative default directories
// are resolved against the user's home directory.
func NewSettings(app fyne.App) *Settings {
	base, err := os.UserHomeDir()
	if err != nil {
		base = os.TempDir()
	}
	return &Settings{app: app, baseDir: filepath.Join(base, "MediaMagic")}
}

func (s *Settings) defaultDir(name string) string {
	return filepath.Join(s.baseDir, name)
}

func (s *Settings) stringWithDefault(key, fallback string) string {
	value := s.app.Preferences().String(key)
	if value == "" {
		s.app.Preferences().SetString(key, fallback)
		return fallback
	}
	return value
}

// GetTranscriptsDirectory returns the directory transcripts are written to
func (s *Settings) GetTranscriptsDirectory() string {
	return s.stringWithDefault(KeyTranscriptsDir, s.defaultDir(DefaultTranscriptsDir))
}

// SetTranscriptsDirectory sets the transcripts directory
func (s *Settings) SetTranscriptsDirectory(dir string) {
	s.app.Preferences().SetString(KeyTranscriptsDir, dir)
}

// GetTempDirectory returns the directory for intermediate audio and video files
func (s *Settings) GetTempDirectory() string {
	return s.stringWithDefault(KeyTempDir, s.defaultDir(DefaultTempDir))
}

// SetTempDirectory sets the temp directory
func (s *Settings) SetTempDirectory(dir string) {
	s.app.Preferences().SetString(KeyTempDir, dir)
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	return s.stringWithDefault(KeyDownloadDir, s.defaultDir(DefaultDownloadDir))
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetLanguageCode returns the speech language sent with transcription jobs
func (s *Settings) GetLanguageCode() string {
	return s.stringWithDefault(KeyLanguageCode, DefaultLanguageCode)
}

// SetLanguageCode sets the speech language code
func (s *Settings) SetLanguageCode(code string) {
	if code == "" {
		code = DefaultLanguageCode
	}
	s.app.Preferences().SetString(KeyLanguageCode, code)
}

// GetChunkMinutes returns the maximum audio chunk length in minutes
func (s *Settings) GetChunkMinutes() int {
	value := s.app.Preferences().Int(KeyChunkMinutes)
	if value <= 0 {
		s.SetChunkMinutes(DefaultChunkMinutes)
		return DefaultChunkMinutes
	}
	return value
}

// SetChunkMinutes sets the chunk length, clamped to [1,60]
func (s *Settings) SetChunkMinutes(minutes int) {
	s.app.Preferences().SetInt(KeyChunkMinutes, clamp(minutes, MinChunkMinutes, MaxChunkMinutes))
}

// GetPollSeconds returns the job status polling interval in seconds
func (s *Settings) GetPollSeconds() int {
	value := s.app.Preferences().Int(KeyPollSeconds)
	if value <= 0 {
		s.SetPollSeconds(DefaultPollSeconds)
		return DefaultPollSeconds
	}
	return value
}

// SetPollSeconds sets the polling interval, clamped to [1,300]
func (s *Settings) SetPollSeconds(seconds int) {
	s.app.Preferences().SetInt(KeyPollSeconds, clamp(seconds, MinPollSeconds, MaxPollSeconds))
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return value
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	s.app.Preferences().SetInt(KeyMaxParallel, clamp(count, MinMaxParallel, MaxMaxParallel))
}

// GetLanguage returns the configured UI language
func (s *Settings) GetLanguage() string {
	return s.stringWithDefault(KeyLanguage, DefaultLanguage)
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// GetLanguageCodeOptions returns speech languages offered in the settings dialog
func (s *Settings) GetLanguageCodeOptions() []string {
	return []string{"gu-IN", "hi-IN", "en-IN", "bn-IN", "kn-IN", "ml-IN", "mr-IN", "od-IN", "pa-IN", "ta-IN", "te-IN", "unknown"}
}

// Paths returns the configured directories as a PathsConfig
func (s *Settings) Paths() PathsConfig {
	return PathsConfig{
		Temp:        s.GetTempDirectory(),
		Transcripts: s.GetTranscriptsDirectory(),
		Videos:      s.GetDownloadDirectory(),
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
