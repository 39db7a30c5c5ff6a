package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration read by the command line tool
type File struct {
	Paths   PathsConfig   `yaml:"paths"`
	Sarvam  SarvamConfig  `yaml:"sarvam"`
	Logging LoggingConfig `yaml:"logging"`
}

type PathsConfig struct {
	Temp        string `yaml:"temp"`
	Transcripts string `yaml:"transcripts"`
	Videos      string `yaml:"videos"`
	Audio       string `yaml:"audio"`
}

type SarvamConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Language      string        `yaml:"language"`
	ChunkDuration time.Duration `yaml:"chunk_duration"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxParallel   int           `yaml:"max_parallel"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a File with every default filled in
func Default() *File {
	f := &File{}
	_ = f.Validate()
	return f
}

// Validate fills defaults and rejects values that cannot work
func (f *File) Validate() error {
	if f.Paths.Temp == "" {
		f.Paths.Temp = DefaultTempDir
	}
	if f.Paths.Transcripts == "" {
		f.Paths.Transcripts = DefaultTranscriptsDir
	}
	if f.Paths.Videos == "" {
		f.Paths.Videos = DefaultDownloadDir
	}
	if f.Paths.Audio == "" {
		f.Paths.Audio = "audio"
	}
	if f.Sarvam.Language == "" {
		f.Sarvam.Language = DefaultLanguageCode
	}
	if f.Sarvam.ChunkDuration == 0 {
		f.Sarvam.ChunkDuration = DefaultChunkMinutes * time.Minute
	}
	if f.Sarvam.PollInterval == 0 {
		f.Sarvam.PollInterval = DefaultPollSeconds * time.Second
	}
	if f.Sarvam.MaxParallel == 0 {
		f.Sarvam.MaxParallel = DefaultMaxParallel
	}
	if f.Logging.Level == "" {
		f.Logging.Level = "info"
	}

	if f.Sarvam.ChunkDuration < 0 {
		return fmt.Errorf("sarvam.chunk_duration must be positive")
	}
	if f.Sarvam.PollInterval < 0 {
		return fmt.Errorf("sarvam.poll_interval must be positive")
	}
	if f.Sarvam.MaxParallel < MinMaxParallel || f.Sarvam.MaxParallel > MaxMaxParallel {
		return fmt.Errorf("sarvam.max_parallel must be between %d and %d", MinMaxParallel, MaxMaxParallel)
	}
	return nil
}

// Load reads the YAML file at path. A missing file yields the defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &f, nil
}
