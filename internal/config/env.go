package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvAPIKey   = "SARVAM_API_KEY"
	EnvFileName = ".env"
)

// LoadEnv loads variables from the given .env files into the process
// environment without overriding existing ones. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{EnvFileName}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// APIKey returns the transcription API key from the environment
func APIKey() string {
	return strings.TrimSpace(os.Getenv(EnvAPIKey))
}
