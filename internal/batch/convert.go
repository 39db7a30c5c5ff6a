package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ytget/media-magic/internal/logger"
)

// Transcript file extensions
const (
	JSONExtension = ".json"
	TextExtension = ".txt"
)

type transcriptFile struct {
	Transcript string `json:"transcript"`
}

// ConvertTranscripts turns every <file_id>.json in dir into a .txt named after
// the original upload (names maps file_id to file_name), or after the file id
// when no mapping exists. A JSON file is deleted only after its text was written.
// Returns the written .txt paths.
func ConvertTranscripts(dir string, names map[string]string, log logger.Logger) ([]string, error) {
	log = logger.OrNop(log)
	ctx := context.Background()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var written []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), JSONExtension) {
			continue
		}

		jsonPath := filepath.Join(dir, entry.Name())
		fileID := strings.TrimSuffix(entry.Name(), JSONExtension)
		txtPath := filepath.Join(dir, transcriptBaseName(fileID, names)+TextExtension)

		if err := convertOne(jsonPath, txtPath); err != nil {
			if errors.Is(err, errNoTranscript) {
				log.Warn(ctx, "No 'transcript' key found in %s", jsonPath)
			} else {
				log.Error(ctx, "Failed to convert %s to txt: %v", jsonPath, err)
			}
			continue
		}
		log.Info(ctx, "Extracted transcript to %s", txtPath)

		if err := os.Remove(jsonPath); err != nil {
			log.Warn(ctx, "Failed to delete %s: %v", jsonPath, err)
		}
		written = append(written, txtPath)
	}

	sort.Strings(written)
	return written, nil
}

var errNoTranscript = errors.New("no transcript")

func convertOne(jsonPath, txtPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return err
	}

	var tf transcriptFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return err
	}
	if tf.Transcript == "" {
		return errNoTranscript
	}

	return os.WriteFile(txtPath, []byte(tf.Transcript), 0644)
}

func transcriptBaseName(fileID string, names map[string]string) string {
	name, ok := names[fileID]
	if !ok || name == "" {
		return fileID
	}
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
