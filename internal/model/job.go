package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TranscriptionJob is the handle returned when a remote job is initialized.
// Storage paths are SAS-authorized directory URLs.
type TranscriptionJob struct {
	JobID             string   `json:"job_id"`
	InputStoragePath  string   `json:"input_storage_path"`
	OutputStoragePath string   `json:"output_storage_path"`
	State             JobState `json:"job_state,omitempty"`
}

// JobStatus is the remote job status payload
type JobStatus struct {
	JobID   string      `json:"job_id"`
	State   JobState    `json:"job_state"`
	Details []JobDetail `json:"job_details"`
}

// JobDetail links an output file id to the uploaded input file name
type JobDetail struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// UnmarshalJSON accepts file_id as either a JSON string or a number
func (d *JobDetail) UnmarshalJSON(data []byte) error {
	var raw struct {
		FileID   json.RawMessage `json:"file_id"`
		FileName string          `json:"file_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.FileName = raw.FileName
	d.FileID = ""

	id := strings.TrimSpace(string(raw.FileID))
	if id == "" || id == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(id); err == nil {
		d.FileID = unquoted
		return nil
	}
	d.FileID = id
	return nil
}

// FileNames returns the file_id to file_name map, skipping incomplete entries
func (s *JobStatus) FileNames() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	names := make(map[string]string, len(s.Details))
	for _, detail := range s.Details {
		if detail.FileID == "" || detail.FileName == "" {
			continue
		}
		names[detail.FileID] = detail.FileName
	}
	return names
}
