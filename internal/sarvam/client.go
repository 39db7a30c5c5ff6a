package sarvam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/model"
)

// API constants
const (
	DefaultBaseURL  = "https://api.sarvam.ai/speech-to-text"
	DefaultLanguage = "unknown"
	APIKeyHeader    = "API-Subscription-Key"
	ContentTypeJSON = "application/json"

	initPath   = "/job/init"
	startPath  = "/job"
	statusPath = "/job/%s/status"

	maxErrorBody = 4 << 10
)

// Errors returned by the client
var (
	ErrMissingAPIKey    = errors.New("SARVAM_API_KEY not set")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// APIError carries a non-success response
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s %d: %s", e.Op, ErrUnexpectedStatus, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) match any APIError
func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Client talks to the batch speech-to-text job API
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	log        logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the transport
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLanguage sets the language_code sent when a job starts
func WithLanguage(code string) Option {
	return func(c *Client) {
		if code != "" {
			c.language = code
		}
	}
}

// WithLogger injects the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// NewClient creates a job API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		language:   DefaultLanguage,
		httpClient: http.DefaultClient,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Language returns the configured language code
func (c *Client) Language() string {
	return c.language
}

type startRequest struct {
	JobID         string        `json:"job_id"`
	JobParameters jobParameters `json:"job_parameters"`
}

type jobParameters struct {
	LanguageCode string `json:"language_code"`
}

// InitializeJob requests a fresh job and its SAS storage paths
func (c *Client) InitializeJob(ctx context.Context) (*model.TranscriptionJob, error) {
	var job model.TranscriptionJob
	if err := c.do(ctx, "initialize job", http.MethodPost, initPath, struct{}{}, http.StatusAccepted, &job); err != nil {
		return nil, err
	}
	if job.JobID == "" {
		return nil, fmt.Errorf("initialize job: response has no job_id")
	}
	c.log.Info(ctx, "Initialized job %s", job.JobID)
	return &job, nil
}

// StartJob starts processing of the files uploaded for jobID
func (c *Client) StartJob(ctx context.Context, jobID string) (*model.JobStatus, error) {
	body := startRequest{JobID: jobID, JobParameters: jobParameters{LanguageCode: c.language}}

	var status model.JobStatus
	if err := c.do(ctx, "start job", http.MethodPost, startPath, body, http.StatusOK, &status); err != nil {
		return nil, err
	}
	if status.JobID == "" {
		status.JobID = jobID
	}
	c.log.Info(ctx, "Started job %s (language %s)", jobID, c.language)
	return &status, nil
}

// CheckJobStatus returns the job state and, once complete, the per-file details
func (c *Client) CheckJobStatus(ctx context.Context, jobID string) (*model.JobStatus, error) {
	var status model.JobStatus
	path := fmt.Sprintf(statusPath, url.PathEscape(jobID))
	if err := c.do(ctx, "check job status", http.MethodGet, path, nil, http.StatusOK, &status); err != nil {
		return nil, err
	}
	if status.JobID == "" {
		status.JobID = jobID
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}, want int, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", ContentTypeJSON)
	if payload != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(ctx, "%s failed: %v", op, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		c.log.Error(ctx, "%s returned %d: %s", op, resp.StatusCode, apiErr.Body)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Error(ctx, "%s: failed to decode response: %v", op, err)
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
