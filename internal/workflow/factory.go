package workflow

import (
	"time"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/sarvam"
	"github.com/ytget/media-magic/internal/storage"
)

// SarvamOptions configure the batch runners built by NewSarvamFactory
type SarvamOptions struct {
	BaseURL       string
	Language      string
	ChunkDuration time.Duration
	PollInterval  time.Duration
	WorkDir       string
}

// NewSarvamFactory returns a TranscriberFactory backed by the Sarvam API and
// Azure storage. options is read on every call so settings changes apply to
// the next batch.
func NewSarvamFactory(options func() SarvamOptions, splitter batch.Splitter, log logger.Logger) TranscriberFactory {
	log = logger.OrNop(log)
	transfer := storage.NewAzureTransfer(log)
	return func(apiKey string) Transcriber {
		opts := options()

		clientOpts := []sarvam.Option{sarvam.WithLogger(log)}
		if opts.BaseURL != "" {
			clientOpts = append(clientOpts, sarvam.WithBaseURL(opts.BaseURL))
		}
		if opts.Language != "" {
			clientOpts = append(clientOpts, sarvam.WithLanguage(opts.Language))
		}

		return batch.New(
			sarvam.NewClient(apiKey, clientOpts...),
			transfer,
			splitter,
			batch.WithPollInterval(opts.PollInterval),
			batch.WithChunkDuration(opts.ChunkDuration),
			batch.WithWorkDir(opts.WorkDir),
			batch.WithLogger(log),
		)
	}
}
