package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/config"
	"github.com/ytget/media-magic/internal/download"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/worker"
	"github.com/ytget/media-magic/internal/workflow"
)

// cliApp holds the services shared by the subcommands
type cliApp struct {
	cfg      *config.File
	log      logger.Logger
	media    *media.Service
	download *download.Service
	workflow *workflow.Service
}

func stderrLogger() logger.Logger {
	return logger.NewWithWriter(logger.LevelInfo, os.Stderr)
}

// newCLIApp loads .env and the YAML config and wires the services
func newCLIApp(cmd *cobra.Command) (*cliApp, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	a := &cliApp{cfg: cfg, log: logger.New(cfg.Logging.Level)}
	a.media = media.NewService(a.log)
	a.download = download.NewService(cfg.Paths.Videos, cfg.Sarvam.MaxParallel, a.log)

	factory := workflow.NewSarvamFactory(func() workflow.SarvamOptions {
		return workflow.SarvamOptions{
			BaseURL:       a.cfg.Sarvam.BaseURL,
			Language:      a.cfg.Sarvam.Language,
			ChunkDuration: a.cfg.Sarvam.ChunkDuration,
			PollInterval:  a.cfg.Sarvam.PollInterval,
			WorkDir:       a.cfg.Paths.Temp,
		}
	}, a.media, a.log)

	a.workflow = workflow.NewService(a.media, a.download, factory, config.APIKey, workflow.Directories{
		Temp:        cfg.Paths.Temp,
		Transcripts: cfg.Paths.Transcripts,
	}, a.log)
	return a, nil
}

// execute runs cmd on a worker executor, logging progress until the result arrives
func (a *cliApp) execute(ctx context.Context, cmd worker.Command) (batch.Result, error) {
	executor := worker.NewExecutor(a.workflow, a.log)
	defer executor.Close()

	run, err := executor.Submit(cmd)
	if err != nil {
		return batch.Result{}, err
	}
	a.log.Info(ctx, "Started %s (%s)", cmd.Describe(), run.ID)

	for {
		select {
		case <-ctx.Done():
			run.Cancel()
			result := run.Wait()
			return result, ctx.Err()
		case ev := <-executor.Events():
			if ev.RunID != run.ID {
				continue
			}
			switch ev.Type {
			case worker.EventProgress:
				a.log.Info(ctx, "Transcribing: %s", ev.Message)
			case worker.EventResult:
				return resultOf(ev)
			}
		}
	}
}

func resultOf(ev worker.Event) (batch.Result, error) {
	if ev.Result == nil {
		return batch.Result{}, fmt.Errorf("run %s finished as %s", ev.RunID, ev.Status)
	}
	result := *ev.Result
	if ev.Status != model.TaskStatusCompleted {
		if result.Err != nil {
			return result, result.Err
		}
		return result, fmt.Errorf("run %s finished as %s", ev.RunID, ev.Status)
	}
	return result, nil
}

func (a *cliApp) report(ctx context.Context, result batch.Result) {
	a.log.Info(ctx, "Job %s: %d file(s) uploaded, %d transcript(s) written", result.JobID, len(result.Uploaded), len(result.Transcripts))
	for _, path := range result.Transcripts {
		fmt.Println(path)
	}
}
