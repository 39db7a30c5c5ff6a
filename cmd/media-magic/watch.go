package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/media-magic/internal/platform"
	"github.com/ytget/media-magic/internal/watch"
	"github.com/ytget/media-magic/internal/worker"
	"github.com/ytget/media-magic/internal/workflow"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Transcribe audio files as they appear in a directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = a.cfg.Paths.Audio
		}
		if err := platform.EnsureDirectories(dir, a.cfg.Paths.Temp, a.cfg.Paths.Transcripts); err != nil {
			return err
		}

		executor := worker.NewExecutor(a.workflow, a.log)
		defer executor.Close()
		go drainEvents(ctx, a, executor)

		handler := func(ctx context.Context, path string) error {
			run, err := executor.Submit(workflow.BatchRequest{Files: []string{path}})
			if err != nil {
				return err
			}
			select {
			case <-run.Done():
			case <-ctx.Done():
				run.Cancel()
				<-run.Done()
			}
			if result := run.Result(); result.Err != nil {
				return result.Err
			}
			return nil
		}

		w, err := watch.New(dir, handler, a.log, a.cfg.Sarvam.MaxParallel)
		if err != nil {
			return err
		}
		defer w.Stop()

		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watcher stopped: %w", err)
		}
		return nil
	},
}

// drainEvents logs progress of all runs
func drainEvents(ctx context.Context, a *cliApp, executor *worker.Executor) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-executor.Events():
			if !ok {
				return
			}
			if ev.Type == worker.EventProgress {
				a.log.Info(ctx, "%s: Transcribing: %s", ev.RunID, ev.Message)
			}
		}
	}
}

func init() {
	watchCmd.Flags().String("dir", "", "directory to watch (default: paths.audio from config)")
	rootCmd.AddCommand(watchCmd)
}
