package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/media-magic/internal/workflow"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [AUDIO...]",
	Short: "Transcribe audio files as one batch job",
	Example: `  # Every audio file in a directory
  media-magic transcribe --audio-dir audio --out transcripts --language gu-IN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if chunk, _ := cmd.Flags().GetDuration("chunk"); chunk > 0 {
			a.cfg.Sarvam.ChunkDuration = chunk
		}
		if poll, _ := cmd.Flags().GetDuration("poll"); poll > 0 {
			a.cfg.Sarvam.PollInterval = poll
		}
		if lang, _ := cmd.Flags().GetString("language"); lang != "" {
			a.cfg.Sarvam.Language = lang
		}

		files := args
		if len(files) == 0 {
			audioDir, _ := cmd.Flags().GetString("audio-dir")
			if audioDir == "" {
				audioDir = a.cfg.Paths.Audio
			}
			if files, err = workflow.AudioFiles(audioDir); err != nil {
				return err
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no audio files to transcribe")
		}

		out, _ := cmd.Flags().GetString("out")
		result, err := a.execute(ctx, workflow.BatchRequest{Files: files, DestDir: out})
		if err != nil {
			return err
		}
		a.report(ctx, result)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().String("audio-dir", "", "directory with audio files (default from config)")
	transcribeCmd.Flags().String("out", "", "directory for transcripts (default from config)")
	transcribeCmd.Flags().Duration("chunk", 0, "split audio longer than this (default from config)")
	transcribeCmd.Flags().Duration("poll", 0, "job status polling interval (default from config)")
	transcribeCmd.Flags().String("language", "", "speech language code, e.g. gu-IN")
	rootCmd.AddCommand(transcribeCmd)
}
