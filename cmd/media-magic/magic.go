package main

import (
	"github.com/spf13/cobra"

	"github.com/ytget/media-magic/internal/worker"
	"github.com/ytget/media-magic/internal/workflow"
)

var audioCmd = &cobra.Command{
	Use:   "audio FILE",
	Short: "Trim a local audio file and transcribe it",
	Example: `  media-magic audio lecture.mp3 --start 1m --end 12m30s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetDuration("start")
		end, _ := cmd.Flags().GetDuration("end")
		return runMagic(cmd, workflow.AudioRequest{Path: args[0], Start: start, End: end})
	},
}

var videoCmd = &cobra.Command{
	Use:   "video URL",
	Short: "Download a YouTube video and transcribe its audio",
	Example: `  media-magic video https://www.youtube.com/watch?v=... --end 5m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetDuration("start")
		end, _ := cmd.Flags().GetDuration("end")
		return runMagic(cmd, workflow.VideoRequest{
			URL:          args[0],
			Start:        start,
			End:          end,
			EnforceStart: cmd.Flags().Changed("start"),
			EnforceEnd:   cmd.Flags().Changed("end"),
		})
	},
}

func runMagic(cmd *cobra.Command, command worker.Command) error {
	a, err := newCLIApp(cmd)
	if err != nil {
		return err
	}
	result, err := a.execute(cmd.Context(), command)
	if err != nil {
		return err
	}
	a.report(cmd.Context(), result)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{audioCmd, videoCmd} {
		c.Flags().Duration("start", 0, "start of the excerpt")
		c.Flags().Duration("end", 0, "end of the excerpt (default: end of file)")
		rootCmd.AddCommand(c)
	}
}
