package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [VIDEO...]",
	Short: "Extract mp3 audio from downloaded videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		videoDir, _ := cmd.Flags().GetString("video-dir")
		if videoDir == "" {
			videoDir = a.cfg.Paths.Videos
		}
		audioDir, _ := cmd.Flags().GetString("audio-dir")
		if audioDir == "" {
			audioDir = a.cfg.Paths.Audio
		}

		converted, err := a.workflow.ConvertVideos(cmd.Context(), videoDir, audioDir, args)
		for _, path := range converted {
			fmt.Println(path)
		}
		return err
	},
}

func init() {
	convertCmd.Flags().String("video-dir", "", "directory with videos (default from config)")
	convertCmd.Flags().String("audio-dir", "", "directory for mp3 files (default from config)")
	rootCmd.AddCommand(convertCmd)
}
