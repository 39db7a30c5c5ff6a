package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/platform"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every YouTube video listed in a file",
	Example: `  # One URL per line, playlists are expanded
  media-magic download --file urls.txt --video-dir videos`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if dir, _ := cmd.Flags().GetString("video-dir"); dir != "" {
			a.download.SetDownloadDirectory(dir)
		}

		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()

		urls, err := platform.ReadURLList(f)
		if err != nil {
			return err
		}
		urls, err = platform.NewPlaylistParser().ExpandAll(ctx, urls)
		if err != nil {
			return err
		}
		a.log.Info(ctx, "Downloading %d video(s)", len(urls))
		a.download.SetUpdateCallback(func(task *model.DownloadTask) {
			a.log.Debug(ctx, "%s: %s %d%%", task.GetDisplayTitle(), task.Status, task.Percent)
		})

		failed := 0
		for _, task := range a.download.DownloadAll(ctx, urls) {
			if task.Status != model.TaskStatusCompleted {
				failed++
				a.log.Error(ctx, "%s: %s %s", task.URL, task.Status, task.LastError)
				continue
			}
			a.log.Info(ctx, "Downloaded %s in %s", task.GetDisplayTitle(), task.Elapsed().Round(time.Second))
			fmt.Println(task.OutputPath)
		}
		if failed > 0 {
			return fmt.Errorf("%d download(s) failed", failed)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("file", "f", "", "file with one YouTube URL per line")
	downloadCmd.Flags().String("video-dir", "", "directory for downloaded videos (default from config)")
	rootCmd.AddCommand(downloadCmd)
}
