package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "media-magic",
	Short:         "Download YouTube videos and transcribe their audio in batches",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "file with SARVAM_API_KEY")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stderrLogger().Error(ctx, "%v", err)
		stop()
		os.Exit(1)
	}
}
