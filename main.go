package main

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/media-magic/internal/config"
	"github.com/ytget/media-magic/internal/download"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/platform"
	"github.com/ytget/media-magic/internal/ui"
	"github.com/ytget/media-magic/internal/worker"
	"github.com/ytget/media-magic/internal/workflow"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.media-magic"
	AppName = "Media Magic"
)

func main() {
	ctx := context.Background()

	if err := config.LoadEnv(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewMagicTheme())
	if icon, err := ui.LoadLogoResource(); err == nil {
		myApp.SetIcon(icon)
	}

	log := logger.New(logger.LevelInfo)
	log.Info(ctx, "%s v%s starting...", AppName, version)

	settings := config.NewSettings(myApp)
	if err := platform.EnsureDirectories(settings.GetTempDirectory(), settings.GetTranscriptsDirectory(), settings.GetDownloadDirectory()); err != nil {
		log.Warn(ctx, "Failed to prepare directories: %v", err)
	}

	mediaSvc := media.NewService(log)
	downloadSvc := download.NewService(settings.GetDownloadDirectory(), settings.GetMaxParallelDownloads(), log)

	factory := workflow.NewSarvamFactory(func() workflow.SarvamOptions {
		return workflow.SarvamOptions{
			Language:      settings.GetLanguageCode(),
			ChunkDuration: time.Duration(settings.GetChunkMinutes()) * time.Minute,
			PollInterval:  time.Duration(settings.GetPollSeconds()) * time.Second,
			WorkDir:       settings.GetTempDirectory(),
		}
	}, mediaSvc, log)

	workflowSvc := workflow.NewService(mediaSvc, downloadSvc, factory, config.APIKey, directories(settings), log)

	executor := worker.NewExecutor(workflowSvc, log)
	defer executor.Close()

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	ui.NewRootUI(myWindow, settings, executor, mediaSvc, log, func() {
		workflowSvc.SetDirectories(directories(settings))
		downloadSvc.SetDownloadDirectory(settings.GetDownloadDirectory())
		downloadSvc.SetMaxParallelDownloads(settings.GetMaxParallelDownloads())
	})

	myWindow.ShowAndRun()
}

func directories(settings *config.Settings) workflow.Directories {
	return workflow.Directories{
		Temp:        settings.GetTempDirectory(),
		Transcripts: settings.GetTranscriptsDirectory(),
	}
}
