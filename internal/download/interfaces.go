package download

import (
	"context"

	"github.com/ytget/media-magic/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	Download(ctx context.Context, url string) (*model.DownloadTask, error)
	DownloadAll(ctx context.Context, urls []string) []*model.DownloadTask
	GetTask(id string) (*model.DownloadTask, bool)
	GetAllTasks() []*model.DownloadTask

	// SetMaxParallelDownloads sets the maximum number of parallel downloads
	SetMaxParallelDownloads(max int)

	// SetDownloadDirectory sets the download directory
	SetDownloadDirectory(dir string)
}

// videoFetcher downloads one video into outputPath and returns its title
type videoFetcher interface {
	Fetch(ctx context.Context, url, outputPath string, onProgress func(percent float64)) (title string, err error)
}
